// Package blog stores blog posts and enforces that only their author can
// change them.
package blog

import (
	"errors"
	"time"
)

type (
	// Post.Author is set once at creation and never changes.
	Post struct {
		ID        string
		Title     string
		Content   string
		Author    string
		Tags      []string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	NewPost struct {
		Title   string
		Content string
		Tags    []string
	}

	// PostUpdate only changes fields that are not nil.
	PostUpdate struct {
		Title   *string
		Content *string
		Tags    *[]string
	}

	Author struct {
		ID       string
		Username string
	}

	// Listing is a post together with its resolved author.
	Listing struct {
		Post   Post
		Author Author
	}
)

var (
	ErrNotFound = errors.New("blog: post not found")
)

func (u PostUpdate) apply(p *Post) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Tags != nil {
		p.Tags = append([]string{}, (*u.Tags)...)
	}
}
