package blog

import (
	"context"

	"github.com/andrebq/blogbox/authn"
	"github.com/google/uuid"
)

type (
	Service struct {
		store   *Store
		authors Directory
	}
)

func NewService(store *Store, authors Directory) *Service {
	return &Service{
		store:   store,
		authors: authors,
	}
}

// Create stores a new post owned by who.
func (s *Service) Create(ctx context.Context, who authn.Principal, draft NewPost) (*Post, error) {
	return s.store.Create(ctx, who.IdentityID, draft)
}

func (s *Service) Get(ctx context.Context, id string) (*Listing, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	p, err := s.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.authors.Usernames(ctx, p.Author)
	if err != nil {
		return nil, err
	}
	return &Listing{Post: *p, Author: Author{ID: p.Author, Username: names[p.Author]}}, nil
}

// List returns all posts, newest first, with their authors resolved.
// Posts whose author no longer exists are kept with an empty username.
func (s *Service) List(ctx context.Context) ([]Listing, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Author)
	}
	names, err := s.authors.Usernames(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, len(posts))
	for i, p := range posts {
		out[i] = Listing{Post: p, Author: Author{ID: p.Author, Username: names[p.Author]}}
	}
	return out, nil
}

// Update returns ErrNotFound before checking ownership, and
// authn.ErrForbidden if who is not the author.
func (s *Service) Update(ctx context.Context, who authn.Principal, id string, upd PostUpdate) (*Post, error) {
	if err := s.authorize(ctx, who, id); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, who authn.Principal, id string) error {
	if err := s.authorize(ctx, who, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) authorize(ctx context.Context, who authn.Principal, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	p, err := s.store.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !authn.Authorize(p.Author, who) {
		return authn.ErrForbidden
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
