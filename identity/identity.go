// Package identity stores user accounts and implements registration, login
// and profile management on top of package authn.
package identity

import (
	"errors"
	"time"
)

type (
	Identity struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		Profile      Profile   `json:"profile"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	Profile struct {
		Bio       string   `json:"bio"`
		Interests []string `json:"interests"`
		Avatar    string   `json:"avatar"`
	}

	// ProfileUpdate only changes the fields that are not nil, an empty value
	// clears the field.
	ProfileUpdate struct {
		Bio       *string
		Interests *[]string
		Avatar    *string
	}

	NewIdentity struct {
		Username     string
		Email        string
		PasswordHash string
	}

	// Summary is the public part of an identity, safe to embed in other
	// resources.
	Summary struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
)

var (
	ErrNotFound          = errors.New("identity: not found")
	ErrDuplicateIdentity = errors.New("identity: username or email already taken")
)

func (i *Identity) Summary() Summary {
	return Summary{ID: i.ID, Username: i.Username, Email: i.Email}
}

func (u ProfileUpdate) apply(p *Profile) {
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Interests != nil {
		p.Interests = append([]string{}, (*u.Interests)...)
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
}
