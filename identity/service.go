package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andrebq/blogbox/authn"
)

type (
	Service struct {
		store  *Store
		hasher authn.Hasher
		codec  *authn.Codec

		dummyOnce sync.Once
		dummyHash string
	}

	// Session is what clients receive after register or login.
	Session struct {
		Token    authn.Token
		Identity *Identity
	}
)

func NewService(store *Store, hasher authn.Hasher, codec *authn.Codec) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		codec:  codec,
	}
}

// Register creates a new identity and logs it in.
// username and email must already be normalized.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	taken, err := s.store.Exists(ctx, username, email)
	if err != nil {
		return nil, err
	} else if taken {
		return nil, ErrDuplicateIdentity
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("identity: unable to hash password, cause %w", err)
	}
	id, err := s.store.Create(ctx, NewIdentity{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	return s.session(id)
}

// Login never tells apart unknown emails from wrong passwords, both
// result in authn.ErrInvalidCredential.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	id, err := s.store.ByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		s.hasher.Verify(password, s.dummy())
		return nil, authn.ErrInvalidCredential
	} else if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, id.PasswordHash) {
		return nil, authn.ErrInvalidCredential
	}
	return s.session(id)
}

func (s *Service) Profile(ctx context.Context, who authn.Principal) (*Identity, error) {
	return s.store.ByID(ctx, who.IdentityID)
}

func (s *Service) UpdateProfile(ctx context.Context, who authn.Principal, upd ProfileUpdate) (*Identity, error) {
	return s.store.UpdateProfile(ctx, who.IdentityID, upd)
}

func (s *Service) session(id *Identity) (*Session, error) {
	tk, err := s.codec.Issue(id.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tk, Identity: id}, nil
}

// dummy returns a hash to verify against when the email is unknown, so
// the response time does not reveal which emails are registered.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("blogbox-unknown-identity")
	})
	return s.dummyHash
}
