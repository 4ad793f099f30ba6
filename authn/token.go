package authn

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is fixed, tokens issued by any service expire after a day.
const TokenLifetime = 24 * time.Hour

type (
	Token struct {
		Value     string
		Subject   string
		IssuedAt  time.Time
		ExpiresAt time.Time
	}

	// Codec issues and verifies tokens sealed with a shared secret.
	// It is safe for concurrent use.
	Codec struct {
		secret []byte
		now    func() time.Time
	}

	CodecOption func(*Codec)

	claims struct {
		UserID string `json:"userId"`
		jwt.RegisteredClaims
	}
)

var (
	bearerTokenRE = regexp.MustCompile(`(?i)^Bearer\s+([^\s]+)$`)
)

// WithClock replaces the time source used to issue and verify tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	c := &Codec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Codec) Issue(subject string) (Token, error) {
	if len(subject) == 0 {
		return Token{}, errors.New("authn: cannot issue a token without a subject")
	}
	iat := c.now().Truncate(time.Second)
	exp := iat.Add(TokenLifetime)
	cl := claims{
		UserID: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("authn: unable to sign token, cause %w", err)
	}
	return Token{
		Value:     signed,
		Subject:   subject,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

// Verify returns the subject bound to the token.
//
// The seal is checked over the raw header and payload before any claim is
// decoded, so a token altered in any way is reported as ErrInvalidSignature
// and never as ErrMalformed or ErrExpired.
func (c *Codec) Verify(value string) (string, error) {
	parts := strings.Split(value, ".")
	if len(value) == 0 || len(parts) != 3 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return "", ErrMalformed
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", ErrInvalidSignature
	}
	err = jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.secret)
	if err != nil {
		return "", ErrInvalidSignature
	}

	var cl claims
	_, err = jwt.ParseWithClaims(value, &cl, c.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired())
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	case len(cl.UserID) == 0:
		return "", ErrMalformed
	}
	return cl.UserID, nil
}

// Authenticate resolves the value of an Authorization header to a Principal.
func (c *Codec) Authenticate(header string) (Principal, error) {
	tk, err := BearerToken(header)
	if err != nil {
		return Principal{}, err
	}
	id, err := c.Verify(tk)
	if err != nil {
		return Principal{}, err
	}
	return Principal{IdentityID: id}, nil
}

func (c *Codec) key(*jwt.Token) (interface{}, error) {
	return c.secret, nil
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if len(header) == 0 || strings.EqualFold(header, "Bearer") {
		return "", ErrMissingToken
	}
	groups := bearerTokenRE.FindStringSubmatch(header)
	if len(groups) == 0 {
		return "", ErrMalformed
	}
	return groups[1], nil
}
