package authn

import "errors"

var (
	// ErrMissingToken is returned when a request carries no bearer credential.
	ErrMissingToken = errors.New("authn: missing token")
	// ErrMalformed is returned for tokens that cannot be decoded.
	ErrMalformed = errors.New("authn: malformed token")
	// ErrInvalidSignature is returned when the token seal does not match the signing secret.
	ErrInvalidSignature = errors.New("authn: invalid token signature")
	// ErrExpired is returned once the token lifetime is over.
	ErrExpired = errors.New("authn: token expired")

	ErrForbidden         = errors.New("authn: caller does not own the resource")
	ErrInvalidCredential = errors.New("authn: invalid credentials")

	ErrEmptySecret   = errors.New("authn: signing secret cannot be empty")
	ErrSecretTooLong = errors.New("authn: secret exceeds the maximum length supported by the hashing scheme")
)

// IsUnauthorized reports whether err should be answered with 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpired)
}
