package authn

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type (
	// Hasher turns plain text secrets into encoded hashes that are safe to persist.
	Hasher interface {
		Hash(secret string) (string, error)
		// Verify never fails loudly, malformed encoded values are just a mismatch.
		Verify(secret, encoded string) bool
	}

	Scheme string

	Argon2Params struct {
		Memory  uint32
		Passes  uint32
		Threads uint8
		SaltLen uint32
		KeyLen  uint32
	}

	Argon2Hasher struct {
		Params Argon2Params
		Rand   io.Reader
	}

	BcryptHasher struct {
		Cost int
	}

	// MultiHasher hashes with a single scheme but verifies any known scheme,
	// the scheme is detected from the encoded prefix.
	MultiHasher struct {
		primary Hasher
		argon   *Argon2Hasher
		bcrypt  *BcryptHasher
	}
)

const (
	SchemeArgon2id Scheme = "argon2id"
	SchemeBcrypt   Scheme = "bcrypt"

	argon2Prefix = "$argon2id$"

	// upper bounds accepted when decoding a stored hash
	maxArgon2Memory   = 1 << 20
	maxArgon2Passes   = 32
	maxArgon2KeyLen   = 128
	maxBcryptSecret   = 72
	defaultBcryptCost = 10
)

var (
	// 7 passes over 10 MB should be a good replacement
	// for 1 pass over 64 MB of ram.
	DefaultArgon2Params = Argon2Params{
		Memory:  10 * 1024,
		Passes:  7,
		Threads: 2,
		SaltLen: 16,
		KeyLen:  32,
	}

	bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}
)

// NewHasher returns a hasher producing hashes with the given scheme.
func NewHasher(scheme Scheme) (*MultiHasher, error) {
	m := &MultiHasher{
		argon:  &Argon2Hasher{Params: DefaultArgon2Params, Rand: rand.Reader},
		bcrypt: &BcryptHasher{Cost: defaultBcryptCost},
	}
	switch scheme {
	case SchemeArgon2id, "":
		m.primary = m.argon
	case SchemeBcrypt:
		m.primary = m.bcrypt
	default:
		return nil, fmt.Errorf("authn: unknown password scheme %q", scheme)
	}
	return m, nil
}

func (m *MultiHasher) Hash(secret string) (string, error) {
	return m.primary.Hash(secret)
}

func (m *MultiHasher) Verify(secret, encoded string) bool {
	if strings.HasPrefix(encoded, argon2Prefix) {
		return m.argon.Verify(secret, encoded)
	}
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(encoded, p) {
			return m.bcrypt.Verify(secret, encoded)
		}
	}
	return false
}

func (a *Argon2Hasher) Hash(secret string) (string, error) {
	src := a.Rand
	if src == nil {
		src = rand.Reader
	}
	p := a.Params
	salt := make([]byte, p.SaltLen)
	if _, err := io.ReadFull(src, salt); err != nil {
		return "", fmt.Errorf("authn: unable to generate salt, cause %w", err)
	}
	key := argon2.IDKey([]byte(secret), salt, p.Passes, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("%vv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, p.Memory, p.Passes, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func (a *Argon2Hasher) Verify(secret, encoded string) bool {
	p, salt, key, ok := decodeArgon2(encoded)
	if !ok {
		return false
	}
	actual := argon2.IDKey([]byte(secret), salt, p.Passes, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(actual, key) == 1
}

func decodeArgon2(encoded string) (p Argon2Params, salt, key []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != string(SchemeArgon2id) {
		return
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Passes, &p.Threads); err != nil {
		return
	}
	if p.Memory == 0 || p.Memory > maxArgon2Memory || p.Passes == 0 || p.Passes > maxArgon2Passes || p.Threads == 0 {
		return
	}
	var err error
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxArgon2KeyLen {
		return
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	ok = true
	return
}

func (b *BcryptHasher) Hash(secret string) (string, error) {
	if len(secret) > maxBcryptSecret {
		return "", ErrSecretTooLong
	}
	cost := b.Cost
	if cost == 0 {
		cost = defaultBcryptCost
	}
	buf, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("authn: unable to hash secret, cause %w", err)
	}
	return string(buf), nil
}

func (b *BcryptHasher) Verify(secret, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(secret)) == nil
}
