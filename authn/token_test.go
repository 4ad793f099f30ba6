package authn

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("a-test-secret-that-is-long-enough")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewCodec(testSecret, WithClock(fixedClock(now)))
	require.NoError(t, err)

	tk, err := codec.Issue("alice-id")
	require.NoError(t, err)
	require.Equal(t, "alice-id", tk.Subject)
	require.Equal(t, now, tk.IssuedAt)
	require.Equal(t, now.Add(24*time.Hour), tk.ExpiresAt)

	sub, err := codec.Verify(tk.Value)
	require.NoError(t, err)
	require.Equal(t, "alice-id", sub)
}

func TestSharedSecretAcrossCodecs(t *testing.T) {
	users, err := NewCodec(testSecret)
	require.NoError(t, err)
	blogs, err := NewCodec(testSecret)
	require.NoError(t, err)

	tk, err := users.Issue("bob-id")
	require.NoError(t, err)
	sub, err := blogs.Verify(tk.Value)
	require.NoError(t, err)
	require.Equal(t, "bob-id", sub)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	codec, err := NewCodec(testSecret, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	tk, err := codec.Issue("alice-id")
	require.NoError(t, err)

	clock = now.Add(TokenLifetime - time.Second)
	_, err = codec.Verify(tk.Value)
	require.NoError(t, err)

	clock = now.Add(TokenLifetime)
	_, err = codec.Verify(tk.Value)
	require.ErrorIs(t, err, ErrExpired)

	clock = now.Add(TokenLifetime + time.Hour)
	_, err = codec.Verify(tk.Value)
	require.ErrorIs(t, err, ErrExpired)
	require.NotErrorIs(t, err, ErrInvalidSignature)
}

func TestPayloadBitFlip(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)
	tk, err := codec.Issue("alice-id")
	require.NoError(t, err)

	parts := strings.Split(tk.Value, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	for i := 0; i < len(payload)*8; i++ {
		tampered := append([]byte(nil), payload...)
		tampered[i/8] ^= 1 << (i % 8)
		value := parts[0] + "." + base64.RawURLEncoding.EncodeToString(tampered) + "." + parts[2]
		_, err := codec.Verify(value)
		require.ErrorIs(t, err, ErrInvalidSignature, "bit %v", i)
	}
}

func TestWrongSecret(t *testing.T) {
	issuer, err := NewCodec([]byte("another-secret-with-enough-bytes"))
	require.NoError(t, err)
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	tk, err := issuer.Issue("alice-id")
	require.NoError(t, err)
	_, err = codec.Verify(tk.Value)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMalformedTokens(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)
	for _, value := range []string{
		"",
		"abc",
		"a.b",
		"a..c",
		".b.c",
		"a.b.c.d",
	} {
		_, err := codec.Verify(value)
		require.ErrorIs(t, err, ErrMalformed, "token: %q", value)
	}
}

func TestEmptySecret(t *testing.T) {
	_, err := NewCodec(nil)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestAuthenticate(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)
	tk, err := codec.Issue("alice-id")
	require.NoError(t, err)

	who, err := codec.Authenticate("Bearer " + tk.Value)
	require.NoError(t, err)
	require.Equal(t, Principal{IdentityID: "alice-id"}, who)

	_, err = codec.Authenticate("")
	require.ErrorIs(t, err, ErrMissingToken)
	_, err = codec.Authenticate("Bearer")
	require.ErrorIs(t, err, ErrMissingToken)
	_, err = codec.Authenticate("Bearer ")
	require.ErrorIs(t, err, ErrMissingToken)
	_, err = codec.Authenticate("Basic YWxpY2U6c2VjcmV0")
	require.ErrorIs(t, err, ErrMalformed)
	_, err = codec.Authenticate("Bearer not-a-token")
	require.ErrorIs(t, err, ErrMalformed)
	require.True(t, IsUnauthorized(err))
}
