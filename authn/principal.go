package authn

import "context"

type (
	// Principal is the identity resolved from a verified token, it only lives
	// for the duration of a request.
	Principal struct {
		IdentityID string
	}

	key byte
)

var (
	principalKey = key(1)
)

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Authorize reports whether the principal owns a resource whose owner is ownerID.
func Authorize(ownerID string, who Principal) bool {
	return len(ownerID) > 0 && ownerID == who.IdentityID
}
