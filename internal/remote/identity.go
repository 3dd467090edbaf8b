package remote

import "context"

type identityKey struct{}

// WithIdentity attaches the caller's backend identity token to the
// context. Gateways forward it with each request; calls without one go
// out anonymously and the backend rejects the operations that need auth.
func WithIdentity(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, identityKey{}, token)
}

// IdentityFromContext extracts the identity token, if any.
func IdentityFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(identityKey{}).(string)
	return token, ok && token != ""
}
