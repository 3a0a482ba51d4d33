package principal

import "context"

// Principal is the authenticated caller as supplied by the identity provider.
type Principal struct {
	UserID   int64
	Username string
	Groups   []string
}

type ctxKey struct{}

// WithContext stores p in ctx.
func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)

	return p, ok
}
