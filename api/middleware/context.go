package middleware

import (
	"context"

	"github.com/minhngocdo/herbamart-storefront/pkg/auth/session"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// WithIdentity injects the request identity into the context.
func WithIdentity(ctx context.Context, id session.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

// IdentityFromContext returns the identity seeded by the gate, or a zero value.
func IdentityFromContext(ctx context.Context) session.Identity {
	if ctx == nil {
		return session.Identity{}
	}
	if v, ok := ctx.Value(ctxIdentity).(session.Identity); ok {
		return v
	}
	return session.Identity{}
}

// UserIDFromContext returns the signed-in user's id, or "" for anonymous.
func UserIDFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).Profile.ID
}
