package auth

import (
	"context"

	"liftcore/internal/models"
)

type ctxKey string

const claimsKey ctxKey = "callerClaims"

// Claims is the authenticated caller carried on the request context.
type Claims struct {
	Subject string
	Email   string
	Role    models.UserRole
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(claimsKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}
