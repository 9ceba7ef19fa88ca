package middleware

import (
	"context"

	"github.com/hirelane/talentsync-backend/internal/access"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxAccess contextKey = "access_context"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// AccessFromContext returns the resolved access context for the request, or
// nil when the request is unauthenticated.
func AccessFromContext(ctx context.Context) *access.Context {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxAccess).(*access.Context); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithAccess injects a resolved access context for downstream handlers.
func WithAccess(ctx context.Context, accessCtx *access.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccess, accessCtx)
}
