// Package requestctx carries the trusted caller identity through a request.
package requestctx

import "context"

type callerContextKey struct{}

type caller struct {
	userID string
	admin  bool
}

// WithUserID stores a non-admin caller in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithCaller(ctx, userID, false)
}

// WithCaller stores the caller and its admin flag in ctx.
func WithCaller(ctx context.Context, userID string, admin bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerContextKey{}, caller{userID: userID, admin: admin})
}

// UserIDFromContext returns the caller's user id, or "" when none is set.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(callerContextKey{}).(caller)
	return value.userID
}

// IsAdmin reports whether the caller in ctx is an administrator.
func IsAdmin(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	value, _ := ctx.Value(callerContextKey{}).(caller)
	return value.admin
}
