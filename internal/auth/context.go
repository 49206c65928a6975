package auth

import "context"

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userTypeKey contextKey = "user_type"
)

// Identity is injected by the gateway; the service trusts the
// X-User-Id / X-User-Type headers the middleware reads.
func WithIdentity(ctx context.Context, userID, userType string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userTypeKey, userType)
}

func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(userIDKey).(string); ok {
		return val
	}
	return ""
}

func GetUserType(ctx context.Context) string {
	if val, ok := ctx.Value(userTypeKey).(string); ok {
		return val
	}
	return ""
}
