// Package ctxutil carries request-scoped values from the HTTP layer down to
// the services. It imports nothing internal so any package may use it.
package ctxutil

import "context"

type userIDKey struct{}

// WithUserID records the authenticated user's id. The bearer-token
// middleware sets it; record inserts stamp it into user_id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user's id, or "" for
// unauthenticated callers such as the CLI.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
