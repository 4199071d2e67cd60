// Package identity carries the caller identity resolved by the gateway in
// front of this service. Token validation happens upstream; the service
// trusts the forwarded user id header.
package identity

import "context"

type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func FromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok && userID != ""
}
