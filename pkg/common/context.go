package common

import (
	"context"

	pkgerrors "github.com/wilson12358/daybook/pkg/errors"
)

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID stores the authenticated owner id on the request context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated owner id from the context
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", pkgerrors.NewUnauthorizedError("no user in request context")
	}
	return userID, nil
}
