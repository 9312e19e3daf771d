// Package appctx carries the authenticated session through the request
// context.
package appctx

import (
	"context"

	"fichaflow/models"
)

type sessionKey struct{}

func NewContextWithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}
