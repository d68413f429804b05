package api_context

import (
	"context"

	"github.com/HlaKarki/ImageProcessor/internal/uuid"
)

type ctxKey string

const (
	IDKey         ctxKey = "id"
	AuthUserIDKey ctxKey = "authUserID"
)

func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(IDKey).(uuid.UUID)
	return id, ok
}

func AuthUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(AuthUserIDKey).(uuid.UUID)
	return id, ok
}

// WithAuthUserID returns a copy of ctx carrying the authenticated user id.
func WithAuthUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, AuthUserIDKey, id)
}
