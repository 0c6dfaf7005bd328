// Package metadata stores small client-side key/value settings in SQLite,
// such as the refresh token of the last signed-in session.
package metadata

import (
	"context"
)

const (
	KeyRefreshToken = "refresh_token"
	KeyEmail        = "email"
)

type Repository interface {
	// Get returns ("", nil) when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
