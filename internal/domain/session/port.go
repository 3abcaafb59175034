package session

import "context"

// Store persists issued refresh tokens, addressed by exact token value.
type Store interface {
	Create(ctx context.Context, token string, userID int64) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}
