package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/Authly/internal/domain/session"
)

var _ session.Store = (*TokenRepo)(nil)

// TokenRepo persists refresh tokens keyed by their exact value.
type TokenRepo struct{ db *DB }

func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

const (
	qTokenInsert = `
INSERT INTO refresh_tokens (token, user_id)
VALUES ($1, $2);`

	qTokenExists = `
SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1);`

	qTokenDelete = `
DELETE FROM refresh_tokens WHERE token = $1;`
)

func (r *TokenRepo) Create(ctx context.Context, token string, userID int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qTokenInsert, token, userID); err != nil {
		return fmt.Errorf("refresh token insert: %w", err)
	}
	return nil
}

func (r *TokenRepo) Exists(ctx context.Context, token string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, qTokenExists, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("refresh token lookup: %w", err)
	}
	return exists, nil
}

func (r *TokenRepo) Delete(ctx context.Context, token string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, qTokenDelete, token); err != nil {
		return fmt.Errorf("refresh token delete: %w", err)
	}
	return nil
}
