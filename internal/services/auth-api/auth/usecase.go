package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NordCoder/Authly/internal/domain/session"
	"github.com/NordCoder/Authly/internal/domain/user"
	"github.com/NordCoder/Authly/internal/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrRefreshExpired     = errors.New("refresh token expired")
)

// Pair is the result of a successful issuance. The refresh token has a
// matching store record by the time a Pair is returned; on any store failure
// no Pair is handed out.
type Pair struct {
	Access  string
	Refresh string
}

type Usecase struct {
	users  user.Repo
	store  session.Store
	signer *token.Signer
}

func NewUsecase(users user.Repo, store session.Store, signer *token.Signer) *Usecase {
	return &Usecase{users: users, store: store, signer: signer}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// usernames are generated server-side, as in "user-3f2a9c41"
func generateUsername() string {
	return "user-" + uuid.NewString()[:8]
}

func (u *Usecase) Register(ctx context.Context, email, password string) (*user.User, Pair, error) {
	email = normalizeEmail(email)
	if len(password) < 8 {
		return nil, Pair{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Pair{}, fmt.Errorf("hash password: %w", err)
	}

	newUser := &user.User{
		Username: generateUsername(),
		Email:    email,
		Password: string(hash),
	}
	if err := u.users.Create(ctx, newUser); err != nil {
		return nil, Pair{}, err
	}

	pair, err := u.issuePair(ctx, newUser.ID)
	if err != nil {
		return nil, Pair{}, err
	}
	return newUser, pair, nil
}

func (u *Usecase) Login(ctx context.Context, email, password string) (*user.User, Pair, error) {
	rec, err := u.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, Pair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)) != nil {
		return nil, Pair{}, ErrInvalidCredentials
	}

	pair, err := u.issuePair(ctx, rec.ID)
	if err != nil {
		return nil, Pair{}, err
	}
	return rec, pair, nil
}

// Refresh exchanges a valid refresh token for a new access token. The store
// check runs before signature verification: a revoked token must be rejected
// even while it still verifies cryptographically. The refresh token itself is
// not rotated; it stays valid until its own expiry or revocation.
func (u *Usecase) Refresh(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidRefresh
	}
	ok, err := u.store.Exists(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("refresh token lookup: %w", err)
	}
	if !ok {
		return "", ErrInvalidRefresh
	}

	userID, err := u.signer.VerifyRefresh(raw)
	switch {
	case errors.Is(err, token.ErrExpired):
		return "", ErrRefreshExpired
	case err != nil:
		return "", ErrInvalidRefresh
	}

	access, err := u.signer.IssueAccess(userID)
	if err != nil {
		return "", fmt.Errorf("issue access: %w", err)
	}
	return access, nil
}

// Revoke deletes the store record backing a refresh token, making it
// unusable regardless of its remaining signed lifetime.
func (u *Usecase) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return u.store.Delete(ctx, raw)
}

// VerifyAccess exposes access-token verification to the request gate.
func (u *Usecase) VerifyAccess(tok string) (int64, error) {
	return u.signer.VerifyAccess(tok)
}

// issuePair mints both tokens and records the refresh token. Issuance and
// persistence are one logical unit: a store failure aborts the whole
// operation so no unrevocable pair ever reaches a client.
func (u *Usecase) issuePair(ctx context.Context, userID int64) (Pair, error) {
	access, err := u.signer.IssueAccess(userID)
	if err != nil {
		return Pair{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := u.signer.IssueRefresh(userID)
	if err != nil {
		return Pair{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := u.store.Create(ctx, refresh, userID); err != nil {
		return Pair{}, fmt.Errorf("save refresh: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}
