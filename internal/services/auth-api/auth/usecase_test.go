package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/Authly/internal/domain/user"
	"github.com/NordCoder/Authly/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*user.User)}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

type memStore struct {
	mu        sync.Mutex
	records   map[string]int64
	createErr error
	existsErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]int64)}
}

func (m *memStore) Create(_ context.Context, tok string, userID int64) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[tok] = userID
	return nil
}

func (m *memStore) Exists(_ context.Context, tok string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[tok]
	return ok, nil
}

func (m *memStore) Delete(_ context.Context, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, tok)
	return nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type fixture struct {
	uc    *Usecase
	users *memUsers
	store *memStore
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Now().UTC()
	signer, err := token.NewSigner(token.Config{
		AccessSecret:  []byte("access-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshSecret: []byte("refresh-secret"),
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "authly",
		Now:           func() time.Time { return now },
	})
	require.NoError(t, err)

	users := newMemUsers()
	store := newMemStore()
	return &fixture{
		uc:    NewUsecase(users, store, signer),
		users: users,
		store: store,
		now:   &now,
	}
}

func TestRegister_IssuesPairAndRecordsRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, pair, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(u.Username, "user-"), "generated username: %s", u.Username)
	assert.Equal(t, "a@x.com", u.Email)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	// refresh record exists immediately after issuance
	ok, err := f.store.Exists(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.True(t, ok)

	// access token resolves to the subject resolved at issuance
	uid, err := f.uc.VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, _, err := f.uc.Register(ctx, "  A@X.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.uc.Register(context.Background(), "a@x.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Zero(t, f.store.len())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	_, _, err = f.uc.Register(ctx, "a@x.com", "secret456")
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestRegister_StoreFailureWithholdsTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.createErr = errors.New("insert failed")

	_, pair, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.Error(t, err)
	assert.Empty(t, pair.Access)
	assert.Empty(t, pair.Refresh)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.uc.Login(context.Background(), "nobody@x.com", "whatever1")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.Zero(t, f.store.len())
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, _, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	_, _, err = f.uc.Login(ctx, "a@x.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_SecondDeviceKeepsFirstToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, first, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	_, second, err := f.uc.Login(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	// one subject may hold several concurrent refresh tokens
	assert.Equal(t, 2, f.store.len())

	for _, refresh := range []string{first.Refresh, second.Refresh} {
		_, err := f.uc.Refresh(ctx, refresh)
		assert.NoError(t, err)
	}
}

func TestRefresh_MintsAccessForSubject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, pair, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	access, err := f.uc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)

	uid, err := f.uc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, uid)
}

func TestRefresh_DoesNotRotate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, pair, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	first, err := f.uc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	second, err := f.uc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)

	// both succeed independently and the record is untouched
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, f.store.len())
	for _, access := range []string{first, second} {
		_, err := f.uc.VerifyAccess(access)
		assert.NoError(t, err)
	}
}

func TestRefresh_RevokedTokenRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, pair, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	// cryptographically valid and unexpired, but the record is gone
	require.NoError(t, f.uc.Revoke(ctx, pair.Refresh))

	_, err = f.uc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, pair, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	*f.now = f.now.Add(8 * 24 * time.Hour)

	_, err = f.uc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrRefreshExpired)
}

func TestRefresh_MalformedTokenInStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// a record for a non-token string still fails signature verification
	require.NoError(t, f.store.Create(ctx, "garbage", 1))

	_, err := f.uc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_EmptyToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_StoreErrorSurfaced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, pair, err := f.uc.Register(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	f.store.existsErr = errors.New("store down")
	_, err = f.uc.Refresh(ctx, pair.Refresh)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRefresh)
	assert.NotErrorIs(t, err, ErrRefreshExpired)
}
