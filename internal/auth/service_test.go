package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/labelproof/labelproof/internal/auth"
)

// fakeAccountRepo implements auth.AccountRepository with per-method hooks.
type fakeAccountRepo struct {
	createFn      func(ctx context.Context, a *auth.Account) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*auth.Account, error)
	getByEmailFn  func(ctx context.Context, email string) (*auth.Account, error)
	setPasswordFn func(ctx context.Context, id uuid.UUID, hash string) error
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	countAllFn    func(ctx context.Context) (int, error)
}

func (f *fakeAccountRepo) Create(ctx context.Context, a *auth.Account) error {
	return f.createFn(ctx, a)
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeAccountRepo) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return f.setPasswordFn(ctx, id, hash)
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeAccountRepo) CountAll(ctx context.Context) (int, error) {
	return f.countAllFn(ctx)
}

func storedAccount(t *testing.T, email, password string) *auth.Account {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.Account{ID: uuid.New(), Email: email, PasswordHash: hash}
}

func TestLogin_Success(t *testing.T) {
	account := storedAccount(t, "somchai@example.com", "correct-horse")
	repo := &fakeAccountRepo{
		getByEmailFn: func(_ context.Context, email string) (*auth.Account, error) {
			assert.Equal(t, "somchai@example.com", email)
			return account, nil
		},
	}
	svc := auth.NewService(repo, testSecret, time.Hour, bcrypt.MinCost)

	identity, token, err := svc.Login(context.Background(), "Somchai@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, account.ID, identity.UserID)
	assert.Equal(t, account.Email, identity.Email)

	parsed, err := auth.VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, parsed.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	account := storedAccount(t, "somchai@example.com", "correct-horse")
	repo := &fakeAccountRepo{
		getByEmailFn: func(_ context.Context, _ string) (*auth.Account, error) {
			return account, nil
		},
	}
	svc := auth.NewService(repo, testSecret, time.Hour, bcrypt.MinCost)

	_, _, err := svc.Login(context.Background(), "somchai@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &fakeAccountRepo{
		getByEmailFn: func(_ context.Context, _ string) (*auth.Account, error) {
			return nil, auth.ErrAccountNotFound
		},
	}
	svc := auth.NewService(repo, testSecret, time.Hour, bcrypt.MinCost)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc := auth.NewService(&fakeAccountRepo{}, testSecret, time.Hour, bcrypt.MinCost)

	_, _, err := svc.Login(context.Background(), "", "whatever1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "somchai@example.com", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_RepositoryError(t *testing.T) {
	repo := &fakeAccountRepo{
		getByEmailFn: func(_ context.Context, _ string) (*auth.Account, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := auth.NewService(repo, testSecret, time.Hour, bcrypt.MinCost)

	_, _, err := svc.Login(context.Background(), "somchai@example.com", "whatever1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResolve_BearerHeader(t *testing.T) {
	account := testAccount()
	token, err := auth.MintToken(testSecret, account, time.Hour)
	require.NoError(t, err)

	svc := auth.NewService(&fakeAccountRepo{}, testSecret, time.Hour, bcrypt.MinCost)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	identity, err := svc.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, account.ID, identity.UserID)
}

func TestResolve_SessionCookie(t *testing.T) {
	account := testAccount()
	token, err := auth.MintToken(testSecret, account, time.Hour)
	require.NoError(t, err)

	svc := auth.NewService(&fakeAccountRepo{}, testSecret, time.Hour, bcrypt.MinCost)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})

	identity, err := svc.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, account.ID, identity.UserID)
}

func TestResolve_NoCredential(t *testing.T) {
	svc := auth.NewService(&fakeAccountRepo{}, testSecret, time.Hour, bcrypt.MinCost)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := svc.Resolve(r)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestResolve_MalformedHeader(t *testing.T) {
	account := testAccount()
	token, err := auth.MintToken(testSecret, account, time.Hour)
	require.NoError(t, err)

	svc := auth.NewService(&fakeAccountRepo{}, testSecret, time.Hour, bcrypt.MinCost)

	for _, header := range []string{"Bearer", "Bearer ", "Basic " + token, token} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", header)
		_, err := svc.Resolve(r)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated, "header %q", header)
	}
}

func TestResolve_InvalidCookie(t *testing.T) {
	svc := auth.NewService(&fakeAccountRepo{}, testSecret, time.Hour, bcrypt.MinCost)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})

	_, err := svc.Resolve(r)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestSessionCookie(t *testing.T) {
	svc := auth.NewService(&fakeAccountRepo{}, testSecret, 2*time.Hour, bcrypt.MinCost)

	cookie := svc.SessionCookie("some-token")
	assert.Equal(t, auth.SessionCookieName, cookie.Name)
	assert.Equal(t, "some-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 7200, cookie.MaxAge)
}
