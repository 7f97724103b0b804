package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/auth"
	"github.com/labelproof/labelproof/internal/authz"
	"github.com/labelproof/labelproof/internal/profile"
)

type fakeResolver struct {
	identity *auth.Identity
	err      error
}

func (f *fakeResolver) Resolve(_ *http.Request) (*auth.Identity, error) {
	return f.identity, f.err
}

type fakeProfileRepo struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	createFn  func(ctx context.Context, p *profile.Profile) error
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *profile.Profile) error {
	return f.createFn(ctx, p)
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeProfileRepo) GetByName(_ context.Context, _ string) (*profile.Profile, error) {
	return nil, profile.ErrNotFound
}

func (f *fakeProfileRepo) List(_ context.Context) ([]profile.Profile, error) { return nil, nil }

func (f *fakeProfileRepo) Update(_ context.Context, _ *profile.Profile) error { return nil }

func (f *fakeProfileRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func profileWithRole(id uuid.UUID, role authz.Role) *fakeProfileRepo {
	return &fakeProfileRepo{
		getByIDFn: func(_ context.Context, got uuid.UUID) (*profile.Profile, error) {
			if got != id {
				return nil, profile.ErrNotFound
			}
			return &profile.Profile{ID: id, Role: role}, nil
		},
	}
}

func TestAuthorize_NoCredential(t *testing.T) {
	gate := middleware.NewGate(&fakeResolver{err: auth.ErrUnauthenticated}, &fakeProfileRepo{}, nil)

	r := httptest.NewRequest(http.MethodPut, "/users/x/password", nil)
	_, _, err := gate.Authorize(r, uuid.New(), authz.ActionSetPassword)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestAuthorize_MissingProfileIsForbidden(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "x@example.com"}
	profiles := &fakeProfileRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*profile.Profile, error) {
			return nil, profile.ErrNotFound
		},
	}
	gate := middleware.NewGate(&fakeResolver{identity: caller}, profiles, nil)

	r := httptest.NewRequest(http.MethodDelete, "/users/x", nil)
	_, _, err := gate.Authorize(r, uuid.New(), authz.ActionDeleteAccount)
	assert.ErrorIs(t, err, middleware.ErrForbidden)
}

func TestAuthorize_PolicyDenied(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "x@example.com"}
	gate := middleware.NewGate(&fakeResolver{identity: caller},
		profileWithRole(caller.UserID, authz.RoleUser), nil)

	r := httptest.NewRequest(http.MethodPut, "/users/x/password", nil)
	_, _, err := gate.Authorize(r, uuid.New(), authz.ActionSetPassword)
	assert.ErrorIs(t, err, middleware.ErrForbidden)
}

func TestAuthorize_SelfPasswordAllowed(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "x@example.com"}
	gate := middleware.NewGate(&fakeResolver{identity: caller},
		profileWithRole(caller.UserID, authz.RoleUser), nil)

	r := httptest.NewRequest(http.MethodPut, "/users/x/password", nil)
	identity, role, err := gate.Authorize(r, caller.UserID, authz.ActionSetPassword)
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, identity.UserID)
	assert.Equal(t, authz.RoleUser, role)
}

func TestAuthorize_ModeratorAllowed(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "mod@example.com"}
	gate := middleware.NewGate(&fakeResolver{identity: caller},
		profileWithRole(caller.UserID, authz.RoleModerator), nil)

	r := httptest.NewRequest(http.MethodDelete, "/users/x", nil)
	_, role, err := gate.Authorize(r, uuid.New(), authz.ActionDeleteAccount)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleModerator, role)
}

func TestAuthorize_RecoveredProfileStaysDenied(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "admin@example.com"}
	profiles := &fakeProfileRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*profile.Profile, error) {
			return nil, profile.ErrNotFound
		},
		createFn: func(_ context.Context, _ *profile.Profile) error { return nil },
	}
	gate := middleware.NewGate(&fakeResolver{identity: caller}, profiles, profile.NewRecoverer(profiles))

	// Recovery creates a plain user profile, which still cannot mutate others.
	r := httptest.NewRequest(http.MethodDelete, "/users/x", nil)
	_, _, err := gate.Authorize(r, uuid.New(), authz.ActionDeleteAccount)
	assert.ErrorIs(t, err, middleware.ErrForbidden)
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var env struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestAuthenticate_RejectsMissingCredential(t *testing.T) {
	gate := middleware.NewGate(&fakeResolver{err: auth.ErrUnauthenticated}, &fakeProfileRepo{}, nil)

	called := false
	h := gate.Authenticate(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rec.Body.Bytes()))
}

func TestAuthenticate_StoresIdentity(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "x@example.com"}
	gate := middleware.NewGate(&fakeResolver{identity: caller}, &fakeProfileRepo{}, nil)

	h := gate.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.GetIdentity(r.Context())
		require.NotNil(t, identity)
		assert.Equal(t, caller.UserID, identity.UserID)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequire_DeniesBelowModeratorTier(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "x@example.com"}
	gate := middleware.NewGate(&fakeResolver{identity: caller},
		profileWithRole(caller.UserID, authz.RoleOperator), nil)

	called := false
	h := gate.Authenticate(gate.Require(authz.ActionListUsers)(
		http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) { called = true })))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeErrorCode(t, rec.Body.Bytes()))
}

func TestRequire_AllowsModeratorTierAndStoresRole(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "mod@example.com"}
	gate := middleware.NewGate(&fakeResolver{identity: caller},
		profileWithRole(caller.UserID, authz.RoleAssistantModerator), nil)

	h := gate.Authenticate(gate.Require(authz.ActionListUsers)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.GetRole(r.Context())
			require.True(t, ok)
			assert.Equal(t, authz.RoleAssistantModerator, role)
			w.WriteHeader(http.StatusOK)
		})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequire_RoleLookupErrorIsForbidden(t *testing.T) {
	caller := &auth.Identity{UserID: uuid.New(), Email: "x@example.com"}
	profiles := &fakeProfileRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*profile.Profile, error) {
			return nil, errors.New("connection refused")
		},
	}
	gate := middleware.NewGate(&fakeResolver{identity: caller}, profiles, nil)

	h := gate.Authenticate(gate.Require(authz.ActionViewAuditLog)(
		http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
