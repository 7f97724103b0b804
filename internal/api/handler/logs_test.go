package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelproof/labelproof/internal/api/handler"
	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/audit"
	"github.com/labelproof/labelproof/internal/authz"
)

type recordingAuditRepo struct {
	lastLimit int
}

func (r *recordingAuditRepo) Insert(_ context.Context, _ *audit.Event) error { return nil }

func (r *recordingAuditRepo) List(_ context.Context, limit int) ([]audit.Event, error) {
	r.lastLimit = limit
	return []audit.Event{{
		ID:        "01J0000000000000000000TEST",
		ActorID:   uuid.New(),
		Action:    audit.ActionDeleteUser,
		Details:   map[string]any{"userId": "x"},
		CreatedAt: time.Now().UTC(),
	}}, nil
}

func newLogsRouter(resolver *fakeResolver, profiles *fakeProfiles, repo audit.Repository) http.Handler {
	gate := middleware.NewGate(resolver, profiles, nil)
	h := handler.NewLogHandler(audit.NewRecorder(repo))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.With(gate.Authenticate, gate.Require(authz.ActionViewAuditLog)).Get("/logs", h.List)
	return r
}

func TestListLogs_Moderator(t *testing.T) {
	caller := uuid.New()
	repo := &recordingAuditRepo{}
	router := newLogsRouter(signedIn(caller, "mod@example.com"),
		newFakeProfiles(moderatorProfile(caller)), repo)

	rec := do(t, router, http.MethodGet, "/logs", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, repo.lastLimit)
	assert.Contains(t, rec.Body.String(), audit.ActionDeleteUser)
}

func TestListLogs_LimitParam(t *testing.T) {
	caller := uuid.New()
	repo := &recordingAuditRepo{}
	router := newLogsRouter(signedIn(caller, "mod@example.com"),
		newFakeProfiles(moderatorProfile(caller)), repo)

	rec := do(t, router, http.MethodGet, "/logs?limit=25", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, repo.lastLimit)

	// Out-of-range limits fall back to the default.
	rec = do(t, router, http.MethodGet, "/logs?limit=99999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, repo.lastLimit)
}

func TestListLogs_DeniedForPlainUser(t *testing.T) {
	caller := uuid.New()
	router := newLogsRouter(signedIn(caller, "user@example.com"),
		newFakeProfiles(userProfile(caller)), &recordingAuditRepo{})

	rec := do(t, router, http.MethodGet, "/logs", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListLogs_NoCredential(t *testing.T) {
	router := newLogsRouter(anonymous(), newFakeProfiles(), &recordingAuditRepo{})

	rec := do(t, router, http.MethodGet, "/logs", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
