package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelproof/labelproof/internal/authz"
	"github.com/labelproof/labelproof/internal/profile"
)

type fakeRepo struct {
	createFn    func(ctx context.Context, p *profile.Profile) error
	getByIDFn   func(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	getByNameFn func(ctx context.Context, name string) (*profile.Profile, error)
	listFn      func(ctx context.Context) ([]profile.Profile, error)
	updateFn    func(ctx context.Context, p *profile.Profile) error
	deleteFn    func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeRepo) Create(ctx context.Context, p *profile.Profile) error { return f.createFn(ctx, p) }
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeRepo) GetByName(ctx context.Context, name string) (*profile.Profile, error) {
	return f.getByNameFn(ctx, name)
}
func (f *fakeRepo) List(ctx context.Context) ([]profile.Profile, error) { return f.listFn(ctx) }
func (f *fakeRepo) Update(ctx context.Context, p *profile.Profile) error {
	return f.updateFn(ctx, p)
}
func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error { return f.deleteFn(ctx, id) }

func TestRecover_AlwaysAssignsUserRole(t *testing.T) {
	id := uuid.New()
	var created *profile.Profile
	repo := &fakeRepo{
		createFn: func(_ context.Context, p *profile.Profile) error {
			created = p
			return nil
		},
	}
	rec := profile.NewRecoverer(repo)

	// Even an email that looks administrative recovers as a plain user.
	p, err := rec.Recover(context.Background(), id, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, p.Role)
	assert.Equal(t, "admin", p.Name)
	assert.Equal(t, id, created.ID)
}

func TestRecover_NameFallsBackWhenLocalPartEmpty(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(_ context.Context, _ *profile.Profile) error { return nil },
	}
	rec := profile.NewRecoverer(repo)

	p, err := rec.Recover(context.Background(), uuid.New(), "@example.com")
	require.NoError(t, err)
	assert.Equal(t, "User", p.Name)
}

func TestResolveRole_ExistingProfile(t *testing.T) {
	id := uuid.New()
	repo := &fakeRepo{
		getByIDFn: func(_ context.Context, got uuid.UUID) (*profile.Profile, error) {
			assert.Equal(t, id, got)
			return &profile.Profile{ID: id, Role: authz.RoleAssistantModerator}, nil
		},
	}

	role, err := profile.ResolveRole(context.Background(), repo, nil, id, "x@example.com")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAssistantModerator, role)
}

func TestResolveRole_MissingProfileWithoutRecoverer(t *testing.T) {
	repo := &fakeRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*profile.Profile, error) {
			return nil, profile.ErrNotFound
		},
	}

	// Without a recoverer a missing profile is an error, never a default
	// authorization.
	_, err := profile.ResolveRole(context.Background(), repo, nil, uuid.New(), "x@example.com")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestResolveRole_RecoversOnce(t *testing.T) {
	id := uuid.New()
	creates := 0
	repo := &fakeRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*profile.Profile, error) {
			return nil, profile.ErrNotFound
		},
		createFn: func(_ context.Context, _ *profile.Profile) error {
			creates++
			return nil
		},
	}
	rec := profile.NewRecoverer(repo)

	role, err := profile.ResolveRole(context.Background(), repo, rec, id, "somchai@example.com")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, role)
	assert.Equal(t, 1, creates)
}

func TestResolveRole_PropagatesRepositoryError(t *testing.T) {
	repo := &fakeRepo{
		getByIDFn: func(_ context.Context, _ uuid.UUID) (*profile.Profile, error) {
			return nil, errors.New("connection refused")
		},
	}
	rec := profile.NewRecoverer(repo)

	_, err := profile.ResolveRole(context.Background(), repo, rec, uuid.New(), "x@example.com")
	assert.Error(t, err)
}
