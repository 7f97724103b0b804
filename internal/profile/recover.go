package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labelproof/labelproof/internal/authz"
)

// Recoverer synthesizes a default profile when role lookup finds none for an
// otherwise-valid identity. The recovered role is always "user": the role is
// never inferred from the email address.
type Recoverer struct {
	repo Repository
}

// NewRecoverer creates a Recoverer writing through the given repository.
func NewRecoverer(repo Repository) *Recoverer {
	return &Recoverer{repo: repo}
}

// Recover creates and returns a default profile for the identity. The display
// name falls back to the email's local part.
func (r *Recoverer) Recover(ctx context.Context, id uuid.UUID, email string) (*Profile, error) {
	name, _, _ := strings.Cut(email, "@")
	if strings.TrimSpace(name) == "" {
		name = "User"
	}

	p := &Profile{
		ID:    id,
		Email: email,
		Name:  name,
		Role:  authz.RoleUser,
	}
	if err := r.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("recovering profile: %w", err)
	}
	return p, nil
}

// ResolveRole fetches the caller's stored role. When no profile exists and a
// recoverer is configured, it synthesizes one and returns its role; without a
// recoverer a missing profile surfaces as ErrNotFound, never as an implicit
// authorization.
func ResolveRole(ctx context.Context, repo Repository, rec *Recoverer, id uuid.UUID, email string) (authz.Role, error) {
	p, err := repo.GetByID(ctx, id)
	if err == nil {
		return p.Role, nil
	}
	if !errors.Is(err, ErrNotFound) || rec == nil {
		return "", err
	}

	p, err = rec.Recover(ctx, id, email)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

// roleOrDefault maps stored role strings onto the enumerated set, defaulting
// unknown values to the least-privileged role.
func roleOrDefault(s string) authz.Role {
	role, err := authz.ParseRole(s)
	if err != nil {
		return authz.RoleUser
	}
	return role
}
