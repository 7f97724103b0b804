package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/labelproof/labelproof/internal/authz"
	"github.com/labelproof/labelproof/internal/profile"
)

// Admin performs privileged mutations under the service credential. It must
// only ever be invoked after the authorization policy returns allow; the
// handlers own that sequencing. The service key is held for the process
// lifetime and is safe for concurrent use.
type Admin struct {
	accounts   AccountRepository
	profiles   profile.Repository
	bcryptCost int
}

// NewAdmin creates the privileged executor. The service key is required at
// construction so a misconfigured deployment fails at startup rather than on
// the first privileged request.
func NewAdmin(serviceKey string, accounts AccountRepository, profiles profile.Repository, bcryptCost int) (*Admin, error) {
	if strings.TrimSpace(serviceKey) == "" {
		return nil, errors.New("service key is not configured")
	}
	return &Admin{
		accounts:   accounts,
		profiles:   profiles,
		bcryptCost: bcryptCost,
	}, nil
}

// SetPassword replaces the stored credential for the target account. Length
// validation happens at the endpoint boundary before authorization.
func (a *Admin) SetPassword(ctx context.Context, targetID uuid.UUID, newPassword string) error {
	hash, err := HashPassword(newPassword, a.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := a.accounts.SetPasswordHash(ctx, targetID, hash); err != nil {
		return fmt.Errorf("setting password: %w", err)
	}
	return nil
}

// DeleteAccount removes the identity record and the corresponding profile.
// A missing profile is tolerated: a cascading delete may already have
// removed it.
func (a *Admin) DeleteAccount(ctx context.Context, targetID uuid.UUID) error {
	if err := a.accounts.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	if err := a.profiles.Delete(ctx, targetID); err != nil && !errors.Is(err, profile.ErrNotFound) {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}

// CreateUser provisions an identity and its profile in one privileged step.
func (a *Admin) CreateUser(ctx context.Context, email, password string, p *profile.Profile) (*Account, error) {
	hash, err := HashPassword(password, a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &Account{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
	}
	if err := a.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	p.ID = account.ID
	p.Email = account.Email
	if err := a.profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	return account, nil
}

// Bootstrap creates the initial moderator account if the accounts table is
// empty. Returns the generated password (displayed once in the log). If
// accounts already exist, returns empty string.
func (a *Admin) Bootstrap(ctx context.Context) (string, error) {
	count, err := a.accounts.CountAll(ctx)
	if err != nil {
		return "", fmt.Errorf("counting accounts: %w", err)
	}
	if count > 0 {
		return "", nil
	}

	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating bootstrap password: %w", err)
	}
	password := base64.RawURLEncoding.EncodeToString(b)

	p := &profile.Profile{
		Name: "admin",
		Role: authz.RoleModerator,
	}
	if _, err := a.CreateUser(ctx, "admin@localhost", password, p); err != nil {
		return "", fmt.Errorf("creating bootstrap user: %w", err)
	}

	slog.Info("bootstrap moderator created", "email", "admin@localhost", "password", password)

	return password, nil
}
