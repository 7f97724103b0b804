package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token for browser
// deployments. API callers use the Authorization header instead; both paths
// enforce identical semantics.
const SessionCookieName = "session"

// ErrInvalidCredentials is returned when the email/password pair does not
// match an account.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrUnauthenticated is returned when a request carries no verifiable
// credential. A missing or empty token is a failure, never an
// empty-identity success.
var ErrUnauthenticated = errors.New("unauthenticated")

// Service provides caller-scoped authentication: logging in and resolving a
// request credential to a verified Identity.
type Service struct {
	accounts   AccountRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(accounts AccountRepository, secret []byte, tokenTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		accounts:   accounts,
		secret:     secret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// Login verifies an email/password pair and mints a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up account: %w", err)
	}

	if VerifyPassword(account.PasswordHash, password) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := MintToken(s.secret, account, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("minting token: %w", err)
	}

	return &Identity{UserID: account.ID, Email: account.Email}, token, nil
}

// Resolve exchanges the request credential for a verified Identity. It checks
// the Authorization header first and falls back to the session cookie.
func (s *Service) Resolve(r *http.Request) (*Identity, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return nil, ErrUnauthenticated
		}
		identity, err := VerifyToken(s.secret, token)
		if err != nil {
			return nil, ErrUnauthenticated
		}
		return identity, nil
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrUnauthenticated
	}
	identity, err := VerifyToken(s.secret, cookie.Value)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return identity, nil
}

// SessionCookie builds the session cookie set on successful login.
func (s *Service) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
