package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/labelproof/labelproof/internal/api/response"
	"github.com/labelproof/labelproof/internal/auth"
	"github.com/labelproof/labelproof/internal/authz"
	"github.com/labelproof/labelproof/internal/profile"
)

const (
	identityKey contextKey = "identity"
	roleKey     contextKey = "role"
)

// ErrForbidden is returned when the caller's identity is established but the
// role cannot be resolved or the policy denies the action.
var ErrForbidden = errors.New("forbidden")

// IdentityResolver exchanges a request credential for a verified identity.
type IdentityResolver interface {
	Resolve(r *http.Request) (*auth.Identity, error)
}

// Gate is the single authorization pipeline every privileged endpoint goes
// through: identity resolution, role lookup, then the policy decision. No
// handler re-implements these checks inline.
type Gate struct {
	resolver  IdentityResolver
	profiles  profile.Repository
	recoverer *profile.Recoverer
}

// NewGate creates a Gate. The recoverer is optional; without one a missing
// profile resolves to forbidden.
func NewGate(resolver IdentityResolver, profiles profile.Repository, recoverer *profile.Recoverer) *Gate {
	return &Gate{
		resolver:  resolver,
		profiles:  profiles,
		recoverer: recoverer,
	}
}

// Identify resolves the request credential. Failure means unauthenticated.
func (g *Gate) Identify(r *http.Request) (*auth.Identity, error) {
	identity, err := g.resolver.Resolve(r)
	if err != nil {
		return nil, auth.ErrUnauthenticated
	}
	return identity, nil
}

// Role fetches the caller's stored role. Identity is already established
// here, so any failure is a forbidden condition, not an unauthenticated one.
func (g *Gate) Role(ctx context.Context, identity *auth.Identity) (authz.Role, error) {
	role, err := profile.ResolveRole(ctx, g.profiles, g.recoverer, identity.UserID, identity.Email)
	if err != nil {
		return "", ErrForbidden
	}
	return role, nil
}

// Authorize runs the full pipeline for one privileged mutation: resolve
// identity, look up the stored role, evaluate the policy. The role never
// comes from request input.
func (g *Gate) Authorize(r *http.Request, targetID uuid.UUID, action authz.Action) (*auth.Identity, authz.Role, error) {
	identity, err := g.Identify(r)
	if err != nil {
		return nil, "", err
	}
	role, err := g.Role(r.Context(), identity)
	if err != nil {
		return nil, "", err
	}
	if authz.Decide(identity.UserID, role, targetID, action) != authz.Allow {
		return nil, "", ErrForbidden
	}
	return identity, role, nil
}

// Authenticate is middleware that resolves the request credential and stores
// the identity in the context. Missing or invalid credentials return 401.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestID(r.Context())

		identity, err := g.Identify(r)
		if err != nil {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid credential", requestID)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require returns middleware that looks up the caller's stored role and
// evaluates the policy for the given action. It must run after Authenticate.
func (g *Gate) Require(action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid credential", requestID)
				return
			}

			role, err := g.Role(r.Context(), identity)
			if err != nil {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Cannot verify user role", requestID)
				return
			}

			if authz.Decide(identity.UserID, role, uuid.Nil, action) != authz.Allow {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient privileges", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

// GetRole retrieves the resolved role from the request context.
func GetRole(ctx context.Context) (authz.Role, bool) {
	role, ok := ctx.Value(roleKey).(authz.Role)
	return role, ok
}
