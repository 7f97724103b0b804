package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/api/response"
	"github.com/labelproof/labelproof/internal/api/validation"
	"github.com/labelproof/labelproof/internal/audit"
	"github.com/labelproof/labelproof/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userIdentity `json:"user"`
}

type userIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginService is the caller-scoped slice of the auth service used by the
// login endpoint.
type LoginService interface {
	Login(ctx context.Context, email, password string) (*auth.Identity, string, error)
	SessionCookie(token string) *http.Cookie
}

// AuthHandler handles the login endpoint.
type AuthHandler struct {
	service LoginService
	audit   *audit.Recorder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service LoginService, recorder *audit.Recorder) *AuthHandler {
	return &AuthHandler{service: service, audit: recorder}
}

// Login handles POST /auth/login. The audit append is best-effort: its
// failure never affects the login outcome.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "email", Message: "email must be a valid address"}}, requestID)
		return
	}
	if req.Password == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "password", Message: "password is required"}}, requestID)
		return
	}

	identity, token, err := h.service.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", requestID)
			return
		}
		slog.Error("login failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in", requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionLogin,
		map[string]any{"email": identity.Email}, r.RemoteAddr)

	http.SetCookie(w, h.service.SessionCookie(token))
	response.Success(w, http.StatusOK, loginResponse{
		Token: token,
		User:  userIdentity{ID: identity.UserID.String(), Email: identity.Email},
	}, requestID)
}
