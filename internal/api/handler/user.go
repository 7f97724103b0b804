package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labelproof/labelproof/internal/api/middleware"
	"github.com/labelproof/labelproof/internal/api/response"
	"github.com/labelproof/labelproof/internal/api/validation"
	"github.com/labelproof/labelproof/internal/audit"
	"github.com/labelproof/labelproof/internal/auth"
	"github.com/labelproof/labelproof/internal/authz"
	"github.com/labelproof/labelproof/internal/profile"
)

// Executor performs already-authorized privileged mutations under the
// elevated service credential.
type Executor interface {
	SetPassword(ctx context.Context, targetID uuid.UUID, newPassword string) error
	DeleteAccount(ctx context.Context, targetID uuid.UUID) error
	CreateUser(ctx context.Context, email, password string, p *profile.Profile) (*auth.Account, error)
}

type createUserRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	EmployeeID *string `json:"employeeId"`
	Position   *string `json:"position"`
	Department *string `json:"department"`
}

type updateUserRequest struct {
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	EmployeeID *string `json:"employeeId"`
	Position   *string `json:"position"`
	Department *string `json:"department"`
}

type setPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	EmployeeID *string `json:"employeeId,omitempty"`
	Position   *string `json:"position,omitempty"`
	Department *string `json:"department,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

// UserHandler handles user management endpoints. Every privileged mutation
// goes through the gate before the executor is touched.
type UserHandler struct {
	gate     *middleware.Gate
	exec     Executor
	profiles profile.Repository
	audit    *audit.Recorder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(gate *middleware.Gate, exec Executor, profiles profile.Repository, recorder *audit.Recorder) *UserHandler {
	return &UserHandler{
		gate:     gate,
		exec:     exec,
		profiles: profiles,
		audit:    recorder,
	}
}

// List handles GET /users. Route-gated to the moderator tier.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	items := make([]userResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, toUserResponse(&profiles[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /users. Route-gated to the moderator tier.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	name := strings.TrimSpace(req.Name)
	if taken, err := h.nameTaken(r.Context(), name, uuid.Nil); err != nil {
		slog.Error("failed to check name uniqueness", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", requestID)
		return
	} else if taken {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "name", Message: "name is already in use"}}, requestID)
		return
	}

	role := authz.RoleUser
	if req.Role != "" {
		role, _ = authz.ParseRole(req.Role) // already validated
	}

	p := &profile.Profile{
		Name:       name,
		Role:       role,
		EmployeeID: req.EmployeeID,
		Position:   req.Position,
		Department: req.Department,
	}

	identity := middleware.GetIdentity(r.Context())

	if _, err := h.exec.CreateUser(r.Context(), req.Email, req.Password, p); err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
				[]validation.FieldError{{Field: "email", Message: "email is already registered"}}, requestID)
			return
		}
		slog.Error("failed to create user", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionCreateUser,
		map[string]any{"userId": p.ID.String(), "name": p.Name, "role": string(p.Role)}, r.RemoteAddr)

	response.Success(w, http.StatusCreated, toUserResponse(p), requestID)
}

// Update handles PUT /users/{id}: a privileged profile edit. Body validation
// runs before the credential check to match the external contract; the role
// field is applied only after the policy allows the edit.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateUserRequest(validation.UpdateUserRequest{
		Name: req.Name,
		Role: req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	identity, _, err := h.gate.Authorize(r, id, authz.ActionUpdateProfile)
	if err != nil {
		writeGateError(w, err, requestID)
		return
	}

	p, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to get user", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
		return
	}

	name := strings.TrimSpace(req.Name)
	if taken, err := h.nameTaken(r.Context(), name, id); err != nil {
		slog.Error("failed to check name uniqueness", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
		return
	} else if taken {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "name", Message: "name is already in use"}}, requestID)
		return
	}

	p.Name = name
	if req.Role != "" {
		p.Role, _ = authz.ParseRole(req.Role) // already validated
	}
	p.EmployeeID = req.EmployeeID
	p.Position = req.Position
	p.Department = req.Department

	if err := h.profiles.Update(r.Context(), p); err != nil {
		slog.Error("failed to update user", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionUpdateUser,
		map[string]any{"userId": id.String(), "name": p.Name, "role": string(p.Role)}, r.RemoteAddr)

	response.Success(w, http.StatusOK, toUserResponse(p), requestID)
}

// SetPassword handles PUT /users/{id}/password. Allowed for the account owner
// or a moderator-tier caller; the check order is validation, identity, role,
// policy, and only then the privileged mutation.
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req setPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidatePassword("newPassword", req.NewPassword); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	identity, _, err := h.gate.Authorize(r, id, authz.ActionSetPassword)
	if err != nil {
		writeGateError(w, err, requestID)
		return
	}

	if err := h.exec.SetPassword(r.Context(), id, req.NewPassword); err != nil {
		slog.Error("failed to set password", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionSetPassword,
		map[string]any{"userId": id.String(), "self": identity.UserID == id}, r.RemoteAddr)

	data := map[string]any{"message": "Password updated successfully"}
	if p, err := h.profiles.GetByID(r.Context(), id); err == nil {
		data["user"] = toUserResponse(p)
	}
	response.Success(w, http.StatusOK, data, requestID)
}

// Delete handles DELETE /users/{id}. Moderator tier only; removes the
// identity and the profile, tolerating a profile that a cascading delete
// already removed.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	identity, _, err := h.gate.Authorize(r, id, authz.ActionDeleteAccount)
	if err != nil {
		writeGateError(w, err, requestID)
		return
	}

	if err := h.exec.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to delete user", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), requestID)
		return
	}

	h.audit.Record(r.Context(), identity.UserID, audit.ActionDeleteUser,
		map[string]any{"userId": id.String()}, r.RemoteAddr)

	response.Success(w, http.StatusOK, map[string]any{"message": "User deleted successfully"}, requestID)
}

// nameTaken reports whether another profile already uses the display name.
func (h *UserHandler) nameTaken(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	existing, err := h.profiles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}

func toUserResponse(p *profile.Profile) userResponse {
	return userResponse{
		ID:         p.ID.String(),
		Email:      p.Email,
		Name:       p.Name,
		Role:       string(p.Role),
		EmployeeID: p.EmployeeID,
		Position:   p.Position,
		Department: p.Department,
		CreatedAt:  p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// writeGateError maps gate failures onto the response contract: identity
// failures are 401, role and policy failures are 403.
func writeGateError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, auth.ErrUnauthenticated) {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid credential", requestID)
		return
	}
	response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient privileges", requestID)
}
