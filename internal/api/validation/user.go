package validation

import (
	"strings"

	"github.com/labelproof/labelproof/internal/authz"
)

// MinPasswordLength is a strict boundary: length 7 fails, length 8 passes.
const MinPasswordLength = 8

// CreateUserRequest mirrors the fields needed for create user validation.
type CreateUserRequest struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// ValidateCreateUserRequest validates the fields of a create user request.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	var errs []FieldError

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	errs = append(errs, ValidatePassword("password", req.Password)...)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Role != "" {
		if _, err := authz.ParseRole(req.Role); err != nil {
			errs = append(errs, FieldError{Field: "role", Message: "role must be one of moderator, assistant_moderator, operator, user"})
		}
	}

	return errs
}

// UpdateUserRequest mirrors the fields needed for update user validation.
type UpdateUserRequest struct {
	Name string
	Role string
}

// ValidateUpdateUserRequest validates the fields of an update user request.
func ValidateUpdateUserRequest(req UpdateUserRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Role != "" {
		if _, err := authz.ParseRole(req.Role); err != nil {
			errs = append(errs, FieldError{Field: "role", Message: "role must be one of moderator, assistant_moderator, operator, user"})
		}
	}

	return errs
}

// ValidatePassword checks the password length constraint.
func ValidatePassword(field, password string) []FieldError {
	if password == "" {
		return []FieldError{{Field: field, Message: field + " is required"}}
	}
	if len(password) < MinPasswordLength {
		return []FieldError{{Field: field, Message: "password must be at least 8 characters long"}}
	}
	return nil
}
