package validation

import "strings"

// ProductRequest mirrors the fields needed for product validation.
type ProductRequest struct {
	Code      string
	Name      string
	ShelfLife string
}

// ValidateProductRequest validates the fields of a create/update product request.
func ValidateProductRequest(req ProductRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Code) == "" {
		errs = append(errs, FieldError{Field: "code", Message: "code is required"})
	}
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(req.ShelfLife) == "" {
		errs = append(errs, FieldError{Field: "shelfLife", Message: "shelfLife is required"})
	}

	return errs
}
