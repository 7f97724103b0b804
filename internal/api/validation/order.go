package validation

import (
	"strings"
	"time"
)

// DateFormat is the wire format for date-only fields.
const DateFormat = "2006-01-02"

// CreateOrderRequest mirrors the fields needed for create order validation.
type CreateOrderRequest struct {
	ProductCode    string
	LotNumber      string
	ProductionDate string
	Quantity       int
}

// ValidateCreateOrderRequest validates the fields of a create order request.
func ValidateCreateOrderRequest(req CreateOrderRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.ProductCode) == "" {
		errs = append(errs, FieldError{Field: "productCode", Message: "productCode is required"})
	}
	if strings.TrimSpace(req.LotNumber) == "" {
		errs = append(errs, FieldError{Field: "lotNumber", Message: "lotNumber is required"})
	}
	if req.ProductionDate == "" {
		errs = append(errs, FieldError{Field: "productionDate", Message: "productionDate is required"})
	} else if _, err := time.Parse(DateFormat, req.ProductionDate); err != nil {
		errs = append(errs, FieldError{Field: "productionDate", Message: "productionDate must be formatted YYYY-MM-DD"})
	}
	if req.Quantity < 1 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be at least 1"})
	}

	return errs
}
