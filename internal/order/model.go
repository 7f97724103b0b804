package order

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a row in the orders table: one label print request.
// ExpiryDate is always computed server-side from the production date and the
// product's shelf-life rule, never accepted from the client.
type Order struct {
	ID             uuid.UUID
	OrderDate      time.Time
	OrderType      string
	LotNumber      string
	ProductCode    string
	ProductName    string
	ShelfLife      string
	ProductionDate time.Time
	ExpiryDate     time.Time
	Quantity       int
	Notes          string
	CreatedBy      string
	CreatedByDept  string
	Verified       bool
	VerifiedBy     *uuid.UUID
	VerifiedAt     *time.Time
	CreatedAt      time.Time
}

// Stats aggregates orders for the statistics screen over one calendar month.
type Stats struct {
	Total        int
	ByDepartment []CountRow
	ByProduct    []CountRow
}

// CountRow is one bar of a statistics breakdown, sorted by count descending.
type CountRow struct {
	Name  string
	Count int
}
