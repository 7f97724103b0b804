package product

import "time"

// Product represents a row in the fgcodes table: a finished-goods code with
// its shelf-life rule. ShelfLife is a human-entered string such as "6 months"
// or "30 day"; the order package parses it when computing expiry dates.
type Product struct {
	Code      string
	Name      string
	ShelfLife string
	CreatedAt time.Time
}
