package order

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// CalculateExpiry computes an expiry date from a production date and a
// shelf-life string. The string is either a bare number, read as months, or
// "N <unit>" where the unit contains day/วัน, month/mon/เดือน or
// year/yr/ปี. Unknown units fall back to months.
func CalculateExpiry(productionDate time.Time, shelfLife string) (time.Time, error) {
	if productionDate.IsZero() {
		return time.Time{}, errors.New("production date is required")
	}

	s := strings.TrimSpace(shelfLife)
	if s == "" {
		return time.Time{}, errors.New("shelf life is empty")
	}

	valueStr, unit, hasUnit := strings.Cut(s, " ")
	n, err := strconv.Atoi(valueStr)
	if err != nil || n <= 0 {
		return time.Time{}, errors.New("shelf life must start with a positive number")
	}
	if !hasUnit {
		return productionDate.AddDate(0, n, 0), nil
	}

	unit = strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.Contains(unit, "day") || strings.Contains(unit, "วัน"):
		return productionDate.AddDate(0, 0, n), nil
	case strings.Contains(unit, "mon") || strings.Contains(unit, "เดือน"):
		return productionDate.AddDate(0, n, 0), nil
	case strings.Contains(unit, "year") || strings.Contains(unit, "yr") || strings.Contains(unit, "ปี"):
		return productionDate.AddDate(n, 0, 0), nil
	default:
		return productionDate.AddDate(0, n, 0), nil
	}
}
