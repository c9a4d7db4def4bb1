package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fixed identifiers for deterministic tests.
var (
	TestOwnerID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	OtherOwnerID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
