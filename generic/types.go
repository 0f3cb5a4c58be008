/*
Package generic provides the domain-agnostic primitives of the billing engine.

PURPOSE:
  Calendar dates, month arithmetic, billing-month labels and lenient number
  parsing. Nothing here knows about lots, dispatches or invoices; the
  coldstore package builds the ledger and billing rules on top.

KEY CONCEPTS:
  - TimePoint: a calendar day (time.go)
  - Period: a half-open storage interval anchored on a receipt date (period.go)
  - Month labels: "March 2026" keys compared for equality across call sites
  - Lenient parsing: dirty ledger numbers become zero instead of failing

DESIGN PRINCIPLES:
  1. Precision: money uses decimal.Decimal, never float64
  2. Purity: every helper returns new values, nothing is mutated in place
  3. Degrade, don't fail: bad numbers parse to zero and are reported separately

SEE ALSO:
  - coldstore/periods.go: period generation
  - coldstore/bucket.go: billing-month bucketing
*/
package generic

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseQuantity parses an integer quantity. Missing, non-numeric or negative
// input yields 0 and ok=false.
func ParseQuantity(s string) (qty int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Ledgers sometimes carry "80.0"; accept whole decimals.
		d, derr := decimal.NewFromString(s)
		if derr != nil || !d.Equal(d.Truncate(0)) {
			return 0, false
		}
		n = d.IntPart()
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}

// ParseRate parses a currency-per-unit rate. Invalid or negative input yields
// decimal.Zero and ok=false.
func ParseRate(s string) (rate decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// MustParseDecimal parses s or returns zero. Intended for constants and tests.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
