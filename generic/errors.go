/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Contract violations - invalid month labels reaching month arithmetic
  2. Input errors - unparseable dates or records from callers
  3. Lookup errors - missing customers or lots

Dirty ledger data (bad quantities, over-withdrawal) is NOT an error: the
engine degrades to zero and the issue is reported as a data-quality alert.

SEE ALSO:
  - time.go: MustParseMonthLabel panics with InvalidMonthLabelError
  - coldstore/quality.go: data-quality alerts
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidMonthLabel is returned (or panicked) for a billing-month key
	// that does not match MonthLabelLayout.
	ErrInvalidMonthLabel = errors.New("invalid month label")

	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRecord is returned when an ingest record misses required fields.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrLotNotFound is returned when a lot number is unknown for a customer.
	ErrLotNotFound = errors.New("lot not found")

	// ErrCustomerNotFound is returned when a customer has no inward lots.
	ErrCustomerNotFound = errors.New("customer not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidMonthLabelError carries the offending label.
type InvalidMonthLabelError struct {
	Label string
}

func (e *InvalidMonthLabelError) Error() string {
	return fmt.Sprintf("invalid month label %q (want e.g. %q)", e.Label, "March 2026")
}

func (e *InvalidMonthLabelError) Unwrap() error {
	return ErrInvalidMonthLabel
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMonthLabel) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidRecord)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLotNotFound) ||
		errors.Is(err, ErrCustomerNotFound)
}
