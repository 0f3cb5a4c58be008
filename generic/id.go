package generic

import "github.com/google/uuid"

// NewRecordID returns a time-ordered UUIDv7 string for ledger records, so
// IDs sort in insertion order.
func NewRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
