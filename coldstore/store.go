/*
store.go - Persistence interfaces consumed by the billing service

PURPOSE:
  The engine never owns storage. The CRUD layer persists raw inward and
  outward records; the service reads them through Source and normalizes.

KEY INTERFACES:
  Source: read side used for billing (lots, dispatches, customers)
  Store:  Source plus the thin ingest writes used by the API

IMPLEMENTATIONS:
  - store/sqlite: SQLite
  - store/memory: in-memory for tests and local runs

Empty filter arguments mean "all".
*/
package coldstore

import "context"

// Source lists raw ledger records.
type Source interface {
	// ListInwardLots returns inward records, ordered by receipt date then lot
	// number. An empty customer lists every customer.
	ListInwardLots(ctx context.Context, customer string) ([]InwardRecord, error)

	// ListOutwardEvents returns outward records, ordered by dispatch date.
	// Empty customer or lotNumber widens the filter.
	ListOutwardEvents(ctx context.Context, customer, lotNumber string) ([]OutwardRecord, error)

	// ListCustomers returns the distinct customers with inward lots, sorted.
	ListCustomers(ctx context.Context) ([]string, error)
}

// Store extends Source with ingest.
type Store interface {
	Source

	// SaveInward inserts or replaces the lot keyed by (customer, lot number).
	SaveInward(ctx context.Context, rec InwardRecord) error

	// SaveOutward inserts a dispatch. An empty ID is assigned by the store.
	SaveOutward(ctx context.Context, rec OutwardRecord) (OutwardRecord, error)
}
