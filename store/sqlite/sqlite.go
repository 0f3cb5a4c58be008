/*
Package sqlite provides a SQLite-backed implementation of coldstore.Store.

PURPOSE:
  Persists the raw inward/outward ledger the billing engine reads. Numeric
  and date columns are TEXT on purpose: the ledger is hand-entered and the
  engine, not the database, decides how to treat junk values.

KEY TABLES:
  inward_lots:    one row per (customer, lot_number)
  outward_events: dispatches against a lot, many per lot

INDEXES:
  - idx_inward_customer_date: per-customer listing (hot path for bills)
  - idx_outward_customer_lot: per-lot dispatch lookup

CONCURRENCY:
  Uses sync.RWMutex around the handle. ":memory:" databases are pinned to a
  single connection, otherwise every pooled connection would see its own
  empty database.

USAGE:
  store, err := sqlite.New("./data/coldstore.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := coldstore.NewBillingService(store, log, 4)

SEE ALSO:
  - coldstore/store.go: interface definitions
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/coldstore-billing/coldstore"
	"github.com/warp/coldstore-billing/generic"
)

// Store implements coldstore.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Inward lots (received goods)
	CREATE TABLE IF NOT EXISTS inward_lots (
		customer TEXT NOT NULL,
		lot_number TEXT NOT NULL,
		received_date TEXT NOT NULL,
		item TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL DEFAULT '',
		storage_rate TEXT NOT NULL DEFAULT '',
		labour_rate TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (customer, lot_number)
	);

	CREATE INDEX IF NOT EXISTS idx_inward_customer_date
		ON inward_lots(customer, received_date);

	-- Outward events (dispatches, many per lot)
	CREATE TABLE IF NOT EXISTS outward_events (
		id TEXT PRIMARY KEY,
		customer TEXT NOT NULL,
		lot_number TEXT NOT NULL,
		dispatch_date TEXT NOT NULL,
		quantity TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outward_customer_lot
		ON outward_events(customer, lot_number, dispatch_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INWARD LOTS
// =============================================================================

// SaveInward inserts or replaces a lot.
func (s *Store) SaveInward(ctx context.Context, rec coldstore.InwardRecord) error {
	if rec.Customer == "" || rec.LotNumber == "" {
		return fmt.Errorf("%w: customer and lot number are required", generic.ErrInvalidRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO inward_lots
		(customer, lot_number, received_date, item, quantity, storage_rate, labour_rate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(customer, lot_number) DO UPDATE SET
			received_date = excluded.received_date,
			item = excluded.item,
			quantity = excluded.quantity,
			storage_rate = excluded.storage_rate,
			labour_rate = excluded.labour_rate,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		rec.Customer, rec.LotNumber, rec.ReceivedDate, rec.Item,
		rec.Quantity, rec.StorageRate, rec.LabourRate, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save inward lot: %w", err)
	}
	return nil
}

// ListInwardLots returns lots ordered by receipt date and lot number.
func (s *Store) ListInwardLots(ctx context.Context, customer string) ([]coldstore.InwardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT customer, lot_number, received_date, item, quantity, storage_rate, labour_rate
		FROM inward_lots
	`
	var args []any
	if customer != "" {
		query += " WHERE customer = ?"
		args = append(args, customer)
	}
	query += " ORDER BY received_date ASC, lot_number ASC, customer ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inward lots: %w", err)
	}
	defer rows.Close()

	var lots []coldstore.InwardRecord
	for rows.Next() {
		var r coldstore.InwardRecord
		if err := rows.Scan(&r.Customer, &r.LotNumber, &r.ReceivedDate, &r.Item,
			&r.Quantity, &r.StorageRate, &r.LabourRate); err != nil {
			return nil, fmt.Errorf("failed to scan inward lot: %w", err)
		}
		lots = append(lots, r)
	}
	return lots, rows.Err()
}

// ListCustomers returns the distinct customers with inward lots.
func (s *Store) ListCustomers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT customer FROM inward_lots ORDER BY customer",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// =============================================================================
// OUTWARD EVENTS
// =============================================================================

// SaveOutward inserts a dispatch, assigning an ID when missing.
func (s *Store) SaveOutward(ctx context.Context, rec coldstore.OutwardRecord) (coldstore.OutwardRecord, error) {
	if rec.Customer == "" || rec.LotNumber == "" {
		return rec, fmt.Errorf("%w: customer and lot number are required", generic.ErrInvalidRecord)
	}
	if rec.ID == "" {
		rec.ID = generic.NewRecordID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO outward_events (id, customer, lot_number, dispatch_date, quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.Customer, rec.LotNumber, rec.DispatchDate, rec.Quantity,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return rec, fmt.Errorf("%w: duplicate dispatch id %s", generic.ErrInvalidRecord, rec.ID)
		}
		return rec, fmt.Errorf("failed to save outward event: %w", err)
	}
	return rec, nil
}

// ListOutwardEvents returns dispatches ordered by dispatch date.
func (s *Store) ListOutwardEvents(ctx context.Context, customer, lotNumber string) ([]coldstore.OutwardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, customer, lot_number, dispatch_date, quantity
		FROM outward_events
	`
	var (
		where []string
		args  []any
	)
	if customer != "" {
		where = append(where, "customer = ?")
		args = append(args, customer)
	}
	if lotNumber != "" {
		where = append(where, "lot_number = ?")
		args = append(args, lotNumber)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY dispatch_date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outward events: %w", err)
	}
	defer rows.Close()

	var events []coldstore.OutwardRecord
	for rows.Next() {
		var r coldstore.OutwardRecord
		if err := rows.Scan(&r.ID, &r.Customer, &r.LotNumber, &r.DispatchDate, &r.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan outward event: %w", err)
		}
		events = append(events, r)
	}
	return events, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"outward_events", "inward_lots"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
