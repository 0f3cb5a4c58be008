// Package memory provides an in-memory coldstore.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/coldstore-billing/coldstore"
	"github.com/warp/coldstore-billing/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu      sync.RWMutex
	inward  map[key]coldstore.InwardRecord
	outward []coldstore.OutwardRecord
	ids     map[string]bool
}

type key struct {
	Customer  string
	LotNumber string
}

func New() *Store {
	return &Store{
		inward: make(map[key]coldstore.InwardRecord),
		ids:    make(map[string]bool),
	}
}

// SaveInward inserts or replaces a lot.
func (m *Store) SaveInward(_ context.Context, rec coldstore.InwardRecord) error {
	if rec.Customer == "" || rec.LotNumber == "" {
		return fmt.Errorf("%w: customer and lot number are required", generic.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inward[key{rec.Customer, rec.LotNumber}] = rec
	return nil
}

// SaveOutward appends a dispatch. IDs are unique.
func (m *Store) SaveOutward(_ context.Context, rec coldstore.OutwardRecord) (coldstore.OutwardRecord, error) {
	if rec.Customer == "" || rec.LotNumber == "" {
		return rec, fmt.Errorf("%w: customer and lot number are required", generic.ErrInvalidRecord)
	}
	if rec.ID == "" {
		rec.ID = generic.NewRecordID()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids[rec.ID] {
		return rec, fmt.Errorf("%w: duplicate dispatch id %s", generic.ErrInvalidRecord, rec.ID)
	}
	m.ids[rec.ID] = true
	m.outward = append(m.outward, rec)
	return rec, nil
}

func (m *Store) ListInwardLots(_ context.Context, customer string) ([]coldstore.InwardRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []coldstore.InwardRecord
	for _, rec := range m.inward {
		if customer == "" || rec.Customer == customer {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ReceivedDate != result[j].ReceivedDate {
			return result[i].ReceivedDate < result[j].ReceivedDate
		}
		if result[i].LotNumber != result[j].LotNumber {
			return result[i].LotNumber < result[j].LotNumber
		}
		return result[i].Customer < result[j].Customer
	})
	return result, nil
}

func (m *Store) ListOutwardEvents(_ context.Context, customer, lotNumber string) ([]coldstore.OutwardRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []coldstore.OutwardRecord
	for _, rec := range m.outward {
		if customer != "" && rec.Customer != customer {
			continue
		}
		if lotNumber != "" && rec.LotNumber != lotNumber {
			continue
		}
		result = append(result, rec)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DispatchDate < result[j].DispatchDate
	})
	return result, nil
}

func (m *Store) ListCustomers(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var customers []string
	for k := range m.inward {
		if !seen[k.Customer] {
			seen[k.Customer] = true
			customers = append(customers, k.Customer)
		}
	}
	sort.Strings(customers)
	return customers, nil
}

// Reset clears all data.
func (m *Store) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inward = make(map[key]coldstore.InwardRecord)
	m.outward = nil
	m.ids = make(map[string]bool)
	return nil
}
