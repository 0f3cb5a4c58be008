/*
Package coldstore implements the storage ledger and billing-month allocation
engine for a cold-storage warehouse.

PURPOSE:
  Given a lot of goods received on a date (inward) and partial withdrawals
  against it (outward), compute ~1 month storage periods, the quantity
  billed in each, and re-bucket the amounts into calendar billing months
  together with the lot's one-time labour charge.

LAYERS:
  1. Period generator (periods.go): lot + dispatches -> []StoragePeriod
  2. Billing bucketer (bucket.go): periods + labour -> Bill keyed by month
  3. Month aggregation (aggregate.go): bills of all customers -> month total

The engine is pure: no I/O, no clock reads (asOf is always passed in), no
shared state. BillingService (service.go) is the only part that talks to a
Source and fans work out over goroutines.

RECORDS vs LOTS:
  Persistence hands back raw text records (InwardRecord, OutwardRecord).
  normalize.go turns them into typed InwardLot/OutwardEvent values, mapping
  dirty numbers to zero and reporting an Issue instead of failing.

SEE ALSO:
  - generic/time.go: month arithmetic and label formats
  - store/sqlite: persistence of raw records
*/
package coldstore

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/coldstore-billing/generic"
)

// =============================================================================
// RAW RECORDS - As persisted by the CRUD layer
// =============================================================================

// InwardRecord is a received lot exactly as stored. Numeric fields are text
// because the ledger is hand-entered and may contain junk.
type InwardRecord struct {
	LotNumber    string
	Customer     string
	ReceivedDate string // YYYY-MM-DD
	Item         string
	Quantity     string
	StorageRate  string
	LabourRate   string
}

// OutwardRecord is a dispatch against a lot exactly as stored.
type OutwardRecord struct {
	ID           string
	LotNumber    string
	Customer     string
	DispatchDate string // YYYY-MM-DD
	Quantity     string
}

// =============================================================================
// LOTS AND EVENTS - Normalized engine inputs
// =============================================================================

// InwardLot is one received batch of goods.
type InwardLot struct {
	LotNumber    string
	Customer     string
	ReceivedDate generic.TimePoint
	Item         string
	Quantity     int64
	StorageRate  decimal.Decimal // per unit per period
	LabourRate   decimal.Decimal // per unit, charged once
}

// OutwardEvent is a withdrawal of Quantity units from a lot.
type OutwardEvent struct {
	LotNumber    string
	Customer     string
	DispatchDate generic.TimePoint
	Quantity     int64
}

// =============================================================================
// STORAGE PERIOD - Period generator output
// =============================================================================

// DispatchDetail is one withdrawal inside a period. Date is DD.MM.YY.
type DispatchDetail struct {
	Date     string
	Quantity int64
}

// StoragePeriod is one billed storage interval of a lot.
type StoragePeriod struct {
	LotNumber string
	Item      string
	Index     int // 0 for the first period of the lot
	Period    generic.Period

	Dispatches     []DispatchDetail
	Dispatched     int64
	QuantityBefore int64 // billed quantity
	QuantityAfter  int64 // carried into the next period, never negative

	Rate   decimal.Decimal
	Amount decimal.Decimal // QuantityBefore * Rate

	// Ongoing marks the CURRENT period: it ends after the as-of date.
	Ongoing bool
}

// LastDispatch returns the latest dispatch detail, if any.
func (p StoragePeriod) LastDispatch() (DispatchDetail, bool) {
	if len(p.Dispatches) == 0 {
		return DispatchDetail{}, false
	}
	return p.Dispatches[len(p.Dispatches)-1], true
}

// =============================================================================
// LABOUR CHARGE
// =============================================================================

// LabourCharge is the one-time handling charge of a lot.
type LabourCharge struct {
	LotNumber string
	Item      string
	Quantity  int64
	Rate      decimal.Decimal
	Amount    decimal.Decimal

	// FallbackMonth is used when the lot produced no storage line.
	FallbackMonth string
}

// =============================================================================
// BILL - Billing bucketer output
// =============================================================================

// BillLine is one lot's contribution to a billing month.
type BillLine struct {
	LotNumber     string
	Item          string
	DateRange     string
	Quantity      int64
	Rate          decimal.Decimal
	StorageAmount decimal.Decimal
	LabourAmount  decimal.Decimal

	// EarlyDepletion marks a line pulled back one month because the lot was
	// emptied before its nominal storage month began.
	EarlyDepletion bool

	hasStorage bool
}

// Sum is the storage plus labour amount of the line.
func (l *BillLine) Sum() decimal.Decimal {
	return l.StorageAmount.Add(l.LabourAmount)
}

// BillEntry aggregates all lines of one billing month.
type BillEntry struct {
	Month string
	Lines []*BillLine
	Total decimal.Decimal
}

// line returns the first line of lotNumber, or nil.
func (e *BillEntry) line(lotNumber string) *BillLine {
	for _, l := range e.Lines {
		if l.LotNumber == lotNumber {
			return l
		}
	}
	return nil
}

// Bill maps billing-month labels to entries.
type Bill map[string]*BillEntry

// Months returns the bill's month labels in chronological order.
func (b Bill) Months() []string {
	months := make([]string, 0, len(b))
	for m := range b {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return generic.CompareMonthLabels(months[i], months[j]) < 0
	})
	return months
}

// Entries returns the bill's entries in chronological order.
func (b Bill) Entries() []*BillEntry {
	months := b.Months()
	entries := make([]*BillEntry, len(months))
	for i, m := range months {
		entries[i] = b[m]
	}
	return entries
}

// Total is the sum over all months.
func (b Bill) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range b {
		total = total.Add(e.Total)
	}
	return total
}
