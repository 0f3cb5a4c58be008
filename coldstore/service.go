/*
service.go - Billing orchestration over a Source

PURPOSE:
  Loads raw records, normalizes them and runs the pure engine. This is the
  only place that does I/O or spawns goroutines.

CONCURRENCY:
  - CustomerBill: one task per lot. Each task folds its own Accumulator
    (periods, then labour); results are merged in lot order.
  - MonthSearch: one task per customer, bounded by Workers.
  Both use errgroup.SetLimit and stop on the first error or on ctx
  cancellation.

SEE ALSO:
  - periods.go, bucket.go, aggregate.go: the engine
  - api/handlers.go: HTTP surface
*/
package coldstore

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/warp/coldstore-billing/generic"
	"github.com/warp/coldstore-billing/pkg/logger"
)

// DefaultWorkers bounds fan-out when none is configured.
const DefaultWorkers = 4

// BillingService computes bills from a Source.
type BillingService struct {
	Source  Source
	Log     *logger.Logger
	Workers int
}

// NewBillingService creates a service. A nil log discards output and a
// non-positive workers uses DefaultWorkers.
func NewBillingService(src Source, log *logger.Logger, workers int) *BillingService {
	if log == nil {
		log = logger.Nop()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &BillingService{
		Source:  src,
		Log:     log.WithComponent("billing"),
		Workers: workers,
	}
}

// =============================================================================
// CUSTOMER AND LOT BILLS
// =============================================================================

// CustomerBill returns the month-keyed bill of every lot of customer.
func (s *BillingService) CustomerBill(ctx context.Context, customer string, asOf generic.TimePoint) (Bill, error) {
	lots, err := s.load(ctx, customer, "")
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, fmt.Errorf("%w: %s", generic.ErrCustomerNotFound, customer)
	}

	accs := make([]*Accumulator, len(lots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for i, nl := range lots {
		i, nl := i, nl
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			accs[i] = lotAccumulator(nl, asOf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	acc := NewAccumulator()
	for _, a := range accs {
		acc.Merge(a)
	}
	bill := acc.Bill()

	s.Log.Debugw("customer bill computed",
		"customer", customer,
		"lots", len(lots),
		"months", len(bill),
		"as_of", asOf.String(),
	)
	return bill, nil
}

// LotSchedule returns the period schedule of one lot.
func (s *BillingService) LotSchedule(ctx context.Context, customer, lotNumber string, asOf generic.TimePoint) (Schedule, error) {
	nl, err := s.findLot(ctx, customer, lotNumber)
	if err != nil {
		return Schedule{}, err
	}
	if !nl.Usable {
		return Schedule{Lot: nl.Lot, State: StateDepleted}, nil
	}
	return GenerateSchedule(nl.Lot, nl.Events, asOf), nil
}

// LotBill is the single-lot drill-down of CustomerBill.
func (s *BillingService) LotBill(ctx context.Context, customer, lotNumber string, asOf generic.TimePoint) (Bill, error) {
	nl, err := s.findLot(ctx, customer, lotNumber)
	if err != nil {
		return nil, err
	}
	return lotAccumulator(nl, asOf).Bill(), nil
}

// lotAccumulator buckets one lot's periods and then its labour charge, so
// the labour lands in the month of the lot's first storage line.
func lotAccumulator(nl normalizedLot, asOf generic.TimePoint) *Accumulator {
	acc := NewAccumulator()
	if !nl.Usable {
		return acc
	}
	for _, p := range GeneratePeriods(nl.Lot, nl.Events, asOf) {
		acc.AddPeriod(p)
	}
	if labour := LabourChargeFor(nl.Lot); !labour.Amount.IsZero() {
		acc.AddLabour(labour)
	}
	return acc
}

// =============================================================================
// MONTH SEARCH
// =============================================================================

// MonthSearch totals month ("March 2026") across every customer. The label
// is matched case-insensitively and reported in its canonical form.
func (s *BillingService) MonthSearch(ctx context.Context, month string, asOf generic.TimePoint) (MonthSummary, error) {
	tp, err := generic.ParseMonthLabel(month)
	if err != nil {
		return MonthSummary{}, err
	}
	month = tp.MonthLabel()

	customers, err := s.Source.ListCustomers(ctx)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("failed to list customers: %w", err)
	}

	bills := make([]Bill, len(customers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for i, customer := range customers {
		i, customer := i, customer
		g.Go(func() error {
			bill, err := s.CustomerBill(gctx, customer, asOf)
			if errors.Is(err, generic.ErrCustomerNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("customer %s: %w", customer, err)
			}
			bills[i] = bill
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MonthSummary{}, err
	}

	byCustomer := make(map[string]Bill, len(customers))
	for i, customer := range customers {
		if bills[i] != nil {
			byCustomer[customer] = bills[i]
		}
	}
	summary := SumMonth(month, byCustomer)

	s.Log.Infow("month search",
		"month", month,
		"customers_scanned", len(customers),
		"customers_billed", len(summary.Customers),
		"total", summary.Total.String(),
	)
	return summary, nil
}

// =============================================================================
// DATA QUALITY
// =============================================================================

// DataQuality reports ledger issues of customer.
func (s *BillingService) DataQuality(ctx context.Context, customer string) ([]Issue, error) {
	inward, err := s.Source.ListInwardLots(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("failed to list inward lots: %w", err)
	}
	outward, err := s.Source.ListOutwardEvents(ctx, customer, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list outward events: %w", err)
	}
	if len(inward) == 0 && len(outward) == 0 {
		return nil, fmt.Errorf("%w: %s", generic.ErrCustomerNotFound, customer)
	}
	return CheckLedger(inward, outward), nil
}

// =============================================================================
// LOADING
// =============================================================================

func (s *BillingService) load(ctx context.Context, customer, lotNumber string) ([]normalizedLot, error) {
	inward, err := s.Source.ListInwardLots(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("failed to list inward lots: %w", err)
	}
	if lotNumber != "" {
		filtered := inward[:0:0]
		for _, rec := range inward {
			if rec.LotNumber == lotNumber {
				filtered = append(filtered, rec)
			}
		}
		inward = filtered
	}

	outward, err := s.Source.ListOutwardEvents(ctx, customer, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list outward events: %w", err)
	}

	lots, issues := normalizeAll(inward, outward)
	if len(issues) > 0 {
		s.Log.Warnw("ledger data-quality issues",
			"customer", customer,
			"lot", lotNumber,
			"count", len(issues),
		)
	}
	return lots, nil
}

func (s *BillingService) findLot(ctx context.Context, customer, lotNumber string) (normalizedLot, error) {
	lots, err := s.load(ctx, customer, lotNumber)
	if err != nil {
		return normalizedLot{}, err
	}
	if len(lots) == 0 {
		return normalizedLot{}, fmt.Errorf("%w: %s/%s", generic.ErrLotNotFound, customer, lotNumber)
	}
	return lots[0], nil
}
