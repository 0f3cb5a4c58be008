/*
periods.go - Storage period generation for one lot

ALGORITHM:
  remaining = lot quantity, k = 0
  while remaining > 0 and period(k).Start <= asOf:
    period(k) = [received + k months, received + k+1 months), clamped
    dispatches in (Start, End] (first period: [Start, End])
    emit {QuantityBefore: remaining, Amount: remaining * rate, ...}
    remaining = max(remaining - dispatched, 0)
    k++

STATES (per lot):
  ACCUMULATING -> DEPLETED  remaining reached 0
  ACCUMULATING -> CURRENT   next period starts after asOf, stock remains

  The last period emitted in CURRENT is the ongoing one (Ongoing=true when
  it ends after asOf). Nothing is emitted once DEPLETED.

EDGE CASES:
  - Quantity 0 (or unparseable, normalized to 0): no periods.
  - Over-withdrawal: QuantityAfter clamps to 0; the excess is reported in
    Schedule.Overdrawn for data-quality alerting.
  - Month overflow: Jan 31 -> Feb 28 -> Mar 31 (each boundary is computed
    from the receipt date, never from a clamped end).
*/
package coldstore

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/coldstore-billing/generic"
)

// PeriodState is the generator state of a lot.
type PeriodState string

const (
	StateAccumulating PeriodState = "accumulating"
	StateDepleted     PeriodState = "depleted"
	StateCurrent      PeriodState = "current"
)

// Schedule is the full period-generation result for one lot.
type Schedule struct {
	Lot     InwardLot
	Periods []StoragePeriod
	State   PeriodState

	// Overdrawn is the quantity dispatched beyond what remained.
	Overdrawn int64
}

// Remaining is the quantity still in storage after the last period.
func (s Schedule) Remaining() int64 {
	if len(s.Periods) == 0 {
		if s.State == StateDepleted {
			return 0
		}
		return s.Lot.Quantity
	}
	return s.Periods[len(s.Periods)-1].QuantityAfter
}

// Billed is the total storage amount over all periods.
func (s Schedule) Billed() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Periods {
		total = total.Add(p.Amount)
	}
	return total
}

// GeneratePeriods returns the storage periods of lot, oldest first.
func GeneratePeriods(lot InwardLot, events []OutwardEvent, asOf generic.TimePoint) []StoragePeriod {
	return GenerateSchedule(lot, events, asOf).Periods
}

// GenerateSchedule runs the period generator for lot. Events with another
// lot number are ignored. The result depends only on the arguments.
func GenerateSchedule(lot InwardLot, events []OutwardEvent, asOf generic.TimePoint) Schedule {
	g := newPeriodGenerator(lot, events, asOf)
	for g.step() {
	}
	return Schedule{
		Lot:       lot,
		Periods:   g.periods,
		State:     g.state,
		Overdrawn: g.overdrawn,
	}
}

// =============================================================================
// GENERATOR STATE MACHINE
// =============================================================================

type periodGenerator struct {
	lot    InwardLot
	events []OutwardEvent // this lot only, by dispatch date
	asOf   generic.TimePoint

	state     PeriodState
	index     int
	remaining int64
	overdrawn int64
	periods   []StoragePeriod
}

func newPeriodGenerator(lot InwardLot, events []OutwardEvent, asOf generic.TimePoint) *periodGenerator {
	own := make([]OutwardEvent, 0, len(events))
	for _, ev := range events {
		if ev.LotNumber == lot.LotNumber {
			own = append(own, ev)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		return own[i].DispatchDate.Before(own[j].DispatchDate)
	})

	g := &periodGenerator{
		lot:       lot,
		events:    own,
		asOf:      asOf,
		state:     StateAccumulating,
		remaining: lot.Quantity,
	}
	if g.remaining <= 0 {
		g.remaining = 0
		g.state = StateDepleted
	}
	return g
}

// step emits the next period. It returns false once a terminal state is
// reached.
func (g *periodGenerator) step() bool {
	if g.state != StateAccumulating {
		return false
	}

	period := generic.MonthlyPeriod(g.lot.ReceivedDate, g.index)
	if period.Start.After(g.asOf) {
		g.state = StateCurrent
		return false
	}

	first := g.index == 0
	var (
		details    []DispatchDetail
		dispatched int64
	)
	for _, ev := range g.events {
		if !period.ContainsDispatch(ev.DispatchDate, first) {
			continue
		}
		details = append(details, DispatchDetail{
			Date:     ev.DispatchDate.ShortString(),
			Quantity: ev.Quantity,
		})
		dispatched += ev.Quantity
	}

	after := g.remaining - dispatched
	if after < 0 {
		g.overdrawn += -after
		after = 0
	}

	g.periods = append(g.periods, StoragePeriod{
		LotNumber:      g.lot.LotNumber,
		Item:           g.lot.Item,
		Index:          g.index,
		Period:         period,
		Dispatches:     details,
		Dispatched:     dispatched,
		QuantityBefore: g.remaining,
		QuantityAfter:  after,
		Rate:           g.lot.StorageRate,
		Amount:         decimal.NewFromInt(g.remaining).Mul(g.lot.StorageRate),
		Ongoing:        period.End.After(g.asOf),
	})

	g.remaining = after
	g.index++
	if g.remaining == 0 {
		g.state = StateDepleted
		return false
	}
	return true
}
