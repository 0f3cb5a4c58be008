/*
bucket.go - Billing-month allocation of storage and labour charges

MONTH RULE (storage):
  due = month after the month of the period's End date
  if QuantityAfter == 0 and the last dispatch of the period happened before
  the first day of End's month, the lot was empty before its nominal storage
  month began: due moves back one month and the line's date range is shown
  as "<start> - NIL".

  Example: received 16.01.26, all 80 units out on 18.01.26.
    period [16.01.26, 16.02.26), End month February, 18.01 < 01.02
    default March 2026 -> pulled back to February 2026

MONTH RULE (labour):
  a lot's labour charge goes to the month of the lot's first storage line.
  Lots without storage lines fall back to received date + 1 month.

MERGING:
  One line per lot per month. Labour is added onto the lot's existing line;
  a storage line reuses a labour-only line of the same lot.

The first-month-per-lot map lives in the Accumulator that is threaded
through the fold, so independent accumulators can be built concurrently and
merged afterwards.
*/
package coldstore

import (
	"github.com/shopspring/decimal"
	"github.com/warp/coldstore-billing/generic"
)

// NilRangeMarker replaces the end date of a pulled-back line.
const NilRangeMarker = "NIL"

// LabourChargeFor returns the one-time labour charge of lot.
func LabourChargeFor(lot InwardLot) LabourCharge {
	return LabourCharge{
		LotNumber:     lot.LotNumber,
		Item:          lot.Item,
		Quantity:      lot.Quantity,
		Rate:          lot.LabourRate,
		Amount:        decimal.NewFromInt(lot.Quantity).Mul(lot.LabourRate),
		FallbackMonth: generic.AddCalendarMonthClamped(lot.ReceivedDate).MonthLabel(),
	}
}

// DueMonth returns the billing month of a storage period and whether the
// early depletion pull-back applied. A dispatch detail whose date cannot be
// parsed disables the pull-back check for that period.
func DueMonth(p StoragePeriod) (month string, pulledBack bool) {
	endMonth := generic.StartOfMonth(p.Period.End.Year(), p.Period.End.Month())
	due := generic.AddCalendarMonthClamped(endMonth).MonthLabel()

	if p.QuantityAfter != 0 {
		return due, false
	}
	last, ok := p.LastDispatch()
	if !ok {
		return due, false
	}
	lastDate, err := generic.ParseShortDate(last.Date)
	if err != nil {
		return due, false
	}
	if lastDate.Before(endMonth) {
		return generic.MoveMonthBack(due), true
	}
	return due, false
}

// BucketByBillingMonth folds storage periods, then labour charges, into a
// Bill. Periods must be in generation order per lot.
func BucketByBillingMonth(periods []StoragePeriod, labour []LabourCharge) Bill {
	acc := NewAccumulator()
	for _, p := range periods {
		acc.AddPeriod(p)
	}
	for _, c := range labour {
		acc.AddLabour(c)
	}
	return acc.Bill()
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator is the state of the bucketing fold. It is not safe for
// concurrent use; build one per goroutine and Merge the results.
type Accumulator struct {
	bill       Bill
	firstMonth map[string]string // lot number -> month of its first storage line
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		bill:       make(Bill),
		firstMonth: make(map[string]string),
	}
}

// FirstMonth returns the month of the first storage line of lotNumber.
func (a *Accumulator) FirstMonth(lotNumber string) (string, bool) {
	m, ok := a.firstMonth[lotNumber]
	return m, ok
}

// AddPeriod buckets one storage period.
func (a *Accumulator) AddPeriod(p StoragePeriod) {
	month, pulledBack := DueMonth(p)
	if _, seen := a.firstMonth[p.LotNumber]; !seen {
		a.firstMonth[p.LotNumber] = month
	}

	entry := a.entry(month)
	line := entry.line(p.LotNumber)
	if line == nil || line.hasStorage {
		line = &BillLine{LotNumber: p.LotNumber, Item: p.Item}
		entry.Lines = append(entry.Lines, line)
	}

	line.hasStorage = true
	line.Quantity = p.QuantityBefore
	line.Rate = p.Rate
	line.StorageAmount = p.Amount
	line.EarlyDepletion = pulledBack
	if pulledBack {
		line.DateRange = p.Period.Start.ShortString() + " - " + NilRangeMarker
	} else {
		line.DateRange = p.Period.String()
	}

	entry.Total = entry.Total.Add(p.Amount)
}

// AddLabour buckets a labour charge into the lot's first storage month, or
// its fallback month. A charge with neither is dropped.
func (a *Accumulator) AddLabour(c LabourCharge) {
	month, ok := a.firstMonth[c.LotNumber]
	if !ok {
		month = c.FallbackMonth
	}
	if month == "" {
		return
	}

	entry := a.entry(month)
	line := entry.line(c.LotNumber)
	if line == nil {
		line = &BillLine{
			LotNumber: c.LotNumber,
			Item:      c.Item,
			Quantity:  c.Quantity,
		}
		entry.Lines = append(entry.Lines, line)
	}

	line.LabourAmount = line.LabourAmount.Add(c.Amount)
	entry.Total = entry.Total.Add(c.Amount)
}

// Merge folds other into a. Lines of the same lot in the same month are
// combined when one of them carries no storage charge.
func (a *Accumulator) Merge(other *Accumulator) {
	for lot, month := range other.firstMonth {
		if _, seen := a.firstMonth[lot]; !seen {
			a.firstMonth[lot] = month
		}
	}

	for month, src := range other.bill {
		entry := a.entry(month)
		for _, l := range src.Lines {
			cp := *l
			existing := entry.line(l.LotNumber)
			switch {
			case existing == nil:
				entry.Lines = append(entry.Lines, &cp)
			case !existing.hasStorage:
				cp.LabourAmount = cp.LabourAmount.Add(existing.LabourAmount)
				*existing = cp
			case !cp.hasStorage:
				existing.LabourAmount = existing.LabourAmount.Add(cp.LabourAmount)
			default:
				entry.Lines = append(entry.Lines, &cp)
			}
		}
		entry.Total = entry.Total.Add(src.Total)
	}
}

// Bill returns the accumulated bill. The accumulator keeps ownership of it;
// do not add to the accumulator afterwards.
func (a *Accumulator) Bill() Bill {
	return a.bill
}

func (a *Accumulator) entry(month string) *BillEntry {
	e, ok := a.bill[month]
	if !ok {
		e = &BillEntry{Month: month, Total: decimal.Zero}
		a.bill[month] = e
	}
	return e
}
