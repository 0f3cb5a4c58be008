package coldstore

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/coldstore-billing/generic"
)

// =============================================================================
// NORMALIZATION - Raw records to engine inputs
// =============================================================================

// NormalizeInward converts a stored record into an InwardLot. Bad quantities
// and rates become zero and are reported as issues. ok is false when the
// receipt date is unusable; such a lot yields no periods and no labour.
func NormalizeInward(rec InwardRecord) (lot InwardLot, issues []Issue, ok bool) {
	lot = InwardLot{
		LotNumber: rec.LotNumber,
		Customer:  rec.Customer,
		Item:      rec.Item,
	}

	qty, qok := generic.ParseQuantity(rec.Quantity)
	if !qok {
		issues = append(issues, recordIssue(IssueInvalidQuantity, rec.Customer, rec.LotNumber, "quantity", rec.Quantity))
	}
	lot.Quantity = qty

	lot.StorageRate = parseRateField(rec, "storage_rate", rec.StorageRate, &issues)
	lot.LabourRate = parseRateField(rec, "labour_rate", rec.LabourRate, &issues)

	received, err := generic.ParseDate(rec.ReceivedDate)
	if err != nil {
		issues = append(issues, recordIssue(IssueInvalidDate, rec.Customer, rec.LotNumber, "received_date", rec.ReceivedDate))
		return lot, issues, false
	}
	lot.ReceivedDate = received
	return lot, issues, true
}

func parseRateField(rec InwardRecord, field, value string, issues *[]Issue) decimal.Decimal {
	rate, ok := generic.ParseRate(value)
	if !ok {
		*issues = append(*issues, recordIssue(IssueInvalidRate, rec.Customer, rec.LotNumber, field, value))
	}
	return rate
}

// NormalizeOutward converts a stored dispatch. ok is false when the dispatch
// date is unusable; the event is then left out of period generation.
func NormalizeOutward(rec OutwardRecord) (ev OutwardEvent, issues []Issue, ok bool) {
	ev = OutwardEvent{
		LotNumber: rec.LotNumber,
		Customer:  rec.Customer,
	}

	qty, qok := generic.ParseQuantity(rec.Quantity)
	if !qok {
		issues = append(issues, recordIssue(IssueInvalidQuantity, rec.Customer, rec.LotNumber, "dispatch_quantity", rec.Quantity))
	}
	ev.Quantity = qty

	dispatched, err := generic.ParseDate(rec.DispatchDate)
	if err != nil {
		issues = append(issues, recordIssue(IssueInvalidDate, rec.Customer, rec.LotNumber, "dispatch_date", rec.DispatchDate))
		return ev, issues, false
	}
	ev.DispatchDate = dispatched
	return ev, issues, true
}

func recordIssue(kind IssueKind, customer, lot, field, value string) Issue {
	return Issue{
		Kind:      kind,
		Customer:  customer,
		LotNumber: lot,
		Detail:    fmt.Sprintf("%s: %q", field, value),
	}
}

// lotKey identifies a lot; lot numbers are unique per customer only.
type lotKey struct {
	Customer  string
	LotNumber string
}

// normalizedLot pairs a lot with its usable events. normalizeAll keeps the
// source order of lots.
type normalizedLot struct {
	Lot    InwardLot
	Events []OutwardEvent
	Usable bool
}

func normalizeAll(inward []InwardRecord, outward []OutwardRecord) ([]normalizedLot, []Issue) {
	var issues []Issue

	events := make(map[lotKey][]OutwardEvent)
	for _, rec := range outward {
		ev, evIssues, ok := NormalizeOutward(rec)
		issues = append(issues, evIssues...)
		if ok {
			k := lotKey{ev.Customer, ev.LotNumber}
			events[k] = append(events[k], ev)
		}
	}

	lots := make([]normalizedLot, 0, len(inward))
	for _, rec := range inward {
		lot, lotIssues, ok := NormalizeInward(rec)
		issues = append(issues, lotIssues...)
		lots = append(lots, normalizedLot{
			Lot:    lot,
			Events: events[lotKey{lot.Customer, lot.LotNumber}],
			Usable: ok,
		})
	}
	return lots, issues
}
