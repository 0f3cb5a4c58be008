package coldstore

import (
	"fmt"
	"sort"
)

// =============================================================================
// DATA QUALITY - Issues the engine tolerates but the biller should see
// =============================================================================

// IssueKind classifies a data-quality issue.
type IssueKind string

const (
	IssueInvalidQuantity IssueKind = "invalid_quantity"
	IssueInvalidRate     IssueKind = "invalid_rate"
	IssueInvalidDate     IssueKind = "invalid_date"
	IssueOverWithdrawal  IssueKind = "over_withdrawal"
	IssueOrphanDispatch  IssueKind = "orphan_dispatch"
	// A dispatch dated before its lot's receipt falls in no period, so the
	// lot keeps billing at its full quantity.
	IssueDispatchBeforeReceipt IssueKind = "dispatch_before_receipt"
)

// Issue is one data-quality finding.
type Issue struct {
	Kind      IssueKind
	Customer  string
	LotNumber string
	Detail    string
}

// CheckLedger inspects a customer's raw records. It reports normalization
// problems, lots dispatched beyond their received quantity, dispatches dated
// before receipt and dispatches against unknown lot numbers.
func CheckLedger(inward []InwardRecord, outward []OutwardRecord) []Issue {
	lots, issues := normalizeAll(inward, outward)

	known := make(map[lotKey]bool, len(lots))
	for _, nl := range lots {
		known[lotKey{nl.Lot.Customer, nl.Lot.LotNumber}] = true

		var dispatched int64
		for _, ev := range nl.Events {
			dispatched += ev.Quantity
			if nl.Usable && ev.DispatchDate.Before(nl.Lot.ReceivedDate) {
				issues = append(issues, Issue{
					Kind:      IssueDispatchBeforeReceipt,
					Customer:  nl.Lot.Customer,
					LotNumber: nl.Lot.LotNumber,
					Detail: fmt.Sprintf("dispatch of %d on %s precedes receipt on %s",
						ev.Quantity, ev.DispatchDate.ShortString(), nl.Lot.ReceivedDate.ShortString()),
				})
			}
		}
		if dispatched > nl.Lot.Quantity {
			issues = append(issues, Issue{
				Kind:      IssueOverWithdrawal,
				Customer:  nl.Lot.Customer,
				LotNumber: nl.Lot.LotNumber,
				Detail:    fmt.Sprintf("dispatched %d of %d received", dispatched, nl.Lot.Quantity),
			})
		}
	}

	for _, rec := range outward {
		if !known[lotKey{rec.Customer, rec.LotNumber}] {
			issues = append(issues, Issue{
				Kind:      IssueOrphanDispatch,
				Customer:  rec.Customer,
				LotNumber: rec.LotNumber,
				Detail:    fmt.Sprintf("dispatch %s on %s has no inward lot", rec.ID, rec.DispatchDate),
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].LotNumber < issues[j].LotNumber
	})
	return issues
}
