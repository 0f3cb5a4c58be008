package coldstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/coldstore-billing/coldstore"
)

func issueKinds(issues []coldstore.Issue) map[coldstore.IssueKind]int {
	kinds := make(map[coldstore.IssueKind]int)
	for _, i := range issues {
		kinds[i.Kind]++
	}
	return kinds
}

func TestNormalizeInward_DirtyNumbersBecomeZero(t *testing.T) {
	rec := coldstore.InwardRecord{
		LotNumber:    "L1",
		Customer:     "acme",
		ReceivedDate: "2026-01-16",
		Item:         "potato",
		Quantity:     "eighty",
		StorageRate:  "10",
		LabourRate:   "n/a",
	}

	lot, issues, ok := coldstore.NormalizeInward(rec)

	require.True(t, ok)
	assert.Zero(t, lot.Quantity)
	assert.True(t, lot.LabourRate.IsZero())
	assertDecimal(t, "10", lot.StorageRate)
	assert.Equal(t, map[coldstore.IssueKind]int{
		coldstore.IssueInvalidQuantity: 1,
		coldstore.IssueInvalidRate:     1,
	}, issueKinds(issues))
}

func TestNormalizeInward_BadDateIsUnusable(t *testing.T) {
	rec := coldstore.InwardRecord{
		LotNumber:    "L1",
		Customer:     "acme",
		ReceivedDate: "16/01/2026",
		Quantity:     "10",
		StorageRate:  "1",
		LabourRate:   "1",
	}

	_, issues, ok := coldstore.NormalizeInward(rec)

	assert.False(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, coldstore.IssueInvalidDate, issues[0].Kind)
	assert.Contains(t, issues[0].Detail, "received_date")
}

func TestNormalizeOutward(t *testing.T) {
	ev, issues, ok := coldstore.NormalizeOutward(coldstore.OutwardRecord{
		ID: "o1", LotNumber: "L1", Customer: "acme", DispatchDate: "2026-01-18", Quantity: "80.0",
	})
	require.True(t, ok)
	assert.Empty(t, issues)
	assert.Equal(t, int64(80), ev.Quantity)
	assert.Equal(t, "18.01.26", ev.DispatchDate.ShortString())

	_, _, ok = coldstore.NormalizeOutward(coldstore.OutwardRecord{
		ID: "o2", LotNumber: "L1", Customer: "acme", DispatchDate: "", Quantity: "5",
	})
	assert.False(t, ok)
}

func TestCheckLedger(t *testing.T) {
	// GIVEN: A ledger with an over-drawn lot, an orphan dispatch and a
	//        dispatch with junk quantity
	// WHEN: Checking it
	// THEN: Each problem is reported once
	inward := []coldstore.InwardRecord{
		{LotNumber: "L1", Customer: "acme", ReceivedDate: "2026-01-16", Quantity: "10", StorageRate: "1", LabourRate: "1"},
		{LotNumber: "L2", Customer: "acme", ReceivedDate: "2026-01-20", Quantity: "10", StorageRate: "1", LabourRate: "1"},
	}
	outward := []coldstore.OutwardRecord{
		{ID: "o1", LotNumber: "L1", Customer: "acme", DispatchDate: "2026-01-18", Quantity: "8"},
		{ID: "o2", LotNumber: "L1", Customer: "acme", DispatchDate: "2026-01-25", Quantity: "7"},
		{ID: "o3", LotNumber: "L2", Customer: "acme", DispatchDate: "2026-01-25", Quantity: "??"},
		{ID: "o4", LotNumber: "L9", Customer: "acme", DispatchDate: "2026-01-25", Quantity: "1"},
	}

	issues := coldstore.CheckLedger(inward, outward)

	assert.Equal(t, map[coldstore.IssueKind]int{
		coldstore.IssueOverWithdrawal:  1,
		coldstore.IssueInvalidQuantity: 1,
		coldstore.IssueOrphanDispatch:  1,
	}, issueKinds(issues))

	for _, i := range issues {
		switch i.Kind {
		case coldstore.IssueOverWithdrawal:
			assert.Equal(t, "L1", i.LotNumber)
			assert.Contains(t, i.Detail, "dispatched 15 of 10")
		case coldstore.IssueOrphanDispatch:
			assert.Equal(t, "L9", i.LotNumber)
		}
	}
}

func TestCheckLedger_DispatchBeforeReceipt(t *testing.T) {
	// GIVEN: A lot received 16.01.26 whose only dispatch is dated 10.01.26
	// WHEN: Checking the ledger
	// THEN: The early dispatch is flagged, since no period would count it
	inward := []coldstore.InwardRecord{
		{LotNumber: "L1", Customer: "acme", ReceivedDate: "2026-01-16", Quantity: "80", StorageRate: "10", LabourRate: "0"},
	}
	outward := []coldstore.OutwardRecord{
		{ID: "o1", LotNumber: "L1", Customer: "acme", DispatchDate: "2026-01-10", Quantity: "80"},
	}

	issues := coldstore.CheckLedger(inward, outward)

	require.Len(t, issues, 1)
	assert.Equal(t, coldstore.IssueDispatchBeforeReceipt, issues[0].Kind)
	assert.Equal(t, "L1", issues[0].LotNumber)
	assert.Equal(t, "dispatch of 80 on 10.01.26 precedes receipt on 16.01.26", issues[0].Detail)
}

func TestCheckLedger_DispatchOnReceiptDayIsFine(t *testing.T) {
	inward := []coldstore.InwardRecord{
		{LotNumber: "L1", Customer: "acme", ReceivedDate: "2026-01-16", Quantity: "80", StorageRate: "10", LabourRate: "0"},
	}
	outward := []coldstore.OutwardRecord{
		{ID: "o1", LotNumber: "L1", Customer: "acme", DispatchDate: "2026-01-16", Quantity: "80"},
	}

	assert.Empty(t, coldstore.CheckLedger(inward, outward))
}

func TestCheckLedger_LotNumbersScopedByCustomer(t *testing.T) {
	// GIVEN: Two customers using the same lot number
	// WHEN: Checking a combined ledger
	// THEN: Dispatches are matched to their own customer's lot
	inward := []coldstore.InwardRecord{
		{LotNumber: "L1", Customer: "acme", ReceivedDate: "2026-01-16", Quantity: "10", StorageRate: "1", LabourRate: "1"},
		{LotNumber: "L1", Customer: "globex", ReceivedDate: "2026-01-16", Quantity: "10", StorageRate: "1", LabourRate: "1"},
	}
	outward := []coldstore.OutwardRecord{
		{ID: "o1", LotNumber: "L1", Customer: "acme", DispatchDate: "2026-01-18", Quantity: "10"},
		{ID: "o2", LotNumber: "L1", Customer: "globex", DispatchDate: "2026-01-18", Quantity: "10"},
	}

	assert.Empty(t, coldstore.CheckLedger(inward, outward))
}
