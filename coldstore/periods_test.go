package coldstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/coldstore-billing/coldstore"
)

// =============================================================================
// BASIC GENERATION
// =============================================================================

func TestGeneratePeriods_SinglePeriodNoWithdrawal(t *testing.T) {
	// GIVEN: 100 units at 25 per unit, nothing dispatched
	// WHEN: Billing part way through the first period
	// THEN: One ongoing period of 2500
	lot := testLot("L1", day(2026, time.January, 1), 100, "25", "0")

	sched := coldstore.GenerateSchedule(lot, nil, day(2026, time.January, 20))

	require.Len(t, sched.Periods, 1)
	p := sched.Periods[0]
	assert.Equal(t, int64(100), p.QuantityBefore)
	assert.Equal(t, int64(100), p.QuantityAfter)
	assertDecimal(t, "2500", p.Amount)
	assert.True(t, p.Ongoing)
	assert.Equal(t, coldstore.StateCurrent, sched.State)
	assert.Equal(t, int64(100), sched.Remaining())
}

func TestGeneratePeriods_DepletionAcrossPeriods(t *testing.T) {
	// GIVEN: 100 units drawn down over three months
	// WHEN: Generating well after depletion
	// THEN: Quantities fall monotonically and dispatches sum to the lot
	lot := testLot("L1", day(2025, time.October, 10), 100, "10", "0")
	events := []coldstore.OutwardEvent{
		out("L1", day(2025, time.October, 20), 30),
		out("L1", day(2025, time.November, 15), 20),
		out("L1", day(2025, time.December, 10), 50),
	}

	sched := coldstore.GenerateSchedule(lot, events, day(2026, time.June, 1))

	require.Len(t, sched.Periods, 2)
	assert.Equal(t, coldstore.StateDepleted, sched.State)

	var dispatched int64
	for i, p := range sched.Periods {
		assert.Equal(t, i, p.Index)
		assert.LessOrEqual(t, p.QuantityAfter, p.QuantityBefore)
		assert.GreaterOrEqual(t, p.QuantityAfter, int64(0))
		assert.False(t, p.Ongoing)
		if i > 0 {
			assert.Equal(t, sched.Periods[i-1].QuantityAfter, p.QuantityBefore)
			assert.True(t, sched.Periods[i-1].Period.End.Equal(p.Period.Start), "periods are contiguous")
		}
		dispatched += p.Dispatched
	}
	assert.Equal(t, lot.Quantity, dispatched)

	assert.Equal(t, int64(70), sched.Periods[0].QuantityAfter)
	assert.Equal(t, []coldstore.DispatchDetail{
		{Date: "15.11.25", Quantity: 20},
		{Date: "10.12.25", Quantity: 50},
	}, sched.Periods[1].Dispatches)
	assertDecimal(t, "1700", sched.Billed())
}

func TestGeneratePeriods_DispatchOnBoundaryBelongsToEndingPeriod(t *testing.T) {
	// GIVEN: A dispatch exactly on the first period's end date
	// WHEN: Generating periods
	// THEN: It counts in the first period only
	lot := testLot("L1", day(2026, time.January, 16), 50, "10", "0")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.February, 16), 20)}

	periods := coldstore.GeneratePeriods(lot, events, day(2026, time.March, 20))

	require.Len(t, periods, 3)
	assert.Equal(t, int64(20), periods[0].Dispatched)
	assert.Equal(t, int64(0), periods[1].Dispatched)
	assert.Equal(t, int64(30), periods[1].QuantityBefore)
}

func TestGeneratePeriods_DispatchOnReceiptDay(t *testing.T) {
	lot := testLot("L1", day(2026, time.January, 16), 50, "10", "0")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.January, 16), 50)}

	sched := coldstore.GenerateSchedule(lot, events, day(2026, time.March, 1))

	require.Len(t, sched.Periods, 1)
	assert.Equal(t, int64(50), sched.Periods[0].Dispatched)
	assert.Equal(t, coldstore.StateDepleted, sched.State)
}

func TestGeneratePeriods_EndOfMonthReceipt(t *testing.T) {
	// GIVEN: A lot received on Jan 31
	// WHEN: Generating three periods
	// THEN: Boundaries clamp in February and return to the 31st in March
	lot := testLot("L1", day(2026, time.January, 31), 10, "1", "0")

	periods := coldstore.GeneratePeriods(lot, nil, day(2026, time.April, 15))

	require.Len(t, periods, 3)
	assert.Equal(t, "31.01.26 - 28.02.26", periods[0].Period.String())
	assert.Equal(t, "28.02.26 - 31.03.26", periods[1].Period.String())
	assert.Equal(t, "31.03.26 - 30.04.26", periods[2].Period.String())
	assert.True(t, periods[2].Ongoing)
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestGeneratePeriods_ZeroQuantity(t *testing.T) {
	lot := testLot("L1", day(2026, time.January, 16), 0, "10", "5")

	sched := coldstore.GenerateSchedule(lot, nil, day(2026, time.June, 1))

	assert.Empty(t, sched.Periods)
	assert.Equal(t, coldstore.StateDepleted, sched.State)
	assert.Zero(t, sched.Remaining())
}

func TestGeneratePeriods_OverWithdrawalClampsToZero(t *testing.T) {
	// GIVEN: 10 units with 15 dispatched
	// WHEN: Generating periods
	// THEN: QuantityAfter is 0, never negative, and the excess is reported
	lot := testLot("L1", day(2026, time.January, 16), 10, "10", "0")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.January, 20), 15)}

	sched := coldstore.GenerateSchedule(lot, events, day(2026, time.June, 1))

	require.Len(t, sched.Periods, 1)
	assert.Equal(t, int64(0), sched.Periods[0].QuantityAfter)
	assert.Equal(t, int64(5), sched.Overdrawn)
	assert.Equal(t, coldstore.StateDepleted, sched.State)
}

func TestGeneratePeriods_AsOfBeforeReceipt(t *testing.T) {
	lot := testLot("L1", day(2026, time.March, 1), 10, "10", "0")

	sched := coldstore.GenerateSchedule(lot, nil, day(2026, time.February, 1))

	assert.Empty(t, sched.Periods)
	assert.Equal(t, coldstore.StateCurrent, sched.State)
	assert.Equal(t, int64(10), sched.Remaining())
}

func TestGeneratePeriods_IgnoresOtherLots(t *testing.T) {
	lot := testLot("L1", day(2026, time.January, 16), 10, "10", "0")
	events := []coldstore.OutwardEvent{out("L2", day(2026, time.January, 20), 10)}

	periods := coldstore.GeneratePeriods(lot, events, day(2026, time.January, 25))

	require.Len(t, periods, 1)
	assert.Zero(t, periods[0].Dispatched)
}

func TestGeneratePeriods_UnsortedEvents(t *testing.T) {
	lot := testLot("L1", day(2026, time.January, 16), 10, "10", "0")
	events := []coldstore.OutwardEvent{
		out("L1", day(2026, time.January, 30), 3),
		out("L1", day(2026, time.January, 18), 2),
	}

	periods := coldstore.GeneratePeriods(lot, events, day(2026, time.January, 31))

	require.Len(t, periods, 1)
	require.Len(t, periods[0].Dispatches, 2)
	assert.Equal(t, "18.01.26", periods[0].Dispatches[0].Date)
	last, ok := periods[0].LastDispatch()
	require.True(t, ok)
	assert.Equal(t, "30.01.26", last.Date)
}

func TestGeneratePeriods_Idempotent(t *testing.T) {
	lot := testLot("L1", day(2025, time.October, 10), 100, "10", "0")
	events := []coldstore.OutwardEvent{
		out("L1", day(2025, time.October, 20), 30),
		out("L1", day(2025, time.December, 1), 20),
	}
	asOf := day(2026, time.February, 1)

	first := coldstore.GeneratePeriods(lot, events, asOf)
	second := coldstore.GeneratePeriods(lot, events, asOf)

	assert.Equal(t, first, second)
}
