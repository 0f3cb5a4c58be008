package coldstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/coldstore-billing/coldstore"
	"github.com/warp/coldstore-billing/generic"
)

func billFor(lot coldstore.InwardLot, events []coldstore.OutwardEvent, asOf generic.TimePoint) coldstore.Bill {
	periods := coldstore.GeneratePeriods(lot, events, asOf)
	return coldstore.BucketByBillingMonth(periods, []coldstore.LabourCharge{coldstore.LabourChargeFor(lot)})
}

// =============================================================================
// DUE MONTH
// =============================================================================

func TestBucket_EarlyDepletionPullsBack(t *testing.T) {
	// GIVEN: 80 units received 16 Jan 2026, all out on 18 Jan
	// WHEN: Bucketing
	// THEN: The line moves from March to February 2026 with a NIL range
	lot := testLot("L1", day(2026, time.January, 16), 80, "10", "2")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.January, 18), 80)}

	bill := billFor(lot, events, day(2026, time.April, 1))

	require.Equal(t, []string{"February 2026"}, bill.Months())
	entry := bill["February 2026"]
	require.Len(t, entry.Lines, 1)

	line := entry.Lines[0]
	assert.Equal(t, "16.01.26 - NIL", line.DateRange)
	assert.True(t, line.EarlyDepletion)
	assertDecimal(t, "800", line.StorageAmount)
	assertDecimal(t, "160", line.LabourAmount, "labour shares the storage line")
	assertDecimal(t, "960", entry.Total)
}

func TestBucket_NoPullBackWhenDepletedInsideEndMonth(t *testing.T) {
	// GIVEN: 50 units received 16 Dec 2025, all out on 6 Jan 2026
	// WHEN: Bucketing
	// THEN: The default month (February 2026) is kept
	lot := testLot("L1", day(2025, time.December, 16), 50, "10", "0")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.January, 6), 50)}

	bill := billFor(lot, events, day(2026, time.April, 1))

	require.Equal(t, []string{"February 2026"}, bill.Months())
	line := bill["February 2026"].Lines[0]
	assert.Equal(t, "16.12.25 - 16.01.26", line.DateRange)
	assert.False(t, line.EarlyDepletion)
}

func TestDueMonth_OnlyExactZeroTriggersPullBack(t *testing.T) {
	lot := testLot("L1", day(2026, time.January, 16), 80, "10", "0")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.January, 18), 79)}

	periods := coldstore.GeneratePeriods(lot, events, day(2026, time.January, 31))
	require.Len(t, periods, 1)

	month, pulledBack := coldstore.DueMonth(periods[0])
	assert.Equal(t, "March 2026", month)
	assert.False(t, pulledBack)
}

func TestDueMonth_MalformedDispatchDateSkipsPullBack(t *testing.T) {
	p := coldstore.StoragePeriod{
		LotNumber:      "L1",
		Period:         generic.MonthlyPeriod(day(2026, time.January, 16), 0),
		Dispatches:     []coldstore.DispatchDetail{{Date: "18/01/2026", Quantity: 80}},
		QuantityBefore: 80,
		QuantityAfter:  0,
	}

	month, pulledBack := coldstore.DueMonth(p)

	assert.Equal(t, "March 2026", month)
	assert.False(t, pulledBack)
}

// =============================================================================
// LABOUR PLACEMENT
// =============================================================================

func TestBucket_LabourGoesToFirstStorageMonth(t *testing.T) {
	// GIVEN: A lot stored for three periods
	// WHEN: Bucketing
	// THEN: Storage lands in March, April and May; labour only in March
	lot := testLot("L1", day(2026, time.January, 16), 100, "10", "3")

	bill := billFor(lot, nil, day(2026, time.March, 20))

	require.Equal(t, []string{"March 2026", "April 2026", "May 2026"}, bill.Months())
	assertDecimal(t, "300", bill["March 2026"].Lines[0].LabourAmount)
	assertDecimal(t, "1300", bill["March 2026"].Total)
	assert.True(t, bill["April 2026"].Lines[0].LabourAmount.IsZero())
	assertDecimal(t, "3300", bill.Total())
}

func TestBucket_LabourFallbackWithoutPeriods(t *testing.T) {
	// GIVEN: A labour charge for a lot with no storage line
	// WHEN: Bucketing
	// THEN: It lands in the fallback month on its own line
	charge := coldstore.LabourCharge{
		LotNumber:     "L9",
		Item:          "onion",
		Quantity:      10,
		Rate:          dec("3"),
		Amount:        dec("30"),
		FallbackMonth: day(2026, time.January, 16).MonthLabel(),
	}

	bill := coldstore.BucketByBillingMonth(nil, []coldstore.LabourCharge{charge})

	require.Equal(t, []string{"January 2026"}, bill.Months())
	line := bill["January 2026"].Lines[0]
	assert.Empty(t, line.DateRange)
	assert.True(t, line.StorageAmount.IsZero())
	assertDecimal(t, "30", line.LabourAmount)
}

func TestLabourChargeFor_FallbackIsReceivedPlusOneMonth(t *testing.T) {
	lot := testLot("L1", day(2026, time.January, 31), 10, "1", "4")

	c := coldstore.LabourChargeFor(lot)

	assert.Equal(t, "February 2026", c.FallbackMonth)
	assertDecimal(t, "40", c.Amount)
}

func TestAccumulator_LabourBeforeStorageSharesLine(t *testing.T) {
	// GIVEN: Labour folded before the lot's (pulled-back) storage period
	// WHEN: The storage period lands in the same month
	// THEN: It fills the labour-only line instead of adding a second one
	lot := testLot("L1", day(2026, time.January, 16), 80, "10", "2")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.January, 18), 80)}
	periods := coldstore.GeneratePeriods(lot, events, day(2026, time.April, 1))

	acc := coldstore.NewAccumulator()
	acc.AddLabour(coldstore.LabourChargeFor(lot))
	for _, p := range periods {
		acc.AddPeriod(p)
	}
	bill := acc.Bill()

	require.Len(t, bill["February 2026"].Lines, 1)
	line := bill["February 2026"].Lines[0]
	assertDecimal(t, "800", line.StorageAmount)
	assertDecimal(t, "160", line.LabourAmount)
}

func TestBucket_TwoPeriodsSameMonthKeepSeparateLines(t *testing.T) {
	// GIVEN: Period 2 emptied before its end month began, pulling it back
	//        into the month period 1 is already billed in
	// WHEN: Bucketing
	// THEN: March carries two lines for the lot; labour sits on the first
	lot := testLot("L1", day(2026, time.January, 16), 100, "10", "1")
	events := []coldstore.OutwardEvent{out("L1", day(2026, time.February, 20), 100)}

	bill := billFor(lot, events, day(2026, time.June, 1))

	require.Equal(t, []string{"March 2026"}, bill.Months())
	lines := bill["March 2026"].Lines
	require.Len(t, lines, 2)
	assert.Equal(t, "16.01.26 - 16.02.26", lines[0].DateRange)
	assert.Equal(t, "16.02.26 - NIL", lines[1].DateRange)
	assertDecimal(t, "100", lines[0].LabourAmount)
	assert.True(t, lines[1].LabourAmount.IsZero())
	assertDecimal(t, "2100", bill["March 2026"].Total)
}

// =============================================================================
// MERGE
// =============================================================================

func TestAccumulator_MergeMatchesSequentialFold(t *testing.T) {
	// GIVEN: Two lots bucketed one accumulator per lot
	// WHEN: Merging in lot order
	// THEN: The result equals a single sequential fold
	asOf := day(2026, time.May, 1)
	lotA := testLot("A", day(2026, time.January, 16), 80, "10", "2")
	lotB := testLot("B", day(2026, time.January, 20), 40, "5", "1")
	eventsA := []coldstore.OutwardEvent{out("A", day(2026, time.January, 18), 80)}
	eventsB := []coldstore.OutwardEvent{out("B", day(2026, time.March, 1), 10)}

	periodsA := coldstore.GeneratePeriods(lotA, eventsA, asOf)
	periodsB := coldstore.GeneratePeriods(lotB, eventsB, asOf)

	sequential := coldstore.BucketByBillingMonth(
		append(append([]coldstore.StoragePeriod{}, periodsA...), periodsB...),
		[]coldstore.LabourCharge{coldstore.LabourChargeFor(lotA), coldstore.LabourChargeFor(lotB)},
	)

	accA := coldstore.NewAccumulator()
	for _, p := range periodsA {
		accA.AddPeriod(p)
	}
	accA.AddLabour(coldstore.LabourChargeFor(lotA))

	accB := coldstore.NewAccumulator()
	for _, p := range periodsB {
		accB.AddPeriod(p)
	}
	accB.AddLabour(coldstore.LabourChargeFor(lotB))

	merged := coldstore.NewAccumulator()
	merged.Merge(accA)
	merged.Merge(accB)

	assertBillsEqual(t, sequential, merged.Bill())

	month, ok := merged.FirstMonth("B")
	require.True(t, ok)
	assert.Equal(t, "March 2026", month)
}

func TestAccumulator_MergeLabourOnlyIntoStorage(t *testing.T) {
	lot := testLot("L1", day(2026, time.January, 16), 100, "10", "1")
	periods := coldstore.GeneratePeriods(lot, nil, day(2026, time.January, 20))

	storage := coldstore.NewAccumulator()
	storage.AddPeriod(periods[0])

	labour := coldstore.NewAccumulator()
	c := coldstore.LabourChargeFor(lot)
	c.FallbackMonth = "March 2026"
	labour.AddLabour(c)

	storage.Merge(labour)
	bill := storage.Bill()

	require.Len(t, bill["March 2026"].Lines, 1)
	line := bill["March 2026"].Lines[0]
	assertDecimal(t, "1000", line.StorageAmount)
	assertDecimal(t, "100", line.LabourAmount)
	assertDecimal(t, "1100", bill["March 2026"].Total)
}

func TestBill_TotalMatchesLines(t *testing.T) {
	lot := testLot("L1", day(2025, time.October, 10), 100, "7.5", "1.25")
	events := []coldstore.OutwardEvent{
		out("L1", day(2025, time.October, 20), 30),
		out("L1", day(2025, time.December, 1), 20),
	}

	bill := billFor(lot, events, day(2026, time.February, 1))

	for _, e := range bill.Entries() {
		sum := dec("0")
		for _, l := range e.Lines {
			sum = sum.Add(l.Sum())
		}
		assert.True(t, sum.Equal(e.Total), e.Month)
	}
}
