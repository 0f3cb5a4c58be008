package coldstore_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/coldstore-billing/coldstore"
	"github.com/warp/coldstore-billing/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func day(year int, month time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(year, month, d)
}

func dec(s string) decimal.Decimal {
	return generic.MustParseDecimal(s)
}

func testLot(number string, received generic.TimePoint, qty int64, storageRate, labourRate string) coldstore.InwardLot {
	return coldstore.InwardLot{
		LotNumber:    number,
		Customer:     "acme",
		ReceivedDate: received,
		Item:         "potato",
		Quantity:     qty,
		StorageRate:  dec(storageRate),
		LabourRate:   dec(labourRate),
	}
}

func out(number string, date generic.TimePoint, qty int64) coldstore.OutwardEvent {
	return coldstore.OutwardEvent{
		LotNumber:    number,
		Customer:     "acme",
		DispatchDate: date,
		Quantity:     qty,
	}
}

// assertDecimal compares amounts numerically.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// assertBillsEqual compares two bills month by month and line by line.
func assertBillsEqual(t *testing.T, want, got coldstore.Bill) {
	t.Helper()
	require.Equal(t, want.Months(), got.Months())

	for _, month := range want.Months() {
		we, ge := want[month], got[month]
		assert.True(t, we.Total.Equal(ge.Total), "%s total: want %s, got %s", month, we.Total, ge.Total)
		require.Len(t, ge.Lines, len(we.Lines), month)

		for i := range we.Lines {
			wl, gl := we.Lines[i], ge.Lines[i]
			assert.Equal(t, wl.LotNumber, gl.LotNumber, month)
			assert.Equal(t, wl.DateRange, gl.DateRange, month)
			assert.Equal(t, wl.Quantity, gl.Quantity, month)
			assert.Equal(t, wl.EarlyDepletion, gl.EarlyDepletion, month)
			assert.True(t, wl.StorageAmount.Equal(gl.StorageAmount), "%s %s storage", month, wl.LotNumber)
			assert.True(t, wl.LabourAmount.Equal(gl.LabourAmount), "%s %s labour", month, wl.LotNumber)
		}
	}
}
