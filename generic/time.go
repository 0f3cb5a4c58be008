package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Day-granular calendar date
// =============================================================================

// TimePoint is a calendar day at UTC midnight. Storage billing never looks at
// hours, so every constructor normalizes away the clock.
type TimePoint struct {
	Time time.Time
}

const (
	// DateLayout is the storage/API format for dates.
	DateLayout = "2006-01-02"

	// ShortDateLayout is the DD.MM.YY format used for period boundaries and
	// dispatch details.
	ShortDateLayout = "02.01.06"

	// MonthLabelLayout renders billing-month keys ("March 2026"). Every call
	// site that compares labels must go through MonthLabel.
	MonthLabelLayout = "January 2006"
)

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// ParseShortDate parses a DD.MM.YY date as rendered by ShortString.
func ParseShortDate(s string) (TimePoint, error) {
	t, err := time.Parse(ShortDateLayout, strings.TrimSpace(s))
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return FromTime(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string      { return tp.Time.Format(DateLayout) }
func (tp TimePoint) ShortString() string { return tp.Time.Format(ShortDateLayout) }

// MonthLabel returns the billing-month key of the month containing tp.
func (tp TimePoint) MonthLabel() string { return tp.Time.Format(MonthLabelLayout) }

// =============================================================================
// MONTH ARITHMETIC
// =============================================================================

// AddMonthsClamped moves n calendar months and clamps the day to the last day
// of the target month instead of overflowing (Jan 31 + 1 = Feb 28/29).
// It returns a new value and never mutates tp.
func AddMonthsClamped(tp TimePoint, n int) TimePoint {
	first := time.Date(tp.Year(), tp.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := tp.Day()
	if last := DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return NewTimePoint(first.Year(), first.Month(), day)
}

// AddCalendarMonthClamped is AddMonthsClamped(tp, 1).
func AddCalendarMonthClamped(tp TimePoint) TimePoint {
	return AddMonthsClamped(tp, 1)
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, DaysInMonth(year, month))
}

// =============================================================================
// MONTH LABELS
// =============================================================================

// ParseMonthLabel parses a "March 2026" style billing-month key and returns the
// first day of that month.
func ParseMonthLabel(label string) (TimePoint, error) {
	t, err := time.Parse(MonthLabelLayout, label)
	if err != nil {
		return TimePoint{}, &InvalidMonthLabelError{Label: label}
	}
	return FromTime(t), nil
}

// MustParseMonthLabel panics on an invalid label. Labels reaching it are
// produced by MonthLabel, so a failure is a programming error.
func MustParseMonthLabel(label string) TimePoint {
	tp, err := ParseMonthLabel(label)
	if err != nil {
		panic(err)
	}
	return tp
}

// MoveMonthBack returns the label of the month before label.
func MoveMonthBack(label string) string {
	return AddMonthsClamped(MustParseMonthLabel(label), -1).MonthLabel()
}

// MonthLabelFromParam converts a YYYY-MM value into a billing-month label.
func MonthLabelFromParam(s string) (string, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return "", &InvalidMonthLabelError{Label: s}
	}
	return FromTime(t).MonthLabel(), nil
}

// CompareMonthLabels orders two valid labels chronologically.
func CompareMonthLabels(a, b string) int {
	return MustParseMonthLabel(a).Time.Compare(MustParseMonthLabel(b).Time)
}
