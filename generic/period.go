package generic

// =============================================================================
// PERIOD - Half-open storage interval
// =============================================================================

// Period is the storage interval [Start, End).
//
// Storage periods are anchored on the receipt date: period k runs from
// AddMonthsClamped(anchor, k) to AddMonthsClamped(anchor, k+1). End is
// therefore always the next period's Start, and a clamped month end
// (Jan 31 -> Feb 28) is never carried forward as the next anchor.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthlyPeriod returns the k-th monthly period anchored on anchor.
//
// For anchors on the 29th to 31st this differs from chaining "+1 month"
// off each previous start: Jan 31 gives Feb 28 then Mar 31 here, where a
// chain would give Feb 28 then Mar 28.
func MonthlyPeriod(anchor TimePoint, k int) Period {
	return Period{
		Start: AddMonthsClamped(anchor, k),
		End:   AddMonthsClamped(anchor, k+1),
	}
}

// Contains reports whether t is in [Start, End).
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.Before(p.End)
}

// ContainsDispatch reports whether a dispatch on t belongs to this period:
// (Start, End], or [Start, End] when first is set.
func (p Period) ContainsDispatch(t TimePoint, first bool) bool {
	if t.After(p.End) {
		return false
	}
	if first {
		return t.AfterOrEqual(p.Start)
	}
	return t.After(p.Start)
}

// String returns a DD.MM.YY range.
func (p Period) String() string {
	return p.Start.ShortString() + " - " + p.End.ShortString()
}
