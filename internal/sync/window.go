package sync

import "time"

// Window is an inclusive range of calendar days to process.
type Window struct {
	Since time.Time
	Until time.Time
}

// ComputeWindow derives the processing window from the latest existing
// timesheet date and the current wall clock: the day after the last entry
// through yesterday, both inclusive. Both inputs are normalized to midnight
// before the arithmetic so partial days cannot shift the bounds. Only now's
// calendar date matters; both bounds are anchored in the last entry's
// location so they stay comparable as instants.
func ComputeWindow(lastEntry, now time.Time) Window {
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, lastEntry.Location()).AddDate(0, 0, -1)

	return Window{
		Since: midnight(lastEntry).AddDate(0, 0, 1),
		Until: yesterday,
	}
}

// Empty reports whether the window contains no days. An empty window means
// the transfer stage is a no-op; reconciliation and archival still run.
func (w Window) Empty() bool {
	return w.Since.After(w.Until)
}

// Days returns the window's days in ascending order.
func (w Window) Days() []time.Time {
	var days []time.Time
	for day := w.Since; !day.After(w.Until); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
