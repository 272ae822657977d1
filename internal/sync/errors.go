package sync

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoPriorEntry is returned when the backend holds no timesheet line to
// anchor the date window. Cold starts are unsupported; an operator must seed
// one entry by hand.
var ErrNoPriorEntry = errors.New("sync: no prior timesheet entry, seed one manually before running")

// UnassignedEntriesError reports time entries with no associated project on
// a given day. The source data is not ready for transfer.
type UnassignedEntriesError struct {
	Date  time.Time
	Count int
}

func (e *UnassignedEntriesError) Error() string {
	return fmt.Sprintf("sync: %d time entries on %s have no associated project",
		e.Count, e.Date.Format("2006-01-02"))
}

// PaginationError reports a day whose report does not fit in a single page.
// Multi-page aggregation is out of scope.
type PaginationError struct {
	Date       time.Time
	TotalCount int
	PerPage    int
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("sync: report for %s has %d entries but pages hold %d, paged reports are not supported",
		e.Date.Format("2006-01-02"), e.TotalCount, e.PerPage)
}

// UnknownProjectError reports a time entry whose project name matches no
// open task. The name is the only join key between the two systems.
type UnknownProjectError struct {
	Name string
}

func (e *UnknownProjectError) Error() string {
	return fmt.Sprintf("sync: time entry project %q matches no open task", e.Name)
}

// IncompleteDayError reports a day whose raw time entries do not account for
// all 86400 seconds. Only raised when the full-day gate is enabled.
type IncompleteDayError struct {
	Date         time.Time
	TotalSeconds int64
}

func (e *IncompleteDayError) Error() string {
	return fmt.Sprintf("sync: time entries on %s total %d seconds, want 86400",
		e.Date.Format("2006-01-02"), e.TotalSeconds)
}
