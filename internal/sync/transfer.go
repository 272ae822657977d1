package sync

import (
	"context"
	"time"

	"github.com/dmelo/timeclerk/internal/backend"
	"github.com/dmelo/timeclerk/internal/tracker"
)

// unassignedProjectFilter is the report filter selecting entries with no
// associated project.
const unassignedProjectFilter = "0"

const fullDaySeconds = 24 * 60 * 60

// transferWindow computes the date window and processes each day in
// ascending order. A day is fully transferred before the next one is
// fetched; the first failure aborts the loop.
func (r *Runner) transferWindow(ctx context.Context) error {
	last, ok, err := r.backend.LastEntryDate(ctx, r.userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPriorEntry
	}

	window := ComputeWindow(last, r.now())
	r.logger.Info("computed date window",
		"last_entry", last.Format("2006-01-02"),
		"since", window.Since.Format("2006-01-02"),
		"until", window.Until.Format("2006-01-02"))

	if r.recorder != nil {
		if err := r.recorder.RecordWindow(r.runID, window.Since, window.Until); err != nil {
			return err
		}
	}

	if window.Empty() {
		r.logger.Info("no days to process")
		return nil
	}

	for _, day := range window.Days() {
		if err := r.transferDay(ctx, day); err != nil {
			return err
		}
		if r.options.One {
			break
		}
	}

	return nil
}

// transferDay validates one day's entries and creates their timesheet lines.
// Gates run in order: full-day check (optional), unassigned-entry check,
// pagination check. Any gate failure aborts the whole run, not just the day.
func (r *Runner) transferDay(ctx context.Context, day time.Time) error {
	r.logger.Info("processing time entries", "date", day.Format("2006-01-02"))

	if r.options.RequireFullDay {
		if err := r.checkFullDay(ctx, day); err != nil {
			return err
		}
	}

	unassigned, err := r.tracker.Report(ctx, day, unassignedProjectFilter)
	if err != nil {
		return err
	}
	if len(unassigned.Entries) > 0 {
		return &UnassignedEntriesError{Date: day, Count: len(unassigned.Entries)}
	}

	page, err := r.tracker.Report(ctx, day, "")
	if err != nil {
		return err
	}
	if page.TotalCount > page.PerPage {
		return &PaginationError{Date: day, TotalCount: page.TotalCount, PerPage: page.PerPage}
	}

	// Entries arrive ordered by start time ascending.
	for _, entry := range page.Entries {
		if err := r.transferEntry(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

// transferEntry creates one timesheet line from a report entry. The entry's
// project name must resolve to an open task; a miss means the completeness
// gate let a naming mismatch through and the run aborts.
func (r *Runner) transferEntry(ctx context.Context, entry tracker.ReportEntry) error {
	ref, ok := r.tasks[entry.Project]
	if !ok {
		return &UnknownProjectError{Name: entry.Project}
	}

	seconds := RoundDuration(entry.DurationMS, r.options.RoundingUnit)

	r.logger.Info("transferring entry",
		"project", entry.Project,
		"description", entry.Description,
		"duration", (time.Duration(seconds) * time.Second).String(),
		"from", entry.Start.Format("15:04"),
		"to", entry.End.Format("15:04"))

	line := backend.Entry{
		Description: entry.Description,
		Date:        midnight(entry.Start),
		TaskID:      ref.TaskID,
		ProjectID:   ref.ProjectID,
		UserID:      r.userID,
		Hours:       float64(seconds) / 3600,
	}

	id, err := r.backend.CreateEntry(ctx, line)
	if err != nil {
		return err
	}

	if r.recorder != nil {
		if err := r.recorder.RecordLine(r.runID, id, line); err != nil {
			return err
		}
	}

	return nil
}

// checkFullDay verifies that the day's raw time entries account for every
// second of it.
func (r *Runner) checkFullDay(ctx context.Context, day time.Time) error {
	entries, err := r.tracker.TimeEntries(ctx, day)
	if err != nil {
		return err
	}

	var total int64
	for _, entry := range entries {
		total += entry.Duration
	}

	if total != fullDaySeconds {
		return &IncompleteDayError{Date: day, TotalSeconds: total}
	}

	return nil
}
