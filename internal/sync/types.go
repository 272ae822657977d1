package sync

import (
	"context"
	"time"

	"github.com/dmelo/timeclerk/internal/backend"
	"github.com/dmelo/timeclerk/internal/tracker"
)

// Backend is the surface of the project-management backend consumed by the
// pipeline.
type Backend interface {
	FindUser(ctx context.Context, login string) (int64, error)
	ListOpenTasks(ctx context.Context) ([]backend.Task, error)
	LastEntryDate(ctx context.Context, userID int64) (time.Time, bool, error)
	CreateEntry(ctx context.Context, entry backend.Entry) (int64, error)
}

// Tracker is the surface of the time-tracking service consumed by the
// pipeline. The client is already bound to its workspace.
type Tracker interface {
	ListProjects(ctx context.Context) ([]tracker.Project, error)
	CreateProject(ctx context.Context, name string) (tracker.Project, error)
	ArchiveProject(ctx context.Context, id int64) error
	Report(ctx context.Context, day time.Time, projectIDs string) (tracker.ReportPage, error)
	TimeEntries(ctx context.Context, day time.Time) ([]tracker.TimeEntry, error)
}

// Recorder persists an audit trail of runs and created lines. All methods
// follow the pipeline's single error policy: a failed write aborts the run.
type Recorder interface {
	BeginRun(runID string, startedAt time.Time) error
	RecordWindow(runID string, since, until time.Time) error
	RecordLine(runID string, entryID int64, entry backend.Entry) error
	FinishRun(runID string, completedAt time.Time, runErr error) error
}

// Options control a single run.
type Options struct {
	// Login is the backend login whose timesheet is written.
	Login string
	// One stops after the first processed day.
	One bool
	// ProjectsOnly skips the date loop entirely; only reconciliation and
	// archival run.
	ProjectsOnly bool
	// RoundingUnit is the granularity durations are rounded to.
	RoundingUnit time.Duration
	// RequireFullDay refuses days whose raw entries do not sum to 24 hours.
	RequireFullDay bool
}

// taskRef is the name-resolved pair of backend identifiers a timesheet line
// is attached to.
type taskRef struct {
	TaskID    int64
	ProjectID int64
}

// trackedProject is a tracking-service project with its reconciliation
// verdict. archive stays true unless an open task matches the name.
type trackedProject struct {
	tracker.Project
	archive bool
}
