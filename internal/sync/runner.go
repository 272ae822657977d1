package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Runner executes one pass of the transfer pipeline: reconcile projects,
// transfer each day in the window, archive stale projects. It is the run
// context the stages share; all state is built at the top of Run and only
// read afterwards. Not safe for concurrent use.
type Runner struct {
	backend  Backend
	tracker  Tracker
	recorder Recorder
	options  Options
	logger   *slog.Logger
	now      func() time.Time

	runID    string
	userID   int64
	tasks    map[string]taskRef
	projects []trackedProject
}

// NewRunner creates a runner. recorder may be nil to disable the journal.
func NewRunner(backend Backend, tracker Tracker, recorder Recorder, options Options, logger *slog.Logger) *Runner {
	if options.RoundingUnit <= 0 {
		options.RoundingUnit = DefaultRoundingUnit
	}

	return &Runner{
		backend:  backend,
		tracker:  tracker,
		recorder: recorder,
		options:  options,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the pipeline once. Control flows strictly forward through the
// stages; the first error aborts the run and is returned as-is. Re-running
// after a failure is the recovery mechanism: the date window and the
// name-matched project creation skip work that already completed.
func (r *Runner) Run(ctx context.Context) (err error) {
	r.runID = uuid.NewString()
	started := r.now()

	if r.recorder != nil {
		if err := r.recorder.BeginRun(r.runID, started); err != nil {
			return err
		}
		defer func() {
			if finishErr := r.recorder.FinishRun(r.runID, r.now(), err); finishErr != nil && err == nil {
				err = finishErr
			}
		}()
	}

	r.logger.Info("starting run",
		"run_id", r.runID,
		"login", r.options.Login,
		"projects_only", r.options.ProjectsOnly)

	r.userID, err = r.backend.FindUser(ctx, r.options.Login)
	if err != nil {
		return err
	}

	if err = r.reconcileProjects(ctx); err != nil {
		return err
	}

	if !r.options.ProjectsOnly {
		if err = r.transferWindow(ctx); err != nil {
			return err
		}
	}

	if err = r.archiveStale(ctx); err != nil {
		return err
	}

	r.logger.Info("run complete", "run_id", r.runID)
	return nil
}
