package sync

import "context"

// archiveStale archives every project still flagged after reconciliation,
// i.e. projects whose task is no longer open. Order across projects is
// unspecified. Projects are deactivated, never deleted.
func (r *Runner) archiveStale(ctx context.Context) error {
	for _, project := range r.projects {
		if !project.archive {
			continue
		}

		r.logger.Info("archiving project", "name", project.Name, "id", project.ID)
		if err := r.tracker.ArchiveProject(ctx, project.ID); err != nil {
			return err
		}
	}

	return nil
}
