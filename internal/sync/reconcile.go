package sync

import "context"

// reconcileProjects aligns the tracking-service project list with the
// backend's open tasks. Every project starts flagged for archival; an open
// task with the same name clears the flag, and a task with no project at all
// gets one created. Matching is exact name equality, the only join key the
// two systems share. The name -> task lookup used by the transfer stage is
// built here as a side product.
func (r *Runner) reconcileProjects(ctx context.Context) error {
	projects, err := r.tracker.ListProjects(ctx)
	if err != nil {
		return err
	}

	r.projects = make([]trackedProject, 0, len(projects))
	for _, project := range projects {
		r.projects = append(r.projects, trackedProject{Project: project, archive: true})
	}

	tasks, err := r.backend.ListOpenTasks(ctx)
	if err != nil {
		return err
	}

	r.tasks = make(map[string]taskRef, len(tasks))
	for _, task := range tasks {
		r.tasks[task.Name] = taskRef{TaskID: task.ID, ProjectID: task.ProjectID}

		found := false
		for i := range r.projects {
			if r.projects[i].Name == task.Name {
				r.projects[i].archive = false
				found = true
				break
			}
		}
		if found {
			continue
		}

		r.logger.Info("creating project", "name", task.Name)
		created, err := r.tracker.CreateProject(ctx, task.Name)
		if err != nil {
			return err
		}
		r.projects = append(r.projects, trackedProject{Project: created, archive: false})
	}

	return nil
}
