package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/dmelo/timeclerk/internal/backend"
	"github.com/dmelo/timeclerk/internal/testutil"
	"github.com/dmelo/timeclerk/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReconcile_CreatesMissingProjects verifies that each open task without
// a matching project gets one created.
func TestReconcile_CreatesMissingProjects(t *testing.T) {
	mockBackend := testutil.NewMockBackend()
	mockBackend.SetTasks([]backend.Task{
		{ID: 1, ProjectID: 10, Name: "Website Redesign"},
		{ID: 2, ProjectID: 10, Name: "API Cleanup"},
	})

	mockTracker := testutil.NewMockTracker()
	mockTracker.SetProjects([]tracker.Project{
		{ID: 501, Name: "API Cleanup", Active: true},
	})

	runner := newTestRunner(mockBackend, mockTracker, nil, Options{})
	require.NoError(t, runner.reconcileProjects(context.Background()))

	assert.Equal(t, []string{"Website Redesign"}, mockTracker.CreatedProjects())
}

// TestReconcile_MatchClearsArchiveFlag verifies that projects matching an
// open task are not flagged for archival, and unmatched ones are.
func TestReconcile_MatchClearsArchiveFlag(t *testing.T) {
	mockBackend := testutil.NewMockBackend()
	mockBackend.SetTasks([]backend.Task{
		{ID: 1, ProjectID: 10, Name: "Website Redesign"},
	})

	mockTracker := testutil.NewMockTracker()
	mockTracker.SetProjects([]tracker.Project{
		{ID: 501, Name: "Website Redesign", Active: true},
		{ID: 502, Name: "Old Feature", Active: true},
	})

	runner := newTestRunner(mockBackend, mockTracker, nil, Options{})
	require.NoError(t, runner.reconcileProjects(context.Background()))

	flags := map[string]bool{}
	for _, project := range runner.projects {
		flags[project.Name] = project.archive
	}
	assert.False(t, flags["Website Redesign"])
	assert.True(t, flags["Old Feature"])
}

// TestReconcile_BuildsTaskLookup verifies the name -> ids lookup used by the
// transfer stage.
func TestReconcile_BuildsTaskLookup(t *testing.T) {
	mockBackend := testutil.NewMockBackend()
	mockBackend.SetTasks([]backend.Task{
		{ID: 1, ProjectID: 10, Name: "Website Redesign"},
		{ID: 2, ProjectID: 20, Name: "API Cleanup"},
	})

	mockTracker := testutil.NewMockTracker()

	runner := newTestRunner(mockBackend, mockTracker, nil, Options{})
	require.NoError(t, runner.reconcileProjects(context.Background()))

	require.Len(t, runner.tasks, 2)
	assert.Equal(t, taskRef{TaskID: 1, ProjectID: 10}, runner.tasks["Website Redesign"])
	assert.Equal(t, taskRef{TaskID: 2, ProjectID: 20}, runner.tasks["API Cleanup"])
}

// TestReconcile_ExactNameMatchOnly verifies that matching is exact string
// equality, nothing fuzzier.
func TestReconcile_ExactNameMatchOnly(t *testing.T) {
	mockBackend := testutil.NewMockBackend()
	mockBackend.SetTasks([]backend.Task{
		{ID: 1, ProjectID: 10, Name: "Website Redesign"},
	})

	mockTracker := testutil.NewMockTracker()
	mockTracker.SetProjects([]tracker.Project{
		{ID: 501, Name: "website redesign", Active: true},
	})

	runner := newTestRunner(mockBackend, mockTracker, nil, Options{})
	require.NoError(t, runner.reconcileProjects(context.Background()))

	// Case differs, so the task gets a fresh project and the old one stays
	// flagged.
	assert.Equal(t, []string{"Website Redesign"}, mockTracker.CreatedProjects())
	assert.True(t, runner.projects[0].archive)
}

// TestReconcile_CreateFailureAborts verifies that a project creation failure
// is fatal.
func TestReconcile_CreateFailureAborts(t *testing.T) {
	mockBackend := testutil.NewMockBackend()
	mockBackend.SetTasks([]backend.Task{
		{ID: 1, ProjectID: 10, Name: "Website Redesign"},
	})

	mockTracker := testutil.NewMockTracker()
	createErr := errors.New("boom")
	mockTracker.SetCreateError(createErr)

	runner := newTestRunner(mockBackend, mockTracker, nil, Options{})
	err := runner.reconcileProjects(context.Background())

	assert.ErrorIs(t, err, createErr)
}

// TestReconcile_IdempotentWhenAllMatch verifies that a fully reconciled state
// performs zero creations.
func TestReconcile_IdempotentWhenAllMatch(t *testing.T) {
	mockBackend := testutil.NewMockBackend()
	mockBackend.SetTasks([]backend.Task{
		{ID: 1, ProjectID: 10, Name: "Website Redesign"},
		{ID: 2, ProjectID: 20, Name: "API Cleanup"},
	})

	mockTracker := testutil.NewMockTracker()
	mockTracker.SetProjects([]tracker.Project{
		{ID: 501, Name: "Website Redesign", Active: true},
		{ID: 502, Name: "API Cleanup", Active: true},
	})

	runner := newTestRunner(mockBackend, mockTracker, nil, Options{})
	require.NoError(t, runner.reconcileProjects(context.Background()))

	assert.Empty(t, mockTracker.CreatedProjects())
}
