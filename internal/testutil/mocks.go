package testutil

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmelo/timeclerk/internal/backend"
	"github.com/dmelo/timeclerk/internal/tracker"
)

// NewTestLogger creates a logger for testing
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

// DayKey formats a day the way the mock tracker indexes it.
func DayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

// MockBackend provides a mock project-management backend for testing
type MockBackend struct {
	mu sync.Mutex

	userID      int64
	tasks       []backend.Task
	lastDate    time.Time
	hasLastDate bool

	findUserErr  error
	listTasksErr error
	lastDateErr  error
	createErr    error

	created []backend.Entry
	nextID  int64
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		userID: 7,
		nextID: 1000,
	}
}

func (m *MockBackend) SetUserID(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userID = id
}

func (m *MockBackend) SetTasks(tasks []backend.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = tasks
}

func (m *MockBackend) SetLastDate(date time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDate = date
	m.hasLastDate = true
}

func (m *MockBackend) ClearLastDate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasLastDate = false
}

func (m *MockBackend) SetFindUserError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findUserErr = err
}

func (m *MockBackend) SetListTasksError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listTasksErr = err
}

func (m *MockBackend) SetLastDateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDateErr = err
}

func (m *MockBackend) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

func (m *MockBackend) FindUser(ctx context.Context, login string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findUserErr != nil {
		return 0, m.findUserErr
	}
	return m.userID, nil
}

func (m *MockBackend) ListOpenTasks(ctx context.Context) ([]backend.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listTasksErr != nil {
		return nil, m.listTasksErr
	}
	return m.tasks, nil
}

func (m *MockBackend) LastEntryDate(ctx context.Context, userID int64) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lastDateErr != nil {
		return time.Time{}, false, m.lastDateErr
	}
	return m.lastDate, m.hasLastDate, nil
}

func (m *MockBackend) CreateEntry(ctx context.Context, entry backend.Entry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return 0, m.createErr
	}

	m.created = append(m.created, entry)
	m.nextID++
	return m.nextID, nil
}

// CreatedEntries returns the timesheet lines created so far
func (m *MockBackend) CreatedEntries() []backend.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]backend.Entry, len(m.created))
	copy(entries, m.created)
	return entries
}

// MockTracker provides a mock time-tracking service for testing
type MockTracker struct {
	mu sync.Mutex

	projects      []tracker.Project
	reports       map[string]map[string]tracker.ReportPage // day -> project filter -> page
	timeEntries   map[string][]tracker.TimeEntry
	nextProjectID int64

	listErr    error
	createErr  error
	archiveErr error
	reportErr  error

	createdProjects []string
	archivedIDs     []int64
}

func NewMockTracker() *MockTracker {
	return &MockTracker{
		reports:       make(map[string]map[string]tracker.ReportPage),
		timeEntries:   make(map[string][]tracker.TimeEntry),
		nextProjectID: 500,
	}
}

func (m *MockTracker) SetProjects(projects []tracker.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = projects
}

// SetReport registers the report page served for a day under a project
// filter ("" for the unfiltered query, "0" for the no-project sentinel).
func (m *MockTracker) SetReport(day time.Time, projectIDs string, page tracker.ReportPage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := DayKey(day)
	if m.reports[key] == nil {
		m.reports[key] = make(map[string]tracker.ReportPage)
	}
	m.reports[key][projectIDs] = page
}

func (m *MockTracker) SetTimeEntries(day time.Time, entries []tracker.TimeEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeEntries[DayKey(day)] = entries
}

func (m *MockTracker) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

func (m *MockTracker) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

func (m *MockTracker) SetArchiveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archiveErr = err
}

func (m *MockTracker) SetReportError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportErr = err
}

func (m *MockTracker) ListProjects(ctx context.Context) ([]tracker.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	projects := make([]tracker.Project, len(m.projects))
	copy(projects, m.projects)
	return projects, nil
}

func (m *MockTracker) CreateProject(ctx context.Context, name string) (tracker.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return tracker.Project{}, m.createErr
	}

	m.nextProjectID++
	project := tracker.Project{
		ID:     m.nextProjectID,
		Name:   name,
		Active: true,
	}
	m.projects = append(m.projects, project)
	m.createdProjects = append(m.createdProjects, name)
	return project, nil
}

func (m *MockTracker) ArchiveProject(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.archiveErr != nil {
		return m.archiveErr
	}

	m.archivedIDs = append(m.archivedIDs, id)
	return nil
}

func (m *MockTracker) Report(ctx context.Context, day time.Time, projectIDs string) (tracker.ReportPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reportErr != nil {
		return tracker.ReportPage{}, m.reportErr
	}

	page := m.reports[DayKey(day)][projectIDs]
	if page.PerPage == 0 {
		page.PerPage = 50
	}
	return page, nil
}

func (m *MockTracker) TimeEntries(ctx context.Context, day time.Time) ([]tracker.TimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.timeEntries[DayKey(day)], nil
}

// CreatedProjects returns the names of projects created so far, in order
func (m *MockTracker) CreatedProjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.createdProjects))
	copy(names, m.createdProjects)
	return names
}

// ArchivedIDs returns the ids of projects archived so far, in order
func (m *MockTracker) ArchivedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, len(m.archivedIDs))
	copy(ids, m.archivedIDs)
	return ids
}

// MockRecorder captures journal writes for testing
type MockRecorder struct {
	mu sync.Mutex

	Begins   []string
	Windows  [][2]time.Time
	Lines    []backend.Entry
	Finishes []error

	writeErr error
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

func (m *MockRecorder) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *MockRecorder) BeginRun(runID string, startedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	m.Begins = append(m.Begins, runID)
	return nil
}

func (m *MockRecorder) RecordWindow(runID string, since, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	m.Windows = append(m.Windows, [2]time.Time{since, until})
	return nil
}

func (m *MockRecorder) RecordLine(runID string, entryID int64, entry backend.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	m.Lines = append(m.Lines, entry)
	return nil
}

func (m *MockRecorder) FinishRun(runID string, completedAt time.Time, runErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writeErr != nil {
		return m.writeErr
	}
	m.Finishes = append(m.Finishes, runErr)
	return nil
}
