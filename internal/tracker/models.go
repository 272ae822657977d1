package tracker

import "time"

// Project represents a tracking-service project
type Project struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"wid"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
}

// TimeEntry represents a raw time entry from the time_entries endpoint.
// Duration is in seconds; negative means the entry is still running.
type TimeEntry struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Duration    int64     `json:"duration"`
	Start       time.Time `json:"start"`
	Stop        time.Time `json:"stop"`
}

// ReportEntry is one detailed-report row. The project is identified by
// display name only; DurationMS is in milliseconds.
type ReportEntry struct {
	Project     string    `json:"project"`
	Description string    `json:"description"`
	DurationMS  int64     `json:"dur"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// ReportPage is a single page of the detailed report. The service caps a
// page at PerPage entries; TotalCount covers the whole query.
type ReportPage struct {
	Entries    []ReportEntry `json:"data"`
	TotalCount int           `json:"total_count"`
	PerPage    int           `json:"per_page"`
}

// workspace as returned by the me endpoint
type workspace struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}
