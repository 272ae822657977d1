package backend

import (
	"encoding/json"
	"fmt"
	"time"
)

// dateFormat is the backend's naive datetime format. Dates carry no timezone;
// they are backend-local calendar dates.
const dateFormat = "2006-01-02 15:04:05"

// Task is an open backend task. Read-only for this system.
type Task struct {
	ID        int64
	ProjectID int64
	Name      string
}

// Entry is a timesheet line to be created in the backend. Append-only; once
// created it is never revisited.
type Entry struct {
	Description string
	Date        time.Time
	TaskID      int64
	ProjectID   int64
	UserID      int64
	Hours       float64
}

// relation decodes a backend many-to-one field, which arrives either as an
// [id, display_name] pair or as false when unset.
type relation struct {
	ID   int64
	Name string
	Set  bool
}

func (r *relation) UnmarshalJSON(data []byte) error {
	if string(data) == "false" {
		*r = relation{}
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("backend: invalid relation field: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("backend: relation field has %d elements, want 2", len(pair))
	}

	if err := json.Unmarshal(pair[0], &r.ID); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[1], &r.Name); err != nil {
		return err
	}
	r.Set = true
	return nil
}

type taskRecord struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	ProjectID relation `json:"project_id"`
}

type workRecord struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
}
