package database

import (
	"time"

	"github.com/google/uuid"
)

// Run is one generate invocation as recorded in the runs table
type Run struct {
	ID           string    `json:"id" db:"id"`
	Source       string    `json:"source" db:"source"`
	StartedAt    time.Time `json:"started_at" db:"started_at"`
	FinishedAt   time.Time `json:"finished_at" db:"finished_at"`
	FilesRead    int       `json:"files_read" db:"files_read"`
	FilesSkipped int       `json:"files_skipped" db:"files_skipped"`
	RowsBuilt    int       `json:"rows_built" db:"rows_built"`
	RowsFiltered int       `json:"rows_filtered" db:"rows_filtered"`
	Lenses       int       `json:"lenses" db:"lenses"`
}

// NewRun starts a run record. An empty id gets a fresh uuid.
func NewRun(id, source string) *Run {
	if id == "" {
		id = uuid.New().String()
	}
	return &Run{
		ID:        id,
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}
