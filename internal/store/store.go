// Package store persists the local run history.
package store

import "time"

// DefaultDBPath is the default relative path for the SQLite DB. Open()
// creates the parent dir (e.g. .interpret-eval).
const DefaultDBPath = ".interpret-eval/runs.db"

// Run is one recorded analysis run.
type Run struct {
	ID         int64
	Task       string
	SystemName string
	Dataset    string
	NSamples   int
	Scores     map[string]float64 // metric name -> overall score
	ReportPath string
	CreatedAt  time.Time
}

// Store is the run-history facade. CLI and MCP use only this interface;
// implementation is SQLite or in-memory.
type Store interface {
	SaveRun(r *Run) (runID int64, err error)
	GetRun(runID int64) (*Run, error)
	ListRuns() ([]*Run, error)
	Close() error
}
