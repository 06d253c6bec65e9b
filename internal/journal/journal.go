// Package journal keeps a local record of reported results, so operators can
// see what a reporting session did without re-querying the platform.
package journal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDBPath is the default relative path for the SQLite journal
// (per-workspace). Open() creates the parent dir (e.g. .qrelay).
const DefaultDBPath = ".qrelay/qrelay.db"

// Batch is one bulk reporting session against a run.
type Batch struct {
	ID         string
	RunID      int64
	StartedAt  string
	FinishedAt string
	Total      int
	Failed     int
}

// Result is one reported (or attempted) result. Err is empty for recorded
// results and carries the failure message otherwise.
type Result struct {
	ID         int64
	BatchID    string
	RunID      int64
	CaseID     int64
	Status     string
	LogID      int64
	Err        string
	ExeTime    int64
	ReportedAt string
}

// Summary aggregates a run's journal entries.
type Summary struct {
	RunID   int64
	Total   int
	Passed  int
	Failed  int
	Skipped int
	// PassRate is a percentage over all entries.
	PassRate float64
	// Execution times in milliseconds.
	TotalExeTime int64
	AvgExeTime   float64
}

// Journal is the persistence facade. The CLI and keyword server use only
// this interface; the implementation is SQLite or in-memory.
type Journal interface {
	RecordBatch(b *Batch) error
	RecordResult(r *Result) error
	Summary(runID int64) (*Summary, error)
	Close() error
}

// NewBatchID returns a fresh batch identifier.
func NewBatchID() string { return uuid.NewString() }

// NowUTC returns the current UTC time as an ISO 8601 string, the timestamp
// format used throughout the journal.
func NowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// Summarize computes a run summary over journal entries. An entry with an
// error counts as failed whatever status it was aiming for; statuses outside
// the three counted buckets only contribute to the total.
func Summarize(runID int64, results []Result) *Summary {
	s := &Summary{RunID: runID}
	for _, r := range results {
		s.Total++
		s.TotalExeTime += r.ExeTime
		switch {
		case r.Err != "":
			s.Failed++
		case strings.EqualFold(r.Status, "PASSED"):
			s.Passed++
		case strings.EqualFold(r.Status, "FAILED"):
			s.Failed++
		case strings.EqualFold(r.Status, "SKIPPED"):
			s.Skipped++
		}
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
		s.AvgExeTime = float64(s.TotalExeTime) / float64(s.Total)
	}
	return s
}
