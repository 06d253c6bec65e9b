package journal

import (
	"errors"
	"sync"
)

// MemJournal implements Journal in memory. Used by tests and by runs with
// journaling disabled, where entries only need to live until the summary is
// printed.
type MemJournal struct {
	mu      sync.Mutex
	batches map[string]Batch
	results []Result
	nextID  int64
}

// NewMem returns an empty in-memory journal.
func NewMem() *MemJournal {
	return &MemJournal{batches: make(map[string]Batch)}
}

func (j *MemJournal) RecordBatch(b *Batch) error {
	if b == nil || b.ID == "" {
		return errors.New("batch has no id")
	}
	if b.StartedAt == "" {
		b.StartedAt = NowUTC()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if prior, ok := j.batches[b.ID]; ok {
		b.StartedAt = prior.StartedAt
	}
	j.batches[b.ID] = *b
	return nil
}

func (j *MemJournal) RecordResult(r *Result) error {
	if r == nil {
		return errors.New("result is nil")
	}
	if r.ReportedAt == "" {
		r.ReportedAt = NowUTC()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.nextID++
	r.ID = j.nextID
	j.results = append(j.results, *r)
	return nil
}

func (j *MemJournal) Summary(runID int64) (*Summary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var matched []Result
	for _, r := range j.results {
		if r.RunID == runID {
			matched = append(matched, r)
		}
	}
	return Summarize(runID, matched), nil
}

func (j *MemJournal) Close() error { return nil }
