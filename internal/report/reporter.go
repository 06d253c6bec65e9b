package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"qrelay/internal/qtest"
	"qrelay/internal/resolve"
)

// ResultInput describes one execution result to record on a run.
type ResultInput struct {
	RunID  int64
	CaseID int64
	// Status is a vocabulary name, matched case-insensitively.
	Status string
	// VersionID pins the case version the result applies to. Zero falls
	// back to CaseID, which the platform accepts in the version slot.
	VersionID int64
	Note      string
	// ExeTime is the execution time in milliseconds.
	ExeTime  int64
	Defects  []string
	ExeStart time.Time
	ExeEnd   time.Time
	StepLogs []qtest.StepLog
}

// UpdateResult records one execution result. The status name is validated
// against the registry before anything is sent; an unknown name fails with
// *InvalidStatusError and no mutating call. On success the created log,
// with its platform-assigned id, is returned.
func (m *Manager) UpdateResult(ctx context.Context, in ResultInput) (*qtest.TestLog, error) {
	status, err := m.registry.Status(ctx, in.Status)
	if err != nil {
		return nil, err
	}

	versionID := in.VersionID
	if versionID == 0 {
		versionID = in.CaseID
	}
	steps := in.StepLogs
	if steps == nil {
		steps = []qtest.StepLog{}
	}
	log := qtest.TestLog{
		Status:            status,
		TestCaseVersionID: versionID,
		Note:              in.Note,
		ExeTime:           in.ExeTime,
		TestStepLogs:      steps,
	}
	for _, id := range in.Defects {
		log.Defects = append(log.Defects, qtest.DefectRef{ID: id})
	}
	if !in.ExeStart.IsZero() {
		log.ExeStartDate = qtest.FormatDate(in.ExeStart)
	}
	if !in.ExeEnd.IsZero() {
		log.ExeEndDate = qtest.FormatDate(in.ExeEnd)
	}

	created, err := m.project.Runs().AddLog(ctx, in.RunID, &log)
	if err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "recorded test result",
		"run", in.RunID, "case", in.CaseID, "status", status.Name, "log", created.ID)
	return created, nil
}

// UpdateResultByName resolves the case name, then records the result for it.
// An unresolvable name is an error here.
func (m *Manager) UpdateResultByName(ctx context.Context, caseName string, in ResultInput) (*qtest.TestLog, error) {
	id, err := resolve.ByName(caseName).CaseID(ctx, m.resolver)
	if err != nil {
		return nil, err
	}
	in.CaseID = id
	return m.UpdateResult(ctx, in)
}

// BulkItem is one entry of a bulk report. Fields mirror ResultInput; the run
// id is supplied once for the whole batch.
type BulkItem struct {
	CaseID    int64
	Status    string
	VersionID int64
	Note      string
	ExeTime   int64
	Defects   []string
	ExeStart  time.Time
	ExeEnd    time.Time
	StepLogs  []qtest.StepLog
}

func (b BulkItem) input(runID int64) ResultInput {
	return ResultInput{
		RunID:     runID,
		CaseID:    b.CaseID,
		Status:    b.Status,
		VersionID: b.VersionID,
		Note:      b.Note,
		ExeTime:   b.ExeTime,
		Defects:   b.Defects,
		ExeStart:  b.ExeStart,
		ExeEnd:    b.ExeEnd,
		StepLogs:  b.StepLogs,
	}
}

// BulkItemResult is the outcome slot for one bulk item: the created log, or
// the error that item hit. Slot i always belongs to item i.
type BulkItemResult struct {
	TestCaseID int64
	Log        *qtest.TestLog
	Err        error
}

// Failed reports whether the item was not recorded.
func (r BulkItemResult) Failed() bool { return r.Err != nil }

type bulkConfig struct {
	parallelism int
}

// BulkOption adjusts a bulk report.
type BulkOption func(*bulkConfig)

// WithParallelism caps how many items are submitted concurrently. The
// default is 1 (serial, original behavior).
func WithParallelism(n int) BulkOption {
	return func(c *bulkConfig) { c.parallelism = n }
}

// BulkUpdateResults records many results on one run. Every item gets exactly
// one slot in the returned slice, index-aligned with the input; a failed
// item records its error in its slot and never aborts the rest. Context
// cancellation takes effect between items: an item already submitting is
// allowed to finish, items not yet started record the context error.
func (m *Manager) BulkUpdateResults(ctx context.Context, runID int64, items []BulkItem, opts ...BulkOption) []BulkItemResult {
	cfg := bulkConfig{parallelism: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.parallelism < 1 {
		cfg.parallelism = 1
	}

	results := make([]BulkItemResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)
	for i := range items {
		g.Go(func() error {
			results[i].TestCaseID = items[i].CaseID
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			log, err := m.UpdateResult(context.WithoutCancel(gctx), items[i].input(runID))
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Log = log
			return nil
		})
	}
	// Workers capture failures in their slots and never return an error.
	_ = g.Wait()

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	m.logger.InfoContext(ctx, "bulk report finished",
		"run", runID, "total", len(items), "failed", failed)
	return results
}

// RunResults fetches the logs already recorded on a run.
func (m *Manager) RunResults(ctx context.Context, runID int64) ([]qtest.TestLog, error) {
	return m.project.Runs().Logs(ctx, runID)
}
