package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleResults(runID int64) []Result {
	return []Result{
		{RunID: runID, CaseID: 301, Status: "PASSED", LogID: 92001, ExeTime: 1000},
		{RunID: runID, CaseID: 302, Status: "FAILED", LogID: 92002, ExeTime: 3000},
		{RunID: runID, CaseID: 303, Status: "SKIPPED", LogID: 92003},
		{RunID: runID, CaseID: 304, Status: "PASSED", Err: "add test log: HTTP 500"},
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(8001, sampleResults(8001))
	want := &Summary{
		RunID:        8001,
		Total:        4,
		Passed:       1,
		Failed:       2,
		Skipped:      1,
		PassRate:     25,
		TotalExeTime: 4000,
		AvgExeTime:   1000,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(8001, nil)
	if got.Total != 0 || got.PassRate != 0 || got.AvgExeTime != 0 {
		t.Errorf("empty summary = %+v, want zeros", got)
	}
}

func TestSqlJournal_RecordAndSummarize(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".qrelay", "qrelay.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("parent dir not created: %v", err)
	}

	batch := &Batch{ID: NewBatchID(), RunID: 8001}
	if err := j.RecordBatch(batch); err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}
	if batch.StartedAt == "" {
		t.Error("StartedAt not defaulted")
	}

	for _, r := range sampleResults(8001) {
		r.BatchID = batch.ID
		if err := j.RecordResult(&r); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
		if r.ID == 0 {
			t.Error("result id not assigned")
		}
	}
	// A row for another run must not leak into the summary.
	if err := j.RecordResult(&Result{RunID: 9999, CaseID: 1, Status: "PASSED"}); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	got, err := j.Summary(8001)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := Summarize(8001, sampleResults(8001))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSqlJournal_BatchClosingUpdate(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	id := NewBatchID()
	if err := j.RecordBatch(&Batch{ID: id, RunID: 8001, StartedAt: "2026-08-21T10:00:00Z"}); err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}
	closing := &Batch{
		ID: id, RunID: 8001,
		StartedAt:  "2026-08-21T10:05:00Z", // ignored on update
		FinishedAt: "2026-08-21T10:06:00Z",
		Total:      5, Failed: 1,
	}
	if err := j.RecordBatch(closing); err != nil {
		t.Fatalf("RecordBatch update: %v", err)
	}

	var startedAt, finishedAt string
	var total, failed int
	err = j.db.QueryRow(
		"SELECT started_at, finished_at, total, failed FROM batches WHERE id = ?", id,
	).Scan(&startedAt, &finishedAt, &total, &failed)
	if err != nil {
		t.Fatalf("read batch: %v", err)
	}
	if startedAt != "2026-08-21T10:00:00Z" {
		t.Errorf("started_at = %q, want the original start", startedAt)
	}
	if finishedAt != "2026-08-21T10:06:00Z" || total != 5 || failed != 1 {
		t.Errorf("closing fields = (%q, %d, %d), want (finish, 5, 1)", finishedAt, total, failed)
	}
}

func TestSqlJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.RecordResult(&Result{RunID: 8001, CaseID: 301, Status: "PASSED"}); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	j, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	got, err := j.Summary(8001)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Total != 1 || got.Passed != 1 {
		t.Errorf("summary after reopen = %+v, want 1 passed entry", got)
	}
}

func TestSqlJournal_UnknownSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := j.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("expected error for unknown schema version")
	}
}

func TestMemJournal(t *testing.T) {
	j := NewMem()
	defer j.Close()

	batch := &Batch{ID: NewBatchID(), RunID: 8001}
	if err := j.RecordBatch(batch); err != nil {
		t.Fatalf("RecordBatch: %v", err)
	}
	for _, r := range sampleResults(8001) {
		r.BatchID = batch.ID
		if err := j.RecordResult(&r); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}

	got, err := j.Summary(8001)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := Summarize(8001, sampleResults(8001))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}
