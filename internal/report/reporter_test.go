package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"qrelay/internal/qtest"
)

func serveStatusesOr(t *testing.T, next http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == basePath+"/test-runs/execution-statuses" {
			fmt.Fprint(w, `[{"id": 1, "name": "Passed"}, {"id": 2, "name": "Failed"}]`)
			return
		}
		next(w, r)
	}
}

func TestManager_UpdateResult_Payload(t *testing.T) {
	var body map[string]any
	m := newTestManager(t, serveStatusesOr(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != basePath+"/test-runs/8001/test-logs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body = decodeJSONBody(t, r)
		fmt.Fprint(w, `{"id": 92001, "status": {"id": 1, "name": "PASSED"}, "test_case_version_id": 301}`)
	}))

	log, err := m.UpdateResult(context.Background(), ResultInput{
		RunID:    8001,
		CaseID:   301,
		Status:   "passed",
		Note:     "login succeeded",
		ExeTime:  1234,
		Defects:  []string{"DEF-1"},
		ExeStart: time.Date(2026, 8, 21, 14, 30, 0, 0, time.UTC),
		ExeEnd:   time.Date(2026, 8, 21, 14, 32, 0, 0, time.UTC),
		StepLogs: []qtest.StepLog{
			{Status: qtest.StatusRef{ID: 601, Name: "PASSED"}, ActualResult: "page loaded"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}
	if log.ID != 92001 {
		t.Errorf("log id = %d, want 92001", log.ID)
	}

	want := map[string]any{
		"status":               map[string]any{"id": float64(1), "name": "PASSED"},
		"test_case_version_id": float64(301),
		"note":                 "login succeeded",
		"exe_time":             float64(1234),
		"defects":              []any{map[string]any{"id": "DEF-1"}},
		"exe_start_date":       "2026-08-21T14:30:00Z",
		"exe_end_date":         "2026-08-21T14:32:00Z",
		"test_step_logs": []any{
			map[string]any{
				"status":        map[string]any{"id": float64(601), "name": "PASSED"},
				"actual_result": "page loaded",
			},
		},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_UpdateResult_OmitsEmptyFields(t *testing.T) {
	var body map[string]any
	m := newTestManager(t, serveStatusesOr(t, func(w http.ResponseWriter, r *http.Request) {
		body = decodeJSONBody(t, r)
		fmt.Fprint(w, `{"id": 92002}`)
	}))

	_, err := m.UpdateResult(context.Background(), ResultInput{
		RunID:     8001,
		CaseID:    301,
		VersionID: 555,
		Status:    "FAILED",
	})
	if err != nil {
		t.Fatalf("UpdateResult: %v", err)
	}

	// Empty note and exe_time stay off the wire; the step log list is an
	// explicit empty array, never null.
	want := map[string]any{
		"status":               map[string]any{"id": float64(2), "name": "FAILED"},
		"test_case_version_id": float64(555),
		"test_step_logs":       []any{},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_UpdateResult_InvalidStatusBeforeNetwork(t *testing.T) {
	m := newTestManager(t, serveStatusesOr(t, func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("mutating request sent for invalid status: %s %s", r.Method, r.URL.Path)
	}))

	_, err := m.UpdateResult(context.Background(), ResultInput{
		RunID:  8001,
		CaseID: 301,
		Status: "blocked",
	})
	var invalid *InvalidStatusError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *InvalidStatusError", err)
	}
	if diff := cmp.Diff([]string{"FAILED", "PASSED"}, invalid.Valid); diff != "" {
		t.Errorf("valid names mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_UpdateResultByName(t *testing.T) {
	var body map[string]any
	m := newTestManager(t, serveStatusesOr(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == basePath+"/test-cases":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `[{"id": 301, "name": "Login Flow"}]`)
				return
			}
			fmt.Fprint(w, `[]`)
		case r.Method == http.MethodPost && r.URL.Path == basePath+"/test-runs/8001/test-logs":
			body = decodeJSONBody(t, r)
			fmt.Fprint(w, `{"id": 92003}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	_, err := m.UpdateResultByName(context.Background(), "login flow", ResultInput{
		RunID:  8001,
		Status: "passed",
	})
	if err != nil {
		t.Fatalf("UpdateResultByName: %v", err)
	}
	if got := body["test_case_version_id"]; got != float64(301) {
		t.Errorf("test_case_version_id = %v, want 301", got)
	}

	_, err = m.UpdateResultByName(context.Background(), "Ghost Case", ResultInput{RunID: 8001, Status: "passed"})
	if err == nil {
		t.Fatal("expected error for unknown case name")
	}
}

func TestManager_BulkUpdateResults_FailureIsolation(t *testing.T) {
	var posts int
	m := newTestManager(t, serveStatusesOr(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != basePath+"/test-runs/8001/test-logs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		posts++
		body := decodeJSONBody(t, r)
		fmt.Fprintf(w, `{"id": %d}`, 90000+int64(body["test_case_version_id"].(float64)))
	}))

	items := []BulkItem{
		{CaseID: 301, Status: "passed"},
		{CaseID: 302, Status: "no-such-status"},
		{CaseID: 303, Status: "failed"},
	}
	results := m.BulkUpdateResults(context.Background(), 8001, items)

	if len(results) != len(items) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(items))
	}
	if results[0].Failed() || results[0].Log == nil || results[0].Log.ID != 90301 {
		t.Errorf("slot 0 = %+v, want log 90301", results[0])
	}
	var invalid *InvalidStatusError
	if !errors.As(results[1].Err, &invalid) {
		t.Errorf("slot 1 err = %v, want *InvalidStatusError", results[1].Err)
	}
	if results[1].TestCaseID != 302 {
		t.Errorf("slot 1 case = %d, want 302", results[1].TestCaseID)
	}
	if results[2].Failed() || results[2].Log == nil || results[2].Log.ID != 90303 {
		t.Errorf("slot 2 = %+v, want log 90303", results[2])
	}
	if posts != 2 {
		t.Errorf("posts = %d, want 2", posts)
	}
}

func TestManager_BulkUpdateResults_ParallelSlotAlignment(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0
	m := newTestManager(t, serveStatusesOr(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)
		var log qtest.TestLog
		if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
			t.Errorf("decode body: %v", err)
		}
		log.ID = 90000 + log.TestCaseVersionID
		_ = json.NewEncoder(w).Encode(log)

		mu.Lock()
		inFlight--
		mu.Unlock()
	}))

	items := make([]BulkItem, 8)
	for i := range items {
		items[i] = BulkItem{CaseID: int64(301 + i), Status: "passed"}
	}
	results := m.BulkUpdateResults(context.Background(), 8001, items, WithParallelism(4))

	for i, res := range results {
		if res.Failed() {
			t.Errorf("slot %d failed: %v", i, res.Err)
			continue
		}
		if want := 90000 + items[i].CaseID; res.Log.ID != want {
			t.Errorf("slot %d log id = %d, want %d", i, res.Log.ID, want)
		}
	}
	if peak < 2 {
		t.Errorf("peak concurrency = %d, want at least 2", peak)
	}
}

func TestManager_BulkUpdateResults_CanceledContext(t *testing.T) {
	m := newTestManager(t, rejectAll(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := m.BulkUpdateResults(ctx, 8001, []BulkItem{
		{CaseID: 301, Status: "passed"},
		{CaseID: 302, Status: "passed"},
	})
	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("slot %d err = %v, want context.Canceled", i, res.Err)
		}
	}
}

func TestManager_RunResults(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != basePath+"/test-runs/8001/test-logs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"items": [
			{"id": 92001, "status": {"id": 1, "name": "PASSED"}},
			{"id": 92002, "status": {"id": 2, "name": "FAILED"}}
		], "total": 2}`)
	})

	logs, err := m.RunResults(context.Background(), 8001)
	if err != nil {
		t.Fatalf("RunResults: %v", err)
	}
	if len(logs) != 2 || logs[0].ID != 92001 || logs[1].Status.Name != "FAILED" {
		t.Errorf("unexpected logs: %+v", logs)
	}
}
