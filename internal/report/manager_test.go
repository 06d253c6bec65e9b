package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"qrelay/internal/qtest"
	"qrelay/internal/resolve"
)

const basePath = "/api/v3/projects/74528"

func newTestManager(t *testing.T, handler http.HandlerFunc, opts ...ManagerOption) *Manager {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := qtest.New(srv.URL, "token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return NewManager(client.Project(74528), opts...)
}

func rejectAll(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}
}

func decodeJSONBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return m
}

func TestManager_GetOrCreateCycle_Existing(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != basePath+"/test-cycles" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `[{"id": 501, "name": "Regression"}]`)
	})

	id, err := m.GetOrCreateCycle(context.Background(), "regression", "")
	if err != nil {
		t.Fatalf("GetOrCreateCycle: %v", err)
	}
	if id != 501 {
		t.Errorf("id = %d, want 501", id)
	}
}

func TestManager_GetOrCreateCycle_Creates(t *testing.T) {
	var createdBody map[string]any
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == basePath+"/test-cycles":
			fmt.Fprint(w, `[]`)
		case r.Method == http.MethodPost && r.URL.Path == basePath+"/test-cycles":
			createdBody = decodeJSONBody(t, r)
			fmt.Fprint(w, `{"id": 502, "name": "Nightly"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	id, err := m.GetOrCreateCycle(context.Background(), "Nightly", "created for the 2026-08 run")
	if err != nil {
		t.Fatalf("GetOrCreateCycle: %v", err)
	}
	if id != 502 {
		t.Errorf("id = %d, want 502", id)
	}
	want := map[string]any{"name": "Nightly", "description": "created for the 2026-08 run"}
	if diff := cmp.Diff(want, createdBody); diff != "" {
		t.Errorf("create body mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_EnsureRunForCase_Existing(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != basePath+"/test-runs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("parentId") != "501" || q.Get("parentType") != "test-cycle" || q.Get("pageSize") != "1000" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `[
			{"id": 8000, "name": "Other", "test_case": {"id": 999}},
			{"id": 8001, "name": "Login Flow", "test_case": {"id": 301}}
		]`)
	})

	id, err := m.EnsureRunForCase(context.Background(), EnsureRunInput{
		Parent:          qtest.Parent{ID: 501, Type: qtest.ParentTestCycle},
		CaseID:          301,
		CreateIfMissing: true,
	})
	if err != nil {
		t.Fatalf("EnsureRunForCase: %v", err)
	}
	if id != 8001 {
		t.Errorf("id = %d, want 8001", id)
	}
}

func TestManager_EnsureRunForCase_CreatesWhenMissing(t *testing.T) {
	var createQuery string
	var createBody map[string]any
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == basePath+"/test-runs":
			fmt.Fprint(w, `[]`)
		case r.Method == http.MethodGet && r.URL.Path == basePath+"/test-cases/301":
			fmt.Fprint(w, `{"id": 301, "name": "Login Flow", "test_case_version_id": 901}`)
		case r.Method == http.MethodPost && r.URL.Path == basePath+"/test-runs":
			createQuery = r.URL.RawQuery
			createBody = decodeJSONBody(t, r)
			fmt.Fprint(w, `{"id": 8002, "name": "Login Flow"}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	id, err := m.EnsureRunForCase(context.Background(), EnsureRunInput{
		Parent:          qtest.Parent{ID: 501, Type: qtest.ParentTestCycle},
		CaseID:          301,
		CreateIfMissing: true,
		ExeStart:        time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("EnsureRunForCase: %v", err)
	}
	if id != 8002 {
		t.Errorf("id = %d, want 8002", id)
	}
	if want := "parentId=501&parentType=test-cycle"; createQuery != want {
		t.Errorf("create query = %q, want %q", createQuery, want)
	}
	want := map[string]any{
		"name":           "Login Flow",
		"test_case":      map[string]any{"id": float64(301), "test_case_version_id": float64(901)},
		"exe_start_date": "2026-08-21T10:00:00Z",
	}
	if diff := cmp.Diff(want, createBody); diff != "" {
		t.Errorf("create body mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_EnsureRunForCase_NotFoundWithoutCreate(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != basePath+"/test-runs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `[]`)
	})

	_, err := m.EnsureRunForCase(context.Background(), EnsureRunInput{
		Parent: qtest.Parent{ID: 501, Type: qtest.ParentTestCycle},
		CaseID: 301,
	})
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestManager_CreateRun_DefaultBuildVersion(t *testing.T) {
	var rawQuery string
	var body map[string]any
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != basePath+"/test-runs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		rawQuery = r.URL.RawQuery
		body = decodeJSONBody(t, r)
		fmt.Fprint(w, `{"id": 8003, "name": "Nightly Regression"}`)
	})

	run, err := m.CreateRun(context.Background(), CreateRunInput{
		Name:   "Nightly Regression",
		CaseID: 301,
	})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.ID != 8003 {
		t.Errorf("run id = %d, want 8003", run.ID)
	}
	if rawQuery != "" {
		t.Errorf("query = %q, want none", rawQuery)
	}
	want := map[string]any{
		"name":      "Nightly Regression",
		"test_case": map[string]any{"id": float64(301), "test_case_version_id": nil},
		"properties": []any{
			map[string]any{
				"field_id":         float64(12625659),
				"field_name":       "Build Version",
				"field_value":      "[3643503]",
				"field_value_name": "[New Value]",
			},
		},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_CreateRun_PlannedDatesAsProperties(t *testing.T) {
	var rawQuery string
	var body map[string]any
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		body = decodeJSONBody(t, r)
		fmt.Fprint(w, `{"id": 8004}`)
	})

	_, err := m.CreateRun(context.Background(), CreateRunInput{
		Name:         "Release Candidate",
		CaseIDs:      []int64{301, 302},
		Cycle:        resolve.ByID(501),
		PlannedStart: time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC),
		PlannedEnd:   time.Date(2026, 8, 22, 8, 0, 0, 0, time.UTC),
		BuildVersion: "9.2.1",
	})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if want := "parentId=501&parentType=test-cycle"; rawQuery != want {
		t.Errorf("query = %q, want %q", rawQuery, want)
	}
	want := map[string]any{
		"name":          "Release Candidate",
		"test_case_ids": []any{float64(301), float64(302)},
		"properties": []any{
			map[string]any{"field_id": "PlannedStartDate", "field_value": "2026-08-21T08:00:00Z"},
			map[string]any{"field_id": "PlannedEndDate", "field_value": "2026-08-22T08:00:00Z"},
			map[string]any{
				"field_id":    float64(12625659),
				"field_name":  "Build Version",
				"field_value": "9.2.1",
			},
		},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_CreateRun_CycleByName(t *testing.T) {
	var runQuery string
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == basePath+"/test-cycles":
			fmt.Fprint(w, `[]`)
		case r.Method == http.MethodPost && r.URL.Path == basePath+"/test-cycles":
			fmt.Fprint(w, `{"id": 502, "name": "Nightly"}`)
		case r.Method == http.MethodPost && r.URL.Path == basePath+"/test-runs":
			runQuery = r.URL.RawQuery
			fmt.Fprint(w, `{"id": 8005}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	_, err := m.CreateRun(context.Background(), CreateRunInput{
		Name:   "Smoke",
		CaseID: 301,
		Cycle:  resolve.ByName("Nightly"),
	})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if want := "parentId=502&parentType=test-cycle"; runQuery != want {
		t.Errorf("run query = %q, want %q", runQuery, want)
	}
}

func TestManager_CreateRun_Validation(t *testing.T) {
	m := newTestManager(t, rejectAll(t))

	tests := []struct {
		name string
		in   CreateRunInput
	}{
		{"no name", CreateRunInput{CaseID: 301}},
		{"no case", CreateRunInput{Name: "Smoke"}},
		{"single case and list", CreateRunInput{Name: "Smoke", CaseID: 301, CaseIDs: []int64{302}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateRun(context.Background(), tt.in)
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Errorf("err = %v, want *InvalidInputError", err)
			}
		})
	}
}

func TestManager_CreateRunByNames(t *testing.T) {
	var body map[string]any
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == basePath+"/test-cases":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `[{"id": 301, "name": "Login Flow"}, {"id": 302, "name": "Logout Flow"}]`)
				return
			}
			fmt.Fprint(w, `[]`)
		case r.Method == http.MethodPost && r.URL.Path == basePath+"/test-runs":
			body = decodeJSONBody(t, r)
			fmt.Fprint(w, `{"id": 8006}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	run, err := m.CreateRunByNames(context.Background(), CreateRunInput{Name: "By Names"},
		[]string{"login flow", "Ghost Case", "Logout Flow"})
	if err != nil {
		t.Fatalf("CreateRunByNames: %v", err)
	}
	if run.ID != 8006 {
		t.Errorf("run id = %d, want 8006", run.ID)
	}
	if diff := cmp.Diff([]any{float64(301), float64(302)}, body["test_case_ids"]); diff != "" {
		t.Errorf("test_case_ids mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_CreateRunByNames_NoneResolve(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != basePath+"/test-cases" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `[]`)
	})

	_, err := m.CreateRunByNames(context.Background(), CreateRunInput{Name: "By Names"}, []string{"Ghost Case"})
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("err = %v, want *InvalidInputError", err)
	}
}
