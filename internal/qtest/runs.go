package qtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// RunScope provides operations on test runs within a project.
type RunScope struct {
	project *ProjectScope
}

// DefaultRunPageSize is the page size requested when listing runs under a parent.
const DefaultRunPageSize = 1000

// Get returns a single test run by its numeric ID.
func (s *RunScope) Get(ctx context.Context, id int64) (*TestRun, error) {
	u := s.project.url(fmt.Sprintf("test-runs/%d", id))

	var run TestRun
	if err := s.project.client.doJSON(ctx, "GET", u, "get test run", nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the test runs under a parent container. pageSize <= 0 falls
// back to DefaultRunPageSize.
func (s *RunScope) List(ctx context.Context, parent Parent, pageSize int) ([]TestRun, error) {
	if pageSize <= 0 {
		pageSize = DefaultRunPageSize
	}
	params := url.Values{}
	params.Set("parentId", strconv.FormatInt(parent.ID, 10))
	params.Set("parentType", parent.Type)
	params.Set("pageSize", strconv.Itoa(pageSize))
	u := s.project.url("test-runs") + "?" + params.Encode()

	var paged pagedRuns
	if err := s.project.client.doJSON(ctx, "GET", u, "list test runs", nil, &paged); err != nil {
		return nil, err
	}
	return paged.Items, nil
}

// Create creates a test run, optionally under a parent container. With a nil
// parent the run is created at the project root.
func (s *RunScope) Create(ctx context.Context, run *TestRun, parent *Parent) (*TestRun, error) {
	u := s.project.url("test-runs")
	if parent != nil {
		params := url.Values{}
		params.Set("parentId", strconv.FormatInt(parent.ID, 10))
		params.Set("parentType", parent.Type)
		u += "?" + params.Encode()
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("create test run: marshal: %w", err)
	}

	var created TestRun
	if err := s.project.client.doJSON(ctx, "POST", u, "create test run", bytes.NewReader(payload), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update updates an existing test run.
func (s *RunScope) Update(ctx context.Context, id int64, run *TestRun) (*TestRun, error) {
	u := s.project.url(fmt.Sprintf("test-runs/%d", id))

	payload, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("update test run: marshal: %w", err)
	}

	var updated TestRun
	if err := s.project.client.doJSON(ctx, "PUT", u, "update test run", bytes.NewReader(payload), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// AddLog submits an execution result to a test run and returns the created log.
func (s *RunScope) AddLog(ctx context.Context, runID int64, log *TestLog) (*TestLog, error) {
	u := s.project.url(fmt.Sprintf("test-runs/%d/test-logs", runID))

	payload, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("add test log: marshal: %w", err)
	}

	var created TestLog
	if err := s.project.client.doJSON(ctx, "POST", u, "add test log", bytes.NewReader(payload), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Logs returns all execution results recorded on a test run.
func (s *RunScope) Logs(ctx context.Context, runID int64) ([]TestLog, error) {
	u := s.project.url(fmt.Sprintf("test-runs/%d/test-logs", runID))

	var paged pagedLogs
	if err := s.project.client.doJSON(ctx, "GET", u, "get test logs", nil, &paged); err != nil {
		return nil, err
	}
	return paged.Items, nil
}

// UpdateLog updates an existing test log by its ID. The endpoint lives
// outside the test-runs subtree.
func (s *RunScope) UpdateLog(ctx context.Context, logID int64, log *TestLog) (*TestLog, error) {
	u := s.project.url(fmt.Sprintf("test-logs/%d", logID))

	payload, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("update test log: marshal: %w", err)
	}

	var updated TestLog
	if err := s.project.client.doJSON(ctx, "PUT", u, "update test log", bytes.NewReader(payload), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ExecutionStatuses returns the project's execution status vocabulary.
func (s *RunScope) ExecutionStatuses(ctx context.Context) ([]ExecutionStatus, error) {
	u := s.project.url("test-runs/execution-statuses")

	var statuses []ExecutionStatus
	if err := s.project.client.doJSON(ctx, "GET", u, "get execution statuses", nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
