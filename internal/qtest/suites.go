package qtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// SuiteScope provides operations on test suites within a project.
type SuiteScope struct {
	project *ProjectScope
}

// ListUnderCycle returns the test suites nested under a test cycle.
func (s *SuiteScope) ListUnderCycle(ctx context.Context, cycleID int64) ([]TestSuite, error) {
	params := url.Values{}
	params.Set("parentId", strconv.FormatInt(cycleID, 10))
	params.Set("parentType", ParentTestCycle)
	u := s.project.url("test-suites") + "?" + params.Encode()

	var paged pagedSuites
	if err := s.project.client.doJSON(ctx, "GET", u, "list test suites", nil, &paged); err != nil {
		return nil, err
	}
	return paged.Items, nil
}

// CreateUnderCycle creates a test suite nested under a test cycle.
func (s *SuiteScope) CreateUnderCycle(ctx context.Context, cycleID int64, suite *TestSuite) (*TestSuite, error) {
	params := url.Values{}
	params.Set("parentId", strconv.FormatInt(cycleID, 10))
	params.Set("parentType", ParentTestCycle)
	u := s.project.url("test-suites") + "?" + params.Encode()

	payload, err := json.Marshal(suite)
	if err != nil {
		return nil, fmt.Errorf("create test suite: marshal: %w", err)
	}

	var created TestSuite
	if err := s.project.client.doJSON(ctx, "POST", u, "create test suite", bytes.NewReader(payload), &created); err != nil {
		return nil, err
	}
	return &created, nil
}
