package qtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// CycleScope provides operations on test cycles within a project.
type CycleScope struct {
	project *ProjectScope
}

// ListCyclesOption configures filters for cycle listing.
type ListCyclesOption func(params url.Values)

// WithCycleParent restricts the listing to cycles nested under the given parent.
func WithCycleParent(parent Parent) ListCyclesOption {
	return func(p url.Values) {
		p.Set("parentId", strconv.FormatInt(parent.ID, 10))
		p.Set("parentType", parent.Type)
	}
}

// WithCyclePage sets the page number (1-based) for cycle listing.
func WithCyclePage(n int) ListCyclesOption {
	return func(p url.Values) { p.Set("page", strconv.Itoa(n)) }
}

// List returns one page of test cycles. Most deployments answer with the
// complete cycle list in a single response.
func (s *CycleScope) List(ctx context.Context, opts ...ListCyclesOption) ([]TestCycle, int, error) {
	params := url.Values{}
	for _, opt := range opts {
		opt(params)
	}

	u := s.project.url("test-cycles")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var paged pagedCycles
	if err := s.project.client.doJSON(ctx, "GET", u, "list test cycles", nil, &paged); err != nil {
		return nil, 0, err
	}
	return paged.Items, paged.Total, nil
}

// ListAll returns all test cycles, fetching further pages only when the
// response envelope reports more elements than it returned.
func (s *CycleScope) ListAll(ctx context.Context, opts ...ListCyclesOption) ([]TestCycle, error) {
	all, total, err := s.List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	page := 2
	for total > len(all) {
		pageOpts := append(opts, WithCyclePage(page))
		items, _, err := s.List(ctx, pageOpts...)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
		page++
	}
	return all, nil
}

// Create creates a test cycle, optionally nested under a parent.
func (s *CycleScope) Create(ctx context.Context, cycle *TestCycle, parent *Parent) (*TestCycle, error) {
	u := s.project.url("test-cycles")
	if parent != nil {
		params := url.Values{}
		params.Set("parentId", strconv.FormatInt(parent.ID, 10))
		params.Set("parentType", parent.Type)
		u += "?" + params.Encode()
	}

	payload, err := json.Marshal(cycle)
	if err != nil {
		return nil, fmt.Errorf("create test cycle: marshal: %w", err)
	}

	var created TestCycle
	if err := s.project.client.doJSON(ctx, "POST", u, "create test cycle", bytes.NewReader(payload), &created); err != nil {
		return nil, err
	}
	return &created, nil
}
