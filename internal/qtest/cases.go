package qtest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CaseScope provides operations on test cases within a project.
type CaseScope struct {
	project *ProjectScope
}

// ListCasesOption configures pagination for case listing.
type ListCasesOption func(params url.Values)

// WithCasePage sets the page number (1-based) for case listing.
func WithCasePage(n int) ListCasesOption {
	return func(p url.Values) { p.Set("page", strconv.Itoa(n)) }
}

// WithCasePageSize sets the page size for case listing.
func WithCasePageSize(size int) ListCasesOption {
	return func(p url.Values) { p.Set("size", strconv.Itoa(size)) }
}

// Get returns a single test case by its numeric ID.
func (s *CaseScope) Get(ctx context.Context, id int64) (*TestCase, error) {
	u := s.project.url(fmt.Sprintf("test-cases/%d", id))

	var tc TestCase
	if err := s.project.client.doJSON(ctx, "GET", u, "get test case", nil, &tc); err != nil {
		return nil, err
	}
	return &tc, nil
}

// List returns one page of test cases.
func (s *CaseScope) List(ctx context.Context, opts ...ListCasesOption) ([]TestCase, error) {
	params := url.Values{}
	for _, opt := range opts {
		opt(params)
	}

	u := s.project.url("test-cases")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var paged pagedCases
	if err := s.project.client.doJSON(ctx, "GET", u, "list test cases", nil, &paged); err != nil {
		return nil, err
	}
	return paged.Items, nil
}

// listAllPageSize is the page size used by ListAll.
const listAllPageSize = 100

// ListAll returns every test case in the project, auto-paginating until the
// platform serves an empty page.
func (s *CaseScope) ListAll(ctx context.Context) ([]TestCase, error) {
	var all []TestCase
	page := 1

	for {
		items, err := s.List(ctx, WithCasePage(page), WithCasePageSize(listAllPageSize))
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

// Steps returns the authored steps of a test case, normalized to a list.
func (s *CaseScope) Steps(ctx context.Context, caseID int64) ([]TestStep, error) {
	u := s.project.url(fmt.Sprintf("test-cases/%d/test-steps", caseID))

	var paged pagedSteps
	if err := s.project.client.doJSON(ctx, "GET", u, "get test steps", nil, &paged); err != nil {
		return nil, err
	}
	return paged.Items, nil
}

// Approve approves the current version of a test case.
func (s *CaseScope) Approve(ctx context.Context, id int64) error {
	u := s.project.url(fmt.Sprintf("test-cases/%d/approve", id))
	return s.project.client.doJSON(ctx, "PUT", u, "approve test case", nil, nil)
}
