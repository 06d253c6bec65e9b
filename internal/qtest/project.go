package qtest

import "fmt"

// ProjectScope provides access to resources within a specific qTest project.
type ProjectScope struct {
	client    *Client
	projectID int64
}

// Project returns a ProjectScope for the given project ID.
func (c *Client) Project(id int64) *ProjectScope {
	return &ProjectScope{client: c, projectID: id}
}

// ID returns the project ID this scope is bound to.
func (p *ProjectScope) ID() int64 { return p.projectID }

// Cases returns a CaseScope for test cases in this project.
func (p *ProjectScope) Cases() *CaseScope {
	return &CaseScope{project: p}
}

// Cycles returns a CycleScope for test cycles in this project.
func (p *ProjectScope) Cycles() *CycleScope {
	return &CycleScope{project: p}
}

// Suites returns a SuiteScope for test suites in this project.
func (p *ProjectScope) Suites() *SuiteScope {
	return &SuiteScope{project: p}
}

// Runs returns a RunScope for test runs in this project.
func (p *ProjectScope) Runs() *RunScope {
	return &RunScope{project: p}
}

// Fields returns a FieldScope for field settings in this project.
func (p *ProjectScope) Fields() *FieldScope {
	return &FieldScope{project: p}
}

// url builds a project-rooted API URL for the given endpoint path.
func (p *ProjectScope) url(endpoint string) string {
	return fmt.Sprintf("%s/api/v3/projects/%d/%s", p.client.baseURL, p.projectID, endpoint)
}
