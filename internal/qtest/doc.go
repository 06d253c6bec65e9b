// Package qtest provides a scope-based client for the qTest Manager v3 API.
//
// Usage:
//
//	client, err := qtest.New(baseURL, token, qtest.WithTimeout(30*time.Second))
//	project := client.Project(74528)
//	statuses, err := project.Runs().ExecutionStatuses(ctx)
//	steps, err := project.Cases().Steps(ctx, 12345)
//	run, err := project.Runs().Create(ctx, &qtest.TestRun{Name: "Nightly"}, &qtest.Parent{ID: 501, Type: qtest.ParentTestCycle})
//
// All request URLs are rooted at {base}/api/v3/projects/{projectID}/. The
// client performs no retries and no caching; callers own both policies.
package qtest
