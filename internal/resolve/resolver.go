// Package resolve maps human-facing names to platform identifiers.
//
// Lookups are matched case-insensitively after trimming, against both the
// display name and the pid. Absence is reported as ok=false, never as an
// error; errors mean the lookup itself could not run.
package resolve

import (
	"context"
	"log/slog"
	"strings"

	"qrelay/internal/logging"
	"qrelay/internal/qtest"
)

// Resolver performs name lookups against one project. Nothing is cached:
// every call re-fetches, so entities created after the Resolver was built
// are still found.
type Resolver struct {
	project *qtest.ProjectScope
	logger  *slog.Logger
}

// New returns a Resolver bound to the given project scope.
func New(project *qtest.ProjectScope) *Resolver {
	return &Resolver{project: project, logger: logging.New("resolve")}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// nameOrPIDMatches reports whether the normalized target equals the entity's
// name or pid. An entity with an empty pid never matches by pid.
func nameOrPIDMatches(target, name, pid string) bool {
	if normalize(name) == target {
		return true
	}
	p := normalize(pid)
	return p != "" && p == target
}

// CaseID resolves a test case by display name or pid. The first matching
// case wins; when it carries no id, its version id is used instead.
func (r *Resolver) CaseID(ctx context.Context, name string) (int64, bool, error) {
	target := normalize(name)
	if target == "" {
		return 0, false, nil
	}
	r.logger.DebugContext(ctx, "resolving test case", "name", name)

	cases, err := r.project.Cases().ListAll(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, tc := range cases {
		if !nameOrPIDMatches(target, tc.Name, tc.PID) {
			continue
		}
		id := tc.ID
		if id == 0 {
			id = tc.TestCaseVersionID
		}
		if id == 0 {
			return 0, false, nil
		}
		return id, true, nil
	}
	return 0, false, nil
}

// CaseIDs resolves many case names in one listing pass. Unresolved names are
// collected in missing rather than failing the call.
func (r *Resolver) CaseIDs(ctx context.Context, names []string) (ids []int64, missing []string, err error) {
	cases, err := r.project.Cases().ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, name := range names {
		target := normalize(name)
		found := false
		if target != "" {
			for _, tc := range cases {
				if !nameOrPIDMatches(target, tc.Name, tc.PID) {
					continue
				}
				id := tc.ID
				if id == 0 {
					id = tc.TestCaseVersionID
				}
				if id != 0 {
					ids = append(ids, id)
					found = true
				}
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		r.logger.WarnContext(ctx, "could not resolve test cases", "missing", missing)
	}
	return ids, missing, nil
}

// CycleID resolves a test cycle by display name or pid.
func (r *Resolver) CycleID(ctx context.Context, name string) (int64, bool, error) {
	target := normalize(name)
	if target == "" {
		return 0, false, nil
	}
	r.logger.DebugContext(ctx, "resolving test cycle", "name", name)

	cycles, err := r.project.Cycles().ListAll(ctx)
	if err != nil {
		return 0, false, err
	}
	for _, cy := range cycles {
		if nameOrPIDMatches(target, cy.Name, cy.PID) {
			return cy.ID, true, nil
		}
	}
	return 0, false, nil
}

// StepID resolves a test step by its order number within a case. A step's
// ordering key is the first present of order, index, sequence, and position;
// integral keys compare numerically, anything else by trimmed text.
func (r *Resolver) StepID(ctx context.Context, caseID, order int64) (int64, bool, error) {
	steps, err := r.project.Cases().Steps(ctx, caseID)
	if err != nil {
		return 0, false, err
	}
	for i := range steps {
		key, ok := steps[i].Key()
		if !ok {
			continue
		}
		if key.Matches(order) {
			return steps[i].ID, true, nil
		}
	}
	return 0, false, nil
}

// StepIDByText resolves a test step by matching text against its name,
// description, or action (trimmed, case-insensitive exact match).
func (r *Resolver) StepIDByText(ctx context.Context, caseID int64, text string) (int64, bool, error) {
	target := normalize(text)
	if target == "" {
		return 0, false, nil
	}
	steps, err := r.project.Cases().Steps(ctx, caseID)
	if err != nil {
		return 0, false, err
	}
	for i := range steps {
		s := &steps[i]
		if normalize(s.Name) == target || normalize(s.Description) == target || normalize(s.Action) == target {
			return s.ID, true, nil
		}
	}
	return 0, false, nil
}
