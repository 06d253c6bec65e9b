package report

import (
	"context"

	"qrelay/internal/resolve"
)

// VersionResolution is the outcome of an approval: the version id to report
// results against. Fallback marks a best-effort substitute where the case id
// stood in because no version id could be read back; callers treating the
// version as authoritative must check it.
type VersionResolution struct {
	VersionID int64
	Fallback  bool
}

// ApproveCase approves a test case and reads back the version id the
// approval produced. The approval itself failing is fatal; a failed or
// inconclusive read-back degrades to the case id with Fallback set.
func (m *Manager) ApproveCase(ctx context.Context, caseID int64) (VersionResolution, error) {
	if err := m.project.Cases().Approve(ctx, caseID); err != nil {
		return VersionResolution{}, err
	}
	m.logger.InfoContext(ctx, "approved test case", "case", caseID)

	tc, err := m.project.Cases().Get(ctx, caseID)
	if err != nil {
		m.logger.WarnContext(ctx, "could not read back approved version", "case", caseID, "error", err)
		return VersionResolution{VersionID: caseID, Fallback: true}, nil
	}
	switch {
	case tc.TestCaseVersionID != 0:
		return VersionResolution{VersionID: tc.TestCaseVersionID}, nil
	case tc.Version != nil && tc.Version.ID != 0:
		return VersionResolution{VersionID: tc.Version.ID}, nil
	default:
		return VersionResolution{VersionID: caseID, Fallback: true}, nil
	}
}

// ApproveCaseByName resolves the case name, then approves it.
func (m *Manager) ApproveCaseByName(ctx context.Context, name string) (VersionResolution, error) {
	id, err := resolve.ByName(name).CaseID(ctx, m.resolver)
	if err != nil {
		return VersionResolution{}, err
	}
	return m.ApproveCase(ctx, id)
}
