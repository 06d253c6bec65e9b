// Package report orchestrates result reporting against the test-management
// platform: it owns the status vocabulary, builds the container hierarchy
// (cycles, runs) idempotently, submits execution results with step-level
// detail, and handles test case approval.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"qrelay/internal/logging"
	"qrelay/internal/qtest"
	"qrelay/internal/resolve"
)

// Field ids of the built-in planned date fields. Unlike custom fields these
// are addressed by name, and only ever as properties entries, never as
// top-level run fields.
const (
	plannedStartFieldID = "PlannedStartDate"
	plannedEndFieldID   = "PlannedEndDate"
)

// BuildVersionField describes the custom field a run's build version is
// written to.
type BuildVersionField struct {
	ID        int64
	Name      string
	Value     string
	ValueName string
}

// DefaultBuildVersionField is the platform-specific default applied when a
// run is created without a build version. The numeric field id belongs to
// the originally targeted qTest instance; deployments with a different field
// id override it via WithBuildVersionField.
var DefaultBuildVersionField = BuildVersionField{
	ID:        12625659,
	Name:      "Build Version",
	Value:     "[3643503]",
	ValueName: "[New Value]",
}

// DefaultStepStatusIDs maps step result names to the platform's step status
// ids. Unknown names map to 0, which the platform treats as "unset".
var DefaultStepStatusIDs = map[string]int64{
	"PASSED":  601,
	"FAILED":  602,
	"SKIPPED": 603,
	"BLOCKED": 604,
}

// Manager ties the pieces together for one project: the API scope, the name
// resolver, the status registry, and reporting defaults.
type Manager struct {
	project       *qtest.ProjectScope
	resolver      *resolve.Resolver
	registry      *StatusRegistry
	buildVersion  BuildVersionField
	stepStatusIDs map[string]int64
	logger        *slog.Logger
}

// ManagerOption adjusts a Manager at construction time.
type ManagerOption func(*Manager)

// WithBuildVersionField overrides the build version custom field defaults.
func WithBuildVersionField(f BuildVersionField) ManagerOption {
	return func(m *Manager) { m.buildVersion = f }
}

// WithStepStatusIDs overrides the step result name to status id table.
func WithStepStatusIDs(ids map[string]int64) ManagerOption {
	return func(m *Manager) { m.stepStatusIDs = ids }
}

// NewManager returns a Manager for the given project scope.
func NewManager(project *qtest.ProjectScope, opts ...ManagerOption) *Manager {
	m := &Manager{
		project:       project,
		resolver:      resolve.New(project),
		registry:      NewStatusRegistry(project.Runs()),
		buildVersion:  DefaultBuildVersionField,
		stepStatusIDs: DefaultStepStatusIDs,
		logger:        logging.New("report"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolver exposes the manager's name resolver.
func (m *Manager) Resolver() *resolve.Resolver { return m.resolver }

// Registry exposes the manager's status registry.
func (m *Manager) Registry() *StatusRegistry { return m.registry }

// Project exposes the underlying API scope.
func (m *Manager) Project() *qtest.ProjectScope { return m.project }

// GetOrCreateCycle returns the id of the cycle with the given name, creating
// it when absent. Lookup matches name or pid, trimmed and case-insensitive.
// Two callers racing on the same name can still produce two cycles; the
// platform has no unique constraint to lean on.
func (m *Manager) GetOrCreateCycle(ctx context.Context, name, description string) (int64, error) {
	id, ok, err := m.resolver.CycleID(ctx, name)
	if err != nil {
		return 0, err
	}
	if ok {
		m.logger.DebugContext(ctx, "test cycle exists", "name", name, "id", id)
		return id, nil
	}

	created, err := m.project.Cycles().Create(ctx, &qtest.TestCycle{Name: name, Description: description}, nil)
	if err != nil {
		return 0, err
	}
	m.logger.InfoContext(ctx, "created test cycle", "name", name, "id", created.ID)
	return created.ID, nil
}

// EnsureRunInput describes a run lookup-or-create under one parent.
type EnsureRunInput struct {
	Parent          qtest.Parent
	CaseID          int64
	CreateIfMissing bool

	// Optional execution window stamped on a newly created run.
	ExeStart time.Time
	ExeEnd   time.Time
}

// EnsureRunForCase returns the id of the run bound to the case under the
// given parent. When no such run exists it either creates one named after
// the case (CreateIfMissing) or fails wrapping ErrRunNotFound. The
// lookup-then-create sequence is not atomic against concurrent callers on
// the same key.
func (m *Manager) EnsureRunForCase(ctx context.Context, in EnsureRunInput) (int64, error) {
	if in.CaseID == 0 {
		return 0, invalidInput("ensure run: no test case id given")
	}

	runs, err := m.project.Runs().List(ctx, in.Parent, 0)
	if err != nil {
		return 0, err
	}
	for _, run := range runs {
		if run.TestCase != nil && run.TestCase.ID == in.CaseID {
			m.logger.DebugContext(ctx, "test run exists", "case", in.CaseID, "run", run.ID)
			return run.ID, nil
		}
	}

	if !in.CreateIfMissing {
		return 0, fmt.Errorf("no run bound to test case %d under %s %d: %w",
			in.CaseID, in.Parent.Type, in.Parent.ID, ErrRunNotFound)
	}

	tc, err := m.project.Cases().Get(ctx, in.CaseID)
	if err != nil {
		return 0, err
	}
	run := qtest.TestRun{
		Name:     tc.Name,
		TestCase: caseRef(in.CaseID, tc.TestCaseVersionID),
	}
	if !in.ExeStart.IsZero() {
		run.ExeStartDate = qtest.FormatDate(in.ExeStart)
	}
	if !in.ExeEnd.IsZero() {
		run.ExeEndDate = qtest.FormatDate(in.ExeEnd)
	}
	created, err := m.project.Runs().Create(ctx, &run, &in.Parent)
	if err != nil {
		return 0, err
	}
	m.logger.InfoContext(ctx, "created test run", "case", in.CaseID, "run", created.ID, "name", created.Name)
	return created.ID, nil
}

// caseRef builds the single-case binding. A zero version id becomes an
// explicit null, which the platform reads as "latest version".
func caseRef(caseID, versionID int64) *qtest.TestCaseRef {
	ref := &qtest.TestCaseRef{ID: caseID}
	if versionID != 0 {
		ref.TestCaseVersionID = &versionID
	}
	return ref
}

// CreateRunInput describes a new test run. Exactly one of CaseID and CaseIDs
// must be set: the single-case form binds the case (optionally pinning a
// version), the list form carries the legacy test_case_ids field.
type CreateRunInput struct {
	Name        string
	Description string

	CaseID    int64
	VersionID int64
	CaseIDs   []int64

	// Cycle optionally places the run under a cycle. A name is resolved via
	// GetOrCreateCycle, so naming a cycle that does not exist yet creates it.
	Cycle resolve.Identifier

	PlannedStart time.Time
	PlannedEnd   time.Time

	// BuildVersion fills the build version custom field. Empty applies the
	// manager's default property wholesale.
	BuildVersion string
}

// CreateRun creates a test run. Planned dates travel as properties entries
// keyed by the built-in field names; the build version travels as the
// configured custom field.
func (m *Manager) CreateRun(ctx context.Context, in CreateRunInput) (*qtest.TestRun, error) {
	if in.Name == "" {
		return nil, invalidInput("create run: no name given")
	}
	if in.CaseID == 0 && len(in.CaseIDs) == 0 {
		return nil, invalidInput("create run: no test case bound")
	}
	if in.CaseID != 0 && len(in.CaseIDs) > 0 {
		return nil, invalidInput("create run: both a single case and a case list given")
	}

	var parent *qtest.Parent
	if !in.Cycle.IsZero() {
		cycleID, err := m.cycleID(ctx, in.Cycle)
		if err != nil {
			return nil, err
		}
		parent = &qtest.Parent{ID: cycleID, Type: qtest.ParentTestCycle}
	}

	run := qtest.TestRun{
		Name:        in.Name,
		Description: in.Description,
		Properties:  m.runProperties(in),
	}
	if in.CaseID != 0 {
		run.TestCase = caseRef(in.CaseID, in.VersionID)
	} else {
		run.TestCaseIDs = in.CaseIDs
	}

	created, err := m.project.Runs().Create(ctx, &run, parent)
	if err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "created test run", "run", created.ID, "name", created.Name)
	return created, nil
}

// cycleID resolves the cycle identifier, creating a named cycle when absent.
func (m *Manager) cycleID(ctx context.Context, cycle resolve.Identifier) (int64, error) {
	if id, ok := cycle.ID(); ok {
		return id, nil
	}
	return m.GetOrCreateCycle(ctx, cycle.String(), "")
}

// runProperties assembles the properties list for a new run: planned dates
// when given, and always a build version entry.
func (m *Manager) runProperties(in CreateRunInput) []qtest.Property {
	var props []qtest.Property
	if !in.PlannedStart.IsZero() {
		props = append(props, qtest.Property{
			FieldID:    plannedStartFieldID,
			FieldValue: qtest.FormatDate(in.PlannedStart),
		})
	}
	if !in.PlannedEnd.IsZero() {
		props = append(props, qtest.Property{
			FieldID:    plannedEndFieldID,
			FieldValue: qtest.FormatDate(in.PlannedEnd),
		})
	}
	if in.BuildVersion == "" {
		props = append(props, qtest.Property{
			FieldID:        m.buildVersion.ID,
			FieldName:      m.buildVersion.Name,
			FieldValue:     m.buildVersion.Value,
			FieldValueName: m.buildVersion.ValueName,
		})
	} else {
		props = append(props, qtest.Property{
			FieldID:    m.buildVersion.ID,
			FieldName:  m.buildVersion.Name,
			FieldValue: in.BuildVersion,
		})
	}
	return props
}

// CreateRunByNames resolves case names and creates a run over the resolved
// ids. Unresolvable names are skipped with a warning; when none resolve the
// run is not created.
func (m *Manager) CreateRunByNames(ctx context.Context, in CreateRunInput, caseNames []string) (*qtest.TestRun, error) {
	if in.CaseID != 0 || len(in.CaseIDs) > 0 {
		return nil, invalidInput("create run by names: case ids and case names given together")
	}
	ids, missing, err := m.resolver.CaseIDs(ctx, caseNames)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, invalidInput("create run by names: none of %d test case names resolved", len(caseNames))
	}
	if len(missing) > 0 {
		m.logger.WarnContext(ctx, "skipping unresolved test cases", "missing", missing)
	}
	in.CaseIDs = ids
	return m.CreateRun(ctx, in)
}
