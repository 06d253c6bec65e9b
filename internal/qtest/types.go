package qtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parent identifies the container a run or cycle is nested under. The
// platform takes it as parentId/parentType query parameters, not as part of
// the request body.
type Parent struct {
	ID   int64
	Type string
}

// Parent type strings accepted by the platform.
const (
	ParentRoot      = "root"
	ParentRelease   = "release"
	ParentTestCycle = "test-cycle"
	ParentTestSuite = "test-suite"
)

// StepOrder holds a step ordering key as returned by the platform. Some
// deployments serialize it as a JSON number, others as a string; both decode
// to the literal text. An absent key decodes to the empty value.
type StepOrder string

// UnmarshalJSON accepts a number, a string, or null.
func (o *StepOrder) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*o = StepOrder(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal step order: %w", err)
	}
	*o = StepOrder(s)
	return nil
}

// MarshalJSON serializes numeric keys as numbers and anything else as a string.
func (o StepOrder) MarshalJSON() ([]byte, error) {
	var f float64
	if json.Unmarshal([]byte(o), &f) == nil {
		return []byte(o), nil
	}
	return json.Marshal(string(o))
}

// Int returns the key as an integer. Absent and non-integral keys report ok=false.
func (o StepOrder) Int() (int64, bool) {
	s := strings.TrimSpace(string(o))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Matches reports whether the key refers to step number n: numerically when
// the key is integral, by trimmed text otherwise.
func (o StepOrder) Matches(n int64) bool {
	if v, ok := o.Int(); ok {
		return v == n
	}
	return strings.TrimSpace(string(o)) == strconv.FormatInt(n, 10)
}

// FormatDate renders a timestamp the way the platform expects its date
// fields (ISO 8601).
func FormatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

// --- Resource types (aligned with the qTest v3 API) ---

// TestCase represents a qTest test case.
type TestCase struct {
	ID                int64      `json:"id,omitempty"`
	PID               string     `json:"pid,omitempty"`
	Name              string     `json:"name,omitempty"`
	Description       string     `json:"description,omitempty"`
	TestCaseVersionID int64      `json:"test_case_version_id,omitempty"`
	Version           *Version   `json:"version,omitempty"`
	Properties        []Property `json:"properties,omitempty"`
}

// Version is the nested version descriptor on a test case.
type Version struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TestCycle represents a node in the test cycle tree.
type TestCycle struct {
	ID          int64  `json:"id,omitempty"`
	PID         string `json:"pid,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    int64  `json:"parent_id,omitempty"`
}

// TestSuite represents a test suite container.
type TestSuite struct {
	ID          int64  `json:"id,omitempty"`
	PID         string `json:"pid,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    int64  `json:"parent_id,omitempty"`
}

// TestRun represents a qTest test run.
type TestRun struct {
	ID           int64        `json:"id,omitempty"`
	PID          string       `json:"pid,omitempty"`
	Name         string       `json:"name,omitempty"`
	Description  string       `json:"description,omitempty"`
	ParentID     int64        `json:"parent_id,omitempty"`
	ParentType   string       `json:"parent_type,omitempty"`
	TestCase     *TestCaseRef `json:"test_case,omitempty"`
	TestCaseIDs  []int64      `json:"test_case_ids,omitempty"`
	Properties   []Property   `json:"properties,omitempty"`
	ExeStartDate string       `json:"exe_start_date,omitempty"`
	ExeEndDate   string       `json:"exe_end_date,omitempty"`
}

// TestCaseRef binds a run to a single test case. The version id is serialized
// even when nil; the platform reads null as "latest version".
type TestCaseRef struct {
	ID                int64  `json:"id"`
	TestCaseVersionID *int64 `json:"test_case_version_id"`
}

// TestLog is one recorded execution result on a test run. Logs are
// write-once; corrections are expressed by submitting another log.
type TestLog struct {
	ID                int64       `json:"id,omitempty"`
	Status            StatusRef   `json:"status"`
	TestCaseVersionID int64       `json:"test_case_version_id"`
	Note              string      `json:"note,omitempty"`
	ExeTime           int64       `json:"exe_time,omitempty"`
	Defects           []DefectRef `json:"defects,omitempty"`
	ExeStartDate      string      `json:"exe_start_date,omitempty"`
	ExeEndDate        string      `json:"exe_end_date,omitempty"`
	TestStepLogs      []StepLog   `json:"test_step_logs"`
}

// StatusRef is the status pair attached to logs and step logs.
type StatusRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DefectRef links a defect to a test log.
type DefectRef struct {
	ID string `json:"id"`
}

// StepLog is the per-step detail inside a test log. TestStepID is omitted
// when the step could not be resolved on the platform side.
type StepLog struct {
	Status         StatusRef `json:"status"`
	ActualResult   string    `json:"actual_result"`
	ExpectedResult string    `json:"expected_result,omitempty"`
	Description    string    `json:"description,omitempty"`
	TestStepID     int64     `json:"test_step_id,omitempty"`
}

// TestStep is one authored step of a test case. Deployments disagree on the
// ordering key name, so all known variants are carried; Key returns the
// first present one.
type TestStep struct {
	ID          int64     `json:"id,omitempty"`
	Order       StepOrder `json:"order,omitempty"`
	Index       StepOrder `json:"index,omitempty"`
	Sequence    StepOrder `json:"sequence,omitempty"`
	Position    StepOrder `json:"position,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Action      string    `json:"action,omitempty"`
	Expected    string    `json:"expected,omitempty"`
}

// Key returns the step's ordering key, trying order, index, sequence, and
// position in that priority. ok is false when no key is present.
func (s *TestStep) Key() (StepOrder, bool) {
	for _, o := range []StepOrder{s.Order, s.Index, s.Sequence, s.Position} {
		if o != "" {
			return o, true
		}
	}
	return "", false
}

// ExecutionStatus is one entry of the project's execution status vocabulary.
type ExecutionStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Property is a custom field value on a run or case. FieldID is string-typed
// for the built-in planned date fields and numeric for custom fields; both
// shapes must reach the wire unchanged, hence the loose typing.
type Property struct {
	FieldID        any    `json:"field_id"`
	FieldName      string `json:"field_name,omitempty"`
	FieldValue     any    `json:"field_value,omitempty"`
	FieldValueName string `json:"field_value_name,omitempty"`
}

// FieldSetting is one test-run field definition from the project settings.
type FieldSetting struct {
	ID            int64          `json:"id"`
	Label         string         `json:"label,omitempty"`
	AttributeType string         `json:"attribute_type,omitempty"`
	Required      bool           `json:"required,omitempty"`
	AllowedValues []AllowedValue `json:"allowed_values,omitempty"`
}

// AllowedValue is one selectable value of a combo/list field.
type AllowedValue struct {
	Value any    `json:"value,omitempty"`
	Label string `json:"label,omitempty"`
}

// errorRS is the qTest error response shape.
type errorRS struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// unmarshalItems decodes a list endpoint payload into items. The platform
// serves either a bare JSON array or an {"items": [...], "total": n}
// envelope depending on endpoint and deployment.
func unmarshalItems(data []byte, items any, total *int) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, items)
	}
	var env struct {
		Items json.RawMessage `json:"items"`
		Total int             `json:"total"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	if total != nil {
		*total = env.Total
	}
	if len(env.Items) == 0 {
		return nil
	}
	return json.Unmarshal(env.Items, items)
}

// pagedCases is one page of case listing, in either response shape.
type pagedCases struct {
	Items []TestCase
	Total int
}

func (p *pagedCases) UnmarshalJSON(data []byte) error {
	return unmarshalItems(data, &p.Items, &p.Total)
}

// pagedCycles is the cycle listing response, in either shape.
type pagedCycles struct {
	Items []TestCycle
	Total int
}

func (p *pagedCycles) UnmarshalJSON(data []byte) error {
	return unmarshalItems(data, &p.Items, &p.Total)
}

// pagedSuites is the suite listing response, in either shape.
type pagedSuites struct {
	Items []TestSuite
	Total int
}

func (p *pagedSuites) UnmarshalJSON(data []byte) error {
	return unmarshalItems(data, &p.Items, &p.Total)
}

// pagedRuns is the run listing response, in either shape.
type pagedRuns struct {
	Items []TestRun
	Total int
}

func (p *pagedRuns) UnmarshalJSON(data []byte) error {
	return unmarshalItems(data, &p.Items, &p.Total)
}

// pagedSteps is the step listing response, in either shape.
type pagedSteps struct {
	Items []TestStep
}

func (p *pagedSteps) UnmarshalJSON(data []byte) error {
	return unmarshalItems(data, &p.Items, nil)
}

// pagedLogs is the test log listing response, in either shape.
type pagedLogs struct {
	Items []TestLog
}

func (p *pagedLogs) UnmarshalJSON(data []byte) error {
	return unmarshalItems(data, &p.Items, nil)
}
