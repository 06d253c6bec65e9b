// Package keywords exposes the reporting operations as MCP tools so test
// runners (Robot Framework bridges, agent harnesses) can drive them over
// stdio without linking Go code. Tool names and semantics mirror the
// original runner keyword library.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"qrelay/internal/logging"
	"qrelay/internal/qtest"
	"qrelay/internal/report"
	"qrelay/internal/resolve"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around a report.Manager. Timers are
// per-process, keyed by name, guarded by mu.
type Server struct {
	MCPServer *sdkmcp.Server

	manager *report.Manager
	logger  *slog.Logger

	mu     sync.Mutex
	timers map[string]time.Time
}

// NewServer creates an MCP server exposing the reporting toolset.
func NewServer(manager *report.Manager) *Server {
	s := &Server{
		manager: manager,
		logger:  logging.New("keywords"),
		timers:  make(map[string]time.Time),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "qrelay", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_execution_statuses",
		Description: "List the execution status names the project accepts for test results.",
	}, s.handleGetExecutionStatuses)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "resolve_test_case",
		Description: "Resolve a test case name to its numeric ID. Fails when no case matches.",
	}, s.handleResolveTestCase)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_test_cycle",
		Description: "Get or create a test cycle by name and return its ID. An existing cycle with the same name is reused.",
	}, s.handleCreateTestCycle)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_test_run",
		Description: "Create a test run bound to one or more test cases, given as comma-separated IDs or names. Optionally under a cycle, optionally approving the single case first.",
	}, s.handleCreateTestRun)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ensure_test_run",
		Description: "Return the run bound to a test case under a parent container, creating it when missing.",
	}, s.handleEnsureTestRun)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "approve_test_case",
		Description: "Approve a test case by ID or name and return its current version ID.",
	}, s.handleApproveTestCase)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "report_result",
		Description: "Record one execution result on a test run. The status must be a known execution status name.",
	}, s.handleReportResult)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "bulk_report_results",
		Description: "Record many execution results on one run. Items fail independently; the response carries a per-item outcome.",
	}, s.handleBulkReportResults)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "build_step_log",
		Description: "Build a step log entry for a case step, resolving the platform step ID from the step order when possible.",
	}, s.handleBuildStepLog)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "append_step_log",
		Description: "Build a step log entry and append it to a JSON container (list, or object with a logs field). Pass the returned JSON back in on the next call.",
	}, s.handleAppendStepLog)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_results",
		Description: "List the result logs already recorded on a test run.",
	}, s.handleRunResults)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "start_timer",
		Description: "Start (or restart) a named timer.",
	}, s.handleStartTimer)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "read_timer",
		Description: "Read a named timer's elapsed milliseconds. Returns started=false and 0 when the timer was never started.",
	}, s.handleReadTimer)
}

// --- Tool input/output types ---

type getExecutionStatusesInput struct{}

type getExecutionStatusesOutput struct {
	Statuses []string `json:"statuses"`
}

type resolveTestCaseInput struct {
	Name string `json:"name" jsonschema:"exact test case name"`
}

type resolveTestCaseOutput struct {
	ID int64 `json:"id"`
}

type createTestCycleInput struct {
	Name        string `json:"name" jsonschema:"test cycle name"`
	Description string `json:"description,omitempty" jsonschema:"optional description for a newly created cycle"`
}

type createTestCycleOutput struct {
	ID int64 `json:"id"`
}

type createTestRunInput struct {
	Name         string `json:"name" jsonschema:"test run name"`
	TestCases    string `json:"test_cases" jsonschema:"comma-separated test case IDs or names (e.g. '12345,Login,Search')"`
	TestCycle    string `json:"test_cycle,omitempty" jsonschema:"optional parent cycle, ID or name (created when a name does not exist)"`
	Description  string `json:"description,omitempty" jsonschema:"optional description"`
	BuildVersion string `json:"build_version,omitempty" jsonschema:"optional build version property value"`
	Approve      bool   `json:"approve,omitempty" jsonschema:"approve the case first and bind its version ID; requires a single test case"`
}

type createTestRunOutput struct {
	RunID       int64   `json:"run_id"`
	TestCaseIDs []int64 `json:"test_case_ids"`
	VersionID   int64   `json:"version_id,omitempty"`
}

type ensureTestRunInput struct {
	ParentID     int64  `json:"parent_id" jsonschema:"ID of the parent container"`
	ParentType   string `json:"parent_type" jsonschema:"parent container type (test-cycle, test-suite, release, root)"`
	TestCase     string `json:"test_case" jsonschema:"test case ID or name"`
	SkipCreate   bool   `json:"skip_create,omitempty" jsonschema:"fail instead of creating when no run is bound to the case"`
	ExeStartDate string `json:"exe_start_date,omitempty" jsonschema:"execution start, RFC 3339, stamped on a newly created run"`
	ExeEndDate   string `json:"exe_end_date,omitempty" jsonschema:"execution end, RFC 3339, stamped on a newly created run"`
}

type ensureTestRunOutput struct {
	RunID int64 `json:"run_id"`
}

type approveTestCaseInput struct {
	TestCase string `json:"test_case" jsonschema:"test case ID or name"`
}

type approveTestCaseOutput struct {
	VersionID int64 `json:"version_id"`
	Fallback  bool  `json:"fallback,omitempty" jsonschema:"true when no version ID could be read back and the case ID stands in"`
}

type reportResultInput struct {
	RunID           int64    `json:"run_id" jsonschema:"test run ID"`
	TestCase        string   `json:"test_case" jsonschema:"test case ID or name"`
	Status          string   `json:"status" jsonschema:"execution status name (PASSED, FAILED, ...), matched case-insensitively"`
	Note            string   `json:"note,omitempty" jsonschema:"optional message attached to the result"`
	ExecutionTimeMS int64    `json:"execution_time_ms,omitempty" jsonschema:"execution time in milliseconds"`
	VersionID       int64    `json:"version_id,omitempty" jsonschema:"case version the result applies to; defaults to the case ID"`
	Defects         []string `json:"defects,omitempty" jsonschema:"optional defect identifiers to link"`
	ExeStartDate    string   `json:"exe_start_date,omitempty" jsonschema:"execution start, RFC 3339"`
	ExeEndDate      string   `json:"exe_end_date,omitempty" jsonschema:"execution end, RFC 3339"`
	StepLogsJSON    string   `json:"step_logs_json,omitempty" jsonschema:"step logs as JSON: a list, or an object with a logs field (from append_step_log)"`
	Approve         bool     `json:"approve,omitempty" jsonschema:"approve the case first and report against its version ID"`
}

type reportResultOutput struct {
	LogID int64 `json:"log_id"`
}

type bulkResultItem struct {
	TestCaseID      int64    `json:"test_case_id" jsonschema:"test case ID"`
	Status          string   `json:"status" jsonschema:"execution status name"`
	Note            string   `json:"note,omitempty"`
	ExecutionTimeMS int64    `json:"execution_time_ms,omitempty"`
	VersionID       int64    `json:"version_id,omitempty"`
	Defects         []string `json:"defects,omitempty"`
	ExeStartDate    string   `json:"exe_start_date,omitempty" jsonschema:"execution start, RFC 3339"`
	ExeEndDate      string   `json:"exe_end_date,omitempty" jsonschema:"execution end, RFC 3339"`
	StepLogsJSON    string   `json:"step_logs_json,omitempty"`
}

type bulkReportResultsInput struct {
	RunID    int64            `json:"run_id" jsonschema:"test run ID"`
	Results  []bulkResultItem `json:"results" jsonschema:"one entry per test case result"`
	Parallel int              `json:"parallel,omitempty" jsonschema:"number of concurrent submissions (default 1 = serial)"`
}

type bulkItemOutcome struct {
	TestCaseID int64  `json:"test_case_id"`
	LogID      int64  `json:"log_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type bulkReportResultsOutput struct {
	Results []bulkItemOutcome `json:"results"`
	Total   int               `json:"total"`
	Failed  int               `json:"failed"`
}

type buildStepLogInput struct {
	TestCaseID     int64  `json:"test_case_id" jsonschema:"test case the step belongs to"`
	StepOrder      int64  `json:"step_order" jsonschema:"1-based step order within the case"`
	Result         string `json:"result" jsonschema:"step status name (PASSED, FAILED, SKIPPED, BLOCKED)"`
	ActualResult   string `json:"actual_result,omitempty"`
	ExpectedResult string `json:"expected_result,omitempty"`
	Description    string `json:"description,omitempty"`
}

type buildStepLogOutput struct {
	StepLog qtest.StepLog `json:"step_log"`
}

type appendStepLogInput struct {
	LogsJSON       string `json:"logs_json,omitempty" jsonschema:"existing container JSON; empty starts a new list"`
	TestCaseID     int64  `json:"test_case_id" jsonschema:"test case the step belongs to"`
	StepOrder      int64  `json:"step_order" jsonschema:"1-based step order within the case"`
	Result         string `json:"result" jsonschema:"step status name"`
	ActualResult   string `json:"actual_result,omitempty"`
	ExpectedResult string `json:"expected_result,omitempty"`
	Description    string `json:"description,omitempty"`
}

type appendStepLogOutput struct {
	LogsJSON string `json:"logs_json"`
	Count    int    `json:"count"`
}

type runResultsInput struct {
	RunID int64 `json:"run_id" jsonschema:"test run ID"`
}

type runResultsOutput struct {
	Logs  []qtest.TestLog `json:"logs"`
	Total int             `json:"total"`
}

type startTimerInput struct {
	Name string `json:"name" jsonschema:"timer name, typically the test name"`
}

type startTimerOutput struct {
	OK string `json:"ok"`
}

type readTimerInput struct {
	Name string `json:"name" jsonschema:"timer name passed to start_timer"`
}

type readTimerOutput struct {
	ElapsedMS int64 `json:"elapsed_ms"`
	Started   bool  `json:"started"`
}

// --- Tool handlers ---

func (s *Server) handleGetExecutionStatuses(ctx context.Context, _ *sdkmcp.CallToolRequest, _ getExecutionStatusesInput) (*sdkmcp.CallToolResult, getExecutionStatusesOutput, error) {
	names, err := s.manager.Registry().Names(ctx)
	if err != nil {
		return nil, getExecutionStatusesOutput{}, fmt.Errorf("get_execution_statuses: %w", err)
	}
	return nil, getExecutionStatusesOutput{Statuses: names}, nil
}

func (s *Server) handleResolveTestCase(ctx context.Context, _ *sdkmcp.CallToolRequest, input resolveTestCaseInput) (*sdkmcp.CallToolResult, resolveTestCaseOutput, error) {
	id, err := resolve.ByName(input.Name).CaseID(ctx, s.manager.Resolver())
	if err != nil {
		return nil, resolveTestCaseOutput{}, fmt.Errorf("resolve_test_case: %w", err)
	}
	s.logger.Info("resolved test case", "name", input.Name, "id", id)
	return nil, resolveTestCaseOutput{ID: id}, nil
}

func (s *Server) handleCreateTestCycle(ctx context.Context, _ *sdkmcp.CallToolRequest, input createTestCycleInput) (*sdkmcp.CallToolResult, createTestCycleOutput, error) {
	if input.Name == "" {
		return nil, createTestCycleOutput{}, fmt.Errorf("create_test_cycle: name is required")
	}
	id, err := s.manager.GetOrCreateCycle(ctx, input.Name, input.Description)
	if err != nil {
		return nil, createTestCycleOutput{}, fmt.Errorf("create_test_cycle: %w", err)
	}
	return nil, createTestCycleOutput{ID: id}, nil
}

func (s *Server) handleCreateTestRun(ctx context.Context, _ *sdkmcp.CallToolRequest, input createTestRunInput) (*sdkmcp.CallToolResult, createTestRunOutput, error) {
	ids, err := s.resolveCaseTokens(ctx, input.TestCases)
	if err != nil {
		return nil, createTestRunOutput{}, fmt.Errorf("create_test_run: %w", err)
	}

	in := report.CreateRunInput{
		Name:         input.Name,
		Description:  input.Description,
		BuildVersion: input.BuildVersion,
	}
	if input.TestCycle != "" {
		in.Cycle = resolve.Parse(input.TestCycle)
	}

	var versionID int64
	if input.Approve {
		if len(ids) != 1 {
			return nil, createTestRunOutput{}, fmt.Errorf("create_test_run: approve requires a single test case, got %d", len(ids))
		}
		res, err := s.manager.ApproveCase(ctx, ids[0])
		if err != nil {
			return nil, createTestRunOutput{}, fmt.Errorf("create_test_run: %w", err)
		}
		versionID = res.VersionID
	}

	if len(ids) == 1 {
		in.CaseID = ids[0]
		in.VersionID = versionID
	} else {
		in.CaseIDs = ids
	}

	run, err := s.manager.CreateRun(ctx, in)
	if err != nil {
		return nil, createTestRunOutput{}, fmt.Errorf("create_test_run: %w", err)
	}
	return nil, createTestRunOutput{RunID: run.ID, TestCaseIDs: ids, VersionID: versionID}, nil
}

func (s *Server) handleEnsureTestRun(ctx context.Context, _ *sdkmcp.CallToolRequest, input ensureTestRunInput) (*sdkmcp.CallToolResult, ensureTestRunOutput, error) {
	caseID, err := resolve.Parse(input.TestCase).CaseID(ctx, s.manager.Resolver())
	if err != nil {
		return nil, ensureTestRunOutput{}, fmt.Errorf("ensure_test_run: %w", err)
	}

	exeStart, err := parseDate("exe_start_date", input.ExeStartDate)
	if err != nil {
		return nil, ensureTestRunOutput{}, fmt.Errorf("ensure_test_run: %w", err)
	}
	exeEnd, err := parseDate("exe_end_date", input.ExeEndDate)
	if err != nil {
		return nil, ensureTestRunOutput{}, fmt.Errorf("ensure_test_run: %w", err)
	}

	runID, err := s.manager.EnsureRunForCase(ctx, report.EnsureRunInput{
		Parent:          qtest.Parent{ID: input.ParentID, Type: input.ParentType},
		CaseID:          caseID,
		CreateIfMissing: !input.SkipCreate,
		ExeStart:        exeStart,
		ExeEnd:          exeEnd,
	})
	if err != nil {
		return nil, ensureTestRunOutput{}, fmt.Errorf("ensure_test_run: %w", err)
	}
	return nil, ensureTestRunOutput{RunID: runID}, nil
}

func (s *Server) handleApproveTestCase(ctx context.Context, _ *sdkmcp.CallToolRequest, input approveTestCaseInput) (*sdkmcp.CallToolResult, approveTestCaseOutput, error) {
	caseID, err := resolve.Parse(input.TestCase).CaseID(ctx, s.manager.Resolver())
	if err != nil {
		return nil, approveTestCaseOutput{}, fmt.Errorf("approve_test_case: %w", err)
	}
	res, err := s.manager.ApproveCase(ctx, caseID)
	if err != nil {
		return nil, approveTestCaseOutput{}, fmt.Errorf("approve_test_case: %w", err)
	}
	return nil, approveTestCaseOutput{VersionID: res.VersionID, Fallback: res.Fallback}, nil
}

func (s *Server) handleReportResult(ctx context.Context, _ *sdkmcp.CallToolRequest, input reportResultInput) (*sdkmcp.CallToolResult, reportResultOutput, error) {
	caseID, err := resolve.Parse(input.TestCase).CaseID(ctx, s.manager.Resolver())
	if err != nil {
		return nil, reportResultOutput{}, fmt.Errorf("report_result: %w", err)
	}

	versionID := input.VersionID
	if input.Approve {
		res, err := s.manager.ApproveCase(ctx, caseID)
		if err != nil {
			return nil, reportResultOutput{}, fmt.Errorf("report_result: %w", err)
		}
		versionID = res.VersionID
	}

	steps, err := decodeStepLogs(input.StepLogsJSON)
	if err != nil {
		return nil, reportResultOutput{}, fmt.Errorf("report_result: %w", err)
	}
	exeStart, err := parseDate("exe_start_date", input.ExeStartDate)
	if err != nil {
		return nil, reportResultOutput{}, fmt.Errorf("report_result: %w", err)
	}
	exeEnd, err := parseDate("exe_end_date", input.ExeEndDate)
	if err != nil {
		return nil, reportResultOutput{}, fmt.Errorf("report_result: %w", err)
	}

	log, err := s.manager.UpdateResult(ctx, report.ResultInput{
		RunID:     input.RunID,
		CaseID:    caseID,
		Status:    input.Status,
		VersionID: versionID,
		Note:      input.Note,
		ExeTime:   input.ExecutionTimeMS,
		Defects:   input.Defects,
		ExeStart:  exeStart,
		ExeEnd:    exeEnd,
		StepLogs:  steps,
	})
	if err != nil {
		return nil, reportResultOutput{}, fmt.Errorf("report_result: %w", err)
	}
	return nil, reportResultOutput{LogID: log.ID}, nil
}

func (s *Server) handleBulkReportResults(ctx context.Context, _ *sdkmcp.CallToolRequest, input bulkReportResultsInput) (*sdkmcp.CallToolResult, bulkReportResultsOutput, error) {
	if len(input.Results) == 0 {
		return nil, bulkReportResultsOutput{}, fmt.Errorf("bulk_report_results: results is empty")
	}

	items := make([]report.BulkItem, len(input.Results))
	for i, r := range input.Results {
		steps, err := decodeStepLogs(r.StepLogsJSON)
		if err != nil {
			return nil, bulkReportResultsOutput{}, fmt.Errorf("bulk_report_results: results[%d]: %w", i, err)
		}
		exeStart, err := parseDate("exe_start_date", r.ExeStartDate)
		if err != nil {
			return nil, bulkReportResultsOutput{}, fmt.Errorf("bulk_report_results: results[%d]: %w", i, err)
		}
		exeEnd, err := parseDate("exe_end_date", r.ExeEndDate)
		if err != nil {
			return nil, bulkReportResultsOutput{}, fmt.Errorf("bulk_report_results: results[%d]: %w", i, err)
		}
		items[i] = report.BulkItem{
			CaseID:    r.TestCaseID,
			Status:    r.Status,
			VersionID: r.VersionID,
			Note:      r.Note,
			ExeTime:   r.ExecutionTimeMS,
			Defects:   r.Defects,
			ExeStart:  exeStart,
			ExeEnd:    exeEnd,
			StepLogs:  steps,
		}
	}

	results := s.manager.BulkUpdateResults(ctx, input.RunID, items, report.WithParallelism(input.Parallel))

	out := bulkReportResultsOutput{
		Results: make([]bulkItemOutcome, len(results)),
		Total:   len(results),
	}
	for i, r := range results {
		outcome := bulkItemOutcome{TestCaseID: r.TestCaseID}
		if r.Err != nil {
			outcome.Error = r.Err.Error()
			out.Failed++
		} else if r.Log != nil {
			outcome.LogID = r.Log.ID
		}
		out.Results[i] = outcome
	}
	return nil, out, nil
}

func (s *Server) handleBuildStepLog(ctx context.Context, _ *sdkmcp.CallToolRequest, input buildStepLogInput) (*sdkmcp.CallToolResult, buildStepLogOutput, error) {
	step, err := s.manager.BuildStepLog(ctx, input.TestCaseID, input.StepOrder, input.Result, input.ActualResult, input.ExpectedResult, input.Description)
	if err != nil {
		return nil, buildStepLogOutput{}, fmt.Errorf("build_step_log: %w", err)
	}
	return nil, buildStepLogOutput{StepLog: step}, nil
}

func (s *Server) handleAppendStepLog(ctx context.Context, _ *sdkmcp.CallToolRequest, input appendStepLogInput) (*sdkmcp.CallToolResult, appendStepLogOutput, error) {
	step, err := s.manager.BuildStepLog(ctx, input.TestCaseID, input.StepOrder, input.Result, input.ActualResult, input.ExpectedResult, input.Description)
	if err != nil {
		return nil, appendStepLogOutput{}, fmt.Errorf("append_step_log: %w", err)
	}

	var container any
	if strings.TrimSpace(input.LogsJSON) != "" {
		if err := json.Unmarshal([]byte(input.LogsJSON), &container); err != nil {
			return nil, appendStepLogOutput{}, fmt.Errorf("append_step_log: logs_json is not valid JSON: %w", err)
		}
	}

	appended, err := report.AppendStepLog(container, step)
	if err != nil {
		return nil, appendStepLogOutput{}, fmt.Errorf("append_step_log: %w", err)
	}
	steps, err := report.StepLogs(appended)
	if err != nil {
		return nil, appendStepLogOutput{}, fmt.Errorf("append_step_log: %w", err)
	}
	data, err := json.Marshal(appended)
	if err != nil {
		return nil, appendStepLogOutput{}, fmt.Errorf("append_step_log: %w", err)
	}
	return nil, appendStepLogOutput{LogsJSON: string(data), Count: len(steps)}, nil
}

func (s *Server) handleRunResults(ctx context.Context, _ *sdkmcp.CallToolRequest, input runResultsInput) (*sdkmcp.CallToolResult, runResultsOutput, error) {
	logs, err := s.manager.RunResults(ctx, input.RunID)
	if err != nil {
		return nil, runResultsOutput{}, fmt.Errorf("run_results: %w", err)
	}
	return nil, runResultsOutput{Logs: logs, Total: len(logs)}, nil
}

func (s *Server) handleStartTimer(ctx context.Context, _ *sdkmcp.CallToolRequest, input startTimerInput) (*sdkmcp.CallToolResult, startTimerOutput, error) {
	if input.Name == "" {
		return nil, startTimerOutput{}, fmt.Errorf("start_timer: name is required")
	}
	s.mu.Lock()
	s.timers[input.Name] = time.Now()
	s.mu.Unlock()
	s.logger.Debug("timer started", "name", input.Name)
	return nil, startTimerOutput{OK: "timer started"}, nil
}

func (s *Server) handleReadTimer(ctx context.Context, _ *sdkmcp.CallToolRequest, input readTimerInput) (*sdkmcp.CallToolResult, readTimerOutput, error) {
	if input.Name == "" {
		return nil, readTimerOutput{}, fmt.Errorf("read_timer: name is required")
	}
	s.mu.Lock()
	start, ok := s.timers[input.Name]
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("timer was never started", "name", input.Name)
		return nil, readTimerOutput{ElapsedMS: 0, Started: false}, nil
	}
	return nil, readTimerOutput{
		ElapsedMS: time.Since(start).Milliseconds(),
		Started:   true,
	}, nil
}

// --- Helpers ---

// resolveCaseTokens turns a comma-separated list of IDs and names into case
// IDs. All names are resolved before failing, so the error lists every
// unresolved one.
func (s *Server) resolveCaseTokens(ctx context.Context, tokens string) ([]int64, error) {
	var ids []int64
	var missing []string
	for _, tok := range strings.Split(tokens, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if id, err := strconv.ParseInt(tok, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}
		id, ok, err := s.manager.Resolver().CaseID(ctx, tok)
		if err != nil {
			return nil, fmt.Errorf("resolve test case %q: %w", tok, err)
		}
		if !ok {
			missing = append(missing, tok)
			continue
		}
		ids = append(ids, id)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unresolved test case names: %s", strings.Join(missing, ", "))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no test cases given")
	}
	return ids, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected RFC 3339 timestamp: %w", field, err)
	}
	return t, nil
}

// decodeStepLogs accepts the step log container shapes append_step_log
// produces: empty, a JSON list, or an object with a logs field.
func decodeStepLogs(raw string) ([]qtest.StepLog, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var container any
	if err := json.Unmarshal([]byte(raw), &container); err != nil {
		return nil, fmt.Errorf("step_logs_json is not valid JSON: %w", err)
	}
	steps, err := report.StepLogs(container)
	if err != nil {
		return nil, fmt.Errorf("step_logs_json: %w", err)
	}
	return steps, nil
}
