package report

import (
	"context"
	"encoding/json"
	"strings"

	"qrelay/internal/qtest"
)

// BuildStepLog composes the per-step detail for a result. The result name is
// normalized to upper case and mapped through the step status table; names
// outside the table map to status id 0, which the platform shows as unset.
// The step id is looked up by order number; an unresolvable step (or a
// failed lookup) leaves the id off the log rather than failing the build.
func (m *Manager) BuildStepLog(ctx context.Context, caseID, order int64, result, actual, expected, description string) (qtest.StepLog, error) {
	name := strings.ToUpper(strings.TrimSpace(result))
	if name == "" {
		return qtest.StepLog{}, invalidInput("step log: empty step status")
	}

	log := qtest.StepLog{
		Status:         qtest.StatusRef{ID: m.stepStatusIDs[name], Name: name},
		ActualResult:   actual,
		ExpectedResult: expected,
		Description:    description,
	}

	stepID, ok, err := m.resolver.StepID(ctx, caseID, order)
	switch {
	case err != nil:
		m.logger.DebugContext(ctx, "step lookup failed", "case", caseID, "order", order, "error", err)
	case !ok:
		m.logger.DebugContext(ctx, "step not found", "case", caseID, "order", order)
	default:
		log.TestStepID = stepID
	}
	return log, nil
}

// AppendStepLog adds a step log to a container, handed back for the next
// append. Callers accumulate step detail across keyword invocations, so the
// container arrives in whatever shape the runner kept it in: nothing yet, a
// plain list, or an object whose step logs live under "logs".
func AppendStepLog(container any, step qtest.StepLog) (any, error) {
	switch c := container.(type) {
	case nil:
		return []qtest.StepLog{step}, nil
	case string:
		if c == "" {
			return []qtest.StepLog{step}, nil
		}
		return nil, invalidInput("step log container is a non-empty string")
	case []qtest.StepLog:
		return append(c, step), nil
	case []any:
		return append(c, step), nil
	case map[string]any:
		logs, present := c["logs"]
		if !present || logs == nil {
			c["logs"] = []qtest.StepLog{step}
			return c, nil
		}
		switch l := logs.(type) {
		case []qtest.StepLog:
			c["logs"] = append(l, step)
		case []any:
			c["logs"] = append(l, step)
		default:
			return nil, invalidInput("step log container field %q is %T, not a list", "logs", logs)
		}
		return c, nil
	default:
		return nil, invalidInput("unsupported step log container type %T", container)
	}
}

// StepLogs normalizes a step log container to the slice attached to a test
// log. The container shapes match AppendStepLog; an empty container yields
// an empty slice.
func StepLogs(container any) ([]qtest.StepLog, error) {
	switch c := container.(type) {
	case nil:
		return nil, nil
	case string:
		if c == "" {
			return nil, nil
		}
		return nil, invalidInput("step log container is a non-empty string")
	case []qtest.StepLog:
		return c, nil
	case []any:
		return coerceStepLogs(c)
	case map[string]any:
		logs, present := c["logs"]
		if !present || logs == nil {
			return nil, nil
		}
		return StepLogs(logs)
	default:
		return nil, invalidInput("unsupported step log container type %T", container)
	}
}

// coerceStepLogs converts a decoded-JSON list, possibly mixing raw objects
// with already-typed entries, into step logs via a JSON round trip.
func coerceStepLogs(list []any) ([]qtest.StepLog, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return nil, invalidInput("step log container not serializable: %v", err)
	}
	var out []qtest.StepLog
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, invalidInput("step log container holds non step log entries: %v", err)
	}
	return out, nil
}
