package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"qrelay/internal/config"
	"qrelay/internal/format"
	"qrelay/internal/journal"
	"qrelay/internal/logging"
	"qrelay/internal/qtest"
	"qrelay/internal/report"
)

var rootFlags struct {
	config   string
	markdown bool
}

func tableMode() format.Mode {
	if rootFlags.markdown {
		return format.Markdown
	}
	return format.ASCII
}

// newManager loads the config, initializes logging, and builds the reporting
// manager. Commands call it first, before touching anything else.
func newManager() (*report.Manager, *config.Config, error) {
	path := rootFlags.config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	client, err := qtest.New(cfg.QTestURL, cfg.APIToken, qtest.WithTimeout(cfg.Timeout()))
	if err != nil {
		return nil, nil, err
	}
	var opts []report.ManagerOption
	if f := cfg.BuildVersionField; f != nil {
		opts = append(opts, report.WithBuildVersionField(report.BuildVersionField{
			ID:        f.ID,
			Name:      f.Name,
			Value:     f.Value,
			ValueName: f.ValueName,
		}))
	}
	return report.NewManager(client.Project(cfg.ProjectID), opts...), cfg, nil
}

func openJournal(cfg *config.Config, disabled bool) (journal.Journal, error) {
	if disabled {
		return journal.NewMem(), nil
	}
	path := cfg.JournalPath
	if path == "" {
		path = journal.DefaultDBPath
	}
	jnl, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return jnl, nil
}

// resolveCaseTokens turns --case values (numeric IDs or exact case names,
// each possibly comma-separated) into case IDs. Unresolved names are
// collected and reported together.
func resolveCaseTokens(ctx context.Context, mgr *report.Manager, values []string) ([]int64, error) {
	var ids []int64
	var missing []string
	for _, v := range values {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if id, err := strconv.ParseInt(tok, 10, 64); err == nil {
				ids = append(ids, id)
				continue
			}
			id, ok, err := mgr.Resolver().CaseID(ctx, tok)
			if err != nil {
				return nil, fmt.Errorf("resolve test case %q: %w", tok, err)
			}
			if !ok {
				missing = append(missing, tok)
				continue
			}
			ids = append(ids, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unresolved test case names: %s", strings.Join(missing, ", "))
	}
	if len(ids) == 0 {
		return nil, errors.New("no test cases given")
	}
	return ids, nil
}

func parseTimestamp(label, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: expected RFC 3339 timestamp: %w", label, err)
	}
	return t, nil
}

// readStepLogs loads step logs from a YAML or JSON file holding either a
// list of step logs or an object with a "logs" list.
func readStepLogs(path string) ([]qtest.StepLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	container, err := decodeAny(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	logs, err := report.StepLogs(container)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return logs, nil
}

func decodeAny(data []byte, ext string) (any, error) {
	var v any
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &v)
	} else {
		err = yaml.Unmarshal(data, &v)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
