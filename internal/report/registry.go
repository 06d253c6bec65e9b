package report

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"qrelay/internal/qtest"
)

// StatusRegistry caches the project's execution status vocabulary as a
// map of uppercased names to status ids. The vocabulary is fetched at most
// once per registry lifetime: concurrent first callers share a single fetch,
// a failed fetch is not cached, and Invalidate forces a refetch on the next
// call. After population the map is frozen; accessors hand out copies or
// read it without writing.
type StatusRegistry struct {
	runs *qtest.RunScope

	group singleflight.Group

	mu        sync.RWMutex
	byName    map[string]int64
	populated bool
}

// NewStatusRegistry returns an empty registry reading from the given run scope.
func NewStatusRegistry(runs *qtest.RunScope) *StatusRegistry {
	return &StatusRegistry{runs: runs}
}

func (g *StatusRegistry) ensure(ctx context.Context) error {
	g.mu.RLock()
	done := g.populated
	g.mu.RUnlock()
	if done {
		return nil
	}

	_, err, _ := g.group.Do("execution-statuses", func() (any, error) {
		g.mu.RLock()
		done := g.populated
		g.mu.RUnlock()
		if done {
			return nil, nil
		}

		statuses, err := g.runs.ExecutionStatuses(ctx)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]int64, len(statuses))
		for _, s := range statuses {
			byName[strings.ToUpper(s.Name)] = s.ID
		}

		g.mu.Lock()
		g.byName = byName
		g.populated = true
		g.mu.Unlock()
		return nil, nil
	})
	return err
}

// Statuses returns the status vocabulary, fetching it on first use. The
// returned map is a copy; mutating it does not affect the registry.
func (g *StatusRegistry) Statuses(ctx context.Context) (map[string]int64, error) {
	if err := g.ensure(ctx); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]int64, len(g.byName))
	for k, v := range g.byName {
		out[k] = v
	}
	return out, nil
}

// Names returns the valid status names, sorted.
func (g *StatusRegistry) Names(ctx context.Context) ([]string, error) {
	if err := g.ensure(ctx); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sortedNames(), nil
}

// sortedNames must be called with mu held.
func (g *StatusRegistry) sortedNames() []string {
	names := make([]string, 0, len(g.byName))
	for name := range g.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status translates a status name, case-insensitively, to the {id, name}
// pair the platform expects. An unknown name yields *InvalidStatusError.
func (g *StatusRegistry) Status(ctx context.Context, name string) (qtest.StatusRef, error) {
	if err := g.ensure(ctx); err != nil {
		return qtest.StatusRef{}, err
	}
	key := strings.ToUpper(name)

	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.byName[key]
	if !ok {
		return qtest.StatusRef{}, &InvalidStatusError{Status: name, Valid: g.sortedNames()}
	}
	return qtest.StatusRef{ID: id, Name: key}, nil
}

// Invalidate drops the cached vocabulary so the next call refetches it.
func (g *StatusRegistry) Invalidate() {
	g.mu.Lock()
	g.byName = nil
	g.populated = false
	g.mu.Unlock()
}
