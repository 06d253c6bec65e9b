package resolve

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Identifier names an entity either by platform id or by display name.
// Callers accept either form at their boundary and resolve to an id exactly
// once, so the rest of the code deals in ids only.
type Identifier struct {
	id   int64
	name string
}

// ByID returns an Identifier carrying a platform id.
func ByID(id int64) Identifier {
	return Identifier{id: id}
}

// ByName returns an Identifier carrying a display name.
func ByName(name string) Identifier {
	return Identifier{name: strings.TrimSpace(name)}
}

// Parse interprets a user-supplied token: an integer is taken as an id,
// anything else as a name.
func Parse(token string) Identifier {
	trimmed := strings.TrimSpace(token)
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return ByID(id)
	}
	return Identifier{name: trimmed}
}

// IsZero reports whether the Identifier names nothing.
func (i Identifier) IsZero() bool {
	return i.id == 0 && i.name == ""
}

// ID returns the carried id; ok is false for the name form.
func (i Identifier) ID() (int64, bool) {
	return i.id, i.id != 0
}

// Name returns the carried name, empty for the id form.
func (i Identifier) Name() string {
	return i.name
}

func (i Identifier) String() string {
	if i.name != "" {
		return i.name
	}
	return strconv.FormatInt(i.id, 10)
}

// CaseID resolves the Identifier to a test case id. A name that does not
// resolve is an error here: the caller asked for this specific case.
func (i Identifier) CaseID(ctx context.Context, r *Resolver) (int64, error) {
	if i.id != 0 {
		return i.id, nil
	}
	if i.name == "" {
		return 0, fmt.Errorf("no test case identifier given")
	}
	id, ok, err := r.CaseID(ctx, i.name)
	if err != nil {
		return 0, fmt.Errorf("resolve test case %q: %w", i.name, err)
	}
	if !ok {
		return 0, fmt.Errorf("test case not found by name: %s", i.name)
	}
	return id, nil
}

// CycleID resolves the Identifier to a test cycle id.
func (i Identifier) CycleID(ctx context.Context, r *Resolver) (int64, error) {
	if i.id != 0 {
		return i.id, nil
	}
	if i.name == "" {
		return 0, fmt.Errorf("no test cycle identifier given")
	}
	id, ok, err := r.CycleID(ctx, i.name)
	if err != nil {
		return 0, fmt.Errorf("resolve test cycle %q: %w", i.name, err)
	}
	if !ok {
		return 0, fmt.Errorf("test cycle not found by name: %s", i.name)
	}
	return id, nil
}
