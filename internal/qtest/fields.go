package qtest

import "context"

// FieldScope provides read access to project field settings.
type FieldScope struct {
	project *ProjectScope
}

// RunFields returns the test-run field definitions for the project. This is
// how operators discover the numeric ids of custom fields such as Build
// Version.
func (s *FieldScope) RunFields(ctx context.Context) ([]FieldSetting, error) {
	u := s.project.url("settings/test-runs/fields")

	var fields []FieldSetting
	if err := s.project.client.doJSON(ctx, "GET", u, "get test run fields", nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
