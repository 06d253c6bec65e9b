package resolve

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token    string
		wantID   int64
		wantName string
	}{
		{"42", 42, ""},
		{" 42 ", 42, ""},
		{"Login Flow", 0, "Login Flow"},
		{"  Login Flow  ", 0, "Login Flow"},
		{"3.5", 0, "3.5"},
		{"TC-12", 0, "TC-12"},
	}
	for _, tt := range tests {
		got := Parse(tt.token)
		if got.id != tt.wantID || got.name != tt.wantName {
			t.Errorf("Parse(%q) = {id: %d, name: %q}, want {id: %d, name: %q}",
				tt.token, got.id, got.name, tt.wantID, tt.wantName)
		}
	}
}

func TestIdentifier_String(t *testing.T) {
	if got := ByID(42).String(); got != "42" {
		t.Errorf("ByID(42).String() = %q, want %q", got, "42")
	}
	if got := ByName("Login Flow").String(); got != "Login Flow" {
		t.Errorf("ByName.String() = %q, want %q", got, "Login Flow")
	}
}

func TestIdentifier_CaseID_ByIDSkipsLookup(t *testing.T) {
	r, requests := newTestResolver(t, serveCases(t, "[]"))
	id, err := ByID(11).CaseID(context.Background(), r)
	if err != nil {
		t.Fatalf("CaseID: %v", err)
	}
	if id != 11 {
		t.Errorf("CaseID = %d, want 11", id)
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestIdentifier_CaseID_ByName(t *testing.T) {
	r, _ := newTestResolver(t, serveCases(t, `[{"id": 11, "name": "Login Flow"}]`))

	id, err := ByName("login flow").CaseID(context.Background(), r)
	if err != nil {
		t.Fatalf("CaseID: %v", err)
	}
	if id != 11 {
		t.Errorf("CaseID = %d, want 11", id)
	}

	_, err = ByName("Ghost Case").CaseID(context.Background(), r)
	if err == nil {
		t.Fatal("expected error for unknown name")
	}
	if want := "test case not found by name: Ghost Case"; err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}

func TestIdentifier_CaseID_Zero(t *testing.T) {
	r, _ := newTestResolver(t, serveCases(t, "[]"))
	_, err := (Identifier{}).CaseID(context.Background(), r)
	if err == nil {
		t.Fatal("expected error for zero identifier")
	}
}

func TestIdentifier_CycleID(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 501, "name": "Regression 2026-08"}]`)
	}
	r, _ := newTestResolver(t, handler)

	id, err := Parse("Regression 2026-08").CycleID(context.Background(), r)
	if err != nil {
		t.Fatalf("CycleID: %v", err)
	}
	if id != 501 {
		t.Errorf("CycleID = %d, want 501", id)
	}

	id, err = Parse("501").CycleID(context.Background(), r)
	if err != nil {
		t.Fatalf("CycleID: %v", err)
	}
	if id != 501 {
		t.Errorf("CycleID = %d, want 501", id)
	}

	_, err = Parse("Nightly").CycleID(context.Background(), r)
	if err == nil || !strings.Contains(err.Error(), "not found by name") {
		t.Errorf("err = %v, want not-found error", err)
	}
}
