package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csrefactor/internal/config"
	"csrefactor/internal/errtax"
	"csrefactor/internal/query"
	"csrefactor/internal/workspace"
)

func setupWorkspace(t *testing.T) (*workspace.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "Widget.cs")
	src := "class Widget { void Use() { var widget = new Widget(); } }"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	w := workspace.New(root)
	if err := w.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return w, path
}

func TestEveryMutatingHandlerIsRegisteredUnderItsOwnFamily(t *testing.T) {
	for name := range mutatingRegistry {
		if _, ok := operationFamilies[name]; !ok {
			t.Errorf("operation %q has no entry in operationFamilies", name)
		}
	}
}

func TestTimeoutForFallsBackToMoveRenameExtract(t *testing.T) {
	cfg := config.DefaultConfig()
	got := timeoutFor(cfg, "find_references")
	want := cfg.TimeoutFor(config.FamilyMoveRenameExtract).Default
	if got != want {
		t.Fatalf("expected fallback timeout %v, got %v", want, got)
	}
}

func TestTimeoutForHonorsInlineConstantFamily(t *testing.T) {
	cfg := config.DefaultConfig()
	got := timeoutFor(cfg, "inline_constant")
	want := cfg.TimeoutFor(config.FamilyInlineConstant).Default
	if got != want {
		t.Fatalf("expected inline_constant family timeout %v, got %v", want, got)
	}
}

func TestSeverityFromStringRejectsUnknownValues(t *testing.T) {
	if severityFromString("bogus") != "" {
		t.Fatal("expected empty severity for unrecognized string")
	}
}

func TestQueryRegistryOutlineDispatch(t *testing.T) {
	w, path := setupWorkspace(t)
	engine := query.New(w)
	defer engine.Close()

	payload, err := json.Marshal(map[string]string{"sourceFile": path})
	if err != nil {
		t.Fatal(err)
	}

	handler, ok := queryRegistry["outline"]
	if !ok {
		t.Fatal("outline not registered")
	}
	result, err := handler(context.Background(), engine, payload)
	if err != nil {
		t.Fatalf("outline dispatch failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a non-nil outline result")
	}
}

func TestUnknownOperationErrorListsCandidates(t *testing.T) {
	err := unknownOperationError("not_a_real_operation")
	if err == nil {
		t.Fatal("expected an error")
	}
	var rerr *errtax.RefactoringError
	if !errtax.As(err, &rerr) || len(rerr.Suggestions) == 0 || !strings.Contains(rerr.Suggestions[0], "rename_symbol") {
		t.Fatalf("expected suggestions listing the available operations, got %v", err)
	}
}
