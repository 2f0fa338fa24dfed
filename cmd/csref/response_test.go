package main

import (
	"encoding/json"
	"testing"
	"time"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
)

func TestRenderResultProducesSuccessEnvelope(t *testing.T) {
	result := model.Result{
		OperationID:       "op-1",
		FilesModified:     []string{"Foo.cs"},
		ReferencesUpdated: 3,
		ExecutionTime:     150 * time.Millisecond,
	}
	out, err := renderResult(result)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["success"] != true {
		t.Fatalf("expected success:true, got %v", decoded["success"])
	}
	if decoded["operationId"] != "op-1" {
		t.Fatalf("expected operationId op-1, got %v", decoded["operationId"])
	}
	if decoded["executionTimeMs"].(float64) != 150 {
		t.Fatalf("expected executionTimeMs 150, got %v", decoded["executionTimeMs"])
	}
}

func TestRenderErrorUsesRefactoringErrorCode(t *testing.T) {
	err := errtax.New(errtax.CodeSymbolNotFound, "symbol 'Foo' not found").
		WithSuggestions("check the spelling", "confirm the file is in the workspace")
	out := renderError(err)

	var decoded map[string]any
	if jsonErr := json.Unmarshal(out, &decoded); jsonErr != nil {
		t.Fatal(jsonErr)
	}
	if decoded["success"] != false {
		t.Fatalf("expected success:false, got %v", decoded["success"])
	}
	errObj := decoded["error"].(map[string]any)
	if errObj["code"] != "SYMBOL_NOT_FOUND" {
		t.Fatalf("expected code SYMBOL_NOT_FOUND, got %v", errObj["code"])
	}
	suggestions := errObj["suggestions"].([]any)
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
}

func TestRenderErrorFallsBackForPlainErrors(t *testing.T) {
	out := renderError(errPlain("disk full"))
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	errObj := decoded["error"].(map[string]any)
	if errObj["code"] != errtax.CodeFilesystemError.String() {
		t.Fatalf("expected fallback filesystem code, got %v", errObj["code"])
	}
	if errObj["message"] != "disk full" {
		t.Fatalf("expected message 'disk full', got %v", errObj["message"])
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestRenderQueryWrapsResultAndElapsed(t *testing.T) {
	out, err := renderQuery([]string{"a", "b"}, 42)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["executionTimeMs"].(float64) != 42 {
		t.Fatalf("expected executionTimeMs 42, got %v", decoded["executionTimeMs"])
	}
	result := decoded["result"].([]any)
	if len(result) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result))
	}
}
