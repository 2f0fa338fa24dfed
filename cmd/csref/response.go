package main

import (
	"encoding/json"
	"fmt"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
)

// successResponse is the {success: true, ...} shape spec §6's tool surface
// requires for a mutating operation's outcome.
type successResponse struct {
	Success           bool                  `json:"success"`
	OperationID       string                `json:"operationId"`
	Changes           []model.PendingChange `json:"changes,omitempty"`
	FilesModified     []string              `json:"filesModified,omitempty"`
	FilesCreated      []string              `json:"filesCreated,omitempty"`
	FilesDeleted      []string              `json:"filesDeleted,omitempty"`
	Symbol            *model.Symbol         `json:"symbol,omitempty"`
	ReferencesUpdated int                   `json:"referencesUpdated"`
	ExecutionTimeMs   int64                 `json:"executionTimeMs"`
}

// errorResponse is the {success: false, error: {...}} shape.
type errorResponse struct {
	Success bool          `json:"success"`
	Error   errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// queryResponse wraps a read-only query's result: queries never produce
// FilesModified/ReferencesUpdated, so they get their own minimal envelope
// rather than padding the mutating-operation shape with unused fields.
type queryResponse struct {
	Success         bool  `json:"success"`
	Result          any   `json:"result"`
	ExecutionTimeMs int64 `json:"executionTimeMs"`
}

func renderResult(result model.Result) ([]byte, error) {
	resp := successResponse{
		Success:           true,
		OperationID:       result.OperationID,
		Changes:           result.PendingChanges,
		FilesModified:     result.FilesModified,
		FilesCreated:      result.FilesCreated,
		FilesDeleted:      result.FilesDeleted,
		Symbol:            result.Symbol,
		ReferencesUpdated: result.ReferencesUpdated,
		ExecutionTimeMs:   result.ExecutionTime.Milliseconds(),
	}
	return json.MarshalIndent(resp, "", "  ")
}

func renderQuery(result any, elapsedMs int64) ([]byte, error) {
	resp := queryResponse{Success: true, Result: result, ExecutionTimeMs: elapsedMs}
	return json.MarshalIndent(resp, "", "  ")
}

func renderError(err error) []byte {
	var code, message string
	var details map[string]any
	var suggestions []string

	if rerr, ok := err.(*errtax.RefactoringError); ok {
		code = rerr.Code.String()
		message = rerr.Message
		details = rerr.Details
		suggestions = rerr.Suggestions
	} else {
		code = errtax.CodeFilesystemError.String()
		message = err.Error()
	}

	resp := errorResponse{
		Success: false,
		Error: errorEnvelope{
			Code:        code,
			Message:     message,
			Details:     details,
			Suggestions: suggestions,
		},
	}
	out, marshalErr := json.MarshalIndent(resp, "", "  ")
	if marshalErr != nil {
		return []byte(fmt.Sprintf(`{"success":false,"error":{"code":"SYSTEM_ERROR","message":%q}}`, err.Error()))
	}
	return out
}
