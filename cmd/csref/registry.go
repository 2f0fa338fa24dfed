package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"csrefactor/internal/config"
	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/query"
	"csrefactor/internal/semantic"
	"csrefactor/internal/refactor/convert"
	"csrefactor/internal/refactor/extract"
	"csrefactor/internal/refactor/generate"
	"csrefactor/internal/refactor/inline"
	"csrefactor/internal/refactor/move"
	"csrefactor/internal/refactor/organize"
	"csrefactor/internal/refactor/rename"
	"csrefactor/internal/workspace"
)

// mutatingHandler runs one refactoring operation's full Validate/Resolve/
// Compute/Commit cycle from a raw JSON payload, honoring preview mode.
type mutatingHandler func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error)

// queryHandler runs one read-only query from a raw JSON payload.
type queryHandler func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error)

// runMutating decodes payload into a fresh *In, builds spec via newSpec, and
// drives it through operation.Run — the shape every refactoring operation
// in the registry below shares.
func runMutating[In any](ctx context.Context, ws *workspace.Workspace, kind string, newSpec func(*workspace.Workspace) operation.Spec[In], zero func() In, payload json.RawMessage, preview bool) (model.Result, error) {
	in := zero()
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, in); err != nil {
			return model.Result{}, errtax.Newf(errtax.CodeInvalidPath, "invalid payload for %s: %v", kind, err)
		}
	}
	spec := newSpec(ws)
	op := operation.New(kind, in)
	return operation.Run(ctx, ws, spec, op, preview)
}

var mutatingRegistry = map[string]mutatingHandler{
	"move_type_to_file": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "MoveTypeToFile", move.NewToFileSpec, func() *move.ToFileInput { return &move.ToFileInput{} }, payload, preview)
	},
	"move_type_to_namespace": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "MoveTypeToNamespace", move.NewToNamespaceSpec, func() *move.NamespaceInput { return &move.NamespaceInput{} }, payload, preview)
	},
	"rename_symbol": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "RenameSymbol", rename.NewSpec, func() *rename.Input { return &rename.Input{} }, payload, preview)
	},
	"extract_variable": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "ExtractVariable", extract.NewVariableSpec, func() *extract.VariableInput { return &extract.VariableInput{} }, payload, preview)
	},
	"extract_constant": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "ExtractConstant", extract.NewConstantSpec, func() *extract.ConstantInput { return &extract.ConstantInput{} }, payload, preview)
	},
	"extract_method": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "ExtractMethod", extract.NewMethodSpec, func() *extract.MethodInput { return &extract.MethodInput{} }, payload, preview)
	},
	"extract_interface": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "ExtractInterface", extract.NewInterfaceSpec, func() *extract.InterfaceInput { return &extract.InterfaceInput{} }, payload, preview)
	},
	"extract_base_class": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "ExtractBaseClass", extract.NewBaseClassSpec, func() *extract.BaseClassInput { return &extract.BaseClassInput{} }, payload, preview)
	},
	"inline_variable": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "InlineVariable", inline.NewVariableSpec, func() *inline.VariableInput { return &inline.VariableInput{} }, payload, preview)
	},
	"inline_method": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "InlineMethod", inline.NewMethodSpec, func() *inline.MethodInput { return &inline.MethodInput{} }, payload, preview)
	},
	"inline_constant": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "InlineConstant", inline.NewConstantSpec, func() *inline.ConstantInput { return &inline.ConstantInput{} }, payload, preview)
	},
	"generate_constructor": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "GenerateConstructor", generate.NewConstructorSpec, func() *generate.ConstructorInput { return &generate.ConstructorInput{} }, payload, preview)
	},
	"generate_overrides": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "GenerateOverrides", generate.NewOverridesSpec, func() *generate.OverridesInput { return &generate.OverridesInput{} }, payload, preview)
	},
	"implement_interface": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "ImplementInterface", generate.NewImplementInterfaceSpec, func() *generate.ImplementInterfaceInput { return &generate.ImplementInterfaceInput{} }, payload, preview)
	},
	"generate_null_checks": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "NullChecks", generate.NewNullChecksSpec, func() *generate.NullChecksInput { return &generate.NullChecksInput{} }, payload, preview)
	},
	"generate_equals_hashcode": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "EqualsHashCode", generate.NewEqualsHashCodeSpec, func() *generate.EqualsHashCodeInput { return &generate.EqualsHashCodeInput{} }, payload, preview)
	},
	"organize_usings": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "OrganizeUsings", organize.NewSpec, func() *organize.Input { return &organize.Input{} }, payload, preview)
	},
	"convert": func(ctx context.Context, ws *workspace.Workspace, payload json.RawMessage, preview bool) (model.Result, error) {
		return runMutating(ctx, ws, "ConvertOperation", convert.NewSpec, func() *convert.Input { return &convert.Input{} }, payload, preview)
	},
}

type positionPayload struct {
	Path       string `json:"sourceFile"`
	SymbolName string `json:"symbolName"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
}

var queryRegistry = map[string]queryHandler{
	"find_references": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p positionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.FindReferences(ctx, p.Path, p.SymbolName, p.Line, p.Column)
	},
	"go_to_definition": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p positionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.GoToDefinition(ctx, p.Path, p.SymbolName, p.Line, p.Column)
	},
	"symbol_info": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p positionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.SymbolInfoAt(ctx, p.Path, p.SymbolName, p.Line, p.Column)
	},
	"search": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.Search(ctx, p.Query)
	},
	"hierarchy": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p positionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.Hierarchy(ctx, p.Path, p.SymbolName, p.Line)
	},
	"metrics": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p positionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.MetricsFor(ctx, p.Path, p.SymbolName, p.Line)
	},
	"diagnostics": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p struct {
			Path        string `json:"sourceFile"`
			MinSeverity string `json:"minSeverity"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.Diagnostics(ctx, p.Path, severityFromString(p.MinSeverity))
	},
	"outline": func(ctx context.Context, e *query.Engine, payload json.RawMessage) (any, error) {
		var p struct {
			Path string `json:"sourceFile"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errtax.Newf(errtax.CodeInvalidPath, "invalid payload: %v", err)
		}
		return e.Outline(ctx, p.Path)
	},
}

func availableOperations() []string {
	var out []string
	for name := range mutatingRegistry {
		out = append(out, name)
	}
	for name := range queryRegistry {
		out = append(out, name)
	}
	return out
}

func unknownOperationError(name string) error {
	return errtax.Newf(errtax.CodeInvalidIdentifier, "unknown operation %q", name).
		WithSuggestions(fmt.Sprintf("available operations: %v", availableOperations()))
}

// operationFamilies maps each mutating operation name to the timeout
// family its operation.Spec was built with (mirroring each package's own
// NewXxxSpec, since that field isn't exposed back out of the closures
// above). Used by cmd_call.go to size the call's context deadline before
// the registry handler runs.
var operationFamilies = map[string]string{
	"move_type_to_file":        config.FamilyMoveRenameExtract,
	"move_type_to_namespace":   config.FamilyMoveRenameExtract,
	"rename_symbol":            config.FamilyMoveRenameExtract,
	"extract_variable":         config.FamilyMoveRenameExtract,
	"extract_constant":         config.FamilyMoveRenameExtract,
	"extract_method":           config.FamilyMoveRenameExtract,
	"extract_interface":        config.FamilyMoveRenameExtract,
	"extract_base_class":       config.FamilyMoveRenameExtract,
	"inline_variable":          config.FamilyMoveRenameExtract,
	"inline_method":            config.FamilyMoveRenameExtract,
	"inline_constant":          config.FamilyInlineConstant,
	"generate_constructor":     config.FamilyGenerateOrganizeConvert,
	"generate_overrides":       config.FamilyGenerateOrganizeConvert,
	"implement_interface":      config.FamilyGenerateOrganizeConvert,
	"generate_null_checks":     config.FamilyGenerateOrganizeConvert,
	"generate_equals_hashcode": config.FamilyGenerateOrganizeConvert,
	"organize_usings":          config.FamilyGenerateOrganizeConvert,
	"convert":                  config.FamilyGenerateOrganizeConvert,
	"diagnostics":              config.FamilyDiagnose,
}

// timeoutFor resolves op's configured default timeout, falling back to
// the move/rename/extract default for any query operation the table above
// doesn't name (find-references and friends are cheap, single-document
// reads; the engine has never needed a dedicated budget for them).
func timeoutFor(cfg *config.Config, op string) time.Duration {
	family, ok := operationFamilies[op]
	if !ok {
		family = config.FamilyMoveRenameExtract
	}
	return cfg.TimeoutFor(family).Default
}

func severityFromString(s string) semantic.Severity {
	switch semantic.Severity(s) {
	case semantic.SeverityError, semantic.SeverityWarning, semantic.SeverityInfo:
		return semantic.Severity(s)
	default:
		return ""
	}
}
