// Package rename implements Rename-Symbol (spec §4.6.3): resolve a symbol,
// validate the new name, gather every reference via internal/refs, and
// rewrite each occurrence in place.
package rename

import (
	"context"
	"path/filepath"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/refs"
	"csrefactor/internal/resolver"
	"csrefactor/internal/workspace"
)

// Input is the mutable request/response state threaded through the
// Validate→Resolve→Compute hooks of one Rename-Symbol invocation.
type Input struct {
	Path                  string `json:"sourceFile"`
	CurrentName           string `json:"symbolName"`
	NewName               string `json:"newName"`
	Line                  int    `json:"line,omitempty"`
	Column                int    `json:"column,omitempty"`
	RenameOverloads       bool   `json:"renameOverloads,omitempty"`
	RenameImplementations *bool  `json:"renameImplementations,omitempty"`
	RenameFile            bool   `json:"renameFile,omitempty"`

	resolved model.Symbol
}

// renameImplementations resolves the effective rename_implementations
// setting: spec §4.6.3 step 3 defaults it to true, so an unset (nil) flag
// means "include the override chain" rather than Go's zero-value false.
func (in *Input) renameImplementations() bool {
	if in.RenameImplementations == nil {
		return true
	}
	return *in.RenameImplementations
}

var reservedKeywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true,
	"default": true, "delegate": true, "do": true, "double": true, "else": true,
	"enum": true, "event": true, "explicit": true, "extern": true, "false": true,
	"finally": true, "fixed": true, "float": true, "for": true, "foreach": true,
	"goto": true, "if": true, "implicit": true, "in": true, "int": true,
	"interface": true, "internal": true, "is": true, "lock": true, "long": true,
	"namespace": true, "new": true, "null": true, "object": true, "operator": true,
	"out": true, "override": true, "params": true, "private": true,
	"protected": true, "public": true, "readonly": true, "ref": true,
	"return": true, "sbyte": true, "sealed": true, "short": true, "sizeof": true,
	"stackalloc": true, "static": true, "string": true, "struct": true,
	"switch": true, "this": true, "throw": true, "true": true, "try": true,
	"typeof": true, "uint": true, "ulong": true, "unchecked": true,
	"unsafe": true, "ushort": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}

// NewSpec returns the Rename-Symbol operation.Spec bound to ws.
func NewSpec(ws *workspace.Workspace) operation.Spec[*Input] {
	return operation.Spec[*Input]{
		Kind:          "RenameSymbol",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *Input) error {
			if in.Path == "" {
				return errtax.New(errtax.CodeInvalidPath, "source path required")
			}
			if in.NewName == "" {
				return errtax.New(errtax.CodeInvalidIdentifier, "new name required")
			}
			if in.NewName == in.CurrentName {
				return errtax.New(errtax.CodeSameLocation, "new name equals current name")
			}
			if reservedKeywords[in.NewName] {
				return errtax.Newf(errtax.CodeReservedKeyword, "%q is a reserved keyword", in.NewName)
			}
			return nil
		},
		Resolve: func(ctx context.Context, in *Input) error {
			r := resolver.New(ws)
			defer r.Close()
			sym, err := r.Resolve(ctx, in.Path, in.CurrentName, in.Line, in.Column)
			if err != nil {
				return err
			}
			if err := checkRenameable(sym); err != nil {
				return err
			}
			if err := checkNameConflict(ws, sym, in.NewName); err != nil {
				return err
			}
			in.resolved = sym
			return nil
		},
		Compute: func(ctx context.Context, in *Input) (model.EditSet, model.Result, error) {
			return compute(ctx, ws, in)
		},
	}
}

func checkRenameable(sym model.Symbol) error {
	if sym.IsExternal {
		return errtax.New(errtax.CodeCannotRenameExternal, "symbol is declared outside this workspace")
	}
	if sym.IsSynthesized {
		return errtax.New(errtax.CodeCannotRenameSynthesized, "symbol is compiler-generated")
	}
	switch sym.Kind {
	case model.KindConstructor:
		return errtax.New(errtax.CodeCannotRenameConstructorDirectly, "rename the containing type instead")
	case model.KindOperator:
		return errtax.New(errtax.CodeCannotRenameOperator, "operators cannot be renamed")
	case model.KindIndexer:
		return errtax.New(errtax.CodeCannotRenameIndexer, "indexers cannot be renamed")
	case model.KindDestructor:
		return errtax.New(errtax.CodeCannotRenameDestructor, "destructors cannot be renamed")
	}
	return nil
}

// checkNameConflict rejects a rename whose new name would collide with
// another symbol already declared in sym's scope (spec §4.6.3 step 2):
// another member of the same containing type, or — for a type-level or
// unqualified symbol — another declaration at the same namespace scope.
func checkNameConflict(ws *workspace.Workspace, sym model.Symbol, newName string) error {
	r := resolver.New(ws)
	defer r.Close()
	for _, doc := range ws.CurrentSolution().AllDocuments() {
		m, err := r.ModelFor(context.Background(), doc.Path)
		if err != nil {
			continue
		}
		for _, candidate := range m.Symbols() {
			if candidate.Key == sym.Key {
				continue
			}
			if candidate.SimpleName != newName {
				continue
			}
			if candidate.ContainingType != sym.ContainingType || candidate.ContainingNamespace != sym.ContainingNamespace {
				continue
			}
			return errtax.Newf(errtax.CodeNameConflictScope, "%q already declares a symbol named %q in this scope", scopeLabel(sym), newName)
		}
	}
	return nil
}

func scopeLabel(sym model.Symbol) string {
	if sym.ContainingType != "" {
		return sym.ContainingType
	}
	if sym.ContainingNamespace != "" {
		return sym.ContainingNamespace
	}
	return "the global namespace"
}

func compute(ctx context.Context, ws *workspace.Workspace, in *Input) (model.EditSet, model.Result, error) {
	sym := in.resolved
	targets := []model.Symbol{sym}
	includeImplementations := in.renameImplementations()
	if in.RenameOverloads || includeImplementations {
		targets = append(targets, siblingTargets(ws, sym, in.RenameOverloads, includeImplementations)...)
	}

	sol := ws.CurrentSolution()
	declaringProject, _ := sol.ProjectOf(sym.DeclaringPath)

	tracker := refs.New(ws)
	editsByDoc := map[string][]model.TextEdit{}
	total := 0
	for _, target := range targets {
		result, err := tracker.FindAll(ctx, target)
		if err != nil {
			return model.EditSet{}, model.Result{}, err
		}
		for path, found := range result.ByDocument {
			referencingProject, ok := sol.ProjectOf(path)
			if !ok || !refs.Rewritable(referencingProject, declaringProject) {
				continue
			}
			for _, ref := range found {
				editsByDoc[path] = append(editsByDoc[path], model.TextEdit{Span: ref.Span, NewText: in.NewName})
				total++
			}
		}
		// The declaration's own name token is itself discovered as a
		// reference by semantic.Model.References (its span differs from
		// the full declaration span), so no separate declaration edit is
		// needed here.
	}

	var changes []model.DocumentChange
	for path, edits := range editsByDoc {
		doc, ok := sol.DocumentByPath(path)
		if !ok {
			continue
		}
		change := model.DocumentChange{Kind: model.ChangeModify, Path: path, Edits: edits}.ApplyOrder()
		if in.RenameFile && path == sym.DeclaringPath && sym.Kind.Moveable() &&
			strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) == in.CurrentName {
			newText := change.Apply(doc.Text)
			newPath := filepath.Join(filepath.Dir(path), in.NewName+filepath.Ext(path))
			changes = append(changes,
				model.DocumentChange{Kind: model.ChangeDelete, Path: path},
				model.DocumentChange{Kind: model.ChangeCreate, Path: newPath, FileName: in.NewName + filepath.Ext(path), NewText: newText},
			)
			continue
		}
		changes = append(changes, change)
	}

	result := model.Result{Symbol: &sym, ReferencesUpdated: total}
	return model.EditSet{Changes: changes}, result, nil
}

// siblingTargets collects additional symbols to rename alongside sym: other
// overloads of the same method name in the same type (renameOverloads), or
// interface-member implementations sharing the same simple name
// (renameImplementations) — a best-effort approximation since this model
// has no virtual-dispatch resolution, so "implementations" is taken to mean
// any symbol with the same simple name and symbol kind across the
// workspace's documents.
func siblingTargets(ws *workspace.Workspace, sym model.Symbol, overloads, implementations bool) []model.Symbol {
	if !overloads && !implementations {
		return nil
	}
	r := resolver.New(ws)
	defer r.Close()
	var out []model.Symbol
	for _, doc := range ws.CurrentSolution().AllDocuments() {
		m, err := r.ModelFor(context.Background(), doc.Path)
		if err != nil {
			continue
		}
		for _, candidate := range m.Symbols() {
			if candidate.Key == sym.Key {
				continue
			}
			if candidate.SimpleName != sym.SimpleName {
				continue
			}
			sameType := candidate.ContainingType == sym.ContainingType && candidate.ContainingNamespace == sym.ContainingNamespace
			if overloads && sameType && candidate.Kind == sym.Kind {
				out = append(out, candidate)
			} else if implementations && candidate.Kind == sym.Kind {
				out = append(out, candidate)
			}
		}
	}
	return out
}
