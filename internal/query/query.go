// Package query implements the read-only Query Operations of spec §4.7:
// find-references, go-to-definition, symbol-info, search, type hierarchy,
// control-flow/data-flow summaries, code metrics, compilation diagnostics,
// and document outline. Queries never transition the Workspace state and
// never emit edits, so they run as plain validate-then-compute functions
// rather than through internal/operation's mutating state machine.
package query

import (
	"context"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/refs"
	"csrefactor/internal/resolver"
	"csrefactor/internal/semantic"
	"csrefactor/internal/workspace"
)

// Engine is the shared entry point for every query, holding the Resolver
// and Tracker collaborators queries are built on.
type Engine struct {
	ws       *workspace.Workspace
	resolver *resolver.Resolver
	tracker  *refs.Tracker
}

// New returns an Engine over ws.
func New(ws *workspace.Workspace) *Engine {
	return &Engine{ws: ws, resolver: resolver.New(ws), tracker: refs.New(ws)}
}

// Close releases the engine's resolver resources.
func (e *Engine) Close() {
	e.resolver.Close()
}

func (e *Engine) resolve(ctx context.Context, path, name string, line, column int) (model.Symbol, *semantic.Model, error) {
	sym, err := e.resolver.Resolve(ctx, path, name, line, column)
	if err != nil {
		return model.Symbol{}, nil, err
	}
	m, err := e.resolver.ModelFor(ctx, path)
	if err != nil {
		return model.Symbol{}, nil, err
	}
	return sym, m, nil
}

// FindReferences returns every reference to the symbol named name in the
// document at path (spec §4.7 "reference lists").
func (e *Engine) FindReferences(ctx context.Context, path, name string, line, column int) (refs.Result, error) {
	sym, _, err := e.resolve(ctx, path, name, line, column)
	if err != nil {
		return refs.Result{}, err
	}
	return e.tracker.FindAll(ctx, sym)
}

// GoToDefinition returns the declaration location(s) of the symbol named
// name, resolved from path/line/column (spec §4.7 "declaration locations").
func (e *Engine) GoToDefinition(ctx context.Context, path, name string, line, column int) ([]model.Location, error) {
	sym, _, err := e.resolve(ctx, path, name, line, column)
	if err != nil {
		return nil, err
	}
	if len(sym.Declarations) > 0 {
		return sym.Declarations, nil
	}
	return []model.Location{{Path: sym.DeclaringPath, Span: sym.DeclarationSpan}}, nil
}

// SymbolInfo is the structured metadata spec §4.7 requires for a resolved
// symbol: kind, accessibility, modifiers, and (for methods) signature.
type SymbolInfo struct {
	Symbol        model.Symbol
	Members       []model.Symbol // populated when Symbol is a type
}

// SymbolInfoAt resolves the symbol named name at path/line/column and
// returns its full metadata, including its members if it is a type.
func (e *Engine) SymbolInfoAt(ctx context.Context, path, name string, line, column int) (SymbolInfo, error) {
	sym, m, err := e.resolve(ctx, path, name, line, column)
	if err != nil {
		return SymbolInfo{}, err
	}
	info := SymbolInfo{Symbol: sym}
	if sym.Kind.Moveable() {
		for _, s := range m.Symbols() {
			if s.ContainingType == sym.SimpleName {
				info.Members = append(info.Members, s)
			}
		}
	}
	return info, nil
}

// SearchResult is one hit from Search: a symbol plus the document it was
// found in.
type SearchResult struct {
	Path   string
	Symbol model.Symbol
}

// Search enumerates every symbol across the workspace's current snapshot
// whose simple name contains query as a substring (spec §4.7 "search").
func (e *Engine) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var out []SearchResult
	for _, doc := range e.ws.CurrentSolution().AllDocuments() {
		m, err := e.resolver.ModelFor(ctx, doc.Path)
		if err != nil {
			return nil, err
		}
		for _, s := range m.Symbols() {
			if strings.Contains(strings.ToLower(s.SimpleName), strings.ToLower(query)) {
				out = append(out, SearchResult{Path: doc.Path, Symbol: s})
			}
		}
	}
	return out, nil
}

// noSuchDocument builds the SourceNotInWorkspace error returned when a query
// targets a path outside the workspace's current snapshot.
func noSuchDocument(path string) error {
	return errtax.Newf(errtax.CodeSourceNotInWorkspace, "%s is not part of the current workspace snapshot", path)
}
