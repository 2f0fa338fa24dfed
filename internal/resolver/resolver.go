// Package resolver implements the Symbol Resolver of spec §4.2:
// resolve_in_file(path, name, line?, column?) against a document's semantic
// model, with NotFound/Ambiguous reporting and 1-based line/column
// translation.
package resolver

import (
	"context"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/semantic"
	"csrefactor/internal/syntax"
	"csrefactor/internal/workspace"
)

// Resolver resolves symbols within documents of a single Workspace,
// building a document's semantic.Model when a call needs it (spec §3:
// "lazily computed"). Models are not cached; each call parses again.
type Resolver struct {
	ws     *workspace.Workspace
	parser *syntax.Parser
}

// New returns a Resolver over ws.
func New(ws *workspace.Workspace) *Resolver {
	return &Resolver{ws: ws, parser: syntax.NewParser()}
}

// Close releases the resolver's parser.
func (r *Resolver) Close() {
	r.parser.Close()
}

// ModelFor parses and builds the semantic model for the document at path in
// the workspace's current snapshot.
func (r *Resolver) ModelFor(ctx context.Context, path string) (*semantic.Model, error) {
	doc, err := r.ws.DocumentFor(path)
	if err != nil {
		return nil, err
	}
	tree, err := r.parser.Parse(ctx, []byte(doc.Text))
	if err != nil {
		return nil, errtax.Wrap(errtax.CodeSemanticLibraryError, "failed to parse "+path, err)
	}
	return semantic.Build(path, tree), nil
}

// Resolve implements spec §4.2's resolve_in_file: if line/col are supplied,
// walk up from the node at that position to the nearest declaration whose
// simple name matches name; otherwise match by name across the whole
// document, failing NotFound (zero matches) or Ambiguous (more than one).
func (r *Resolver) Resolve(ctx context.Context, path, name string, line, column int) (model.Symbol, error) {
	doc, err := r.ws.DocumentFor(path)
	if err != nil {
		return model.Symbol{}, err
	}
	m, err := r.ModelFor(ctx, path)
	if err != nil {
		return model.Symbol{}, err
	}

	if line > 0 || column > 0 {
		off, err := byteOffset(doc.Text, line, column)
		if err != nil {
			return model.Symbol{}, err
		}
		return m.ResolveAtPosition(off, name)
	}

	// ResolveByName matches both simple name and fully-qualified-name suffix,
	// satisfying spec §4.2 step 4 ("for qualified name, match on fully
	// qualified name suffix") without a separate code path.
	return m.ResolveByName(name)
}

// ByteOffset converts a 1-based, inclusive line/column pair to an absolute
// byte offset into text, the same translation Resolve uses internally,
// exposed for refactoring operations that need to turn a selection's
// line/column endpoints into a byte Span (Extract-Method, Extract-Variable,
// ...).
func ByteOffset(text string, line, column int) (int, error) {
	return byteOffset(text, line, column)
}

// byteOffset converts a 1-based, inclusive line/column pair to an absolute
// byte offset into text, failing InvalidLineNumber/InvalidColumnNumber if
// out of range (spec §4.2 "Line/column semantics").
func byteOffset(text string, line, column int) (int, error) {
	if line < 1 {
		return 0, errtax.Newf(errtax.CodeInvalidLineNumber, "line must be >= 1, got %d", line)
	}
	if column < 1 {
		return 0, errtax.Newf(errtax.CodeInvalidColumnNumber, "column must be >= 1, got %d", column)
	}
	lineStart := 0
	currentLine := 1
	for i := 0; i < len(text); i++ {
		if currentLine == line {
			lineStart = i
			break
		}
		if text[i] == '\n' {
			currentLine++
		}
		if i == len(text)-1 {
			return 0, errtax.Newf(errtax.CodeInvalidLineNumber, "line %d exceeds document length", line)
		}
	}
	if currentLine != line {
		return 0, errtax.Newf(errtax.CodeInvalidLineNumber, "line %d exceeds document length", line)
	}
	off := lineStart + column - 1
	lineEnd := len(text)
	if idx := strings.IndexByte(text[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	if off > lineEnd {
		return 0, errtax.Newf(errtax.CodeInvalidColumnNumber, "column %d exceeds line %d length", column, line)
	}
	return off, nil
}
