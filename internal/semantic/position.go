package semantic

import (
	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

// DeclaredSymbolAt returns the symbol declared by the smallest declaration
// node enclosing byte offset off, or false if off is not inside any
// declaration this model collected (spec §6 "declared symbol at node").
func (m *Model) DeclaredSymbolAt(off int) (model.Symbol, bool) {
	n := m.tree.NodeAt(off)
	for !n.IsNil() {
		if _, ok := declKind[n.Type()]; ok {
			if sym, ok := m.symbolForNode(n); ok {
				return sym, true
			}
		}
		n = n.Parent()
	}
	return model.Symbol{}, false
}

func (m *Model) symbolForNode(n syntax.Node) (model.Symbol, bool) {
	for key, node := range m.nodeOf {
		if node.Span() == n.Span() && node.Type() == n.Type() {
			return m.byKey[key], true
		}
	}
	return model.Symbol{}, false
}

// ResolveByName implements the spec §4.2 resolve_in_file algorithm's
// name-only path: enumerate declarations whose simple name (or fully
// qualified name suffix, for a qualified query) matches name.
func (m *Model) ResolveByName(name string) (model.Symbol, error) {
	var matches []model.Symbol
	for _, s := range m.symbols {
		if s.SimpleName == name || hasSuffix(s.FullyQualifiedName, name) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return model.Symbol{}, errtax.Newf(errtax.CodeSymbolNotFound, "no declaration named %q in %s", name, m.path)
	case 1:
		return matches[0], nil
	default:
		lines := make([]string, 0, len(matches))
		for _, s := range matches {
			lines = append(lines, s.String())
		}
		return model.Symbol{}, errtax.New(errtax.CodeAmbiguous, "multiple declarations named "+name).
			WithDetails(map[string]any{"candidates": lines})
	}
}

// ResolveAtPosition implements the position-qualified path of spec §4.2:
// walk up from the node at the given byte offset to the nearest declaration
// whose simple name matches name.
func (m *Model) ResolveAtPosition(off int, name string) (model.Symbol, error) {
	n := m.tree.NodeAt(off)
	for !n.IsNil() {
		if sym, ok := m.symbolForNode(n); ok && (name == "" || sym.SimpleName == name) {
			return sym, nil
		}
		n = n.Parent()
	}
	return model.Symbol{}, errtax.Newf(errtax.CodeSymbolNotFound, "no declaration matching %q at offset %d", name, off)
}

func hasSuffix(fqn, suffix string) bool {
	if len(suffix) > len(fqn) {
		return false
	}
	if fqn == suffix {
		return true
	}
	tail := fqn[len(fqn)-len(suffix):]
	return tail == suffix && fqn[len(fqn)-len(suffix)-1] == '.'
}
