package semantic

import (
	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

// References enumerates every identifier node in this document whose text
// matches sym's simple name and whose position is consistent with sym's
// scope (same containing type, or unqualified at namespace scope), the
// per-document half of spec §4.3's find_all contract. The workspace-wide
// aggregation across documents lives in internal/refs.
func (m *Model) References(sym model.Symbol) []model.Reference {
	var refs []model.Reference
	var walk func(syntax.Node, scope)
	walk = func(n syntax.Node, sc scope) {
		if n.IsNil() {
			return
		}
		switch n.Type() {
		case "namespace_declaration", "file_scoped_namespace_declaration":
			name := n.ChildByField("name")
			child := sc
			if !name.IsNil() {
				child.namespace = name.Text()
			}
			for _, c := range n.NamedChildren() {
				walk(c, child)
			}
			return
		case "class_declaration", "struct_declaration", "interface_declaration",
			"enum_declaration", "record_declaration":
			nameNode := n.ChildByField("name")
			child := sc
			if !nameNode.IsNil() {
				child = sc.pushType(nameNode.Text())
			}
			for _, c := range n.NamedChildren() {
				walk(c, child)
			}
			return
		}
		if n.Type() == "identifier" && n.Text() == sym.SimpleName && inScopeOf(n, sc, sym) {
			span := n.Span()
			if span != sym.DeclarationSpan {
				refs = append(refs, model.Reference{
					DocumentPath: m.path,
					Span:         span,
					IsWrite:      isWriteContext(n),
					IsImplicit:   false,
					Symbol:       sym.Key,
				})
			}
		}
		if n.Type() == "invocation_expression" {
			if nameofRef, ok := nameofArgument(n, sym.SimpleName); ok {
				refs = append(refs, model.Reference{
					DocumentPath: m.path,
					Span:         nameofRef.Span(),
					Symbol:       sym.Key,
				})
			}
		}
		for _, c := range n.NamedChildren() {
			walk(c, sc)
		}
	}
	walk(m.tree.Root(), scope{})
	return refs
}

// inScopeOf reports whether identifier n, found while walking with scope
// sc, is a plausible reference to sym: a type-level symbol (no containing
// type) is visible unqualified anywhere, and the right-hand side of a
// qualified member access (`expr.Name`) is accepted regardless of the
// walk's current scope since the qualifier — not local scope — resolves
// it. A bare identifier referring to a member (method/property/field/
// event/constant) must be declared on, or be a local/parameter declared
// inside, the type currently being walked — this is what keeps renaming a
// field on one type from also rewriting an unrelated same-named local or
// field on another type.
func inScopeOf(n syntax.Node, sc scope, sym model.Symbol) bool {
	if sym.ContainingType == "" {
		return true
	}
	if isQualifiedMemberName(n) {
		return true
	}
	return sc.containingType() == sym.ContainingType
}

// isQualifiedMemberName reports whether n is the "name" side of a
// member_access_expression, e.g. the Count in `widget.Count`.
func isQualifiedMemberName(n syntax.Node) bool {
	p := n.Parent()
	if p.IsNil() || p.Type() != "member_access_expression" {
		return false
	}
	name := p.ChildByField("name")
	return !name.IsNil() && name.Span() == n.Span()
}

func isWriteContext(n syntax.Node) bool {
	p := n.Parent()
	if p.IsNil() {
		return false
	}
	if p.Type() == "assignment_expression" {
		if left := p.ChildByField("left"); !left.IsNil() && left.Span() == n.Span() {
			return true
		}
	}
	return false
}

// nameofArgument reports whether invocation n is a nameof(name) expression
// referring to name, returning the argument identifier node (spec §4.6.3
// step 4: "for nameof(x) expressions referring to the symbol, rewrite as
// well").
func nameofArgument(n syntax.Node, name string) (syntax.Node, bool) {
	fn := n.ChildByField("function")
	if fn.IsNil() || fn.Text() != "nameof" {
		return syntax.Node{}, false
	}
	args := n.ChildByField("arguments")
	if args.IsNil() {
		return syntax.Node{}, false
	}
	for _, a := range args.NamedChildren() {
		if a.Type() == "identifier" && a.Text() == name {
			return a, true
		}
	}
	return syntax.Node{}, false
}
