package semantic

import (
	"strings"

	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

// scope tracks the enclosing namespace/type context while walking the tree,
// mirroring the current-function-scope tracking of a tree-sitter extraction
// context: a stack of names pushed on entry to a declaration and popped on
// exit, rather than a single mutable field, since C# nests namespaces and
// types arbitrarily deep.
type scope struct {
	namespace string
	typeStack []string
}

func (s scope) containingType() string {
	if len(s.typeStack) == 0 {
		return ""
	}
	return s.typeStack[len(s.typeStack)-1]
}

func (s scope) pushType(name string) scope {
	next := make([]string, len(s.typeStack)+1)
	copy(next, s.typeStack)
	next[len(s.typeStack)] = name
	s.typeStack = next
	return s
}

func (m *Model) collectSymbols() {
	m.walk(m.tree.Root(), scope{})
}

func (m *Model) walk(n syntax.Node, sc scope) {
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
			m.walk(c, child)
		}
		return

	case "class_declaration", "struct_declaration", "interface_declaration",
		"enum_declaration", "record_declaration", "delegate_declaration":
		sym, ok := m.declareType(n, sc)
		child := sc
		if ok {
			child = sc.pushType(sym.SimpleName)
		}
		for _, c := range n.NamedChildren() {
			m.walk(c, child)
		}
		return

	case "method_declaration", "constructor_declaration", "property_declaration",
		"event_declaration", "field_declaration", "destructor_declaration",
		"operator_declaration", "conversion_operator_declaration", "indexer_declaration":
		m.declareMember(n, sc)

	case "parameter":
		m.declareParameter(n, sc)

	case "local_declaration_statement", "variable_declarator":
		if n.Type() == "variable_declarator" {
			m.declareLocal(n, sc)
		}
	}

	for _, c := range n.NamedChildren() {
		m.walk(c, sc)
	}
}

func (m *Model) declareType(n syntax.Node, sc scope) (model.Symbol, bool) {
	nameNode := n.ChildByField("name")
	if nameNode.IsNil() {
		return model.Symbol{}, false
	}
	simple := nameNode.Text()
	fqn := fqName(sc.namespace, sc.containingType(), simple)
	sym := model.Symbol{
		Key:                 model.NewSymbolKey(m.path, fqn, ""),
		SimpleName:          simple,
		FullyQualifiedName:  fqn,
		Kind:                declKind[n.Type()],
		ContainingNamespace: sc.namespace,
		ContainingType:      sc.containingType(),
		Accessibility:       accessibilityOf(n),
		IsStatic:            hasModifier(n, "static"),
		IsAbstract:          hasModifier(n, "abstract"),
		IsSealed:            hasModifier(n, "sealed"),
		Signature:           "",
		DeclaringPath:       m.path,
		DeclarationSpan:     n.Span(),
		Declarations:        []model.Location{{Path: m.path, Span: n.Span()}},
	}
	m.record(sym, n)
	return sym, true
}

func (m *Model) declareMember(n syntax.Node, sc scope) {
	nameNode := n.ChildByField("name")
	kind := declKind[n.Type()]
	if n.Type() == "field_declaration" {
		// Fields nest their declarators under a variable_declaration child;
		// each declarator is its own symbol.
		decl := firstOfKind(n, "variable_declaration")
		if decl.IsNil() {
			return
		}
		for _, child := range decl.NamedChildren() {
			if child.Type() != "variable_declarator" {
				continue
			}
			declNameNode := child.ChildByField("name")
			if declNameNode.IsNil() {
				continue
			}
			m.declareWithName(child, declNameNode.Text(), model.KindField, sc, n)
		}
		return
	}
	if nameNode.IsNil() {
		switch n.Type() {
		case "constructor_declaration", "destructor_declaration":
			nameNode = n.ChildByField("name")
		case "indexer_declaration":
			m.declareWithName(n, "this", kind, sc, n)
			return
		case "operator_declaration", "conversion_operator_declaration":
			m.declareWithName(n, operatorSymbolText(n), kind, sc, n)
			return
		}
		if nameNode.IsNil() {
			return
		}
	}
	m.declareWithName(n, nameNode.Text(), kind, sc, n)
}

func (m *Model) declareWithName(declNode syntax.Node, simple string, kind model.SymbolKind, sc scope, modifierSource syntax.Node) {
	fqn := fqName(sc.namespace, sc.containingType(), simple)
	sym := model.Symbol{
		Key:                 model.NewSymbolKey(m.path, fqn, signatureOf(declNode)),
		SimpleName:          simple,
		FullyQualifiedName:  fqn,
		Kind:                kind,
		ContainingNamespace: sc.namespace,
		ContainingType:      sc.containingType(),
		Accessibility:       accessibilityOf(modifierSource),
		IsStatic:            hasModifier(modifierSource, "static"),
		IsVirtual:           hasModifier(modifierSource, "virtual"),
		IsOverride:          hasModifier(modifierSource, "override"),
		IsAbstract:          hasModifier(modifierSource, "abstract"),
		IsSealed:            hasModifier(modifierSource, "sealed"),
		Signature:           signatureOf(declNode),
		DeclaringPath:       m.path,
		DeclarationSpan:     declNode.Span(),
		Declarations:        []model.Location{{Path: m.path, Span: declNode.Span()}},
	}
	m.record(sym, declNode)
}

// operatorSymbolText extracts "operator <symbol>" (e.g. "operator +") from
// an operator/conversion-operator declaration's text, since the grammar
// exposes the operator token as an anonymous node rather than a "name"
// field.
func operatorSymbolText(n syntax.Node) string {
	text := n.Text()
	idx := strings.Index(text, "operator")
	if idx < 0 {
		return "operator"
	}
	rest := strings.TrimSpace(text[idx+len("operator"):])
	end := strings.IndexByte(rest, '(')
	if end < 0 {
		end = len(rest)
	}
	sym := strings.TrimSpace(rest[:end])
	if sym == "" {
		return "operator"
	}
	return "operator " + sym
}

func (m *Model) declareParameter(n syntax.Node, sc scope) {
	nameNode := n.ChildByField("name")
	if nameNode.IsNil() {
		return
	}
	m.declareWithName(n, nameNode.Text(), model.KindParameter, sc, n)
}

func (m *Model) declareLocal(n syntax.Node, sc scope) {
	nameNode := n.ChildByField("name")
	if nameNode.IsNil() {
		return
	}
	m.declareWithName(n, nameNode.Text(), model.KindLocal, sc, n)
}

func (m *Model) record(sym model.Symbol, n syntax.Node) {
	m.symbols = append(m.symbols, sym)
	m.byKey[sym.Key] = sym
	m.nodeOf[sym.Key] = n
}

func fqName(namespace, containingType, simple string) string {
	parts := make([]string, 0, 3)
	if namespace != "" {
		parts = append(parts, namespace)
	}
	if containingType != "" {
		parts = append(parts, containingType)
	}
	parts = append(parts, simple)
	return strings.Join(parts, ".")
}

// signatureOf returns a parenthesized parameter-type list used to
// distinguish overloads, or "" for declarations that can't be overloaded.
func signatureOf(n syntax.Node) string {
	params := n.ChildByField("parameters")
	if params.IsNil() {
		return ""
	}
	var types []string
	for _, p := range params.NamedChildren() {
		if p.Type() != "parameter" {
			continue
		}
		t := p.ChildByField("type")
		if t.IsNil() {
			types = append(types, "?")
			continue
		}
		types = append(types, t.Text())
	}
	return "(" + strings.Join(types, ",") + ")"
}

func hasModifier(n syntax.Node, keyword string) bool {
	for _, c := range n.NamedChildren() {
		if c.Type() == "modifier" && c.Text() == keyword {
			return true
		}
	}
	return false
}

func accessibilityOf(n syntax.Node) model.Accessibility {
	hasProtected, hasInternal, hasPrivate, hasPublic := false, false, false, false
	for _, c := range n.NamedChildren() {
		if c.Type() != "modifier" {
			continue
		}
		switch c.Text() {
		case "public":
			hasPublic = true
		case "private":
			hasPrivate = true
		case "internal":
			hasInternal = true
		case "protected":
			hasProtected = true
		}
	}
	switch {
	case hasProtected && hasInternal:
		return model.AccessProtectedInternal
	case hasPrivate && hasProtected:
		return model.AccessPrivateProtected
	case hasPublic:
		return model.AccessPublic
	case hasInternal:
		return model.AccessInternal
	case hasProtected:
		return model.AccessProtected
	case hasPrivate:
		return model.AccessPrivate
	default:
		return model.AccessPrivate
	}
}

func firstOfKind(n syntax.Node, kind string) syntax.Node {
	for _, c := range n.NamedChildren() {
		if c.Type() == kind {
			return c
		}
	}
	return syntax.Node{}
}
