package semantic

import (
	"fmt"

	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

// Severity tags a Diagnostic, mirroring the severities a real compiler's
// diagnostic bag exposes.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeverityWarning Severity = "Warning"
	SeverityInfo    Severity = "Info"
)

// Diagnostic is one compiler-style finding: spec §6 item 3's "diagnostics"
// and §4.7's "compilation diagnostics filtered by severity".
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     model.Span
}

// Diagnostics runs this model's built-in heuristic checks: duplicate
// declarations in the same scope, and using directives whose namespace is
// never referenced anywhere in the document (the unused-using half of
// Organize-Usings' Remove-Unused union, spec §4.6.8).
func (m *Model) Diagnostics() []Diagnostic {
	var out []Diagnostic
	out = append(out, m.duplicateDeclarationDiagnostics()...)
	out = append(out, m.unusedUsingDiagnostics()...)
	return out
}

func (m *Model) duplicateDeclarationDiagnostics() []Diagnostic {
	seen := map[string]model.Symbol{}
	var out []Diagnostic
	for _, s := range m.symbols {
		scopeKey := fmt.Sprintf("%s/%s/%s", s.ContainingNamespace, s.ContainingType, s.SimpleName+s.Signature)
		if prior, ok := seen[scopeKey]; ok {
			out = append(out, Diagnostic{
				Severity: SeverityError,
				Code:     "CS0102",
				Message:  fmt.Sprintf("the type already contains a definition for %q", s.SimpleName),
				Span:     s.DeclarationSpan,
			})
			_ = prior
			continue
		}
		seen[scopeKey] = s
	}
	return out
}

// UsingDirectives returns every using_directive node's target namespace
// text, in source order.
func (m *Model) UsingDirectives() []string {
	var names []string
	for _, n := range m.tree.Root().DescendantsOfKind("using_directive") {
		if name := n.ChildByField("name"); !name.IsNil() {
			names = append(names, name.Text())
		}
	}
	return names
}

// ReferencedNamespacePrefixes returns the set of dotted-name prefixes
// referenced anywhere in the document's type references and member-access
// expressions, the "semantic walk that records every namespace referenced"
// spec §4.6.8's Remove-Unused step describes. This is a syntactic
// approximation: it does not resolve extension-method binding, only
// qualified-name textual prefixes.
func (m *Model) ReferencedNamespacePrefixes() map[string]bool {
	prefixes := map[string]bool{}
	var walk func(syntax.Node)
	walk = func(n syntax.Node) {
		if n.IsNil() {
			return
		}
		if n.Type() == "qualified_name" || n.Type() == "member_access_expression" {
			text := n.Text()
			for i := len(text) - 1; i >= 0; i-- {
				if text[i] == '.' {
					prefixes[text[:i]] = true
				}
			}
		}
		for _, c := range n.NamedChildren() {
			walk(c)
		}
	}
	walk(m.tree.Root())
	return prefixes
}

// InvokedMemberNames returns the set of method names invoked through member
// access anywhere in the document (the "Where" in list.Where(...)). Organize-
// Usings' Remove-Unused mode cross-references this against a workspace-wide
// index of extension methods to decide whether a using directive that
// supplies no directly-qualified name is still load-bearing because it's the
// only source of an extension method some call in this document binds to.
func (m *Model) InvokedMemberNames() map[string]bool {
	names := map[string]bool{}
	var walk func(syntax.Node)
	walk = func(n syntax.Node) {
		if n.IsNil() {
			return
		}
		if n.Type() == "invocation_expression" {
			if fn := n.ChildByField("function"); fn.Type() == "member_access_expression" {
				if name := fn.ChildByField("name"); !name.IsNil() {
					names[name.Text()] = true
				}
			}
		}
		for _, c := range n.NamedChildren() {
			walk(c)
		}
	}
	walk(m.tree.Root())
	return names
}

func (m *Model) unusedUsingDiagnostics() []Diagnostic {
	referenced := m.ReferencedNamespacePrefixes()
	var out []Diagnostic
	for _, n := range m.tree.Root().DescendantsOfKind("using_directive") {
		name := n.ChildByField("name")
		if name.IsNil() {
			continue
		}
		if !referenced[name.Text()] {
			out = append(out, Diagnostic{
				Severity: SeverityInfo,
				Code:     "CS8019",
				Message:  fmt.Sprintf("unnecessary using directive %q", name.Text()),
				Span:     n.Span(),
			})
		}
	}
	return out
}
