package semantic

import (
	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

// VariableFlow classifies a single name's flow across a selection's
// boundary, the data-flow facts spec §4.6.4 (Extract-Method) and §4.7
// (Query data-flow summary) both need. ReadInside/WrittenInside are a plain
// tally of activity anywhere inside the selection, including names declared
// and consumed entirely within it; FlowsIn/FlowsOut are narrower and only
// ever set for names declared outside the selection, since those are the
// only ones that actually cross its boundary.
type VariableFlow struct {
	Name          string
	ReadInside    bool
	WrittenInside bool
	FlowsIn       bool // declared outside the selection and read inside it
	FlowsOut      bool // declared outside the selection and written inside it
	Captured      bool // referenced inside a nested lambda/anonymous method/local function, so it's closed over rather than merely in scope
}

// DataFlow is the result of analyzing a byte span: every local/parameter
// name referenced inside it, classified by flow direction, plus whether the
// span contains a yield statement, await expression, or more than one
// reachable exit point — the control-flow facts Extract-Method's rejection
// rules (spec §4.6.4 step 2) consult.
type DataFlow struct {
	Variables      []VariableFlow
	ContainsYield  bool
	ContainsAwait  bool
	ExitPointCount int
	Unresolvable   bool
}

// AnalyzeSpan walks every node whose span overlaps selection and tallies
// identifier reads and writes inside it; a declarator with an initializer
// counts as a write of the declared name. FlowsIn/FlowsOut are set only for
// names not declared inside the selection: a name both read and written
// inside flows in and out, a name only written flows out, and a name only
// read flows in. Names declared inside never flow out, whether or not they
// are read after the selection, since there is no liveness analysis past
// its end.
func (m *Model) AnalyzeSpan(selection model.Span) DataFlow {
	root := m.tree.Root()
	var df DataFlow
	reads := map[string]bool{}
	writes := map[string]bool{}
	declaredInside := map[string]bool{}
	captured := map[string]bool{}

	var walk func(syntax.Node, bool)
	walk = func(n syntax.Node, insideClosure bool) {
		if n.IsNil() {
			return
		}
		span := n.Span()
		if span.EndByte <= selection.StartByte || span.StartByte >= selection.EndByte {
			return
		}
		switch n.Type() {
		case "yield_statement":
			df.ContainsYield = true
		case "await_expression":
			df.ContainsAwait = true
		case "return_statement":
			df.ExitPointCount++
		case "break_statement", "continue_statement", "goto_statement":
			df.Unresolvable = true
		case "variable_declarator", "parameter":
			if name := n.ChildByField("name"); !name.IsNil() {
				declaredInside[name.Text()] = true
				if n.Type() == "variable_declarator" && !n.ChildByField("value").IsNil() {
					writes[name.Text()] = true
				}
			}
		case "lambda_expression", "anonymous_method_expression", "local_function_statement":
			insideClosure = true
		case "assignment_expression":
			if left := n.ChildByField("left"); !left.IsNil() && left.Type() == "identifier" {
				writes[left.Text()] = true
				if insideClosure && !declaredInside[left.Text()] {
					captured[left.Text()] = true
				}
			}
		case "identifier":
			if !isDeclarationName(n) {
				reads[n.Text()] = true
				if insideClosure && !declaredInside[n.Text()] {
					captured[n.Text()] = true
				}
			}
		}
		for _, c := range n.NamedChildren() {
			walk(c, insideClosure)
		}
	}
	walk(root, false)

	names := map[string]bool{}
	for n := range reads {
		names[n] = true
	}
	for n := range writes {
		names[n] = true
	}
	for n := range names {
		vf := VariableFlow{
			Name:          n,
			ReadInside:    reads[n],
			WrittenInside: writes[n],
			Captured:      captured[n],
		}
		if !declaredInside[n] {
			switch {
			case writes[n] && reads[n]:
				vf.FlowsIn, vf.FlowsOut = true, true
			case writes[n]:
				vf.FlowsOut = true
			case reads[n]:
				vf.FlowsIn = true
			}
		}
		df.Variables = append(df.Variables, vf)
	}
	return df
}

// isDeclarationName reports whether n is the "name" field of the
// variable_declarator or parameter that declares it, so the declaration
// site itself isn't double-counted as a read.
func isDeclarationName(n syntax.Node) bool {
	p := n.Parent()
	if p.IsNil() || (p.Type() != "variable_declarator" && p.Type() != "parameter") {
		return false
	}
	name := p.ChildByField("name")
	return !name.IsNil() && name.Span() == n.Span()
}
