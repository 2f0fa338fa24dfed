package query

import (
	"context"
	"math"
	"strings"

	"csrefactor/internal/model"
	"csrefactor/internal/semantic"
	"csrefactor/internal/syntax"
)

// branchKinds are the node types metrics.go counts as a decision point when
// computing cyclomatic complexity: each one adds a branch to the method's
// control-flow graph.
var branchKinds = []string{
	"if_statement",
	"else_clause",
	"for_statement",
	"for_each_statement",
	"while_statement",
	"do_statement",
	"case_switch_label",
	"catch_clause",
	"conditional_expression",
	"binary_expression", // approximated: only && and || operators count, checked in countBranches
}

// Metrics is the code-metrics set spec §4.7 requires for a method or type:
// cyclomatic complexity, lines of code, a maintainability index, class
// coupling, and inheritance depth.
type Metrics struct {
	CyclomaticComplexity int
	LinesOfCode          int
	MaintainabilityIndex float64
	ClassCoupling        int
	InheritanceDepth     int
}

// MetricsFor resolves the member or type named name and computes its
// metrics.
func (e *Engine) MetricsFor(ctx context.Context, path, name string, line int) (Metrics, error) {
	sym, m, err := e.resolve(ctx, path, name, line, 0)
	if err != nil {
		return Metrics{}, err
	}
	node, ok := m.DeclarationNode(sym)
	if !ok {
		return Metrics{}, noSuchDocument(path)
	}

	loc := linesOf(node)
	complexity := countBranches(node) + 1
	coupling := classCoupling(node, sym)
	depth := 0
	if sym.Kind.Moveable() {
		depth = e.inheritanceDepth(ctx, m, node)
	}

	return Metrics{
		CyclomaticComplexity: complexity,
		LinesOfCode:          loc,
		MaintainabilityIndex: maintainabilityIndex(complexity, loc),
		ClassCoupling:        coupling,
		InheritanceDepth:     depth,
	}, nil
}

func linesOf(n syntax.Node) int {
	return strings.Count(n.Text(), "\n") + 1
}

func countBranches(n syntax.Node) int {
	count := 0
	for _, kind := range branchKinds {
		for _, d := range n.DescendantsOfKind(kind) {
			if kind == "binary_expression" {
				text := d.Text()
				if strings.Contains(text, "&&") || strings.Contains(text, "||") {
					count++
				}
				continue
			}
			count++
		}
	}
	return count
}

// maintainabilityIndex follows the standard Visual Studio formula, scaled to
// 0-100: MI = (171 - 5.2*ln(V) - 0.23*G - 16.2*ln(L)) * 100 / 171, clamped
// to [0, 100]. Halstead volume V is approximated from the line count since
// this model has no operator/operand tokenizer.
func maintainabilityIndex(complexity, loc int) float64 {
	volume := approximateHalsteadVolume(loc)
	raw := 171.0 - 5.2*math.Log(volume) - 0.23*float64(complexity) - 16.2*math.Log(float64(loc))
	mi := raw * 100.0 / 171.0
	if mi < 0 {
		return 0
	}
	if mi > 100 {
		return 100
	}
	return mi
}

func approximateHalsteadVolume(loc int) float64 {
	if loc < 1 {
		return 1
	}
	return float64(loc) * 8.0
}

func classCoupling(n syntax.Node, self model.Symbol) int {
	seen := map[string]bool{}
	for _, id := range n.DescendantsOfKind("identifier") {
		name := id.Text()
		if name == "" || name == self.SimpleName {
			continue
		}
		if name[0] < 'A' || name[0] > 'Z' {
			continue // heuristic: coupling only counted against PascalCase type-shaped names
		}
		seen[name] = true
	}
	return len(seen)
}

func (e *Engine) inheritanceDepth(ctx context.Context, m *semantic.Model, node syntax.Node) int {
	depth := 0
	bases := baseListOf(node)
	visited := map[string]bool{}
	for len(bases) > 0 && depth < 64 {
		next := bases[0]
		if visited[next] {
			break
		}
		visited[next] = true
		found := false
		for _, doc := range e.ws.CurrentSolution().AllDocuments() {
			candidateModel, err := e.resolver.ModelFor(ctx, doc.Path)
			if err != nil {
				continue
			}
			for _, candidate := range candidateModel.Symbols() {
				if candidate.SimpleName != next || !candidate.Kind.Moveable() {
					continue
				}
				candidateNode, ok := candidateModel.DeclarationNode(candidate)
				if !ok {
					continue
				}
				depth++
				bases = baseListOf(candidateNode)
				found = true
				break
			}
			if found {
				break
			}
		}
		if !found {
			break
		}
	}
	return depth
}
