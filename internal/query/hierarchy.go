package query

import (
	"context"
	"strings"

	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

// TypeHierarchy is the ancestor/descendant listing spec §4.7 requires.
type TypeHierarchy struct {
	Type        model.Symbol
	BaseNames   []string // textual base-list entries; the semantic library this engine approximates would resolve these to Symbols
	Descendants []model.Symbol
}

// Hierarchy resolves the type named name and returns its declared base list
// plus every other type in the workspace whose base list names it.
func (e *Engine) Hierarchy(ctx context.Context, path, name string, line int) (TypeHierarchy, error) {
	sym, m, err := e.resolve(ctx, path, name, line, 0)
	if err != nil {
		return TypeHierarchy{}, err
	}
	node, ok := m.DeclarationNode(sym)
	if !ok {
		return TypeHierarchy{}, noSuchDocument(path)
	}
	hier := TypeHierarchy{Type: sym, BaseNames: baseListOf(node)}

	for _, doc := range e.ws.CurrentSolution().AllDocuments() {
		candidateModel, err := e.resolver.ModelFor(ctx, doc.Path)
		if err != nil {
			return TypeHierarchy{}, err
		}
		for _, candidate := range candidateModel.Symbols() {
			if !candidate.Kind.Moveable() || candidate.Key == sym.Key {
				continue
			}
			candidateNode, ok := candidateModel.DeclarationNode(candidate)
			if !ok {
				continue
			}
			for _, base := range baseListOf(candidateNode) {
				if base == sym.SimpleName {
					hier.Descendants = append(hier.Descendants, candidate)
				}
			}
		}
	}
	return hier, nil
}

func baseListOf(n syntax.Node) []string {
	bases := n.ChildByField("bases")
	if bases.IsNil() {
		return nil
	}
	text := strings.TrimPrefix(strings.TrimSpace(bases.Text()), ":")
	var out []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
