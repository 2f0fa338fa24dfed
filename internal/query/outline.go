package query

import (
	"context"

	"csrefactor/internal/model"
)

// OutlineNode is one entry in a document's hierarchical symbol outline
// (spec §4.7 "document outline"): a type with its nested members, or a
// namespace with its nested types.
type OutlineNode struct {
	Symbol   model.Symbol
	Children []OutlineNode
}

// Outline returns path's symbols arranged into a namespace -> type -> member
// tree.
func (e *Engine) Outline(ctx context.Context, path string) ([]OutlineNode, error) {
	m, err := e.resolver.ModelFor(ctx, path)
	if err != nil {
		return nil, err
	}
	symbols := m.Symbols()

	byType := map[string][]model.Symbol{}
	var types []model.Symbol
	for _, s := range symbols {
		if s.Kind.Moveable() {
			types = append(types, s)
			continue
		}
		if s.ContainingType != "" {
			byType[s.ContainingType] = append(byType[s.ContainingType], s)
		}
	}

	byNamespace := map[string][]OutlineNode{}
	var namespaces []string
	for _, t := range types {
		node := OutlineNode{Symbol: t}
		for _, member := range byType[t.SimpleName] {
			node.Children = append(node.Children, OutlineNode{Symbol: member})
		}
		if _, ok := byNamespace[t.ContainingNamespace]; !ok {
			namespaces = append(namespaces, t.ContainingNamespace)
		}
		byNamespace[t.ContainingNamespace] = append(byNamespace[t.ContainingNamespace], node)
	}

	var out []OutlineNode
	for _, ns := range namespaces {
		if ns == "" {
			out = append(out, byNamespace[ns]...)
			continue
		}
		out = append(out, OutlineNode{
			Symbol:   model.Symbol{SimpleName: ns, Kind: model.KindNamespace, FullyQualifiedName: ns},
			Children: byNamespace[ns],
		})
	}
	return out, nil
}
