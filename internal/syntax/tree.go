// Package syntax wraps tree-sitter's C# grammar as the concrete Syntax Tree
// collaborator spec §6 requires: node-at-position and descendants-of-kind
// queries over an immutable parse of a document's text.
package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"go.uber.org/zap"

	"csrefactor/internal/logging"
	"csrefactor/internal/model"
)

// Node is a thin handle onto a tree-sitter node, carrying the source text
// needed to render its content without re-reading the document.
type Node struct {
	raw    *sitter.Node
	source []byte
}

// Tree is a parsed document. It owns the underlying tree-sitter tree and
// must be closed once the caller is done with it.
type Tree struct {
	raw    *sitter.Tree
	source []byte
}

// Parser parses C# source into Trees. A Parser is not safe for concurrent
// use; callers needing concurrent parses should use one Parser per
// goroutine (mirrors tree-sitter's own single-parser-per-thread contract).
type Parser struct {
	p *sitter.Parser
}

// NewParser returns a Parser configured for the C# grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &Parser{p: p}
}

// Close releases the parser's resources.
func (p *Parser) Close() {
	p.p.Close()
}

// Parse parses source and returns its Tree. The caller must call Tree.Close
// when done.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Tree, error) {
	raw, err := p.p.ParseCtx(ctx, nil, source)
	if err != nil {
		logging.Get(logging.CategorySyntax).Error("parse failed", zap.Error(err))
		return nil, fmt.Errorf("syntax: parse: %w", err)
	}
	return &Tree{raw: raw, source: source}, nil
}

// Close releases the tree's resources.
func (t *Tree) Close() {
	t.raw.Close()
}

// Root returns the tree's root node.
func (t *Tree) Root() Node {
	return Node{raw: t.raw.RootNode(), source: t.source}
}

// NodeAt returns the smallest named node whose span contains byte offset
// off, per spec §6.2 "node-at-position". Returns the zero Node (IsNil true)
// if off is out of range.
func (t *Tree) NodeAt(off int) Node {
	if off < 0 || off > len(t.source) {
		return Node{}
	}
	root := t.raw.RootNode()
	n := root.NamedDescendantForByteRange(uint32(off), uint32(off))
	if n == nil {
		return Node{}
	}
	return Node{raw: n, source: t.source}
}

// DescendantsOfKind collects every named descendant of n (inclusive) whose
// tree-sitter node type matches kind, in pre-order, per spec §6.2
// "descendants-of-kind".
func (n Node) DescendantsOfKind(kind string) []Node {
	var out []Node
	var walk func(*sitter.Node)
	walk = func(cur *sitter.Node) {
		if cur.Type() == kind {
			out = append(out, Node{raw: cur, source: n.source})
		}
		for i := 0; i < int(cur.NamedChildCount()); i++ {
			walk(cur.NamedChild(i))
		}
	}
	walk(n.raw)
	return out
}

// IsNil reports whether n is the zero Node.
func (n Node) IsNil() bool { return n.raw == nil }

// Type returns the tree-sitter grammar node type (e.g. "class_declaration").
func (n Node) Type() string {
	if n.IsNil() {
		return ""
	}
	return n.raw.Type()
}

// Text returns the node's source text.
func (n Node) Text() string {
	if n.IsNil() {
		return ""
	}
	return n.raw.Content(n.source)
}

// Span returns the node's byte range and line/column positions.
func (n Node) Span() model.Span {
	if n.IsNil() {
		return model.Span{}
	}
	start, end := n.raw.StartPoint(), n.raw.EndPoint()
	return model.Span{
		StartByte: int(n.raw.StartByte()),
		EndByte:   int(n.raw.EndByte()),
		Start:     model.Position{Line: int(start.Row) + 1, Column: int(start.Column) + 1},
		End:       model.Position{Line: int(end.Row) + 1, Column: int(end.Column) + 1},
	}
}

// Parent returns n's parent node.
func (n Node) Parent() Node {
	if n.IsNil() {
		return Node{}
	}
	p := n.raw.Parent()
	if p == nil {
		return Node{}
	}
	return Node{raw: p, source: n.source}
}

// ChildByField returns the named field child (e.g. "name", "body", "parameters").
func (n Node) ChildByField(field string) Node {
	if n.IsNil() {
		return Node{}
	}
	c := n.raw.ChildByFieldName(field)
	if c == nil {
		return Node{}
	}
	return Node{raw: c, source: n.source}
}

// NamedChildren returns n's named children in source order.
func (n Node) NamedChildren() []Node {
	if n.IsNil() {
		return nil
	}
	out := make([]Node, 0, n.raw.NamedChildCount())
	for i := 0; i < int(n.raw.NamedChildCount()); i++ {
		out = append(out, Node{raw: n.raw.NamedChild(i), source: n.source})
	}
	return out
}
