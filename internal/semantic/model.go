// Package semantic builds the semantic-model collaborator spec §6 requires
// on top of internal/syntax's tree-sitter CST: declared-symbol-at-node,
// symbol-at-position, constant folding, data-flow analysis over a span, and
// reference enumeration.
package semantic

import (
	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

// declKind maps a grammar node type to the SymbolKind it declares, for the
// node types that introduce a named symbol.
var declKind = map[string]model.SymbolKind{
	"class_declaration":               model.KindClass,
	"struct_declaration":              model.KindStruct,
	"interface_declaration":           model.KindInterface,
	"enum_declaration":                model.KindEnum,
	"record_declaration":              model.KindRecord,
	"delegate_declaration":            model.KindDelegate,
	"method_declaration":              model.KindMethod,
	"property_declaration":            model.KindProperty,
	"event_declaration":               model.KindEvent,
	"constructor_declaration":         model.KindConstructor,
	"destructor_declaration":          model.KindDestructor,
	"operator_declaration":            model.KindOperator,
	"conversion_operator_declaration": model.KindOperator,
	"indexer_declaration":             model.KindIndexer,
	"parameter":                       model.KindParameter,
	"variable_declarator":             model.KindLocal,
	"enum_member_declaration":         model.KindConstant,
	"type_parameter":                  model.KindTypeParameter,
}

var typeDeclKinds = map[string]bool{
	"class_declaration":     true,
	"struct_declaration":    true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"record_declaration":    true,
	"delegate_declaration":  true,
}

// Model is the semantic model of one parsed document: its declared symbols
// indexed for lookup by position, simple name, and key.
type Model struct {
	path    string
	tree    *syntax.Tree
	symbols []model.Symbol
	byKey   map[model.SymbolKey]model.Symbol
	nodeOf  map[model.SymbolKey]syntax.Node
}

// Build constructs a Model for tree, the parsed contents of the document at
// path.
func Build(path string, tree *syntax.Tree) *Model {
	m := &Model{
		path:   path,
		tree:   tree,
		byKey:  make(map[model.SymbolKey]model.Symbol),
		nodeOf: make(map[model.SymbolKey]syntax.Node),
	}
	m.collectSymbols()
	return m
}

// Path returns the document path this model was built from.
func (m *Model) Path() string { return m.path }

// Symbols returns every symbol declared in this document, in declaration
// order.
func (m *Model) Symbols() []model.Symbol {
	out := make([]model.Symbol, len(m.symbols))
	copy(out, m.symbols)
	return out
}

// SymbolByKey looks up a previously collected symbol by its key.
func (m *Model) SymbolByKey(key model.SymbolKey) (model.Symbol, bool) {
	s, ok := m.byKey[key]
	return s, ok
}

// DeclarationNode returns the syntax node sym was declared at, letting
// callers (Move-Type-to-File/Namespace, Extract-Interface, ...) read or
// splice the declaration's own source text.
func (m *Model) DeclarationNode(sym model.Symbol) (syntax.Node, bool) {
	n, ok := m.nodeOf[sym.Key]
	return n, ok
}

// Root exposes the underlying parsed tree's root node for callers that need
// to walk the whole document (e.g. using-directive placement).
func (m *Model) Root() syntax.Node {
	return m.tree.Root()
}
