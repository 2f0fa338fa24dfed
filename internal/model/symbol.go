package model

import "fmt"

// SymbolKey is the stable, cross-snapshot comparison key for a Symbol (spec
// §9: "Symbol identity across snapshots is established by the stable
// symbol-key comparer, never by reference"). It is derived from the
// declaring document path, the containing namespace/type, the simple name,
// and — for overloaded methods — a signature suffix, so two Symbol values
// parsed from different snapshots of the same source compare equal.
type SymbolKey string

// NewSymbolKey builds a SymbolKey from its constituent parts.
func NewSymbolKey(declaringPath, fullyQualifiedName, signature string) SymbolKey {
	if signature == "" {
		return SymbolKey(declaringPath + "#" + fullyQualifiedName)
	}
	return SymbolKey(declaringPath + "#" + fullyQualifiedName + "#" + signature)
}

// Symbol is a handle to a declaration, comparable across snapshots via Key.
type Symbol struct {
	Key                  SymbolKey
	SimpleName           string
	FullyQualifiedName   string
	Kind                 SymbolKind
	ContainingNamespace  string
	ContainingType       string // empty for top-level symbols
	Accessibility        Accessibility
	IsStatic             bool
	IsVirtual            bool
	IsOverride           bool
	IsAbstract           bool
	IsSealed             bool
	IsExternal           bool // declared outside this workspace (e.g. BCL)
	IsSynthesized        bool // compiler-generated (e.g. default ctor)
	Signature            string
	DeclaringPath        string
	DeclarationSpan      Span
	// Declarations lists every declaration location of this symbol, used
	// for partial-type tie-breaks (spec §4.2 "Ordering & tie-breaks").
	Declarations []Location
}

// Location pairs a document path with a span within it.
type Location struct {
	Path string
	Span Span
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s %s", s.Kind, s.FullyQualifiedName)
}

// Reference is a syntactic usage site of a Symbol (spec §3 "Reference").
type Reference struct {
	DocumentPath string
	Span         Span
	IsWrite      bool
	IsImplicit   bool
	Symbol       SymbolKey
}
