// Package organize implements Organize-Usings' three operations (spec
// §4.6.8): Sort, Remove-Unused, and Add-Missing, each runnable in
// single-file or all-files mode.
package organize

import (
	"context"
	"sort"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/resolver"
	"csrefactor/internal/semantic"
	"csrefactor/internal/syntax"
	"csrefactor/internal/workspace"
)

// Mode selects which of the three Organize-Usings behaviors to run.
type Mode string

const (
	ModeSort         Mode = "sort"
	ModeRemoveUnused Mode = "remove_unused"
	ModeAddMissing   Mode = "add_missing"
)

// Scope selects single-document or whole-solution operation.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeAll    Scope = "all"
)

var systemPrefixes = []string{"System"}

// bclIndex is a small built-in table of common BCL type names to their
// declaring namespace, standing in for "scan the compilation's referenced
// assemblies" (spec §4.6.8 step 3) since this engine has no real BCL
// metadata reader.
var bclIndex = map[string]string{
	"List":              "System.Collections.Generic",
	"Dictionary":        "System.Collections.Generic",
	"HashSet":           "System.Collections.Generic",
	"Queue":             "System.Collections.Generic",
	"Stack":             "System.Collections.Generic",
	"IEnumerable":       "System.Collections.Generic",
	"ICollection":       "System.Collections.Generic",
	"IList":             "System.Collections.Generic",
	"Task":              "System.Threading.Tasks",
	"CancellationToken": "System.Threading",
	"Regex":             "System.Text.RegularExpressions",
	"StringBuilder":     "System.Text",
	"File":              "System.IO",
	"Directory":         "System.IO",
	"Path":              "System.IO",
	"Stream":            "System.IO",
	"Console":           "System",
	"DateTime":          "System",
	"TimeSpan":          "System",
	"Guid":              "System",
}

type usingEntry struct {
	text       string // "Name" or "static Name" or "Alias = Name"
	isStatic   bool
	isAlias    bool
	sortKey    string
}

func classify(raw string) usingEntry {
	e := usingEntry{text: raw}
	if strings.HasPrefix(raw, "static ") {
		e.isStatic = true
		e.sortKey = strings.TrimPrefix(raw, "static ")
		return e
	}
	if idx := strings.Index(raw, "="); idx >= 0 {
		e.isAlias = true
		e.sortKey = strings.TrimSpace(raw[idx+1:])
		return e
	}
	e.sortKey = raw
	return e
}

func priority(sortKey string) int {
	for _, p := range systemPrefixes {
		if sortKey == p || strings.HasPrefix(sortKey, p+".") {
			return 0
		}
	}
	return 1
}

// sortUsings implements spec §4.6.8 Sort: partition into regular/static/
// alias groups, each sorted by (priority, ordinal string), emitted in that
// partition order.
func sortUsings(raws []string) []string {
	var regular, static, alias []usingEntry
	for _, r := range raws {
		e := classify(r)
		switch {
		case e.isStatic:
			static = append(static, e)
		case e.isAlias:
			alias = append(alias, e)
		default:
			regular = append(regular, e)
		}
	}
	sortGroup := func(g []usingEntry) {
		sort.Slice(g, func(i, j int) bool {
			pi, pj := priority(g[i].sortKey), priority(g[j].sortKey)
			if pi != pj {
				return pi < pj
			}
			return g[i].sortKey < g[j].sortKey
		})
	}
	sortGroup(regular)
	sortGroup(static)
	sortGroup(alias)

	var out []string
	for _, g := range [][]usingEntry{regular, static, alias} {
		for _, e := range g {
			out = append(out, e.text)
		}
	}
	return out
}

// Input is the request/response state for a single Organize-Usings call.
type Input struct {
	Mode  Mode   `json:"mode"`
	Scope Scope  `json:"scope"`
	Path  string `json:"sourceFile"` // required when Scope == ScopeSingle
}

// NewSpec returns the Organize-Usings operation.Spec bound to ws.
func NewSpec(ws *workspace.Workspace) operation.Spec[*Input] {
	return operation.Spec[*Input]{
		Kind:          "OrganizeUsings",
		TimeoutFamily: "generate_organize_convert",
		Mutating:      true,
		Validate: func(in *Input) error {
			if in.Scope == ScopeSingle && in.Path == "" {
				return errtax.New(errtax.CodeInvalidPath, "path required in single-file mode")
			}
			switch in.Mode {
			case ModeSort, ModeRemoveUnused, ModeAddMissing:
			default:
				return errtax.Newf(errtax.CodeInvalidIdentifier, "unknown organize-usings mode %q", in.Mode)
			}
			return nil
		},
		Compute: func(ctx context.Context, in *Input) (model.EditSet, model.Result, error) {
			return compute(ctx, ws, in)
		},
	}
}

func compute(ctx context.Context, ws *workspace.Workspace, in *Input) (model.EditSet, model.Result, error) {
	var paths []string
	if in.Scope == ScopeSingle {
		paths = []string{in.Path}
	} else {
		for _, doc := range ws.CurrentSolution().AllDocuments() {
			paths = append(paths, doc.Path)
		}
	}

	r := resolver.New(ws)
	defer r.Close()

	var extIndex map[string]map[string]bool
	if in.Mode == ModeRemoveUnused {
		var err error
		extIndex, err = buildExtensionIndex(ctx, ws, r)
		if err != nil {
			return model.EditSet{}, model.Result{}, err
		}
	}

	var changes []model.DocumentChange
	for _, path := range paths {
		doc, err := ws.DocumentFor(path)
		if err != nil {
			return model.EditSet{}, model.Result{}, err
		}
		m, err := r.ModelFor(ctx, path)
		if err != nil {
			return model.EditSet{}, model.Result{}, err
		}
		newText, changed := organizeOne(m, doc.Text, in.Mode, extIndex)
		if changed {
			changes = append(changes, model.DocumentChange{Kind: model.ChangeModify, Path: path, NewText: newText})
		}
	}
	return model.EditSet{Changes: changes}, model.Result{}, nil
}

// buildExtensionIndex scans every document in the workspace for static
// methods whose first parameter carries the "this" modifier, mapping each
// extension method's simple name to the set of namespaces that declare one
// by that name (spec §4.6.8 step 4: a using that supplies only an extension
// method must not be flagged unused).
func buildExtensionIndex(ctx context.Context, ws *workspace.Workspace, r *resolver.Resolver) (map[string]map[string]bool, error) {
	index := map[string]map[string]bool{}
	for _, doc := range ws.CurrentSolution().AllDocuments() {
		m, err := r.ModelFor(ctx, doc.Path)
		if err != nil {
			return nil, err
		}
		for _, sym := range m.Symbols() {
			if sym.Kind != model.KindMethod || !sym.IsStatic {
				continue
			}
			node, ok := m.DeclarationNode(sym)
			if !ok || !firstParamIsThis(node) {
				continue
			}
			if index[sym.SimpleName] == nil {
				index[sym.SimpleName] = map[string]bool{}
			}
			index[sym.SimpleName][sym.ContainingNamespace] = true
		}
	}
	return index, nil
}

// firstParamIsThis reports whether methodNode's first parameter is declared
// "this T name", the marker that makes a static method an extension method.
func firstParamIsThis(methodNode syntax.Node) bool {
	params := methodNode.ChildByField("parameters")
	if params.IsNil() {
		return false
	}
	for _, c := range params.NamedChildren() {
		if c.Type() != "parameter" {
			continue
		}
		return strings.HasPrefix(strings.TrimSpace(c.Text()), "this ")
	}
	return false
}

func organizeOne(m *semantic.Model, text string, mode Mode, extIndex map[string]map[string]bool) (string, bool) {
	usingNodes := m.Root().DescendantsOfKind("using_directive")
	if len(usingNodes) == 0 && mode != ModeAddMissing {
		return text, false
	}

	raws := make([]string, 0, len(usingNodes))
	for _, n := range usingNodes {
		raws = append(raws, usingBody(n))
	}

	switch mode {
	case ModeRemoveUnused:
		referenced := m.ReferencedNamespacePrefixes()
		invoked := m.InvokedMemberNames()
		filtered := raws[:0:0]
		for _, raw := range raws {
			ns := classify(raw).sortKey
			if referenced[ns] || suppliesInvokedExtension(ns, invoked, extIndex) {
				filtered = append(filtered, raw)
			}
		}
		raws = filtered
	case ModeAddMissing:
		present := map[string]bool{}
		for _, raw := range raws {
			present[classify(raw).sortKey] = true
		}
		for _, ns := range missingNamespaces(m, present) {
			raws = append(raws, ns)
		}
	}

	sorted := sortUsings(raws)

	var b strings.Builder
	for i, u := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("using " + u + ";")
	}
	replacement := b.String()

	if len(usingNodes) == 0 {
		if replacement == "" {
			return text, false
		}
		newText := replacement + "\n" + text
		return newText, true
	}

	start := usingNodes[0].Span().StartByte
	end := usingNodes[len(usingNodes)-1].Span().EndByte
	newText := text[:start] + replacement + text[end:]
	return newText, newText != text
}

// missingNamespaces scans m's identifiers for a simple name matching
// bclIndex whose namespace isn't already present, returning "using"-body
// strings to append (spec §4.6.8 step 3's BCL-index stand-in).
func missingNamespaces(m *semantic.Model, present map[string]bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range m.Root().DescendantsOfKind("identifier") {
		ns, ok := bclIndex[id.Text()]
		if !ok || present[ns] || seen[ns] {
			continue
		}
		seen[ns] = true
		out = append(out, ns)
	}
	return out
}

// suppliesInvokedExtension reports whether namespace ns declares an
// extension method matching one of the document's invoked member names,
// per extIndex (built by buildExtensionIndex). A using that only contributes
// extension methods never shows up in ReferencedNamespacePrefixes' textual
// walk, since the call site never spells the namespace out.
func suppliesInvokedExtension(ns string, invoked map[string]bool, extIndex map[string]map[string]bool) bool {
	for name := range invoked {
		if extIndex[name][ns] {
			return true
		}
	}
	return false
}

func usingBody(n syntax.Node) string {
	text := strings.TrimSpace(n.Text())
	text = strings.TrimPrefix(text, "using ")
	text = strings.TrimSuffix(text, ";")
	return strings.TrimSpace(text)
}
