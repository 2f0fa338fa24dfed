// Package move implements Move-Type-to-File and Move-Type-to-Namespace
// (spec §4.6.1, §4.6.2): relocate a top-level moveable type declaration,
// reconciling using directives and marking an emptied source file for
// deletion.
package move

import (
	"context"
	"path/filepath"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/refs"
	"csrefactor/internal/resolver"
	"csrefactor/internal/semantic"
	"csrefactor/internal/workspace"
)

// ToFileInput is the request/response state for Move-Type-to-File.
type ToFileInput struct {
	Path                  string `json:"sourceFile"`
	SymbolName            string `json:"symbolName"`
	Line                  int    `json:"line,omitempty"`
	TargetPath            string `json:"targetFile"`
	CreateTargetIfMissing bool   `json:"createTargetIfMissing,omitempty"`

	resolved  model.Symbol
	resolvedM *semantic.Model
}

// NewToFileSpec returns the Move-Type-to-File operation.Spec bound to ws.
func NewToFileSpec(ws *workspace.Workspace) operation.Spec[*ToFileInput] {
	return operation.Spec[*ToFileInput]{
		Kind:          "MoveTypeToFile",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *ToFileInput) error {
			if in.Path == "" || in.SymbolName == "" {
				return errtax.New(errtax.CodeInvalidPath, "source path and symbol name required")
			}
			if in.TargetPath == "" {
				return errtax.New(errtax.CodeInvalidTargetPath, "target path required")
			}
			return nil
		},
		Resolve: func(ctx context.Context, in *ToFileInput) error {
			r := resolver.New(ws)
			defer r.Close()
			sym, err := r.Resolve(ctx, in.Path, in.SymbolName, in.Line, 0)
			if err != nil {
				return err
			}
			if err := checkMoveable(sym); err != nil {
				return err
			}
			m, err := r.ModelFor(ctx, in.Path)
			if err != nil {
				return err
			}
			in.resolved = sym
			in.resolvedM = m
			return nil
		},
		Compute: func(ctx context.Context, in *ToFileInput) (model.EditSet, model.Result, error) {
			return computeToFile(ws, in)
		},
	}
}

func checkMoveable(sym model.Symbol) error {
	if !sym.Kind.Moveable() {
		return errtax.Newf(errtax.CodeSymbolNotMoveable, "%s is not a moveable top-level type", sym.Kind)
	}
	if sym.ContainingType != "" {
		return errtax.New(errtax.CodeSymbolIsNested, "nested types cannot be moved on their own")
	}
	return nil
}

func computeToFile(ws *workspace.Workspace, in *ToFileInput) (model.EditSet, model.Result, error) {
	sym := in.resolved
	node, ok := in.resolvedM.DeclarationNode(sym)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeTypeNotFound, "could not locate declaration node")
	}

	sol := ws.CurrentSolution()
	srcDoc, _ := sol.DocumentByPath(in.Path)
	declText := strings.TrimSpace(node.Text())
	span := node.Span()
	newSourceText := strings.TrimRight(srcDoc.Text[:span.StartByte], " \t") + srcDoc.Text[span.EndByte:]

	usings := in.resolvedM.UsingDirectives()

	var changes []model.DocumentChange
	destDoc, destExists := sol.DocumentByPath(in.TargetPath)
	if destExists {
		if destCollision(ws, in.TargetPath, sym) {
			return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeNameCollision, "destination already declares a type of that name in that namespace")
		}
		newDestText := insertBeforeFinalBrace(destDoc.Text, declText)
		newDestText = reconcileUsings(newDestText, usings)
		changes = append(changes, fullReplace(in.TargetPath, newDestText))
	} else if in.CreateTargetIfMissing {
		newDestText := renderNewFile(sym.ContainingNamespace, usings, declText, fileScopedNamespace(srcDoc.Text))
		changes = append(changes, model.DocumentChange{
			Kind: model.ChangeCreate, Path: in.TargetPath, FileName: filepath.Base(in.TargetPath), NewText: newDestText,
		})
	} else {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeSourceFileNotFound, "target file does not exist and create_target_file is false")
	}

	if remainingTypeCount(newSourceText) == 0 {
		changes = append(changes, model.DocumentChange{Kind: model.ChangeDelete, Path: in.Path})
	} else {
		changes = append(changes, fullReplace(in.Path, newSourceText))
	}

	result := model.Result{Symbol: &sym}
	return model.EditSet{Changes: changes}, result, nil
}

func fullReplace(path, text string) model.DocumentChange {
	return model.DocumentChange{Kind: model.ChangeModify, Path: path, NewText: text}
}

// destCollision reports whether the destination document already declares a
// type with sym's simple name in sym's namespace.
func destCollision(ws *workspace.Workspace, targetPath string, sym model.Symbol) bool {
	r := resolver.New(ws)
	defer r.Close()
	m, err := r.ModelFor(context.Background(), targetPath)
	if err != nil {
		return false
	}
	for _, candidate := range m.Symbols() {
		if candidate.SimpleName == sym.SimpleName && candidate.ContainingNamespace == sym.ContainingNamespace && candidate.Kind.Moveable() {
			return true
		}
	}
	return false
}

// fileScopedNamespace reports whether text uses the file-scoped
// "namespace X;" form rather than the block "namespace X { ... }" form.
func fileScopedNamespace(text string) bool {
	idx := strings.Index(text, "namespace ")
	if idx < 0 {
		return false
	}
	rest := text[idx:]
	semi := strings.IndexByte(rest, ';')
	brace := strings.IndexByte(rest, '{')
	if semi < 0 {
		return false
	}
	return brace < 0 || semi < brace
}

func renderNewFile(namespace string, usings []string, declText string, fileScoped bool) string {
	var b strings.Builder
	for _, u := range usings {
		b.WriteString("using " + u + ";\n")
	}
	if len(usings) > 0 {
		b.WriteString("\n")
	}
	if namespace == "" {
		b.WriteString(declText)
		b.WriteString("\n")
		return b.String()
	}
	if fileScoped {
		b.WriteString("namespace " + namespace + ";\n\n")
		b.WriteString(declText)
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString("namespace " + namespace + "\n{\n")
	b.WriteString(indent(declText, "    "))
	b.WriteString("\n}\n")
	return b.String()
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// insertBeforeFinalBrace inserts declText just before the document's last
// closing brace (spec §4.6.1 step 4's "(a) end of the matching namespace
// block" position, approximated as the final brace when no more precise
// namespace match is tracked here).
func insertBeforeFinalBrace(text, declText string) string {
	idx := strings.LastIndex(text, "}")
	if idx < 0 {
		return strings.TrimRight(text, "\n") + "\n\n" + declText + "\n"
	}
	return text[:idx] + "\n" + indent(declText, "    ") + "\n" + text[idx:]
}

func reconcileUsings(text string, usings []string) string {
	existing := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "using ") {
			existing[strings.TrimSuffix(strings.TrimPrefix(trimmed, "using "), ";")] = true
		}
	}
	var missing []string
	for _, u := range usings {
		if !existing[u] {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return text
	}
	var b strings.Builder
	for _, u := range missing {
		b.WriteString("using " + u + ";\n")
	}
	b.WriteString(text)
	return b.String()
}

// remainingTypeCount is a cheap heuristic for spec §4.6.1 step 6 ("no
// remaining top-level declarations"): count occurrences of the common
// top-level declaration keywords outside of any using/namespace-only text.
func remainingTypeCount(text string) int {
	count := 0
	for _, kw := range []string{"class ", "struct ", "interface ", "enum ", "record ", "delegate "} {
		count += strings.Count(text, kw)
	}
	return count
}

// NamespaceInput is the request/response state for Move-Type-to-Namespace.
type NamespaceInput struct {
	Path            string `json:"sourceFile"`
	SymbolName      string `json:"symbolName"`
	Line            int    `json:"line,omitempty"`
	TargetNamespace string `json:"targetNamespace"`
	AlsoMoveFile    bool   `json:"alsoMoveFile,omitempty"`

	resolved  model.Symbol
	resolvedM *semantic.Model
}

// NewToNamespaceSpec returns the Move-Type-to-Namespace operation.Spec bound
// to ws.
func NewToNamespaceSpec(ws *workspace.Workspace) operation.Spec[*NamespaceInput] {
	return operation.Spec[*NamespaceInput]{
		Kind:          "MoveTypeToNamespace",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *NamespaceInput) error {
			if !validNamespace(in.TargetNamespace) {
				return errtax.Newf(errtax.CodeInvalidNamespace, "%q is not a valid namespace", in.TargetNamespace)
			}
			return nil
		},
		Resolve: func(ctx context.Context, in *NamespaceInput) error {
			r := resolver.New(ws)
			defer r.Close()
			sym, err := r.Resolve(ctx, in.Path, in.SymbolName, in.Line, 0)
			if err != nil {
				return err
			}
			if err := checkMoveable(sym); err != nil {
				return err
			}
			if sym.ContainingNamespace == in.TargetNamespace {
				return errtax.New(errtax.CodeSameLocation, "target namespace matches current namespace")
			}
			m, err := r.ModelFor(ctx, in.Path)
			if err != nil {
				return err
			}
			in.resolved = sym
			in.resolvedM = m
			return nil
		},
		Compute: func(ctx context.Context, in *NamespaceInput) (model.EditSet, model.Result, error) {
			return computeToNamespace(ctx, ws, in)
		},
	}
}

func validNamespace(ns string) bool {
	if ns == "" {
		return false
	}
	for _, seg := range strings.Split(ns, ".") {
		if seg == "" || !isIdentifier(seg) {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func computeToNamespace(ctx context.Context, ws *workspace.Workspace, in *NamespaceInput) (model.EditSet, model.Result, error) {
	sym := in.resolved
	onlyType := len(moveableTypes(in.resolvedM)) == 1
	if !onlyType {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMultipleTypesInFile, "file contains more than one type; split file first")
	}

	sol := ws.CurrentSolution()
	doc, _ := sol.DocumentByPath(in.Path)

	var changes []model.DocumentChange
	if in.AlsoMoveFile {
		// spec §4.6.2 step 5: when also_move_file is set, additionally emit
		// a move-to-file edit alongside the namespace rewrite, rather than
		// leaving the declaration in its renamed-namespace source file.
		node, ok := in.resolvedM.DeclarationNode(sym)
		if !ok {
			return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeTypeNotFound, "could not locate declaration node")
		}
		declText := strings.TrimSpace(node.Text())
		span := node.Span()
		remainingText := strings.TrimRight(doc.Text[:span.StartByte], " \t") + doc.Text[span.EndByte:]
		remainingText = strings.Replace(remainingText, "namespace "+sym.ContainingNamespace, "namespace "+in.TargetNamespace, 1)

		destDir := filepath.Join(filepath.Dir(in.Path), "..", filepath.Join(strings.Split(in.TargetNamespace, ".")...))
		destPath := filepath.Join(destDir, sym.SimpleName+".cs")
		usings := in.resolvedM.UsingDirectives()
		newFileText := renderNewFile(in.TargetNamespace, usings, declText, fileScopedNamespace(doc.Text))

		if remainingTypeCount(remainingText) == 0 {
			changes = append(changes, model.DocumentChange{Kind: model.ChangeDelete, Path: in.Path})
		} else {
			changes = append(changes, fullReplace(in.Path, remainingText))
		}
		changes = append(changes, model.DocumentChange{
			Kind: model.ChangeCreate, Path: destPath, FileName: filepath.Base(destPath), NewText: newFileText,
		})
	} else {
		newText := strings.Replace(doc.Text, "namespace "+sym.ContainingNamespace, "namespace "+in.TargetNamespace, 1)
		changes = append(changes, fullReplace(in.Path, newText))
	}

	declaringProject, _ := sol.ProjectOf(in.Path)

	tracker := refs.New(ws)
	result, err := tracker.FindAll(ctx, sym)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	for path := range result.ByDocument {
		if path == in.Path {
			continue
		}
		referencingProject, ok := sol.ProjectOf(path)
		if !ok || !refs.Rewritable(referencingProject, declaringProject) {
			continue
		}
		refDoc, ok := sol.DocumentByPath(path)
		if !ok || strings.Contains(refDoc.Text, "using "+in.TargetNamespace+";") {
			continue
		}
		changes = append(changes, fullReplace(path, addUsing(refDoc.Text, in.TargetNamespace)))
	}

	return model.EditSet{Changes: changes}, model.Result{Symbol: &sym}, nil
}

func moveableTypes(m *semantic.Model) []model.Symbol {
	var out []model.Symbol
	for _, s := range m.Symbols() {
		if s.Kind.Moveable() && s.ContainingType == "" {
			out = append(out, s)
		}
	}
	return out
}

func addUsing(text, ns string) string {
	insertAt := 0
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "using ") {
			insertAt = i + 1
		}
	}
	lines = append(lines[:insertAt], append([]string{"using " + ns + ";"}, lines[insertAt:]...)...)
	return strings.Join(lines, "\n")
}
