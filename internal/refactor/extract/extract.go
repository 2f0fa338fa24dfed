// Package extract implements the Extract-Variable, Extract-Constant,
// Extract-Method, Extract-Interface, and Extract-Base-Class operations of
// spec §4.6.4/§4.6.5.
package extract

import (
	"context"
	"fmt"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/resolver"
	"csrefactor/internal/semantic"
	"csrefactor/internal/syntax"
	"csrefactor/internal/workspace"
)

var exprSuffixes = []string{"_expression", "identifier_name", "literal"}

func isExpressionNode(n syntax.Node) bool {
	t := n.Type()
	for _, s := range exprSuffixes {
		if strings.HasSuffix(t, s) {
			return true
		}
	}
	return t == "identifier" || strings.HasSuffix(t, "_literal")
}

func isStatementNode(n syntax.Node) bool {
	return strings.HasSuffix(n.Type(), "_statement")
}

// selection resolves a (startLine,startCol)-(endLine,endCol) range to byte
// offsets and the parsed tree of the document at path.
type selection struct {
	doc       model.Document
	tree      *syntax.Tree
	startOff  int
	endOff    int
}

func resolveSelection(ctx context.Context, ws *workspace.Workspace, path string, startLine, startCol, endLine, endCol int) (*selection, error) {
	doc, err := ws.DocumentFor(path)
	if err != nil {
		return nil, err
	}
	startOff, err := resolver.ByteOffset(doc.Text, startLine, startCol)
	if err != nil {
		return nil, err
	}
	endOff, err := resolver.ByteOffset(doc.Text, endLine, endCol)
	if err != nil {
		return nil, err
	}
	if endOff <= startOff {
		return nil, errtax.New(errtax.CodeEmptySelection, "selection is empty")
	}
	p := syntax.NewParser()
	defer p.Close()
	tree, err := p.Parse(ctx, []byte(doc.Text))
	if err != nil {
		return nil, errtax.Wrap(errtax.CodeSemanticLibraryError, "failed to parse "+path, err)
	}
	return &selection{doc: doc, tree: tree, startOff: startOff, endOff: endOff}, nil
}

// expressionNode returns the smallest expression node whose span covers
// [start,end), or false if the selection isn't exactly one expression (spec
// §4.6.4 step 1(b)).
func (s *selection) expressionNode() (syntax.Node, bool) {
	n := s.tree.NodeAt(s.startOff)
	for !n.IsNil() {
		span := n.Span()
		if span.StartByte <= s.startOff && span.EndByte >= s.endOff && isExpressionNode(n) {
			return n, true
		}
		n = n.Parent()
	}
	return syntax.Node{}, false
}

func (s *selection) enclosingStatement(from syntax.Node) (syntax.Node, bool) {
	n := from.Parent()
	for !n.IsNil() {
		if isStatementNode(n) {
			return n, true
		}
		n = n.Parent()
	}
	return syntax.Node{}, false
}

func indentOf(text string, offset int) string {
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	line := text[lineStart:offset]
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// --- Extract-Variable ---------------------------------------------------

type VariableInput struct {
	Path                  string `json:"sourceFile"`
	StartLine             int    `json:"startLine"`
	StartCol              int    `json:"startColumn"`
	EndLine               int    `json:"endLine"`
	EndCol                int    `json:"endColumn"`
	VariableName          string `json:"variableName"`
	ReplaceAllOccurrences bool   `json:"replaceAllOccurrences,omitempty"`
}

func NewVariableSpec(ws *workspace.Workspace) operation.Spec[*VariableInput] {
	return operation.Spec[*VariableInput]{
		Kind:          "ExtractVariable",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *VariableInput) error {
			if in.VariableName == "" {
				return errtax.New(errtax.CodeInvalidIdentifier, "variable name required")
			}
			return nil
		},
		Compute: func(ctx context.Context, in *VariableInput) (model.EditSet, model.Result, error) {
			return computeVariable(ctx, ws, in)
		},
	}
}

func computeVariable(ctx context.Context, ws *workspace.Workspace, in *VariableInput) (model.EditSet, model.Result, error) {
	sel, err := resolveSelection(ctx, ws, in.Path, in.StartLine, in.StartCol, in.EndLine, in.EndCol)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	expr, ok := sel.expressionNode()
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeInvalidSelection, "selection is not a single expression")
	}
	stmt, ok := sel.enclosingStatement(expr)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeStatementNotFound, "no enclosing statement for selection")
	}
	if exprIsVoidTyped(ctx, ws, in.Path, expr) {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeExpressionHasVoidType, "expression has void type and cannot be assigned to a variable")
	}

	exprText := expr.Text()

	var occurrences []model.Span
	if in.ReplaceAllOccurrences {
		blockStart, blockEnd := blockBounds(stmt)
		occurrences = findOccurrences(sel.doc.Text, exprText, blockStart, blockEnd)
	} else {
		occurrences = []model.Span{expr.Span()}
	}
	if len(occurrences) > 1 && exprHasSideEffects(expr) {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeExpressionHasSideEffects, "expression has side effects and multiple occurrences are requested")
	}

	indent := indentOf(sel.doc.Text, stmt.Span().StartByte)
	decl := fmt.Sprintf("var %s = %s;\n%s", in.VariableName, exprText, indent)

	var edits []model.TextEdit
	edits = append(edits, model.TextEdit{
		Span:    model.Span{StartByte: stmt.Span().StartByte, EndByte: stmt.Span().StartByte},
		NewText: decl,
	})
	for _, occ := range occurrences {
		edits = append(edits, model.TextEdit{Span: occ, NewText: in.VariableName})
	}

	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: edits}.ApplyOrder()
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{}, nil
}

// exprIsVoidTyped reports whether expr is an invocation of a method
// declared, in the same document, with a void return type (spec §4.6.5
// "Variable": "reject if the expression has void type").
func exprIsVoidTyped(ctx context.Context, ws *workspace.Workspace, path string, expr syntax.Node) bool {
	if expr.Type() != "invocation_expression" {
		return false
	}
	fn := expr.ChildByField("function")
	if fn.IsNil() {
		return false
	}
	name := fn.Text()
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	r := resolver.New(ws)
	defer r.Close()
	m, err := r.ModelFor(ctx, path)
	if err != nil {
		return false
	}
	for _, sym := range m.Symbols() {
		if sym.Kind != model.KindMethod || sym.SimpleName != name {
			continue
		}
		node, ok := m.DeclarationNode(sym)
		if !ok {
			continue
		}
		returnType := node.ChildByField("type")
		if !returnType.IsNil() && returnType.Text() == "void" {
			return true
		}
	}
	return false
}

// exprHasSideEffects reports whether expr performs a side effect (a call,
// an assignment, or an increment/decrement) — extracting it once is safe,
// but duplicating it across every occurrence is not.
func exprHasSideEffects(n syntax.Node) bool {
	return strings.Contains(n.Type(), "invocation") || strings.Contains(n.Type(), "assignment") ||
		strings.Contains(n.Type(), "postfix") || strings.Contains(n.Type(), "prefix")
}

func blockBounds(stmt syntax.Node) (int, int) {
	p := stmt.Parent()
	if p.IsNil() {
		return stmt.Span().StartByte, stmt.Span().EndByte
	}
	return p.Span().StartByte, p.Span().EndByte
}

func findOccurrences(text, needle string, from, to int) []model.Span {
	var out []model.Span
	if needle == "" {
		return out
	}
	for i := from; ; {
		idx := strings.Index(text[i:to], needle)
		if idx < 0 {
			break
		}
		start := i + idx
		out = append(out, model.Span{StartByte: start, EndByte: start + len(needle)})
		i = start + len(needle)
	}
	return out
}

// --- Extract-Constant -----------------------------------------------------

type ConstantInput struct {
	Path         string              `json:"sourceFile"`
	StartLine    int                 `json:"startLine"`
	StartCol     int                 `json:"startColumn"`
	EndLine      int                 `json:"endLine"`
	EndCol       int                 `json:"endColumn"`
	ConstantName string              `json:"constantName"`
	Visibility   model.Accessibility `json:"visibility,omitempty"`
}

func NewConstantSpec(ws *workspace.Workspace) operation.Spec[*ConstantInput] {
	return operation.Spec[*ConstantInput]{
		Kind:          "ExtractConstant",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *ConstantInput) error {
			if in.ConstantName == "" {
				return errtax.New(errtax.CodeInvalidIdentifier, "constant name required")
			}
			if in.Visibility == "" {
				in.Visibility = model.AccessPrivate
			}
			return nil
		},
		Compute: func(ctx context.Context, in *ConstantInput) (model.EditSet, model.Result, error) {
			return computeConstant(ctx, ws, in)
		},
	}
}

func computeConstant(ctx context.Context, ws *workspace.Workspace, in *ConstantInput) (model.EditSet, model.Result, error) {
	sel, err := resolveSelection(ctx, ws, in.Path, in.StartLine, in.StartCol, in.EndLine, in.EndCol)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	expr, ok := sel.expressionNode()
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeInvalidSelection, "selection is not a single expression")
	}
	if _, ok := semantic.ConstantValue(expr); !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeNotCompileTimeConstant, "selected expression is not a compile-time constant")
	}
	typeNode := findEnclosingType(expr)
	if typeNode.IsNil() {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeTypeNotFound, "no enclosing type for constant declaration")
	}
	exprText := expr.Text()
	body := typeNode.ChildByField("body")
	insertAt := typeNode.Span().EndByte - 1
	if !body.IsNil() {
		insertAt = body.Span().StartByte + 1
	}
	decl := fmt.Sprintf("\n    %s const var %s = %s;\n", string(in.Visibility), in.ConstantName, exprText)

	edits := []model.TextEdit{
		{Span: model.Span{StartByte: insertAt, EndByte: insertAt}, NewText: decl},
		{Span: expr.Span(), NewText: in.ConstantName},
	}
	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: edits}.ApplyOrder()
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{}, nil
}

func findEnclosingType(n syntax.Node) syntax.Node {
	p := n.Parent()
	for !p.IsNil() {
		switch p.Type() {
		case "class_declaration", "struct_declaration", "record_declaration":
			return p
		}
		p = p.Parent()
	}
	return syntax.Node{}
}

// --- Extract-Method ---------------------------------------------------

type MethodInput struct {
	Path        string              `json:"sourceFile"`
	StartLine   int                 `json:"startLine"`
	StartCol    int                 `json:"startColumn"`
	EndLine     int                 `json:"endLine"`
	EndCol      int                 `json:"endColumn"`
	MethodName  string              `json:"methodName"`
	Visibility  model.Accessibility `json:"visibility,omitempty"`
	ForceStatic bool                `json:"forceStatic,omitempty"`
}

func NewMethodSpec(ws *workspace.Workspace) operation.Spec[*MethodInput] {
	return operation.Spec[*MethodInput]{
		Kind:          "ExtractMethod",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *MethodInput) error {
			if in.MethodName == "" {
				return errtax.New(errtax.CodeInvalidIdentifier, "method name required")
			}
			if in.Visibility == "" {
				in.Visibility = model.AccessPrivate
			}
			return nil
		},
		Compute: func(ctx context.Context, in *MethodInput) (model.EditSet, model.Result, error) {
			return computeMethod(ctx, ws, in)
		},
	}
}

func computeMethod(ctx context.Context, ws *workspace.Workspace, in *MethodInput) (model.EditSet, model.Result, error) {
	sel, err := resolveSelection(ctx, ws, in.Path, in.StartLine, in.StartCol, in.EndLine, in.EndCol)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}

	m := semantic.Build(in.Path, sel.tree)
	df := m.AnalyzeSpan(model.Span{StartByte: sel.startOff, EndByte: sel.endOff})
	if df.ContainsYield {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeContainsYield, "selection contains yield")
	}
	if df.ExitPointCount > 1 {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMultipleExitPoints, "selection has multiple return points")
	}
	if df.Unresolvable {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeUnresolvableControlFlow, "selection contains break/continue/goto that escapes it")
	}

	var params, outVars []string
	for _, v := range df.Variables {
		switch {
		case v.FlowsIn && v.FlowsOut:
			params = append(params, "ref var "+v.Name)
		case v.FlowsIn:
			params = append(params, "var "+v.Name)
		case v.FlowsOut:
			outVars = append(outVars, v.Name)
		}
	}

	selectedText := sel.doc.Text[sel.startOff:sel.endOff]
	returnType := "void"
	returnStmt := ""
	if len(outVars) == 1 {
		returnType = "var"
		returnStmt = "\n    return " + outVars[0] + ";"
	}
	asyncPrefix := ""
	if df.ContainsAwait {
		asyncPrefix = "async "
		if returnType == "void" {
			returnType = "Task"
		} else {
			returnType = "Task<" + returnType + ">"
		}
	}
	static := ""
	if in.ForceStatic {
		static = "static "
	}

	body := indent(selectedText, "    ")
	method := fmt.Sprintf("\n%s %s%s%s %s(%s)\n{\n%s%s\n}\n",
		string(in.Visibility), static, asyncPrefix, returnType, in.MethodName, strings.Join(params, ", "), body, returnStmt)

	typeNode := findEnclosingType(sel.tree.NodeAt(sel.startOff))
	if typeNode.IsNil() {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeTypeNotFound, "no enclosing type for extracted method")
	}
	insertAt := typeNode.Span().EndByte - 1

	callArgs := strings.Join(argNames(params), ", ")
	call := in.MethodName + "(" + callArgs + ")"
	if df.ContainsAwait {
		call = "await " + call
	}
	replacement := call + ";"
	if len(outVars) == 1 {
		replacement = "var " + outVars[0] + " = " + call + ";"
	}

	edits := []model.TextEdit{
		{Span: model.Span{StartByte: sel.startOff, EndByte: sel.endOff}, NewText: replacement},
		{Span: model.Span{StartByte: insertAt, EndByte: insertAt}, NewText: method},
	}
	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: edits}.ApplyOrder()
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{}, nil
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

func argNames(params []string) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		fields := strings.Fields(p)
		out = append(out, fields[len(fields)-1])
	}
	return out
}

// --- Extract-Interface / Extract-Base-Class -----------------------------

type InterfaceInput struct {
	Path          string `json:"sourceFile"`
	TypeName      string `json:"typeName"`
	InterfaceName string `json:"interfaceName"`
	AddToBaseList bool   `json:"addToBaseList,omitempty"`
}

func NewInterfaceSpec(ws *workspace.Workspace) operation.Spec[*InterfaceInput] {
	return operation.Spec[*InterfaceInput]{
		Kind:          "ExtractInterface",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *InterfaceInput) error {
			if in.InterfaceName == "" {
				return errtax.New(errtax.CodeInvalidIdentifier, "interface name required")
			}
			return nil
		},
		Compute: func(ctx context.Context, in *InterfaceInput) (model.EditSet, model.Result, error) {
			return computeInterface(ctx, ws, in)
		},
	}
}

func computeInterface(ctx context.Context, ws *workspace.Workspace, in *InterfaceInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	sym, err := r.Resolve(ctx, in.Path, in.TypeName, 0, 0)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	node, ok := m.DeclarationNode(sym)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeTypeNotFound, "could not locate declaration node")
	}

	var members []string
	for _, s := range m.Symbols() {
		if s.ContainingType != sym.SimpleName || s.Accessibility != model.AccessPublic || s.IsStatic {
			continue
		}
		switch s.Kind {
		case model.KindMethod:
			members = append(members, "    void "+s.SimpleName+s.Signature+";")
		case model.KindProperty:
			members = append(members, "    object "+s.SimpleName+" { get; set; }")
		}
	}

	var b strings.Builder
	b.WriteString("public interface " + in.InterfaceName + "\n{\n")
	b.WriteString(strings.Join(members, "\n"))
	b.WriteString("\n}\n")

	changes := []model.DocumentChange{{
		Kind:     model.ChangeCreate,
		Path:     siblingPath(in.Path, in.InterfaceName),
		FileName: in.InterfaceName + ".cs",
		NewText:  b.String(),
	}}

	if in.AddToBaseList {
		edit := model.TextEdit{Span: model.Span{StartByte: node.ChildByField("name").Span().EndByte, EndByte: node.ChildByField("name").Span().EndByte}, NewText: " : " + in.InterfaceName}
		changes = append(changes, model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: []model.TextEdit{edit}})
	}
	return model.EditSet{Changes: changes}, model.Result{Symbol: &sym}, nil
}

func siblingPath(path, name string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return name + ".cs"
	}
	return path[:idx+1] + name + ".cs"
}

type BaseClassInput struct {
	Path          string   `json:"sourceFile"`
	TypeName      string   `json:"typeName"`
	BaseClassName string   `json:"baseClassName"`
	MemberNames   []string `json:"memberNames,omitempty"`
}

func NewBaseClassSpec(ws *workspace.Workspace) operation.Spec[*BaseClassInput] {
	return operation.Spec[*BaseClassInput]{
		Kind:          "ExtractBaseClass",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Validate: func(in *BaseClassInput) error {
			if in.BaseClassName == "" {
				return errtax.New(errtax.CodeInvalidIdentifier, "base class name required")
			}
			return nil
		},
		Compute: func(ctx context.Context, in *BaseClassInput) (model.EditSet, model.Result, error) {
			return computeBaseClass(ctx, ws, in)
		},
	}
}

func computeBaseClass(ctx context.Context, ws *workspace.Workspace, in *BaseClassInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	sym, err := r.Resolve(ctx, in.Path, in.TypeName, 0, 0)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	node, ok := m.DeclarationNode(sym)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeTypeNotFound, "could not locate declaration node")
	}
	if hasNonObjectBase(node) {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeAlreadyHasBaseClass, "type already declares a base class")
	}

	wanted := map[string]bool{}
	for _, n := range in.MemberNames {
		wanted[n] = true
	}
	var moved []string
	for _, s := range m.Symbols() {
		if s.ContainingType != sym.SimpleName || !wanted[s.SimpleName] {
			continue
		}
		vis := string(s.Accessibility)
		if vis == string(model.AccessPrivate) {
			vis = string(model.AccessProtected)
		}
		moved = append(moved, fmt.Sprintf("    %s object %s;", vis, s.SimpleName))
	}

	baseClass := "public class " + in.BaseClassName + "\n{\n" + strings.Join(moved, "\n") + "\n}\n"
	changes := []model.DocumentChange{
		{Kind: model.ChangeCreate, Path: siblingPath(in.Path, in.BaseClassName), FileName: in.BaseClassName + ".cs", NewText: baseClass},
	}

	nameEnd := node.ChildByField("name").Span().EndByte
	changes = append(changes, model.DocumentChange{
		Kind: model.ChangeModify, Path: in.Path,
		Edits: []model.TextEdit{{Span: model.Span{StartByte: nameEnd, EndByte: nameEnd}, NewText: " : " + in.BaseClassName}},
	})

	return model.EditSet{Changes: changes}, model.Result{Symbol: &sym}, nil
}

func hasNonObjectBase(n syntax.Node) bool {
	base := n.ChildByField("bases")
	return !base.IsNil() && strings.TrimSpace(strings.TrimPrefix(base.Text(), ":")) != "" && !strings.Contains(base.Text(), "object")
}
