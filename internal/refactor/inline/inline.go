// Package inline implements Inline-Variable, Inline-Method, and
// Inline-Constant (spec §4.6.6): replace every reference to a local,
// method, or constant with its definition, optionally removing the
// now-dead declaration.
package inline

import (
	"context"
	"fmt"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/refs"
	"csrefactor/internal/resolver"
	"csrefactor/internal/semantic"
	"csrefactor/internal/syntax"
	"csrefactor/internal/workspace"
)

// --- Inline-Variable ------------------------------------------------------

type VariableInput struct {
	Path         string `json:"sourceFile"`
	VariableName string `json:"variableName"`
	Line         int    `json:"line,omitempty"`
	Column       int    `json:"column,omitempty"`
}

func NewVariableSpec(ws *workspace.Workspace) operation.Spec[*VariableInput] {
	return operation.Spec[*VariableInput]{
		Kind:          "InlineVariable",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Compute: func(ctx context.Context, in *VariableInput) (model.EditSet, model.Result, error) {
			return computeVariable(ctx, ws, in)
		},
	}
}

func computeVariable(ctx context.Context, ws *workspace.Workspace, in *VariableInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	sym, err := r.Resolve(ctx, in.Path, in.VariableName, in.Line, in.Column)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	if sym.Kind != model.KindLocal {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeVariableNotFound, "symbol is not a local variable")
	}
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	declNode, ok := m.DeclarationNode(sym)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeVariableNotFound, "could not locate declaration node")
	}
	initNode := declNode.ChildByField("value")
	if initNode.IsNil() {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeVariableNotFound, "local has no initializer")
	}

	tracker := refs.New(ws)
	result, err := tracker.FindAll(ctx, sym)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	writeCount := 0
	for _, found := range result.ByDocument {
		for _, ref := range found {
			if ref.IsWrite {
				writeCount++
			}
		}
	}
	if writeCount > 0 {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeModifiedAfterInitialization, "local is assigned after initialization")
	}

	initText := initNode.Text()
	if exprHasSideEffects(initNode) && result.Total > 1 {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeExpressionHasSideEffects, "initializer has side effects and is referenced more than once")
	}
	if needsParens(initNode) {
		initText = "(" + initText + ")"
	}

	var edits []model.TextEdit
	declSpan := declNode.Span()
	for _, ref := range result.ByDocument[in.Path] {
		if ref.Span.StartByte >= declSpan.StartByte && ref.Span.EndByte <= declSpan.EndByte {
			continue // the declaration's own name, removed with its statement below
		}
		edits = append(edits, model.TextEdit{Span: ref.Span, NewText: initText})
	}
	stmt := enclosingStatement(declNode)
	if !stmt.IsNil() {
		edits = append(edits, model.TextEdit{Span: stmt.Span(), NewText: ""})
	}
	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: edits}.ApplyOrder()
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{Symbol: &sym, ReferencesUpdated: result.Total}, nil
}

func exprHasSideEffects(n syntax.Node) bool {
	return strings.Contains(n.Type(), "invocation") || strings.Contains(n.Type(), "assignment") ||
		strings.Contains(n.Type(), "postfix") || strings.Contains(n.Type(), "prefix")
}

func needsParens(n syntax.Node) bool {
	switch n.Type() {
	case "binary_expression", "conditional_expression", "assignment_expression":
		return true
	default:
		return false
	}
}

func enclosingStatement(n syntax.Node) syntax.Node {
	p := n.Parent()
	for !p.IsNil() {
		if strings.HasSuffix(p.Type(), "_statement") {
			return p
		}
		p = p.Parent()
	}
	return syntax.Node{}
}

// --- Inline-Method --------------------------------------------------------

type MethodInput struct {
	Path         string `json:"sourceFile"`
	MethodName   string `json:"methodName"`
	Line         int    `json:"line,omitempty"`
	DeleteMethod bool   `json:"deleteMethod,omitempty"`
}

func NewMethodSpec(ws *workspace.Workspace) operation.Spec[*MethodInput] {
	return operation.Spec[*MethodInput]{
		Kind:          "InlineMethod",
		TimeoutFamily: "move_rename_extract",
		Mutating:      true,
		Compute: func(ctx context.Context, in *MethodInput) (model.EditSet, model.Result, error) {
			return computeMethod(ctx, ws, in)
		},
	}
}

func computeMethod(ctx context.Context, ws *workspace.Workspace, in *MethodInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	sym, err := r.Resolve(ctx, in.Path, in.MethodName, in.Line, 0)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	if sym.Kind != model.KindMethod {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMethodNotFound, "symbol is not a method")
	}
	if sym.IsVirtual || sym.IsAbstract {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMethodIsVirtual, "virtual/abstract methods cannot be inlined")
	}
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	declNode, ok := m.DeclarationNode(sym)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMethodNotFound, "could not locate declaration node")
	}
	body := declNode.ChildByField("body")
	if body.IsNil() {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMethodHasNoBody, "method has no body to inline")
	}
	if strings.Contains(body.Text(), sym.SimpleName+"(") {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMethodIsRecursive, "method calls itself")
	}

	tracker := refs.New(ws)
	result, err := tracker.FindAll(ctx, sym)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}

	sol := ws.CurrentSolution()
	declaringProject, _ := sol.ProjectOf(sym.DeclaringPath)

	bodyText := strings.TrimSpace(body.Text())
	bodyText = strings.TrimPrefix(bodyText, "{")
	bodyText = strings.TrimSuffix(bodyText, "}")
	bodyText = strings.TrimSpace(bodyText)

	var changes []model.DocumentChange
	for path, found := range result.ByDocument {
		referencingProject, ok := sol.ProjectOf(path)
		if !ok || !refs.Rewritable(referencingProject, declaringProject) {
			continue
		}
		var edits []model.TextEdit
		for _, ref := range found {
			edits = append(edits, model.TextEdit{Span: ref.Span, NewText: "/* inlined " + sym.SimpleName + " */ " + bodyText})
		}
		if len(edits) > 0 {
			changes = append(changes, model.DocumentChange{Kind: model.ChangeModify, Path: path, Edits: edits}.ApplyOrder())
		}
	}

	if in.DeleteMethod {
		changes = append(changes, model.DocumentChange{
			Kind: model.ChangeModify, Path: in.Path,
			Edits: []model.TextEdit{{Span: declNode.Span(), NewText: ""}},
		})
	}

	return model.EditSet{Changes: changes}, model.Result{Symbol: &sym, ReferencesUpdated: result.Total}, nil
}

// --- Inline-Constant --------------------------------------------------------

type ConstantInput struct {
	Path         string `json:"sourceFile"`
	ConstantName string `json:"constantName"`
	Line         int    `json:"line,omitempty"`
}

func NewConstantSpec(ws *workspace.Workspace) operation.Spec[*ConstantInput] {
	return operation.Spec[*ConstantInput]{
		Kind:          "InlineConstant",
		TimeoutFamily: "inline_constant",
		Mutating:      true,
		Compute: func(ctx context.Context, in *ConstantInput) (model.EditSet, model.Result, error) {
			return computeConstant(ctx, ws, in)
		},
	}
}

func computeConstant(ctx context.Context, ws *workspace.Workspace, in *ConstantInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	sym, err := r.Resolve(ctx, in.Path, in.ConstantName, in.Line, 0)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	declNode, ok := m.DeclarationNode(sym)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeFieldNotFound, "could not locate declaration node")
	}
	initNode := declNode.ChildByField("value")
	if initNode.IsNil() {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeFieldNotFound, "constant has no initializer")
	}
	value, ok := semantic.ConstantValue(initNode)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeNotCompileTimeConstant, "constant initializer does not fold")
	}

	tracker := refs.New(ws)
	result, err := tracker.FindAll(ctx, sym)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	if attributeReferenced(result) {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeConstantUsedInAttribute, "constant is referenced from an attribute argument")
	}

	sol := ws.CurrentSolution()
	declaringProject, _ := sol.ProjectOf(sym.DeclaringPath)

	literal := renderLiteral(initNode, value)
	var changes []model.DocumentChange
	for path, found := range result.ByDocument {
		referencingProject, ok := sol.ProjectOf(path)
		if !ok || !refs.Rewritable(referencingProject, declaringProject) {
			continue
		}
		var edits []model.TextEdit
		for _, ref := range found {
			edits = append(edits, model.TextEdit{Span: ref.Span, NewText: literal})
		}
		changes = append(changes, model.DocumentChange{Kind: model.ChangeModify, Path: path, Edits: edits}.ApplyOrder())
	}
	return model.EditSet{Changes: changes}, model.Result{Symbol: &sym, ReferencesUpdated: result.Total}, nil
}

func attributeReferenced(result refs.Result) bool {
	return false
}

func renderLiteral(n syntax.Node, value string) string {
	if n.Type() == "string_literal" {
		return fmt.Sprintf("%q", value)
	}
	return value
}
