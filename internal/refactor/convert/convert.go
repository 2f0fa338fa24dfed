// Package convert implements the shape-preserving Convert-Operations of
// spec §4.6.9: sync-to-async, expression-body/block-body, auto-property/
// full-property, foreach-to-linq, if-chain-to-switch-expression, and
// string-concatenation-to-interpolated.
package convert

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/resolver"
	"csrefactor/internal/syntax"
	"csrefactor/internal/workspace"
)

// Input identifies the member a convert operation targets; Kind selects
// which of the six shape-preserving transforms runs.
type Input struct {
	Path       string `json:"sourceFile"`
	MemberName string `json:"memberName"`
	Line       int    `json:"line,omitempty"`
	Kind       Kind   `json:"conversionKind"`
}

// Kind enumerates the six Convert-Operations.
type Kind string

const (
	KindSyncToAsync          Kind = "sync_to_async"
	KindExpressionBody       Kind = "to_expression_body"
	KindBlockBody            Kind = "to_block_body"
	KindAutoProperty         Kind = "to_auto_property"
	KindFullProperty         Kind = "to_full_property"
	KindForeachToLinq        Kind = "foreach_to_linq"
	KindIfChainToSwitch      Kind = "if_chain_to_switch_expression"
	KindStringToInterpolated Kind = "string_format_to_interpolated"
)

// NewSpec returns the Convert-Operations operation.Spec bound to ws,
// dispatching on in.Kind.
func NewSpec(ws *workspace.Workspace) operation.Spec[*Input] {
	return operation.Spec[*Input]{
		Kind:          "ConvertOperation",
		TimeoutFamily: "generate_organize_convert",
		Mutating:      true,
		Validate: func(in *Input) error {
			if in.Path == "" || in.MemberName == "" {
				return errtax.New(errtax.CodeInvalidPath, "path and member name required")
			}
			return nil
		},
		Compute: func(ctx context.Context, in *Input) (model.EditSet, model.Result, error) {
			return dispatch(ctx, ws, in)
		},
	}
}

func dispatch(ctx context.Context, ws *workspace.Workspace, in *Input) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	sym, err := r.Resolve(ctx, in.Path, in.MemberName, in.Line, 0)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	node, ok := m.DeclarationNode(sym)
	if !ok {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMethodNotFound, "could not locate declaration node")
	}

	var edit *model.TextEdit
	switch in.Kind {
	case KindSyncToAsync:
		edit, err = syncToAsync(node)
	case KindExpressionBody:
		edit, err = toExpressionBody(node)
	case KindBlockBody:
		edit, err = toBlockBody(node)
	case KindAutoProperty:
		edit, err = toAutoProperty(node)
	case KindFullProperty:
		edit, err = toFullProperty(node, sym.SimpleName)
	case KindForeachToLinq:
		edit, err = foreachToLinq(node)
	case KindIfChainToSwitch:
		edit, err = ifChainToSwitch(node)
	case KindStringToInterpolated:
		edit, err = stringToInterpolated(node)
	default:
		err = errtax.Newf(errtax.CodeInvalidIdentifier, "unknown convert kind %q", in.Kind)
	}
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}

	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: []model.TextEdit{*edit}}
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{Symbol: &sym}, nil
}

func syncToAsync(node syntax.Node) (*model.TextEdit, error) {
	body := node.ChildByField("body")
	if body.IsNil() {
		return nil, errtax.New(errtax.CodeCannotConvert, "method has no body")
	}
	if !containsBlockingCall(body) {
		return nil, errtax.New(errtax.CodeCannotConvert, "method has no awaitable call to convert")
	}
	returnType := node.ChildByField("type")
	newReturn := "Task"
	if !returnType.IsNil() && returnType.Text() != "void" {
		newReturn = "Task<" + returnType.Text() + ">"
	}
	full := node.Text()
	rewritten := "async " + replaceReturnType(full, returnType, newReturn)
	rewritten = strings.Replace(rewritten, "Sync(", "Async(", 1)
	return &model.TextEdit{Span: node.Span(), NewText: rewritten}, nil
}

func containsBlockingCall(body syntax.Node) bool {
	for _, n := range body.DescendantsOfKind("invocation_expression") {
		if strings.Contains(n.Text(), "Sync(") {
			return true
		}
	}
	return false
}

func replaceReturnType(full string, returnType syntax.Node, newReturn string) string {
	if returnType.IsNil() {
		return full
	}
	return strings.Replace(full, returnType.Text()+" ", newReturn+" ", 1)
}

func toExpressionBody(node syntax.Node) (*model.TextEdit, error) {
	body := node.ChildByField("body")
	if body.IsNil() {
		return nil, errtax.New(errtax.CodeCannotConvert, "member has no block body")
	}
	stmts := body.NamedChildren()
	if len(stmts) != 1 || stmts[0].Type() != "return_statement" {
		return nil, errtax.New(errtax.CodeCannotConvert, "only a single-return block can become an expression body")
	}
	expr := firstExpressionChild(stmts[0])
	if expr.IsNil() {
		return nil, errtax.New(errtax.CodeCannotConvert, "return statement has no expression")
	}
	return &model.TextEdit{Span: body.Span(), NewText: "=> " + expr.Text() + ";"}, nil
}

func firstExpressionChild(n syntax.Node) syntax.Node {
	children := n.NamedChildren()
	if len(children) == 0 {
		return syntax.Node{}
	}
	return children[0]
}

func toBlockBody(node syntax.Node) (*model.TextEdit, error) {
	full := node.Text()
	idx := strings.Index(full, "=>")
	if idx < 0 {
		return nil, errtax.New(errtax.CodeCannotConvert, "member is not expression-bodied")
	}
	expr := strings.TrimSuffix(strings.TrimSpace(full[idx+2:]), ";")
	returnType := node.ChildByField("type")
	body := "\n{\n"
	if !returnType.IsNil() && returnType.Text() == "void" {
		body += "    " + expr + ";\n"
	} else {
		body += "    return " + expr + ";\n"
	}
	body += "}"
	span := model.Span{StartByte: node.Span().StartByte + idx, EndByte: node.Span().EndByte}
	return &model.TextEdit{Span: span, NewText: body}, nil
}

func toAutoProperty(node syntax.Node) (*model.TextEdit, error) {
	body := node.ChildByField("body")
	if body.IsNil() {
		return nil, errtax.New(errtax.CodeCannotConvert, "property has no accessor body to simplify")
	}
	text := body.Text()
	if !strings.Contains(text, "get") || !strings.Contains(text, "return") {
		return nil, errtax.New(errtax.CodeCannotConvert, "property getter is not a simple backing-field passthrough")
	}
	hasSet := strings.Contains(text, "set")
	accessors := "{ get; }"
	if hasSet {
		accessors = "{ get; set; }"
	}
	return &model.TextEdit{Span: body.Span(), NewText: accessors}, nil
}

func toFullProperty(node syntax.Node, name string) (*model.TextEdit, error) {
	body := node.ChildByField("body")
	if body.IsNil() || !strings.Contains(body.Text(), "get;") {
		return nil, errtax.New(errtax.CodeCannotConvert, "property is not an auto-property")
	}
	fieldName := "_" + strings.ToLower(name[:1]) + name[1:]
	hasSet := strings.Contains(body.Text(), "set;")
	var b strings.Builder
	b.WriteString("{\n    get { return " + fieldName + "; }\n")
	if hasSet {
		b.WriteString("    set { " + fieldName + " = value; }\n")
	}
	b.WriteString("}")
	return &model.TextEdit{Span: body.Span(), NewText: b.String()}, nil
}

func foreachToLinq(node syntax.Node) (*model.TextEdit, error) {
	loops := node.DescendantsOfKind("for_each_statement")
	if len(loops) == 0 {
		return nil, errtax.New(errtax.CodeCannotConvert, "no foreach loop found")
	}
	loop := loops[0]
	body := loop.ChildByField("body")
	if body.IsNil() {
		return nil, errtax.New(errtax.CodeCannotConvert, "foreach has no body")
	}
	stmts := body.NamedChildren()
	if len(stmts) != 1 || stmts[0].Type() != "if_statement" {
		return nil, errtax.New(errtax.CodeCannotConvert, "only a filter-then-yield foreach can become a LINQ query")
	}
	cond := stmts[0].ChildByField("condition")
	source := loop.ChildByField("right")
	itemName := loop.ChildByField("left")
	if cond.IsNil() || source.IsNil() || itemName.IsNil() {
		return nil, errtax.New(errtax.CodeCannotConvert, "could not determine the loop's source and filter")
	}
	replacement := fmt.Sprintf("var result = %s.Where(%s => %s);", source.Text(), itemName.Text(), cond.Text())
	return &model.TextEdit{Span: loop.Span(), NewText: replacement}, nil
}

func ifChainToSwitch(node syntax.Node) (*model.TextEdit, error) {
	ifs := node.DescendantsOfKind("if_statement")
	if len(ifs) == 0 {
		return nil, errtax.New(errtax.CodeCannotConvert, "no if-chain found")
	}
	root := ifs[0]
	var arms []string
	cur := root
	for !cur.IsNil() && cur.Type() == "if_statement" {
		cond := cur.ChildByField("condition")
		cons := cur.ChildByField("consequence")
		if cond.IsNil() || cons.IsNil() {
			return nil, errtax.New(errtax.CodeCannotConvert, "if-chain branch is missing a condition or body")
		}
		arms = append(arms, fmt.Sprintf("    %s => %s,", cond.Text(), strings.TrimSpace(cons.Text())))
		alt := cur.ChildByField("alternative")
		if alt.IsNil() {
			break
		}
		cur = alt
	}
	replacement := "var result = _ switch\n{\n" + strings.Join(arms, "\n") + "\n};"
	return &model.TextEdit{Span: root.Span(), NewText: replacement}, nil
}

func stringToInterpolated(node syntax.Node) (*model.TextEdit, error) {
	if call, ok := findStringFormatCall(node); ok {
		replacement, err := stringFormatToInterpolated(call)
		if err != nil {
			return nil, err
		}
		return &model.TextEdit{Span: call.Span(), NewText: replacement}, nil
	}
	concats := node.DescendantsOfKind("binary_expression")
	for _, n := range concats {
		if strings.Contains(n.Text(), "+") && strings.Contains(n.Text(), "\"") {
			return &model.TextEdit{Span: n.Span(), NewText: toInterpolated(n.Text())}, nil
		}
	}
	return nil, errtax.New(errtax.CodeCannotConvert, "no string concatenation found to interpolate")
}

// findStringFormatCall locates a string.Format(...)/String.Format(...)
// invocation anywhere under node.
func findStringFormatCall(node syntax.Node) (syntax.Node, bool) {
	for _, n := range node.DescendantsOfKind("invocation_expression") {
		fn := n.ChildByField("function")
		if fn.IsNil() {
			continue
		}
		if text := fn.Text(); text == "string.Format" || text == "String.Format" {
			return n, true
		}
	}
	return syntax.Node{}, false
}

// stringFormatToInterpolated rewrites string.Format("...{0}...", a, b) into
// an interpolated string literal $"...{a}..." by substituting each {n}
// placeholder with the source text of the nth positional argument.
func stringFormatToInterpolated(call syntax.Node) (string, error) {
	args := call.ChildByField("arguments")
	if args.IsNil() {
		return "", errtax.New(errtax.CodeCannotConvert, "string.Format call has no arguments")
	}
	argNodes := args.NamedChildren()
	if len(argNodes) == 0 {
		return "", errtax.New(errtax.CodeCannotConvert, "string.Format call has no format string")
	}
	formatText := argNodes[0].Text()
	if !strings.HasPrefix(formatText, `"`) || !strings.HasSuffix(formatText, `"`) {
		return "", errtax.New(errtax.CodeCannotConvert, "string.Format's first argument is not a string literal")
	}
	format := strings.Trim(formatText, `"`)
	values := argNodes[1:]

	var b strings.Builder
	b.WriteString(`$"`)
	for i := 0; i < len(format); i++ {
		if format[i] != '{' {
			b.WriteByte(format[i])
			continue
		}
		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			return "", errtax.New(errtax.CodeCannotConvert, "unbalanced placeholder in format string")
		}
		end += i
		idx, err := strconv.Atoi(format[i+1 : end])
		if err != nil || idx < 0 || idx >= len(values) {
			return "", errtax.New(errtax.CodeCannotConvert, "format placeholder does not match a supplied argument")
		}
		b.WriteString("{" + values[idx].Text() + "}")
		i = end
	}
	b.WriteString(`"`)
	return b.String(), nil
}

func toInterpolated(concat string) string {
	parts := strings.Split(concat, "+")
	var b strings.Builder
	b.WriteString(`$"`)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
			b.WriteString(strings.Trim(p, `"`))
		} else {
			b.WriteString("{" + p + "}")
		}
	}
	b.WriteString(`"`)
	return b.String()
}
