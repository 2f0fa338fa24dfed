// Package generate implements Generate-Constructor, Generate-Overrides,
// Implement-Interface, Null-Checks, and Equals/HashCode (spec §4.6.7): each
// produces a member declaration added to the target type. A ToString
// override is produced only by Generate-Overrides; Equals/HashCode emits
// Equals and GetHashCode and no ToString.
package generate

import (
	"context"
	"fmt"
	"strings"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/operation"
	"csrefactor/internal/resolver"
	"csrefactor/internal/semantic"
	"csrefactor/internal/workspace"
)

func insertionPoint(m *semantic.Model, typeName string) (int, string, error) {
	sym, err := m.ResolveByName(typeName)
	if err != nil {
		return 0, "", err
	}
	node, ok := m.DeclarationNode(sym)
	if !ok {
		return 0, "", errtax.New(errtax.CodeTypeNotFound, "could not locate declaration node")
	}
	body := node.ChildByField("body")
	if body.IsNil() {
		return node.Span().EndByte - 1, typeName, nil
	}
	return body.Span().StartByte + 1, typeName, nil
}

func membersOf(m *semantic.Model, typeName string) []model.Symbol {
	var out []model.Symbol
	for _, s := range m.Symbols() {
		if s.ContainingType == typeName {
			out = append(out, s)
		}
	}
	return out
}

func insertEdit(at int, text string) model.TextEdit {
	return model.TextEdit{Span: model.Span{StartByte: at, EndByte: at}, NewText: text}
}

// --- Generate-Constructor ---------------------------------------------------

type ConstructorInput struct {
	Path       string   `json:"sourceFile"`
	TypeName   string   `json:"typeName"`
	FieldNames []string `json:"fieldNames,omitempty"`
	NullChecks bool     `json:"nullChecks,omitempty"`
}

func NewConstructorSpec(ws *workspace.Workspace) operation.Spec[*ConstructorInput] {
	return operation.Spec[*ConstructorInput]{
		Kind:          "GenerateConstructor",
		TimeoutFamily: "generate_organize_convert",
		Mutating:      true,
		Compute: func(ctx context.Context, in *ConstructorInput) (model.EditSet, model.Result, error) {
			return computeConstructor(ctx, ws, in)
		},
	}
}

func computeConstructor(ctx context.Context, ws *workspace.Workspace, in *ConstructorInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	at, typeName, err := insertionPoint(m, in.TypeName)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}

	wanted := map[string]bool{}
	for _, n := range in.FieldNames {
		wanted[n] = true
	}
	var fields []model.Symbol
	for _, s := range membersOf(m, typeName) {
		if s.Kind == model.KindField && wanted[s.SimpleName] {
			fields = append(fields, s)
		}
	}
	sig := fieldSignature(fields)
	for _, s := range membersOf(m, typeName) {
		if s.Kind == model.KindConstructor && s.Signature == sig {
			return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeConstructorAlreadyExists, "a constructor with this parameter list already exists")
		}
	}

	var params []string
	var body strings.Builder
	for _, f := range fields {
		paramName := lowerFirst(f.SimpleName)
		params = append(params, "object "+paramName)
		if in.NullChecks {
			body.WriteString(fmt.Sprintf("        if (%s is null) throw new ArgumentNullException(nameof(%s));\n", paramName, paramName))
		}
		body.WriteString(fmt.Sprintf("        this.%s = %s;\n", f.SimpleName, paramName))
	}
	ctorText := fmt.Sprintf("\n    public %s(%s)\n    {\n%s    }\n", typeName, strings.Join(params, ", "), body.String())

	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: []model.TextEdit{insertEdit(at, ctorText)}}
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{}, nil
}

func fieldSignature(fields []model.Symbol) string {
	var types []string
	for range fields {
		types = append(types, "object")
	}
	return "(" + strings.Join(types, ",") + ")"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// --- Generate-Overrides ---------------------------------------------------

type OverridesInput struct {
	Path        string   `json:"sourceFile"`
	TypeName    string   `json:"typeName"`
	MemberNames []string `json:"memberNames,omitempty"`
}

func NewOverridesSpec(ws *workspace.Workspace) operation.Spec[*OverridesInput] {
	return operation.Spec[*OverridesInput]{
		Kind:          "GenerateOverrides",
		TimeoutFamily: "generate_organize_convert",
		Mutating:      true,
		Compute: func(ctx context.Context, in *OverridesInput) (model.EditSet, model.Result, error) {
			return computeOverrides(ctx, ws, in)
		},
	}
}

var universalOverridables = []string{"ToString", "Equals", "GetHashCode"}

func computeOverrides(ctx context.Context, ws *workspace.Workspace, in *OverridesInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	at, typeName, err := insertionPoint(m, in.TypeName)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}

	wanted := map[string]bool{}
	for _, n := range in.MemberNames {
		wanted[n] = true
	}
	if len(wanted) == 0 {
		for _, n := range universalOverridables {
			wanted[n] = true
		}
	}

	var b strings.Builder
	for name := range wanted {
		switch name {
		case "ToString":
			b.WriteString(fmt.Sprintf("\n    public override string ToString()\n    {\n        return base.ToString();\n    }\n"))
		case "Equals":
			b.WriteString(fmt.Sprintf("\n    public override bool Equals(object obj)\n    {\n        return base.Equals(obj);\n    }\n"))
		case "GetHashCode":
			b.WriteString(fmt.Sprintf("\n    public override int GetHashCode()\n    {\n        return base.GetHashCode();\n    }\n"))
		default:
			b.WriteString(fmt.Sprintf("\n    public override object %s()\n    {\n        throw new NotImplementedException();\n    }\n", name))
		}
	}
	if b.Len() == 0 {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeNoOverridableMembers, "no overridable members selected")
	}

	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: []model.TextEdit{insertEdit(at, b.String())}}
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{}, nil
}

// --- Implement-Interface ---------------------------------------------------

type ImplementInterfaceInput struct {
	Path          string `json:"sourceFile"`
	TypeName      string `json:"typeName"`
	InterfaceName string `json:"interfaceName"`
	InterfacePath string `json:"interfacePath,omitempty"`
	Explicit      bool   `json:"explicit,omitempty"`
}

func NewImplementInterfaceSpec(ws *workspace.Workspace) operation.Spec[*ImplementInterfaceInput] {
	return operation.Spec[*ImplementInterfaceInput]{
		Kind:          "ImplementInterface",
		TimeoutFamily: "generate_organize_convert",
		Mutating:      true,
		Compute: func(ctx context.Context, in *ImplementInterfaceInput) (model.EditSet, model.Result, error) {
			return computeImplementInterface(ctx, ws, in)
		},
	}
}

func computeImplementInterface(ctx context.Context, ws *workspace.Workspace, in *ImplementInterfaceInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	typeModel, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	at, typeName, err := insertionPoint(typeModel, in.TypeName)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	ifaceModel, err := r.ModelFor(ctx, in.InterfacePath)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}

	existing := map[string]bool{}
	for _, s := range membersOf(typeModel, typeName) {
		existing[s.SimpleName+s.Signature] = true
	}

	var b strings.Builder
	count := 0
	for _, s := range membersOf(ifaceModel, in.InterfaceName) {
		if s.Kind != model.KindMethod && s.Kind != model.KindProperty {
			continue
		}
		if existing[s.SimpleName+s.Signature] {
			continue
		}
		count++
		name := s.SimpleName
		prefix := "public "
		if in.Explicit {
			prefix = ""
			name = in.InterfaceName + "." + s.SimpleName
		}
		if s.Kind == model.KindProperty {
			b.WriteString(fmt.Sprintf("\n    %sobject %s { get; set; }\n", prefix, name))
		} else {
			b.WriteString(fmt.Sprintf("\n    %sobject %s%s\n    {\n        throw new NotImplementedException();\n    }\n", prefix, name, s.Signature))
		}
	}
	if count == 0 {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeNoUnimplementedMembers, "every interface member is already implemented")
	}

	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: []model.TextEdit{insertEdit(at, b.String())}}
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{}, nil
}

// --- Null-Checks ---------------------------------------------------

type NullChecksInput struct {
	Path       string `json:"sourceFile"`
	MethodName string `json:"methodName"`
	Line       int    `json:"line,omitempty"`
}

func NewNullChecksSpec(ws *workspace.Workspace) operation.Spec[*NullChecksInput] {
	return operation.Spec[*NullChecksInput]{
		Kind:          "NullChecks",
		TimeoutFamily: "generate_organize_convert",
		Mutating:      true,
		Compute: func(ctx context.Context, in *NullChecksInput) (model.EditSet, model.Result, error) {
			return computeNullChecks(ctx, ws, in)
		},
	}
}

func computeNullChecks(ctx context.Context, ws *workspace.Workspace, in *NullChecksInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	sym, err := r.Resolve(ctx, in.Path, in.MethodName, in.Line, 0)
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
	body := node.ChildByField("body")
	if body.IsNil() {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeMethodHasNoBody, "method has no body")
	}
	params := node.ChildByField("parameters")
	var guards strings.Builder
	for _, p := range params.NamedChildren() {
		if p.Type() != "parameter" {
			continue
		}
		t := p.ChildByField("type")
		name := p.ChildByField("name")
		if t.IsNil() || name.IsNil() || isValueType(t.Text()) {
			continue
		}
		guards.WriteString(fmt.Sprintf("        if (%s is null) throw new ArgumentNullException(nameof(%s));\n", name.Text(), name.Text()))
	}
	if guards.Len() == 0 {
		return model.EditSet{}, model.Result{}, errtax.New(errtax.CodeParameterNotFound, "no nullable-sensitive parameters to guard")
	}
	at := body.Span().StartByte + 1
	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: []model.TextEdit{insertEdit(at, "\n"+guards.String())}}
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{Symbol: &sym}, nil
}

func isValueType(t string) bool {
	switch t {
	case "int", "long", "short", "byte", "bool", "double", "float", "decimal", "char", "uint", "ulong", "ushort", "sbyte":
		return true
	}
	return false
}

// --- Equals/HashCode ------------------------------------------------------------

type EqualsHashCodeInput struct {
	Path        string   `json:"sourceFile"`
	TypeName    string   `json:"typeName"`
	MemberNames []string `json:"memberNames,omitempty"`
}

func NewEqualsHashCodeSpec(ws *workspace.Workspace) operation.Spec[*EqualsHashCodeInput] {
	return operation.Spec[*EqualsHashCodeInput]{
		Kind:          "EqualsHashCode",
		TimeoutFamily: "generate_organize_convert",
		Mutating:      true,
		Compute: func(ctx context.Context, in *EqualsHashCodeInput) (model.EditSet, model.Result, error) {
			return computeEqualsHashCode(ctx, ws, in)
		},
	}
}

func computeEqualsHashCode(ctx context.Context, ws *workspace.Workspace, in *EqualsHashCodeInput) (model.EditSet, model.Result, error) {
	r := resolver.New(ws)
	defer r.Close()
	m, err := r.ModelFor(ctx, in.Path)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}
	at, typeName, err := insertionPoint(m, in.TypeName)
	if err != nil {
		return model.EditSet{}, model.Result{}, err
	}

	comparisons := make([]string, 0, len(in.MemberNames))
	hashArgs := make([]string, 0, len(in.MemberNames))
	for _, n := range in.MemberNames {
		comparisons = append(comparisons, fmt.Sprintf("%s == other.%s", n, n))
		hashArgs = append(hashArgs, n)
	}

	var hashExpr string
	if len(hashArgs) <= 8 {
		hashExpr = "HashCode.Combine(" + strings.Join(hashArgs, ", ") + ")"
	} else {
		var terms []string
		for _, a := range hashArgs {
			terms = append(terms, a+".GetHashCode()")
		}
		hashExpr = strings.Join(terms, " ^ ")
	}

	text := fmt.Sprintf(`
    public override bool Equals(object obj)
    {
        return obj is %s other && %s;
    }

    public override int GetHashCode()
    {
        return %s;
    }
`, typeName, strings.Join(comparisons, " && "), hashExpr)

	change := model.DocumentChange{Kind: model.ChangeModify, Path: in.Path, Edits: []model.TextEdit{insertEdit(at, text)}}
	return model.EditSet{Changes: []model.DocumentChange{change}}, model.Result{}, nil
}
