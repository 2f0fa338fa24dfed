package semantic

import (
	"strconv"
	"strings"

	"csrefactor/internal/syntax"
)

// ConstantValue attempts to fold n to a compile-time constant, the query
// Extract-Constant and Inline-Constant rely on (spec §6 item 3
// "constant value of expression"). It understands literals and the binary
// arithmetic/string-concatenation operators over already-constant operands;
// anything else (method calls, field reads of non-const fields, etc.)
// reports ok=false rather than guessing.
func ConstantValue(n syntax.Node) (value string, ok bool) {
	switch n.Type() {
	case "integer_literal", "real_literal", "boolean_literal", "string_literal",
		"character_literal", "null_literal", "verbatim_string_literal":
		return literalValue(n), true

	case "unary_expression":
		operand := n.ChildByField("operand")
		opNode := firstToken(n)
		if operand.IsNil() {
			return "", false
		}
		v, ok := ConstantValue(operand)
		if !ok {
			return "", false
		}
		if opNode == "-" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return trimFloat(-f), true
			}
		}
		return v, opNode == "+"

	case "binary_expression":
		left := n.ChildByField("left")
		right := n.ChildByField("right")
		op := operatorToken(n)
		if left.IsNil() || right.IsNil() || op == "" {
			return "", false
		}
		lv, ok := ConstantValue(left)
		if !ok {
			return "", false
		}
		rv, ok := ConstantValue(right)
		if !ok {
			return "", false
		}
		return foldBinary(lv, rv, op)

	case "parenthesized_expression":
		for _, c := range n.NamedChildren() {
			return ConstantValue(c)
		}
		return "", false

	default:
		return "", false
	}
}

func literalValue(n syntax.Node) string {
	text := n.Text()
	if n.Type() == "string_literal" || n.Type() == "verbatim_string_literal" {
		text = strings.TrimPrefix(text, "@")
		text = strings.Trim(text, `"`)
	}
	return text
}

func firstToken(n syntax.Node) string {
	text := n.Text()
	if strings.HasPrefix(text, "-") {
		return "-"
	}
	if strings.HasPrefix(text, "+") {
		return "+"
	}
	return ""
}

// operatorToken returns the infix operator text between left and right's
// spans, trimmed of whitespace. The grammar does not expose operators as a
// named field, so this is a textual heuristic over the node's own source
// range outside its two named children.
func operatorToken(n syntax.Node) string {
	left := n.ChildByField("left")
	right := n.ChildByField("right")
	if left.IsNil() || right.IsNil() {
		return ""
	}
	full := n.Text()
	leftSpan, rightSpan := left.Span(), right.Span()
	betweenStart := leftSpan.EndByte - n.Span().StartByte
	betweenEnd := rightSpan.StartByte - n.Span().StartByte
	if betweenStart < 0 || betweenEnd > len(full) || betweenStart > betweenEnd {
		return ""
	}
	return strings.TrimSpace(full[betweenStart:betweenEnd])
}

func foldBinary(lv, rv, op string) (string, bool) {
	lf, lerr := strconv.ParseFloat(lv, 64)
	rf, rerr := strconv.ParseFloat(rv, 64)
	if lerr == nil && rerr == nil {
		switch op {
		case "+":
			return trimFloat(lf + rf), true
		case "-":
			return trimFloat(lf - rf), true
		case "*":
			return trimFloat(lf * rf), true
		case "/":
			if rf == 0 {
				return "", false
			}
			return trimFloat(lf / rf), true
		}
	}
	if op == "+" {
		return lv + rv, true
	}
	return "", false
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
