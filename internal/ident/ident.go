// Package ident validates the path, identifier, and namespace formats the
// engine accepts at its boundary (spec C1: Path & Identifier Utilities).
package ident

import (
	"path/filepath"
	"regexp"
	"strings"

	"csrefactor/internal/errtax"
)

// csharpIdentifier matches a single C# identifier: a letter or underscore
// followed by letters, digits, or underscores. Verbatim identifiers
// (@keyword) are accepted with their leading '@' stripped before matching.
var csharpIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedKeywords is the C# reserved keyword set; an identifier matching
// one of these is rejected unless passed with a leading '@'.
var reservedKeywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true,
	"default": true, "delegate": true, "do": true, "double": true,
	"else": true, "enum": true, "event": true, "explicit": true,
	"extern": true, "false": true, "finally": true, "fixed": true,
	"float": true, "for": true, "foreach": true, "goto": true, "if": true,
	"implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true,
	"namespace": true, "new": true, "null": true, "object": true,
	"operator": true, "out": true, "override": true, "params": true,
	"private": true, "protected": true, "public": true, "readonly": true,
	"ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true,
	"string": true, "struct": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true,
	"uint": true, "ulong": true, "unchecked": true, "unsafe": true,
	"ushort": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}

// ValidatePath requires p to be a non-empty absolute path ending in ".cs".
func ValidatePath(p string) error {
	if p == "" {
		return errtax.New(errtax.CodeInvalidPath, "path must not be empty")
	}
	if !filepath.IsAbs(p) {
		return errtax.Newf(errtax.CodeInvalidPath, "path %q must be absolute", p)
	}
	if strings.ToLower(filepath.Ext(p)) != ".cs" {
		return errtax.Newf(errtax.CodeInvalidPath, "path %q must end in .cs", p)
	}
	return nil
}

// ValidateIdentifier requires name to be a syntactically valid C# simple
// identifier. A leading '@' (verbatim identifier escape) is stripped before
// validation and exempts the identifier from the reserved-keyword check.
func ValidateIdentifier(name string) error {
	if name == "" {
		return errtax.New(errtax.CodeInvalidIdentifier, "identifier must not be empty")
	}
	verbatim := strings.HasPrefix(name, "@")
	bare := strings.TrimPrefix(name, "@")
	if !csharpIdentifier.MatchString(bare) {
		return errtax.Newf(errtax.CodeInvalidIdentifier, "%q is not a valid identifier", name)
	}
	if !verbatim && reservedKeywords[bare] {
		return errtax.Newf(errtax.CodeReservedKeyword, "%q is a reserved keyword; prefix with @ to use it verbatim", name)
	}
	return nil
}

// IsReservedKeyword reports whether bare (without a leading '@') is a C#
// reserved keyword.
func IsReservedKeyword(bare string) bool {
	return reservedKeywords[bare]
}

// ValidateNamespace requires name to match identifier(.identifier)*, per
// spec §4.6.2's Move-Type-to-Namespace input contract.
func ValidateNamespace(name string) error {
	if name == "" {
		return errtax.New(errtax.CodeInvalidNamespace, "namespace must not be empty")
	}
	segments := strings.Split(name, ".")
	for _, seg := range segments {
		if err := ValidateIdentifier(seg); err != nil {
			return errtax.Newf(errtax.CodeInvalidNamespace, "namespace %q has invalid segment %q", name, seg)
		}
	}
	return nil
}

// SplitNamespace returns the dotted segments of a validated namespace name.
func SplitNamespace(name string) []string {
	return strings.Split(name, ".")
}
