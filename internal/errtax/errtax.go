// Package errtax implements the closed error taxonomy of the refactoring
// engine: every failure any component returns is a *RefactoringError*
// carrying a machine-readable Code, a one-line Message, optional structured
// Details, and a short list of remediation Suggestions.
package errtax

import (
	"errors"
	"fmt"
)

// Code is a closed, numbered error code grouped by range:
//
//	1000-1099 input validation
//	2000-2099 resource not found
//	3000-3199 semantic
//	4000-4099 system
//	5000-5099 environment
type Code int

// Input validation: 1000-1099.
const (
	CodeInvalidPath Code = 1000 + iota
	CodeInvalidIdentifier
	CodeInvalidNamespace
	CodeInvalidLineNumber
	CodeInvalidColumnNumber
	CodeInvalidSelection
	CodeEmptySelection
	CodeInvalidParameterPosition
	CodeInvalidVisibility
	CodeInvalidDefaultValueType
	CodeInvalidTargetPath
)

// Resource not found: 2000-2099.
const (
	CodeSourceNotInWorkspace Code = 2000 + iota
	CodeSourceFileNotFound
	CodeWorkspaceNotFound
	CodeSymbolNotFound
	CodeMethodNotFound
	CodeVariableNotFound
	CodeFieldNotFound
	CodeInterfaceNotFound
	CodeBaseClassNotFound
	CodeDerivedNotFound
	CodeMemberNotFound
	CodeExpressionNotFound
	CodeStatementNotFound
	CodeTypeNotFound
	CodeParameterNotFound
	CodeConstructorNotFound
	CodeOverrideTargetNotFound
)

// Semantic: 3000-3199.
const (
	CodeSymbolNotMoveable Code = 3000 + iota
	CodeSymbolIsNested
	CodeNameCollision
	CodeSameLocation
	CodeCircularReference
	CodeBreaksAccessibility
	CodeMultipleTypesInFile
	CodeAmbiguous
	CodeCannotRenameExternal
	CodeCannotConvert
	_ // reserved
)

// Rename-specific: 3010-3018.
const (
	CodeReservedKeyword Code = 3010 + iota
	CodeNameConflictScope
	CodeCannotRenameSynthesized
	CodeCannotRenameOperator
	CodeCannotRenameIndexer
	CodeCannotRenameConstructorDirectly
	CodeCannotRenameDestructor
)

// Extract-specific: 3030-3039.
const (
	CodeContainsYield Code = 3030 + iota
	CodeMultipleExitPoints
	CodeUnresolvableControlFlow
	CodeExpressionHasVoidType
	CodeNotCompileTimeConstant
)

// Inline-specific: 3050-3059.
const (
	CodeExpressionHasSideEffects Code = 3050 + iota
	CodeAssignedMoreThanOnce
	CodeModifiedAfterInitialization
	CodeMethodIsVirtual
	CodeMethodIsRecursive
	CodeMethodHasNoBody
	CodeConstantUsedInAttribute
)

// Generate-specific: 3060-3065.
const (
	CodeConstructorAlreadyExists Code = 3060 + iota
	CodeNoUnimplementedMembers
	CodeNoOverridableMembers
)

// Change-signature-specific: 3080-3084.
const (
	CodeSignatureConflict Code = 3080 + iota
	CodeParameterOrderInvalid
)

// Hierarchy-specific: 3105-3108.
const (
	CodeAlreadyHasBaseClass Code = 3105 + iota
	CodeCyclicHierarchy
)

// System: 4000-4099.
const (
	CodeWorkspaceBusy Code = 4000 + iota
	CodeFilesystemError
	CodeSemanticLibraryError
	CodeCompilationError
	CodeTimeout
	CodeCancelled
)

// Environment: 5000-5099.
const (
	CodeBuildInfrastructureNotFound Code = 5000 + iota
	CodeSemanticLibraryMissing
	CodeSDKNotFound
	CodeSolutionLoadFailed
)

// Kind classifies a Code by its taxonomy range.
type Kind string

const (
	KindInput       Kind = "input"
	KindResource    Kind = "resource"
	KindSemantic    Kind = "semantic"
	KindSystem      Kind = "system"
	KindEnvironment Kind = "environment"
	KindUnknown     Kind = "unknown"
)

// Kind reports which taxonomy range a Code falls in.
func (c Code) Kind() Kind {
	switch {
	case c >= 1000 && c < 1100:
		return KindInput
	case c >= 2000 && c < 2100:
		return KindResource
	case c >= 3000 && c < 3200:
		return KindSemantic
	case c >= 4000 && c < 4100:
		return KindSystem
	case c >= 5000 && c < 5100:
		return KindEnvironment
	default:
		return KindUnknown
	}
}

// codeNames maps each code to its conventional upper-snake-case wire name,
// e.g. NAME_COLLISION, used in JSON responses per spec §6.
var codeNames = map[Code]string{
	CodeInvalidPath:                     "INVALID_PATH",
	CodeInvalidIdentifier:               "INVALID_IDENTIFIER",
	CodeInvalidNamespace:                "INVALID_NAMESPACE",
	CodeInvalidLineNumber:               "INVALID_LINE_NUMBER",
	CodeInvalidColumnNumber:             "INVALID_COLUMN_NUMBER",
	CodeInvalidSelection:                "INVALID_SELECTION",
	CodeEmptySelection:                  "EMPTY_SELECTION",
	CodeInvalidParameterPosition:        "INVALID_PARAMETER_POSITION",
	CodeInvalidVisibility:               "INVALID_VISIBILITY",
	CodeInvalidDefaultValueType:         "INVALID_DEFAULT_VALUE_TYPE",
	CodeInvalidTargetPath:               "INVALID_TARGET_PATH",
	CodeSourceNotInWorkspace:            "SOURCE_NOT_IN_WORKSPACE",
	CodeSourceFileNotFound:              "SOURCE_FILE_NOT_FOUND",
	CodeWorkspaceNotFound:               "WORKSPACE_NOT_FOUND",
	CodeSymbolNotFound:                  "SYMBOL_NOT_FOUND",
	CodeMethodNotFound:                  "METHOD_NOT_FOUND",
	CodeVariableNotFound:                "VARIABLE_NOT_FOUND",
	CodeFieldNotFound:                   "FIELD_NOT_FOUND",
	CodeInterfaceNotFound:               "INTERFACE_NOT_FOUND",
	CodeBaseClassNotFound:               "BASE_CLASS_NOT_FOUND",
	CodeDerivedNotFound:                 "DERIVED_NOT_FOUND",
	CodeMemberNotFound:                  "MEMBER_NOT_FOUND",
	CodeExpressionNotFound:              "EXPRESSION_NOT_FOUND",
	CodeStatementNotFound:               "STATEMENT_NOT_FOUND",
	CodeTypeNotFound:                    "TYPE_NOT_FOUND",
	CodeParameterNotFound:               "PARAMETER_NOT_FOUND",
	CodeConstructorNotFound:             "CONSTRUCTOR_NOT_FOUND",
	CodeOverrideTargetNotFound:          "OVERRIDE_TARGET_NOT_FOUND",
	CodeSymbolNotMoveable:               "SYMBOL_NOT_MOVEABLE",
	CodeSymbolIsNested:                  "SYMBOL_IS_NESTED",
	CodeNameCollision:                   "NAME_COLLISION",
	CodeSameLocation:                    "SAME_LOCATION",
	CodeCircularReference:               "CIRCULAR_REFERENCE",
	CodeBreaksAccessibility:             "BREAKS_ACCESSIBILITY",
	CodeMultipleTypesInFile:             "MULTIPLE_TYPES_IN_FILE",
	CodeAmbiguous:                       "AMBIGUOUS",
	CodeCannotRenameExternal:            "CANNOT_RENAME_EXTERNAL",
	CodeCannotConvert:                   "CANNOT_CONVERT",
	CodeReservedKeyword:                 "RESERVED_KEYWORD",
	CodeNameConflictScope:               "NAME_CONFLICT_SCOPE",
	CodeCannotRenameSynthesized:         "CANNOT_RENAME_SYNTHESIZED",
	CodeCannotRenameOperator:            "CANNOT_RENAME_OPERATOR",
	CodeCannotRenameIndexer:             "CANNOT_RENAME_INDEXER",
	CodeCannotRenameConstructorDirectly: "CANNOT_RENAME_CONSTRUCTOR_DIRECTLY",
	CodeCannotRenameDestructor:          "CANNOT_RENAME_DESTRUCTOR",
	CodeContainsYield:                   "CONTAINS_YIELD",
	CodeMultipleExitPoints:              "MULTIPLE_EXIT_POINTS",
	CodeUnresolvableControlFlow:         "UNRESOLVABLE_CONTROL_FLOW",
	CodeExpressionHasVoidType:           "EXPRESSION_HAS_VOID_TYPE",
	CodeNotCompileTimeConstant:          "NOT_COMPILE_TIME_CONSTANT",
	CodeExpressionHasSideEffects:        "EXPRESSION_HAS_SIDE_EFFECTS",
	CodeAssignedMoreThanOnce:            "ASSIGNED_MORE_THAN_ONCE",
	CodeModifiedAfterInitialization:     "MODIFIED_AFTER_INITIALIZATION",
	CodeMethodIsVirtual:                 "METHOD_IS_VIRTUAL",
	CodeMethodIsRecursive:               "METHOD_IS_RECURSIVE",
	CodeMethodHasNoBody:                 "METHOD_HAS_NO_BODY",
	CodeConstantUsedInAttribute:         "CONSTANT_USED_IN_ATTRIBUTE",
	CodeConstructorAlreadyExists:        "CONSTRUCTOR_ALREADY_EXISTS",
	CodeNoUnimplementedMembers:          "NO_UNIMPLEMENTED_MEMBERS",
	CodeNoOverridableMembers:            "NO_OVERRIDABLE_MEMBERS",
	CodeSignatureConflict:               "SIGNATURE_CONFLICT",
	CodeParameterOrderInvalid:           "PARAMETER_ORDER_INVALID",
	CodeAlreadyHasBaseClass:             "ALREADY_HAS_BASE_CLASS",
	CodeCyclicHierarchy:                 "CYCLIC_HIERARCHY",
	CodeWorkspaceBusy:                   "WORKSPACE_BUSY",
	CodeFilesystemError:                 "FILESYSTEM_ERROR",
	CodeSemanticLibraryError:            "SEMANTIC_LIBRARY_ERROR",
	CodeCompilationError:                "COMPILATION_ERROR",
	CodeTimeout:                         "TIMEOUT",
	CodeCancelled:                       "CANCELLED",
	CodeBuildInfrastructureNotFound:     "BUILD_INFRASTRUCTURE_NOT_FOUND",
	CodeSemanticLibraryMissing:          "SEMANTIC_LIBRARY_MISSING",
	CodeSDKNotFound:                     "SDK_NOT_FOUND",
	CodeSolutionLoadFailed:              "SOLUTION_LOAD_FAILED",
}

// String renders the wire name for a Code, or a numeric fallback for an
// unregistered code (should not happen for codes defined in this package).
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", int(c))
}

// RefactoringError is the sum type every engine operation fails with.
type RefactoringError struct {
	Code        Code
	Message     string
	Details     map[string]any
	Suggestions []string
	cause       error
}

// New creates a RefactoringError with no details or suggestions.
func New(code Code, message string) *RefactoringError {
	return &RefactoringError{Code: code, Message: message}
}

// Newf creates a RefactoringError with a formatted message.
func Newf(code Code, format string, args ...any) *RefactoringError {
	return &RefactoringError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a RefactoringError that records an underlying cause for
// errors.Unwrap/errors.Is chains, used when a component converts a
// collaborator-library failure into the closest taxonomy entry (spec §7
// propagation policy).
func Wrap(code Code, message string, cause error) *RefactoringError {
	return &RefactoringError{Code: code, Message: message, cause: cause}
}

// WithDetails returns a copy of e with Details set.
func (e *RefactoringError) WithDetails(details map[string]any) *RefactoringError {
	clone := *e
	clone.Details = details
	return &clone
}

// WithSuggestions returns a copy of e with Suggestions set.
func (e *RefactoringError) WithSuggestions(suggestions ...string) *RefactoringError {
	clone := *e
	clone.Suggestions = suggestions
	return &clone
}

func (e *RefactoringError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *RefactoringError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a RefactoringError with the same Code,
// enabling errors.Is(err, errtax.New(errtax.CodeNameCollision, "")) style
// checks at call sites and in tests.
func (e *RefactoringError) Is(target error) bool {
	var other *RefactoringError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// As reports whether err (or any error in its chain) is a *RefactoringError
// and, if so, assigns it to out. Convenience wrapper over errors.As.
func As(err error, out **RefactoringError) bool {
	return errors.As(err, out)
}

// CodeOf extracts the Code from err if it is (or wraps) a RefactoringError,
// returning ok=false otherwise.
func CodeOf(err error) (Code, bool) {
	var re *RefactoringError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return 0, false
}
