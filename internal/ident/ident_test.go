package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"csrefactor/internal/errtax"
)

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath("/ws/Src/A.cs"))
	assert.Error(t, ValidatePath(""))
	assert.Error(t, ValidatePath("Src/A.cs"), "relative path must be rejected")
	assert.Error(t, ValidatePath("/ws/Src/A.txt"), "non-.cs extension must be rejected")
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("Foo"))
	assert.NoError(t, ValidateIdentifier("_bar9"))
	assert.NoError(t, ValidateIdentifier("@class"), "verbatim identifier escapes the keyword check")

	err := ValidateIdentifier("class")
	if assert.Error(t, err) {
		code, ok := errtax.CodeOf(err)
		assert.True(t, ok)
		assert.Equal(t, errtax.CodeReservedKeyword, code)
	}

	assert.Error(t, ValidateIdentifier("9Foo"), "identifier cannot start with a digit")
	assert.Error(t, ValidateIdentifier(""))
}

func TestValidateNamespace(t *testing.T) {
	assert.NoError(t, ValidateNamespace("App.Models"))
	assert.NoError(t, ValidateNamespace("App"))
	assert.Error(t, ValidateNamespace("App..Models"))
	assert.Error(t, ValidateNamespace("App.class"))
	assert.Error(t, ValidateNamespace(""))
}

func TestSplitNamespace(t *testing.T) {
	assert.Equal(t, []string{"App", "Models"}, SplitNamespace("App.Models"))
}
