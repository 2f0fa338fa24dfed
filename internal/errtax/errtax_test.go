package errtax

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeKindRanges(t *testing.T) {
	cases := []struct {
		code Code
		kind Kind
	}{
		{CodeInvalidPath, KindInput},
		{CodeSymbolNotFound, KindResource},
		{CodeNameCollision, KindSemantic},
		{CodeReservedKeyword, KindSemantic},
		{CodeWorkspaceBusy, KindSystem},
		{CodeSolutionLoadFailed, KindEnvironment},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, c.code.Kind(), c.code.String())
	}
}

func TestCodeStringWireName(t *testing.T) {
	assert.Equal(t, "NAME_COLLISION", CodeNameCollision.String())
	assert.Equal(t, "FILESYSTEM_ERROR", CodeFilesystemError.String())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeFilesystemError, "write failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "FILESYSTEM_ERROR")
}

func TestIsMatchesByCodeNotMessage(t *testing.T) {
	a := New(CodeNameCollision, "type Foo already exists")
	b := New(CodeNameCollision, "a completely different message")
	c := New(CodeSameLocation, "type Foo already exists")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestCodeOfExtractsFromChain(t *testing.T) {
	inner := New(CodeTimeout, "deadline exceeded")
	wrapped := errors.New("wrapper: " + inner.Error())

	_, ok := CodeOf(wrapped)
	require.False(t, ok, "plain errors.New should not satisfy CodeOf")

	code, ok := CodeOf(inner)
	require.True(t, ok)
	assert.Equal(t, CodeTimeout, code)

	chained := fmt.Errorf("wrapper: %w", inner)
	code, ok = CodeOf(chained)
	require.True(t, ok, "a %%w-wrapped RefactoringError should satisfy CodeOf")
	assert.Equal(t, CodeTimeout, code)
}

func TestWithDetailsAndSuggestionsDoNotMutateOriginal(t *testing.T) {
	base := New(CodeNameCollision, "collision")
	withDetails := base.WithDetails(map[string]any{"existingTypeLocation": "/ws/Src/Models/UserDto.cs"})

	assert.Nil(t, base.Details)
	assert.Equal(t, "/ws/Src/Models/UserDto.cs", withDetails.Details["existingTypeLocation"])

	withSuggestions := base.WithSuggestions("rename the existing type")
	assert.Nil(t, base.Suggestions)
	assert.Equal(t, []string{"rename the existing type"}, withSuggestions.Suggestions)
}
