package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/operation"
	"csrefactor/internal/workspace"
)

func newWorkspace(t *testing.T, src string) (*workspace.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	return w, path
}

func TestToExpressionBodyConvertsSingleReturn(t *testing.T) {
	src := "class C { int M() { return 1; } }"
	w, path := newWorkspace(t, src)

	spec := NewSpec(w)
	op := operation.New("ConvertOperation", &Input{Path: path, MemberName: "M", Kind: KindExpressionBody})

	result, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)
	assert.Contains(t, result.FilesModified, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "=> 1;")
}

func TestToExpressionBodyRejectsMultiStatementBody(t *testing.T) {
	src := "class C { int M() { var x = 1; return x; } }"
	w, path := newWorkspace(t, src)

	spec := NewSpec(w)
	op := operation.New("ConvertOperation", &Input{Path: path, MemberName: "M", Kind: KindExpressionBody})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}

func TestSyncToAsyncRejectsWithoutBlockingCall(t *testing.T) {
	src := "class C { int M() { return 1; } }"
	w, path := newWorkspace(t, src)

	spec := NewSpec(w)
	op := operation.New("ConvertOperation", &Input{Path: path, MemberName: "M", Kind: KindSyncToAsync})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}

func TestStringToInterpolatedConvertsStringFormatCall(t *testing.T) {
	src := `class C { string M(string name, int age) { return string.Format("{0} is {1}", name, age); } }`
	w, path := newWorkspace(t, src)

	spec := NewSpec(w)
	op := operation.New("ConvertOperation", &Input{Path: path, MemberName: "M", Kind: KindStringToInterpolated})

	result, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)
	assert.Contains(t, result.FilesModified, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `$"{name} is {age}"`)
}
