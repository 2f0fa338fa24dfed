package inline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

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

func TestInlineMethodRejectsVirtual(t *testing.T) {
	src := "class C { public virtual int M() { return 1; } void N() { M(); } }"
	w, path := newWorkspace(t, src)

	spec := NewMethodSpec(w)
	op := operation.New("InlineMethod", &MethodInput{Path: path, MethodName: "M"})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}

func TestInlineConstantRejectsNonConstant(t *testing.T) {
	src := "class C { const int X = GetValue(); }"
	w, path := newWorkspace(t, src)

	spec := NewConstantSpec(w)
	op := operation.New("InlineConstant", &ConstantInput{Path: path, ConstantName: "X"})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}
