package generate

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

func TestGenerateConstructorAddsMember(t *testing.T) {
	src := "class Point { private int X; private int Y; }"
	w, path := newWorkspace(t, src)

	spec := NewConstructorSpec(w)
	op := operation.New("GenerateConstructor", &ConstructorInput{Path: path, TypeName: "Point", FieldNames: []string{"X", "Y"}})

	result, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)
	assert.Contains(t, result.FilesModified, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "public Point(")
}

func TestGenerateOverridesAddsToStringEqualsHashCode(t *testing.T) {
	src := "class Point { }"
	w, path := newWorkspace(t, src)

	spec := NewOverridesSpec(w)
	op := operation.New("GenerateOverrides", &OverridesInput{Path: path, TypeName: "Point"})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "public override")
	assert.Contains(t, string(content), "public override string ToString()")
	assert.Contains(t, string(content), "public override bool Equals(object obj)")
	assert.Contains(t, string(content), "public override int GetHashCode()")
}

func TestNullChecksRejectsWhenNoReferenceParameters(t *testing.T) {
	src := "class C { void M(int x) { } }"
	w, path := newWorkspace(t, src)

	spec := NewNullChecksSpec(w)
	op := operation.New("NullChecks", &NullChecksInput{Path: path, MethodName: "M"})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}
