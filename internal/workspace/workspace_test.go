package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadScansProjectAndDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.csproj"), "<Project Sdk=\"Microsoft.NET.Sdk\"></Project>")
	writeFile(t, filepath.Join(root, "OrderService.cs"), "namespace App { class OrderService {} }")

	w := New(root)
	require.NoError(t, w.Load(context.Background()))
	assert.Equal(t, model.StateReady, w.Lifecycle())

	sol := w.CurrentSolution()
	require.Len(t, sol.Projects, 1)
	require.Len(t, sol.Projects[0].Documents, 1)
	assert.Equal(t, "OrderService.cs", sol.Projects[0].Documents[0].Name)
}

func TestLoadFromBareDirectoryUsesImplicitProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Foo.cs"), "class Foo {}")

	w := New(root)
	require.NoError(t, w.Load(context.Background()))
	sol := w.CurrentSolution()
	require.Len(t, sol.Projects, 1)
	assert.Len(t, sol.Projects[0].Documents, 1)
}

func TestLoadMissingPathFailsWithSolutionLoadFailed(t *testing.T) {
	w := New("/nonexistent/path/x.csproj")
	err := w.Load(context.Background())
	require.Error(t, err)
	code, ok := errtax.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errtax.CodeSolutionLoadFailed, code)
	assert.Equal(t, model.StateError, w.Lifecycle())
}

func TestDocumentForNotInWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Foo.cs"), "class Foo {}")
	w := New(root)
	require.NoError(t, w.Load(context.Background()))

	_, err := w.DocumentFor("/not/here.cs")
	assert.Error(t, err)
}

func TestBeginOperatingRejectsWhenNotReady(t *testing.T) {
	w := New(t.TempDir())
	err := w.BeginOperating()
	assert.Error(t, err, "workspace is Unloaded, not Ready")
}

func TestBeginEndOperatingCycle(t *testing.T) {
	root := t.TempDir()
	w := New(root)
	require.NoError(t, w.Load(context.Background()))

	require.NoError(t, w.BeginOperating())
	assert.Equal(t, model.StateOperating, w.Lifecycle())
	w.EndOperating(true)
	assert.Equal(t, model.StateReady, w.Lifecycle())
}

func TestUpdateSolutionSwapsSnapshot(t *testing.T) {
	w := New(t.TempDir())
	next := model.Solution{Projects: []model.Project{{ID: "P"}}}
	w.UpdateSolution(next)
	assert.Len(t, w.CurrentSolution().Projects, 1)
}

func TestDisposeTransitionsFromAnyState(t *testing.T) {
	w := New(t.TempDir())
	w.Dispose(context.Background(), 50*time.Millisecond)
	assert.Equal(t, model.StateDisposed, w.Lifecycle())
}
