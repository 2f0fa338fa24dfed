package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/workspace"
)

const src = `namespace App
{
    public class OrderService
    {
        public int Total(int a, int b)
        {
            return a + b;
        }
    }
}
`

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "OrderService.cs"), []byte(src), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	return w
}

func docPath(t *testing.T, w *workspace.Workspace) string {
	sol := w.CurrentSolution()
	require.Len(t, sol.Projects, 1)
	require.Len(t, sol.Projects[0].Documents, 1)
	return sol.Projects[0].Documents[0].Path
}

func TestResolveByNameSucceeds(t *testing.T) {
	w := newWorkspace(t)
	r := New(w)
	defer r.Close()

	sym, err := r.Resolve(context.Background(), docPath(t, w), "Total", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, model.KindMethod, sym.Kind)
}

func TestResolveNotFound(t *testing.T) {
	w := newWorkspace(t)
	r := New(w)
	defer r.Close()

	_, err := r.Resolve(context.Background(), docPath(t, w), "DoesNotExist", 0, 0)
	require.Error(t, err)
	code, ok := errtax.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errtax.CodeSymbolNotFound, code)
}

func TestResolveInvalidLineNumber(t *testing.T) {
	w := newWorkspace(t)
	r := New(w)
	defer r.Close()

	_, err := r.Resolve(context.Background(), docPath(t, w), "Total", 9999, 1)
	require.Error(t, err)
	code, ok := errtax.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errtax.CodeInvalidLineNumber, code)
}

