package refs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/model"
	"csrefactor/internal/resolver"
	"csrefactor/internal/workspace"
)

func TestFindAllCollectsAcrossDocuments(t *testing.T) {
	root := t.TempDir()
	decl := `namespace App { public class OrderService { public int Total(int a, int b) { return a + b; } } }`
	user := `namespace App { public class Caller { void Run() { var s = new OrderService(); s.Total(1, 2); } } }`
	require.NoError(t, os.WriteFile(filepath.Join(root, "OrderService.cs"), []byte(decl), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Caller.cs"), []byte(user), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	r := resolver.New(w)
	defer r.Close()

	declPath := filepath.Join(root, "OrderService.cs")
	sym, err := r.Resolve(context.Background(), declPath, "OrderService", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, model.KindClass, sym.Kind)

	tracker := New(w)
	result, err := tracker.FindAll(context.Background(), sym)
	require.NoError(t, err)
	assert.Contains(t, result.ByDocument, filepath.Join(root, "Caller.cs"))
	assert.Greater(t, result.Total, 0)
}

func TestRewritableAllowsSameProject(t *testing.T) {
	p := model.Project{ID: "P1"}
	assert.True(t, Rewritable(p, p))
}

func TestRewritableRejectsWithoutProjectReference(t *testing.T) {
	a := model.Project{ID: "A"}
	b := model.Project{ID: "B"}
	assert.False(t, Rewritable(a, b))

	a.References = []string{"B"}
	assert.True(t, Rewritable(a, b))
}
