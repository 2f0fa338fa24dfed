package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/workspace"
)

func TestMetricsForCountsBranches(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "class C { int M(int x) { if (x > 0) { return 1; } else { return 2; } } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	metrics, err := e.MetricsFor(context.Background(), path, "M", 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, metrics.CyclomaticComplexity, 2)
	assert.Greater(t, metrics.LinesOfCode, 0)
}

func TestMetricsForInheritanceDepth(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "Animal.cs")
	derived := filepath.Join(root, "Dog.cs")
	require.NoError(t, os.WriteFile(base, []byte("namespace N { class Animal { } }"), 0o644))
	require.NoError(t, os.WriteFile(derived, []byte("namespace N { class Dog : Animal { } }"), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	metrics, err := e.MetricsFor(context.Background(), derived, "Dog", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.InheritanceDepth)
}
