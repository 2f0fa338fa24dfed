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

func TestHierarchyFindsDescendants(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "Animal.cs")
	derived := filepath.Join(root, "Dog.cs")
	require.NoError(t, os.WriteFile(base, []byte("namespace N { class Animal { } }"), 0o644))
	require.NoError(t, os.WriteFile(derived, []byte("namespace N { class Dog : Animal { } }"), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	hier, err := e.Hierarchy(context.Background(), base, "Animal", 0)
	require.NoError(t, err)
	require.Len(t, hier.Descendants, 1)
	assert.Equal(t, "Dog", hier.Descendants[0].SimpleName)
}

func TestHierarchyReportsBaseNames(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Dog.cs")
	require.NoError(t, os.WriteFile(path, []byte("namespace N { class Dog : Animal, IPet { } }"), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	hier, err := e.Hierarchy(context.Background(), path, "Dog", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Animal", "IPet"}, hier.BaseNames)
}
