package rename

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

func setupWorkspace(t *testing.T) (*workspace.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "Widget.cs")
	src := "namespace N { class Widget { void Use() { var widget = new Widget(); } } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	return w, path
}

func TestRenameSymbolRewritesAllOccurrences(t *testing.T) {
	w, path := setupWorkspace(t)
	spec := NewSpec(w)
	op := operation.New("RenameSymbol", &Input{Path: path, CurrentName: "Widget", NewName: "Gadget"})

	result, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)
	assert.Contains(t, result.FilesModified, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "Widget")
	assert.Contains(t, string(content), "Gadget")
}

func TestRenameSymbolRejectsReservedKeyword(t *testing.T) {
	w, path := setupWorkspace(t)
	spec := NewSpec(w)
	op := operation.New("RenameSymbol", &Input{Path: path, CurrentName: "Widget", NewName: "class"})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}

// TestRenameSymbolVirtualChainDefaultsToIncludingImplementations covers
// spec §8 scenario 3: renaming a virtual method with no rename_implementations
// flag in the request must still rewrite the base declaration and every
// override, since spec §4.6.3 step 3 defaults that flag to true.
func TestRenameSymbolVirtualChainDefaultsToIncludingImplementations(t *testing.T) {
	root := t.TempDir()
	basePath := filepath.Join(root, "Base.cs")
	derivedAPath := filepath.Join(root, "DerivedA.cs")
	derivedBPath := filepath.Join(root, "DerivedB.cs")
	require.NoError(t, os.WriteFile(basePath, []byte("namespace N { class Base { public virtual void Greet() {} } }"), 0o644))
	require.NoError(t, os.WriteFile(derivedAPath, []byte("namespace N { class DerivedA : Base { public override void Greet() {} } }"), 0o644))
	require.NoError(t, os.WriteFile(derivedBPath, []byte("namespace N { class DerivedB : Base { public override void Greet() {} } }"), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewSpec(w)
	op := operation.New("RenameSymbol", &Input{Path: basePath, CurrentName: "Greet", NewName: "Salute"})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)

	for _, p := range []string{basePath, derivedAPath, derivedBPath} {
		content, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "Greet", "%s should have been renamed", p)
		assert.Contains(t, string(content), "Salute", "%s should contain the new name", p)
	}
}

func TestRenameSymbolSameNameIsSameLocation(t *testing.T) {
	w, path := setupWorkspace(t)
	spec := NewSpec(w)
	op := operation.New("RenameSymbol", &Input{Path: path, CurrentName: "Widget", NewName: "Widget"})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}
