package move

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

func TestMoveTypeToFileCreatesDestinationAndDeletesEmptySource(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Source.cs")
	require.NoError(t, os.WriteFile(src, []byte("namespace N { class Widget { } }"), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	dest := filepath.Join(root, "Widget.cs")
	spec := NewToFileSpec(w)
	op := operation.New("MoveTypeToFile", &ToFileInput{
		Path: src, SymbolName: "Widget", TargetPath: dest, CreateTargetIfMissing: true,
	})

	result, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)
	assert.Contains(t, result.FilesCreated, dest)
	assert.Contains(t, result.FilesDeleted, src)

	destContent, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(destContent), "class Widget")
}

func TestMoveTypeToFileRejectsNonMoveableSymbol(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Source.cs")
	require.NoError(t, os.WriteFile(src, []byte("class Widget { void Run() {} }"), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewToFileSpec(w)
	op := operation.New("MoveTypeToFile", &ToFileInput{
		Path: src, SymbolName: "Run", TargetPath: filepath.Join(root, "Run.cs"), CreateTargetIfMissing: true,
	})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}

func TestMoveTypeToNamespaceRewritesDeclaration(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Widget.cs")
	require.NoError(t, os.WriteFile(src, []byte("namespace N { class Widget { } }"), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewToNamespaceSpec(w)
	op := operation.New("MoveTypeToNamespace", &NamespaceInput{
		Path: src, SymbolName: "Widget", TargetNamespace: "N.Sub",
	})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)

	content, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Contains(t, string(content), "namespace N.Sub")
}

func TestMoveTypeToNamespaceAlsoMovesFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Widget.cs")
	require.NoError(t, os.WriteFile(src, []byte("namespace N { class Widget { } }"), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewToNamespaceSpec(w)
	op := operation.New("MoveTypeToNamespace", &NamespaceInput{
		Path: src, SymbolName: "Widget", TargetNamespace: "N.Sub", AlsoMoveFile: true,
	})

	result, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)
	assert.Contains(t, result.FilesDeleted, src)
	require.Len(t, result.FilesCreated, 1)

	destContent, err := os.ReadFile(result.FilesCreated[0])
	require.NoError(t, err)
	assert.Contains(t, string(destContent), "namespace N.Sub")
	assert.Contains(t, string(destContent), "class Widget")
}

func TestMoveTypeToNamespaceRejectsSameLocation(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "Widget.cs")
	require.NoError(t, os.WriteFile(src, []byte("namespace N { class Widget { } }"), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewToNamespaceSpec(w)
	op := operation.New("MoveTypeToNamespace", &NamespaceInput{
		Path: src, SymbolName: "Widget", TargetNamespace: "N",
	})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
}
