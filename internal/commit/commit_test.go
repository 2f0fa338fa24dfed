package commit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/model"
	"csrefactor/internal/workspace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCommitWritesModifiedCreatedAndDeletesFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.cs"), "class A {}")
	writeFile(t, filepath.Join(root, "B.cs"), "class B {}")

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	current := w.CurrentSolution()
	require.Len(t, current.Projects, 1)
	projID := current.Projects[0].ID

	aDoc, _ := current.DocumentByPath(filepath.Join(root, "A.cs"))
	bDoc, _ := current.DocumentByPath(filepath.Join(root, "B.cs"))

	next := current
	next = next.WithDocument(projID, aDoc.WithText("class A { void M() {} }"))
	next = next.WithoutDocument(bDoc.Path)
	next = next.WithNewDocument(projID, model.Document{
		ID:   model.DocID(filepath.Join(root, "C.cs")),
		Name: "C.cs",
		Path: filepath.Join(root, "C.cs"),
		Text: "class C {}",
	})

	report, err := Commit(context.Background(), w, next)
	require.NoError(t, err)
	assert.Contains(t, report.FilesModified, filepath.Join(root, "A.cs"))
	assert.Contains(t, report.FilesCreated, filepath.Join(root, "C.cs"))
	assert.Contains(t, report.FilesDeleted, filepath.Join(root, "B.cs"))

	aContent, err := os.ReadFile(filepath.Join(root, "A.cs"))
	require.NoError(t, err)
	assert.Equal(t, "class A { void M() {} }", string(aContent))

	_, err = os.Stat(filepath.Join(root, "B.cs"))
	assert.True(t, os.IsNotExist(err))

	cContent, err := os.ReadFile(filepath.Join(root, "C.cs"))
	require.NoError(t, err)
	assert.Equal(t, "class C {}", string(cContent))

	assert.Equal(t, next.Projects[0].ID, w.CurrentSolution().Projects[0].ID)
}

// TestCommitPartialFailureRestoresPreImage covers spec §8 scenario 6: an
// atomic commit that fails partway through must leave no file on disk
// modified. A.cs sorts before B.cs, so A's rename into place succeeds
// before B's step fails (B's final path has since become a directory, which
// cannot be backed up and replaced) — the failure must roll A's pre-image
// back instead of leaving the new text in place.
func TestCommitPartialFailureRestoresPreImage(t *testing.T) {
	root := t.TempDir()
	aPath := filepath.Join(root, "A.cs")
	bPath := filepath.Join(root, "B.cs")
	writeFile(t, aPath, "class A {}")
	writeFile(t, bPath, "class B {}")

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	current := w.CurrentSolution()
	projID := current.Projects[0].ID
	aDoc, _ := current.DocumentByPath(aPath)
	bDoc, _ := current.DocumentByPath(bPath)

	next := current
	next = next.WithDocument(projID, aDoc.WithText("class A { void M() {} }"))
	next = next.WithDocument(projID, bDoc.WithText("class B { void M() {} }"))

	// Desync the filesystem from the snapshot: B.cs's final path is now a
	// directory, so backing it up and renaming B's staged temp file into
	// place will fail.
	require.NoError(t, os.Remove(bPath))
	require.NoError(t, os.Mkdir(bPath, 0o755))

	_, err := Commit(context.Background(), w, next)
	require.Error(t, err)

	aContent, err := os.ReadFile(aPath)
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(aContent), "A.cs must be restored to its pre-commit content")

	info, err := os.Stat(bPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "B.cs must remain untouched")

	assert.Equal(t, current.Projects[0].ID, w.CurrentSolution().Projects[0].ID, "workspace snapshot must not have been swapped")
}

func TestCommitNoopWhenNothingChanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A.cs"), "class A {}")
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	report, err := Commit(context.Background(), w, w.CurrentSolution())
	require.NoError(t, err)
	assert.Empty(t, report.FilesModified)
	assert.Empty(t, report.FilesCreated)
	assert.Empty(t, report.FilesDeleted)
}
