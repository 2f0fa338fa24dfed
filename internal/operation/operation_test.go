package operation

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

type renameInput struct {
	path    string
	oldText string
	newText string
}

func newSpec(mutating bool) Spec[renameInput] {
	return Spec[renameInput]{
		Kind:          "TestRename",
		TimeoutFamily: "move_rename_extract",
		Mutating:      mutating,
		Validate: func(in renameInput) error {
			if in.newText == "" {
				return errtax.New(errtax.CodeInvalidIdentifier, "newText required")
			}
			return nil
		},
		Compute: func(ctx context.Context, in renameInput) (model.EditSet, model.Result, error) {
			edit := model.EditSet{Changes: []model.DocumentChange{
				{Kind: model.ChangeModify, Path: in.path, NewText: in.newText},
			}}
			return edit, model.Result{}, nil
		},
	}
}

func setupWorkspace(t *testing.T) (*workspace.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "A.cs")
	require.NoError(t, os.WriteFile(path, []byte("class A {}"), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	return w, path
}

func TestRunCompletesAndCommits(t *testing.T) {
	w, path := setupWorkspace(t)
	spec := newSpec(true)
	op := New("TestRename", renameInput{path: path, oldText: "class A {}", newText: "class A { void M() {} }"})

	result, err := Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)
	assert.Equal(t, model.OpCompleted, op.State)
	assert.Contains(t, result.FilesModified, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A { void M() {} }", string(content))
}

func TestRunPreviewDoesNotTouchDisk(t *testing.T) {
	w, path := setupWorkspace(t)
	spec := newSpec(true)
	op := New("TestRename", renameInput{path: path, newText: "class A { /* changed */ }"})

	result, err := Run(context.Background(), w, spec, op, true)
	require.NoError(t, err)
	assert.Equal(t, model.OpPreviewing, op.State)
	require.Len(t, result.PendingChanges, 1)
	assert.Equal(t, "class A { /* changed */ }", result.PendingChanges[0].After)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {}", string(content), "preview must not write to disk")
}

func TestRunValidationFailureStopsBeforeResolving(t *testing.T) {
	w, path := setupWorkspace(t)
	spec := newSpec(true)
	op := New("TestRename", renameInput{path: path, newText: ""})

	_, err := Run(context.Background(), w, spec, op, false)
	require.Error(t, err)
	assert.Equal(t, model.OpFailed, op.State)
}

func TestRunCancelledContextStopsEarly(t *testing.T) {
	w, path := setupWorkspace(t)
	spec := newSpec(true)
	op := New("TestRename", renameInput{path: path, newText: "class A { void M() {} }"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, w, spec, op, false)
	require.Error(t, err)
	assert.Equal(t, model.OpCancelled, op.State)
}
