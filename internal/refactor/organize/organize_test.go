package organize

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

func TestSortOrdersSystemNamespacesFirst(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "using Zeta;\nusing System.Text;\nusing Alpha;\nusing System;\n\nclass C {}"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewSpec(w)
	op := operation.New("OrganizeUsings", &Input{Mode: ModeSort, Scope: ScopeSingle, Path: path})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, indexOf(text, "using System;") < indexOf(text, "using System.Text;"))
	assert.True(t, indexOf(text, "using System.Text;") < indexOf(text, "using Alpha;"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestRemoveUnusedDropsUnreferencedUsing(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "using System;\nusing System.Collections.Generic;\n\nclass C { void M() { Console.WriteLine(1); } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewSpec(w)
	op := operation.New("OrganizeUsings", &Input{Mode: ModeRemoveUnused, Scope: ScopeSingle, Path: path})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "Collections.Generic")
}

func TestRemoveUnusedKeepsUsingThatSuppliesExtensionMethod(t *testing.T) {
	root := t.TempDir()
	linqPath := filepath.Join(root, "Linq.cs")
	linqSrc := "namespace App.Linq { public static class Enumerable { " +
		"public static IEnumerable Where(this IEnumerable source, object pred) { return source; } } }"
	require.NoError(t, os.WriteFile(linqPath, []byte(linqSrc), 0o644))

	programPath := filepath.Join(root, "Program.cs")
	programSrc := "using App.Linq;\n\nclass C { void M(IEnumerable list) { list.Where(1); } }"
	require.NoError(t, os.WriteFile(programPath, []byte(programSrc), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewSpec(w)
	op := operation.New("OrganizeUsings", &Input{Mode: ModeRemoveUnused, Scope: ScopeSingle, Path: programPath})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)

	content, err := os.ReadFile(programPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "using App.Linq;")
}

func TestAddMissingInsertsKnownNamespace(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "class C { void M() { var list = new List(); } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))

	spec := NewSpec(w)
	op := operation.New("OrganizeUsings", &Input{Mode: ModeAddMissing, Scope: ScopeSingle, Path: path})

	_, err := operation.Run(context.Background(), w, spec, op, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "using System.Collections.Generic;")
}
