package query

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/model"
	"csrefactor/internal/workspace"
)

func TestDataFlowClassifiesVariables(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "class C { int M(int x) { int y = x + 1; return y; } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	start := strings.Index(src, "int y")
	end := strings.Index(src, "return y;")
	selection := model.Span{StartByte: start, EndByte: end}

	flow, err := e.DataFlow(context.Background(), path, selection)
	require.NoError(t, err)
	assert.Contains(t, flow.FlowsIn, "x")
}

func TestDataFlowReadInsideIncludesLocallyDeclaredVariable(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "class C { int M(int x) { int y = x + 1; return y; } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	start := strings.Index(src, "int y")
	end := strings.Index(src, "return y;") + len("return y;")
	selection := model.Span{StartByte: start, EndByte: end}

	flow, err := e.DataFlow(context.Background(), path, selection)
	require.NoError(t, err)
	assert.Contains(t, flow.ReadInside, "y")
	assert.Contains(t, flow.WrittenInside, "y")
	assert.NotContains(t, flow.FlowsIn, "y")
	assert.NotContains(t, flow.FlowsOut, "y")
}

func TestDataFlowCapturesVariableClosedOverByLambda(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "class C { int M(int x) { Func<int> f = () => x + 1; return f(); } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	start := strings.Index(src, "Func<int> f")
	end := strings.Index(src, "return f();") + len("return f();")
	selection := model.Span{StartByte: start, EndByte: end}

	flow, err := e.DataFlow(context.Background(), path, selection)
	require.NoError(t, err)
	assert.Contains(t, flow.Captured, "x")
}

func TestControlFlowReportsReachableEnd(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "C.cs")
	src := "class C { int M(int x) { int y = x + 1; return y; } }"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	w := workspace.New(root)
	require.NoError(t, w.Load(context.Background()))
	e := New(w)
	defer e.Close()

	start := strings.Index(src, "int y")
	end := strings.Index(src, "return y;")
	selection := model.Span{StartByte: start, EndByte: end}

	flow, err := e.ControlFlow(context.Background(), path, selection)
	require.NoError(t, err)
	assert.True(t, flow.StartReachable)
	assert.True(t, flow.EndReachable)
}
