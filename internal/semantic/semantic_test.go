package semantic

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csrefactor/internal/model"
	"csrefactor/internal/syntax"
)

const source = `using System;
using System.Collections.Generic;

namespace App.Services
{
    public class OrderService
    {
        private int count;

        public int Total(int a, int b)
        {
            int sum = a + b;
            return sum;
        }
    }
}
`

func buildModel(t *testing.T) (*Model, *syntax.Tree) {
	t.Helper()
	p := syntax.NewParser()
	t.Cleanup(p.Close)
	tree, err := p.Parse(context.Background(), []byte(source))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return Build("/src/OrderService.cs", tree), tree
}

func TestCollectSymbolsFindsClassAndMethod(t *testing.T) {
	m, _ := buildModel(t)
	var foundClass, foundMethod bool
	for _, s := range m.Symbols() {
		if s.SimpleName == "OrderService" && s.Kind == model.KindClass {
			foundClass = true
			assert.Equal(t, "App.Services", s.ContainingNamespace)
		}
		if s.SimpleName == "Total" && s.Kind == model.KindMethod {
			foundMethod = true
			assert.Equal(t, "OrderService", s.ContainingType)
		}
	}
	assert.True(t, foundClass)
	assert.True(t, foundMethod)
}

func TestResolveByNameFindsUniqueMatch(t *testing.T) {
	m, _ := buildModel(t)
	sym, err := m.ResolveByName("Total")
	require.NoError(t, err)
	assert.Equal(t, model.KindMethod, sym.Kind)
}

func TestResolveByNameNotFound(t *testing.T) {
	m, _ := buildModel(t)
	_, err := m.ResolveByName("DoesNotExist")
	require.Error(t, err)
}

func TestUsingDirectivesListsBoth(t *testing.T) {
	m, _ := buildModel(t)
	assert.ElementsMatch(t, []string{"System", "System.Collections.Generic"}, m.UsingDirectives())
}

func TestUnusedUsingDiagnosticFlagsCollectionsGeneric(t *testing.T) {
	m, _ := buildModel(t)
	diags := m.Diagnostics()
	var flagged bool
	for _, d := range diags {
		if d.Code == "CS8019" && strings.Contains(d.Message, "System.Collections.Generic") {
			flagged = true
		}
	}
	assert.True(t, flagged, "System.Collections.Generic is never referenced and should be flagged unused")
}

func TestConstantValueFoldsBinaryArithmetic(t *testing.T) {
	p := syntax.NewParser()
	defer p.Close()
	src := []byte("class C { const int X = 1 + 2; }")
	tree, err := p.Parse(context.Background(), src)
	require.NoError(t, err)
	defer tree.Close()

	var literal syntax.Node
	for _, n := range tree.Root().DescendantsOfKind("binary_expression") {
		literal = n
		break
	}
	require.False(t, literal.IsNil())
	v, ok := ConstantValue(literal)
	require.True(t, ok)
	assert.Equal(t, "3", v)
}
