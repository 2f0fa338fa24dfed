package syntax

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `namespace App.Services
{
    public class OrderService
    {
        private int count;

        public int Total(int a, int b)
        {
            return a + b;
        }
    }
}
`

func parseSample(t *testing.T) *Tree {
	t.Helper()
	p := NewParser()
	t.Cleanup(p.Close)
	tree, err := p.Parse(context.Background(), []byte(sample))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestDescendantsOfKindFindsClassDeclaration(t *testing.T) {
	tree := parseSample(t)
	classes := tree.Root().DescendantsOfKind("class_declaration")
	require.Len(t, classes, 1)
	assert.True(t, strings.Contains(classes[0].Text(), "OrderService"))
}

func TestDescendantsOfKindFindsMethodDeclaration(t *testing.T) {
	tree := parseSample(t)
	methods := tree.Root().DescendantsOfKind("method_declaration")
	require.Len(t, methods, 1)
	name := methods[0].ChildByField("name")
	require.False(t, name.IsNil())
	assert.Equal(t, "Total", name.Text())
}

func TestNodeAtReturnsSmallestEnclosingNode(t *testing.T) {
	tree := parseSample(t)
	off := strings.Index(sample, "OrderService")
	n := tree.NodeAt(off)
	require.False(t, n.IsNil())
	assert.Contains(t, n.Text(), "OrderService")
}

func TestNodeAtOutOfRangeReturnsNil(t *testing.T) {
	tree := parseSample(t)
	n := tree.NodeAt(len(sample) + 1000)
	assert.True(t, n.IsNil())
}

func TestSpanReportsOneBasedLineColumn(t *testing.T) {
	tree := parseSample(t)
	classes := tree.Root().DescendantsOfKind("class_declaration")
	require.Len(t, classes, 1)
	span := classes[0].Span()
	assert.Equal(t, 3, span.Start.Line)
}

func TestParentWalksUpToDeclaration(t *testing.T) {
	tree := parseSample(t)
	methods := tree.Root().DescendantsOfKind("method_declaration")
	require.Len(t, methods, 1)
	body := methods[0].ChildByField("body")
	require.False(t, body.IsNil())
	assert.Equal(t, "method_declaration", body.Parent().Type())
}
