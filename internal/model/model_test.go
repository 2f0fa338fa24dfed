package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolutionWithDocumentSharesUnrelatedProjects(t *testing.T) {
	sol := Solution{Projects: []Project{
		{ID: "P1", Documents: []Document{{ID: "D1", Path: "/a/A.cs", Text: "old"}}},
		{ID: "P2", Documents: []Document{{ID: "D2", Path: "/b/B.cs", Text: "unchanged"}}},
	}}

	updated := sol.WithDocument("P1", Document{ID: "D1", Path: "/a/A.cs", Text: "new"})

	require.Len(t, updated.Projects, 2)
	doc, ok := updated.DocumentByPath("/a/A.cs")
	require.True(t, ok)
	assert.Equal(t, "new", doc.Text)

	// The original snapshot is untouched.
	oldDoc, ok := sol.DocumentByPath("/a/A.cs")
	require.True(t, ok)
	assert.Equal(t, "old", oldDoc.Text)

	// P2 is unaffected.
	p2, ok := updated.ProjectOf("/b/B.cs")
	require.True(t, ok)
	assert.Equal(t, "unchanged", p2.Documents[0].Text)
}

func TestSolutionWithoutDocumentRemovesFromOwningProject(t *testing.T) {
	sol := Solution{Projects: []Project{
		{ID: "P1", Documents: []Document{
			{ID: "D1", Path: "/a/A.cs"},
			{ID: "D2", Path: "/a/B.cs"},
		}},
	}}

	updated := sol.WithoutDocument("/a/A.cs")
	assert.Len(t, updated.Projects[0].Documents, 1)
	assert.Equal(t, "/a/B.cs", updated.Projects[0].Documents[0].Path)
	// Original unaffected.
	assert.Len(t, sol.Projects[0].Documents, 2)
}

func TestDocumentChangeApplyAppliesEditsRightToLeft(t *testing.T) {
	change := DocumentChange{
		Edits: []TextEdit{
			{Span: Span{StartByte: 0, EndByte: 3}, NewText: "XXX"},
			{Span: Span{StartByte: 8, EndByte: 11}, NewText: "YYY"},
		},
	}.ApplyOrder()

	result := change.Apply("foo bar baz")
	assert.Equal(t, "XXX bar YYY", result)
}

func TestEditSetSortedByPathAscending(t *testing.T) {
	es := EditSet{Changes: []DocumentChange{
		{Path: "/z.cs"},
		{Path: "/a.cs"},
		{Path: "/m.cs"},
	}}
	sorted := es.SortedByPathAscending()
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"/a.cs", "/m.cs", "/z.cs"}, []string{sorted[0].Path, sorted[1].Path, sorted[2].Path})
}

func TestSymbolKindMoveable(t *testing.T) {
	assert.True(t, KindClass.Moveable())
	assert.True(t, KindRecord.Moveable())
	assert.False(t, KindMethod.Moveable())
	assert.False(t, KindField.Moveable())
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{StartByte: 0, EndByte: 10}
	b := Span{StartByte: 5, EndByte: 15}
	c := Span{StartByte: 10, EndByte: 20}

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c), "half-open spans touching at a boundary do not overlap")
}

func TestNewSymbolKeyDistinguishesOverloads(t *testing.T) {
	k1 := NewSymbolKey("/a/A.cs", "App.Foo.Bar", "(int)")
	k2 := NewSymbolKey("/a/A.cs", "App.Foo.Bar", "(string)")
	assert.NotEqual(t, k1, k2)
}
