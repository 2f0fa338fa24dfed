package model

import "sort"

// TextEdit replaces the bytes in [Span.StartByte, Span.EndByte) of a
// document with NewText. Edit sets are non-overlapping within a document
// (spec §3 invariant 3) and applied in the descending start order that
// DocumentChange.ApplyOrder establishes (spec §5: "by span start descending within a document so later edits
// don't invalidate earlier spans").
type TextEdit struct {
	Span    Span
	NewText string
}

// DocumentChange is one entry of an Edit Set: a Create, Modify, or Delete
// for a single document, carrying either a full replacement tree (NewText
// with Edits == nil) or a sequence of non-overlapping TextEdits.
type DocumentChange struct {
	Kind     ChangeKind
	Path     string // the affected document's absolute path
	ProjectID string
	// NewText is the full resulting content for Create/Modify changes built
	// from a fresh syntax tree (e.g. a moved type's new destination file).
	// When Edits is non-empty, NewText is ignored and the edits are applied
	// to the pre-image text instead.
	NewText string
	Edits   []TextEdit
	// FileName is used for Create changes whose Path doesn't yet correspond
	// to an existing Document.
	FileName string
}

// EditSet is the ordered list of document changes an operation computes.
type EditSet struct {
	Changes []DocumentChange
}

// Apply applies a DocumentChange's Edits against pre-image text and
// returns the resulting text. Edits must be sorted by descending start
// offset (ApplyOrder does this); Apply does not re-sort so callers can
// assert on the ordering invariant in tests.
func (c DocumentChange) Apply(preimage string) string {
	if len(c.Edits) == 0 {
		return c.NewText
	}
	out := preimage
	for _, e := range c.Edits {
		out = out[:e.Span.StartByte] + e.NewText + out[e.Span.EndByte:]
	}
	return out
}

// ApplyOrder returns c with Edits sorted by descending start byte offset,
// so repeated in-place splicing never invalidates a later edit's offsets.
func (c DocumentChange) ApplyOrder() DocumentChange {
	edits := make([]TextEdit, len(c.Edits))
	copy(edits, c.Edits)
	sort.Slice(edits, func(i, j int) bool {
		return edits[i].Span.StartByte > edits[j].Span.StartByte
	})
	c.Edits = edits
	return c
}

// SortedByPathAscending returns the EditSet's changes ordered by ascending
// document path, the deterministic cross-document ordering spec §5
// requires.
func (es EditSet) SortedByPathAscending() []DocumentChange {
	out := make([]DocumentChange, len(es.Changes))
	copy(out, es.Changes)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Destination discriminates the target of a move operation.
type Destination struct {
	File      *FileDestination
	Namespace *NamespaceDestination
}

// FileDestination targets a specific file path (Move-Type-to-File).
type FileDestination struct {
	Path            string
	CreateIfMissing bool
}

// NamespaceDestination targets a namespace (Move-Type-to-Namespace).
type NamespaceDestination struct {
	Name         string
	AlsoMoveFile bool
}
