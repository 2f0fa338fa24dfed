package model

// Document is an immutable (within a snapshot) source file: its identity,
// path, and text. Syntax tree and semantic model are computed lazily by
// internal/syntax and internal/semantic from Text, keyed by DocID, rather
// than stored on Document itself — spec §3 calls these "lazily computed"
// and the engine must not pay parse cost for documents an operation never
// touches.
type Document struct {
	ID   DocID
	Name string // file name, e.g. "A.cs"
	Path string // absolute path
	Text string
}

// DocID is a stable per-document identity that survives a Document being
// replaced by an edited copy within a new Solution snapshot (the new copy
// keeps the same ID as its predecessor, per spec §4.1 "preserve identity
// lineage of Documents").
type DocID string

// WithText returns a copy of d with Text replaced, keeping the same ID and
// Path. Used by operations to build the edited Document for a new
// Solution snapshot.
func (d Document) WithText(text string) Document {
	d.Text = text
	return d
}

// Project is an ordered set of Documents plus inter-project references.
type Project struct {
	ID           string
	Name         string
	FilePath     string
	Documents    []Document
	References   []string // other Project IDs this project references
	LanguageTag  string   // e.g. "csharp:net8.0"
}

// DocumentByPath returns the Document in p whose Path matches, or false.
func (p Project) DocumentByPath(path string) (Document, bool) {
	for _, d := range p.Documents {
		if d.Path == path {
			return d, true
		}
	}
	return Document{}, false
}

// ReferencesProject reports whether p directly (not transitively)
// references projectID, used to resolve the cross-project-reference Open Question
// (spec §9): an operation must not rewrite a reference in a project that
// doesn't declare a reference to the containing project.
func (p Project) ReferencesProject(projectID string) bool {
	for _, ref := range p.References {
		if ref == projectID {
			return true
		}
	}
	return false
}

// WithDocument returns a copy of p with the document matching doc.ID
// replaced (or appended, if not present), sharing the rest of the
// Documents slice's backing contents via a fresh top-level slice — the
// structural sharing spec §9 calls for is at the Document level: unchanged
// Document values are copied by (cheap) struct value, not deep-cloned.
func (p Project) WithDocument(doc Document) Project {
	docs := make([]Document, len(p.Documents))
	copy(docs, p.Documents)
	found := false
	for i, d := range docs {
		if d.ID == doc.ID {
			docs[i] = doc
			found = true
			break
		}
	}
	if !found {
		docs = append(docs, doc)
	}
	p.Documents = docs
	return p
}

// WithoutDocument returns a copy of p with the document at path removed.
func (p Project) WithoutDocument(path string) Project {
	docs := make([]Document, 0, len(p.Documents))
	for _, d := range p.Documents {
		if d.Path != path {
			docs = append(docs, d)
		}
	}
	p.Documents = docs
	return p
}
