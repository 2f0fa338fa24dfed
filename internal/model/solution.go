package model

// Solution is an immutable snapshot of the whole workspace: an ordered set
// of Projects. Replacing a snapshot is a single pointer swap (see
// internal/workspace); readers always see a consistent view (spec §3).
type Solution struct {
	Projects []Project
}

// DocumentByPath searches every project for a document at path.
func (s Solution) DocumentByPath(path string) (Document, bool) {
	for _, p := range s.Projects {
		if d, ok := p.DocumentByPath(path); ok {
			return d, true
		}
	}
	return Document{}, false
}

// ProjectOf returns the Project containing the document at path.
func (s Solution) ProjectOf(path string) (Project, bool) {
	for _, p := range s.Projects {
		if _, ok := p.DocumentByPath(path); ok {
			return p, true
		}
	}
	return Project{}, false
}

// AllDocuments returns every Document across every Project, in
// Project-then-Document declaration order — the deterministic order spec
// §5 requires edits to be applied in ("by document path ascending" is
// imposed by callers that sort this slice; this method preserves solution
// declaration order for scans that don't need the sort).
func (s Solution) AllDocuments() []Document {
	var docs []Document
	for _, p := range s.Projects {
		docs = append(docs, p.Documents...)
	}
	return docs
}

// WithDocument returns a new Solution in which the project named projectID
// has the document with doc.ID replaced by doc (or doc appended if no
// document has that ID), sharing every other Project by value (Go
// slice/struct copy, not a deep clone) — the structural-sharing snapshot
// spec §9 describes. projectID identifies which project owns the document,
// since Document itself doesn't carry a back reference to its Project.
func (s Solution) WithDocument(projectID string, doc Document) Solution {
	projects := make([]Project, len(s.Projects))
	copy(projects, s.Projects)
	for i, p := range projects {
		if p.ID == projectID {
			projects[i] = p.WithDocument(doc)
			break
		}
	}
	return Solution{Projects: projects}
}

// WithoutDocument returns a new Solution with the document at path removed
// from its owning project.
func (s Solution) WithoutDocument(path string) Solution {
	projects := make([]Project, len(s.Projects))
	copy(projects, s.Projects)
	for i, p := range projects {
		if _, ok := p.DocumentByPath(path); ok {
			projects[i] = p.WithoutDocument(path)
			break
		}
	}
	return Solution{Projects: projects}
}

// WithNewDocument returns a new Solution with a brand-new document created
// in the named project (spec §4.6.1 "create_target_file").
func (s Solution) WithNewDocument(projectID string, doc Document) Solution {
	return s.WithDocument(projectID, doc)
}
