// Package refs implements the Reference Tracker of spec §4.3: find_all
// enumerates every syntactic reference to a symbol across the workspace's
// current snapshot, grouped by document, via bounded concurrent per-document
// scans (the errgroup-bounded fan-out pattern the teacher's
// internal/campaign/intelligence_gatherer.go uses for parallel gathering).
package refs

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"csrefactor/internal/errtax"
	"csrefactor/internal/model"
	"csrefactor/internal/semantic"
	"csrefactor/internal/syntax"
	"csrefactor/internal/workspace"
)

// maxConcurrentScans bounds how many documents are parsed at once, unless
// WithConcurrency sets another width.
const maxConcurrentScans = 8

// Result is the grouped outcome of find_all (spec §4.3 contract).
type Result struct {
	ByDocument map[string][]model.Reference
	Total      int
}

// Tracker enumerates references across one Workspace's current snapshot.
type Tracker struct {
	ws          *workspace.Workspace
	concurrency int
}

// New returns a Tracker over ws with the default concurrency bound.
func New(ws *workspace.Workspace) *Tracker {
	return &Tracker{ws: ws, concurrency: maxConcurrentScans}
}

// WithConcurrency overrides the bounded-scan width; values below 1 are
// ignored.
func (t *Tracker) WithConcurrency(n int) *Tracker {
	if n > 0 {
		t.concurrency = n
	}
	return t
}

// FindAll scans every document reachable from the current snapshot and
// collects references to sym (spec §4.3 completeness guarantee: "every
// syntactic reference reachable from the loaded snapshot is reported").
// Callers that must not rewrite a reference outside the symbol's
// accessibility (e.g. a reference in a project that doesn't declare a
// reference to the declaring project) should consult Rewritable, not
// exclude results here.
func (t *Tracker) FindAll(ctx context.Context, sym model.Symbol) (Result, error) {
	sol := t.ws.CurrentSolution()

	type docRefs struct {
		path string
		refs []model.Reference
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	resultsCh := make(chan docRefs, len(sol.AllDocuments()))

	for _, doc := range sol.AllDocuments() {
		doc := doc
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			parser := syntax.NewParser()
			defer parser.Close()
			tree, err := parser.Parse(gctx, []byte(doc.Text))
			if err != nil {
				return errtax.Wrap(errtax.CodeSemanticLibraryError, "failed to parse "+doc.Path, err)
			}
			defer tree.Close()
			m := semantic.Build(doc.Path, tree)
			refsInDoc := m.References(sym)
			if len(refsInDoc) > 0 {
				resultsCh <- docRefs{path: doc.Path, refs: refsInDoc}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	close(resultsCh)

	out := Result{ByDocument: make(map[string][]model.Reference)}
	for dr := range resultsCh {
		sort.Slice(dr.refs, func(i, j int) bool {
			return dr.refs[i].Span.StartByte < dr.refs[j].Span.StartByte
		})
		out.ByDocument[dr.path] = dr.refs
		out.Total += len(dr.refs)
	}
	return out, nil
}

// Rewritable reports whether a reference found in referencingProject may
// legally be rewritten for a symbol declared in declaringProject: the
// resolution to spec §9's cross-project-reference Open Question (same
// project, or an explicit project reference; never auto-added).
func Rewritable(referencingProject, declaringProject model.Project) bool {
	if referencingProject.ID == declaringProject.ID {
		return true
	}
	return referencingProject.ReferencesProject(declaringProject.ID)
}
