// Package workspace implements the aggregate root of spec §4.1: a lifecycle
// state machine guarding an atomically-swapped immutable Solution snapshot.
package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"csrefactor/internal/errtax"
	"csrefactor/internal/logging"
	"csrefactor/internal/model"
)

// Workspace is the aggregate root guarding one Solution's lifecycle. The
// zero value is not usable; construct with New.
type Workspace struct {
	path      string
	state     atomic.Value // model.WorkspaceState
	snapshot  atomic.Pointer[model.Solution]
	loadedAt  time.Time

	mu          sync.Mutex // serializes state transitions and operating-count bookkeeping
	operating   int
	disposeOnce sync.Once
}

// New returns a Workspace in the Unloaded state for the solution at path.
// path may be a single .csproj/.sln file or a directory root; Load
// interprets it per the rules in load.go.
func New(path string) *Workspace {
	w := &Workspace{path: path}
	w.state.Store(model.StateUnloaded)
	w.snapshot.Store(&model.Solution{})
	return w
}

// Lifecycle reports the current state, usable for diagnostics in any
// non-Disposed state (spec §4.1 "Diagnose works in every non-Disposed
// state").
func (w *Workspace) Lifecycle() model.WorkspaceState {
	return w.state.Load().(model.WorkspaceState)
}

// CurrentSolution returns the current immutable snapshot. Cheap: a single
// atomic pointer load, never blocking on in-flight operations.
func (w *Workspace) CurrentSolution() model.Solution {
	return *w.snapshot.Load()
}

// Load transitions Unloaded→Loading→Ready, populating the initial Solution
// snapshot by scanning w.path (see load.go). On failure it transitions to
// Error and returns a SolutionLoadFailed error carrying diagnostics.
func (w *Workspace) Load(ctx context.Context) error {
	if !w.transition(model.StateUnloaded, model.StateLoading) {
		return errtax.New(errtax.CodeWorkspaceBusy, "workspace is not in Unloaded state")
	}
	log := logging.Get(logging.CategoryWorkspace)
	log.Info("loading workspace", zap.String("path", w.path))

	sol, diagnostics, err := loadSolution(ctx, w.path)
	if err != nil {
		w.state.Store(model.StateError)
		return errtax.Wrap(errtax.CodeSolutionLoadFailed, "failed to load solution at "+w.path, err).
			WithDetails(map[string]any{"diagnostics": diagnostics})
	}

	w.snapshot.Store(&sol)
	w.loadedAt = time.Now()
	w.state.Store(model.StateReady)
	log.Info("workspace ready",
		zap.Int("projects", len(sol.Projects)),
		zap.Int("documents", len(sol.AllDocuments())))
	return nil
}

// UpdateSolution atomically swaps the current snapshot for next. Callers
// must have derived next from a CurrentSolution() observed earlier, per
// spec §4.1's identity-lineage requirement; this method does not itself
// verify lineage (internal/commit does, under its commit lock).
func (w *Workspace) UpdateSolution(next model.Solution) {
	w.snapshot.Store(&next)
}

// DocumentFor returns the Document at path in the current snapshot, or
// SourceNotInWorkspace if absent.
func (w *Workspace) DocumentFor(path string) (model.Document, error) {
	sol := w.CurrentSolution()
	doc, ok := sol.DocumentByPath(path)
	if !ok {
		return model.Document{}, errtax.Newf(errtax.CodeSourceNotInWorkspace, "%s is not part of this workspace", path)
	}
	return doc, nil
}

// BeginOperating transitions Ready→Operating at the start of an operation's
// Apply phase. Returns WorkspaceBusy if the workspace isn't Ready (spec
// §5 invariant: at most one mutating operation at a time).
func (w *Workspace) BeginOperating() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Lifecycle() != model.StateReady {
		return errtax.New(errtax.CodeWorkspaceBusy, "workspace is not Ready")
	}
	w.state.Store(model.StateOperating)
	w.operating++
	return nil
}

// EndOperating transitions Operating→Ready on commit success, or →Error on
// commit failure, per spec §4.1's state machine.
func (w *Workspace) EndOperating(success bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.operating--
	if success {
		w.state.Store(model.StateReady)
	} else {
		w.state.Store(model.StateError)
	}
}

// transition performs a compare-and-swap on the lifecycle state.
func (w *Workspace) transition(from, to model.WorkspaceState) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Lifecycle() != from {
		return false
	}
	w.state.Store(to)
	return true
}

// Dispose transitions to Disposed from any state, first waiting up to
// timeout (or until ctx is done) for active operations to finish. It does
// not interrupt operations still running when the wait ends; the state
// becomes Disposed regardless.
func (w *Workspace) Dispose(ctx context.Context, timeout time.Duration) {
	w.disposeOnce.Do(func() {
		deadline := time.Now().Add(timeout)
	waitLoop:
		for {
			w.mu.Lock()
			idle := w.operating == 0
			w.mu.Unlock()
			if idle || time.Now().After(deadline) {
				break waitLoop
			}
			select {
			case <-ctx.Done():
				break waitLoop
			case <-time.After(10 * time.Millisecond):
			}
		}
		w.state.Store(model.StateDisposed)
		logging.Get(logging.CategoryWorkspace).Info("workspace disposed", zap.String("path", w.path))
	})
}
