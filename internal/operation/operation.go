// Package operation implements the generic Operation Framework of spec §4.5:
// a uniform Pending→Validating→Resolving→Computing→(Previewing|Applying→
// Committing)→Completed|Failed|Cancelled state machine shared by every
// mutating refactoring operation in internal/refactor.
package operation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"csrefactor/internal/commit"
	"csrefactor/internal/errtax"
	"csrefactor/internal/logging"
	"csrefactor/internal/model"
	previewpkg "csrefactor/internal/preview"
	"csrefactor/internal/workspace"
)

// Spec describes one operation kind's three hooks and whether it mutates
// the workspace (refactorings do; the type is also used, with Mutating
// false, by any future operation that only needs validate+compute without
// a commit phase).
type Spec[In any] struct {
	Kind          string
	TimeoutFamily string
	Mutating      bool

	// Validate is synchronous and does no workspace reads beyond existence
	// checks (spec §4.5 contract).
	Validate func(in In) error

	// Resolve looks up the symbol(s)/documents the operation needs,
	// returning NotFound/Ambiguous errors from internal/resolver or
	// internal/refs. Optional: nil skips the Resolving stage.
	Resolve func(ctx context.Context, in In) error

	// Compute produces the edit set and the Result fields that don't
	// depend on having committed yet (e.g. Symbol, a provisional
	// ReferencesUpdated count).
	Compute func(ctx context.Context, in In) (model.EditSet, model.Result, error)
}

// Operation is one invocation of a Spec: fresh identity, current state, and
// the inputs it was constructed with.
type Operation[In any] struct {
	ID     string
	Kind   string
	Inputs In
	State  model.OperationState
	Start  time.Time
}

// New constructs a Pending operation with a freshly generated ID.
func New[In any](kind string, inputs In) *Operation[In] {
	return &Operation[In]{
		ID:     uuid.New().String(),
		Kind:   kind,
		Inputs: inputs,
		State:  model.OpPending,
	}
}

// Run drives the operation through its full state machine against ws,
// honoring ctx's deadline/cancellation at every stage boundary (spec §5
// "every non-commit stage polls a cancellation token at entry").
// previewMode, when true, stops after Computing and returns pending changes instead of
// committing.
func Run[In any](ctx context.Context, ws *workspace.Workspace, spec Spec[In], op *Operation[In], previewMode bool) (model.Result, error) {
	log := logging.Get(logging.CategoryOperation).With(zap.String("operationId", op.ID), zap.String("kind", spec.Kind))
	op.Start = time.Now()

	op.State = model.OpValidating
	if err := ctx.Err(); err != nil {
		return cancelled(op)
	}
	if spec.Validate != nil {
		if err := spec.Validate(op.Inputs); err != nil {
			op.State = model.OpFailed
			return model.Result{}, err
		}
	}

	op.State = model.OpResolving
	if err := ctx.Err(); err != nil {
		return cancelled(op)
	}
	if spec.Resolve != nil {
		if err := spec.Resolve(ctx, op.Inputs); err != nil {
			op.State = model.OpFailed
			return model.Result{}, err
		}
	}

	op.State = model.OpComputing
	if err := ctx.Err(); err != nil {
		return cancelled(op)
	}
	editSet, result, err := spec.Compute(ctx, op.Inputs)
	if err != nil {
		op.State = model.OpFailed
		return model.Result{}, err
	}
	result.OperationID = op.ID

	if previewMode {
		op.State = model.OpPreviewing
		result.PendingChanges = previewpkg.Render(ws.CurrentSolution(), editSet)
		result.ExecutionTime = time.Since(op.Start)
		return result, nil
	}

	if !spec.Mutating {
		op.State = model.OpCompleted
		result.ExecutionTime = time.Since(op.Start)
		return result, nil
	}

	op.State = model.OpApplying
	if err := ws.BeginOperating(); err != nil {
		op.State = model.OpFailed
		return model.Result{}, err
	}

	next := applyEditSet(ws.CurrentSolution(), editSet)

	op.State = model.OpCommitting
	report, err := commit.Commit(ctx, ws, next)
	if err != nil {
		ws.EndOperating(false)
		op.State = model.OpFailed
		log.Error("commit failed", zap.Error(err))
		return model.Result{}, err
	}
	ws.EndOperating(true)

	op.State = model.OpCompleted
	result.FilesModified = report.FilesModified
	result.FilesCreated = report.FilesCreated
	result.FilesDeleted = report.FilesDeleted
	result.ExecutionTime = time.Since(op.Start)
	log.Info("operation completed", zap.Duration("duration", result.ExecutionTime))
	return result, nil
}

func cancelled[In any](op *Operation[In]) (model.Result, error) {
	op.State = model.OpCancelled
	return model.Result{}, errtax.New(errtax.CodeCancelled, "operation cancelled")
}

// applyEditSet materializes a new Solution snapshot by applying every
// DocumentChange in editSet, in the deterministic order spec §5 requires
// (by path ascending; within a document, by descending span start — already
// guaranteed by DocumentChange.ApplyOrder at edit-set construction time).
func applyEditSet(sol model.Solution, editSet model.EditSet) model.Solution {
	next := sol
	for _, change := range editSet.SortedByPathAscending() {
		switch change.Kind {
		case model.ChangeDelete:
			next = next.WithoutDocument(change.Path)
		case model.ChangeCreate:
			proj, ok := next.ProjectOf(change.Path)
			if !ok && len(next.Projects) > 0 {
				proj = next.Projects[0]
			}
			doc := model.Document{
				ID:   model.DocID(change.Path),
				Name: change.FileName,
				Path: change.Path,
				Text: change.Apply(""),
			}
			next = next.WithNewDocument(proj.ID, doc)
		case model.ChangeModify:
			existing, ok := next.DocumentByPath(change.Path)
			if !ok {
				continue
			}
			proj, _ := next.ProjectOf(change.Path)
			next = next.WithDocument(proj.ID, existing.WithText(change.Apply(existing.Text)))
		}
	}
	return next
}
