package query

import (
	"context"

	"csrefactor/internal/model"
)

// ControlFlowSummary answers spec §4.7's "control-flow summary (start/end
// reachable, return/exit statements)" for a selected span.
type ControlFlowSummary struct {
	StartReachable bool
	EndReachable   bool
	ReturnCount    int
	ExitCount      int // break/continue/goto that would escape the span
}

// ControlFlow analyzes selection within the document at path.
func (e *Engine) ControlFlow(ctx context.Context, path string, selection model.Span) (ControlFlowSummary, error) {
	m, err := e.resolver.ModelFor(ctx, path)
	if err != nil {
		return ControlFlowSummary{}, err
	}
	df := m.AnalyzeSpan(selection)
	summary := ControlFlowSummary{
		StartReachable: true,
		EndReachable:   df.ExitPointCount == 0 && !df.Unresolvable,
		ReturnCount:    df.ExitPointCount,
	}
	if df.Unresolvable {
		summary.ExitCount = 1
	}
	return summary, nil
}

// DataFlowSummary is spec §4.7's "data-flow summary (read inside, written
// inside, flows in, flows out, captured)". ReadInside/WrittenInside are an
// independent tally of names touched anywhere in the selection; FlowsIn/
// FlowsOut are the narrower subset that actually crosses the selection's
// boundary (declared outside it).
type DataFlowSummary struct {
	ReadInside    []string
	WrittenInside []string
	FlowsIn       []string
	FlowsOut      []string
	Captured      []string
}

// DataFlow analyzes selection within the document at path, reusing the
// same semantic.Model.AnalyzeSpan Extract-Method's data-flow step relies on.
func (e *Engine) DataFlow(ctx context.Context, path string, selection model.Span) (DataFlowSummary, error) {
	m, err := e.resolver.ModelFor(ctx, path)
	if err != nil {
		return DataFlowSummary{}, err
	}
	df := m.AnalyzeSpan(selection)
	summary := DataFlowSummary{}
	for _, v := range df.Variables {
		if v.ReadInside {
			summary.ReadInside = append(summary.ReadInside, v.Name)
		}
		if v.WrittenInside {
			summary.WrittenInside = append(summary.WrittenInside, v.Name)
		}
		if v.FlowsIn {
			summary.FlowsIn = append(summary.FlowsIn, v.Name)
		}
		if v.FlowsOut {
			summary.FlowsOut = append(summary.FlowsOut, v.Name)
		}
		if v.Captured {
			summary.Captured = append(summary.Captured, v.Name)
		}
	}
	return summary, nil
}
