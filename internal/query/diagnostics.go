package query

import (
	"context"

	"csrefactor/internal/semantic"
)

// Diagnostics returns path's compilation diagnostics, optionally filtered to
// a minimum severity (spec §4.7 "compilation diagnostics filtered by
// severity"). Pass an empty minSeverity to return every diagnostic.
func (e *Engine) Diagnostics(ctx context.Context, path string, minSeverity semantic.Severity) ([]semantic.Diagnostic, error) {
	m, err := e.resolver.ModelFor(ctx, path)
	if err != nil {
		return nil, err
	}
	all := m.Diagnostics()
	if minSeverity == "" {
		return all, nil
	}
	var out []semantic.Diagnostic
	for _, d := range all {
		if severityRank(d.Severity) >= severityRank(minSeverity) {
			out = append(out, d)
		}
	}
	return out, nil
}

func severityRank(s semantic.Severity) int {
	switch s {
	case semantic.SeverityInfo:
		return 0
	case semantic.SeverityWarning:
		return 1
	case semantic.SeverityError:
		return 2
	default:
		return 0
	}
}
