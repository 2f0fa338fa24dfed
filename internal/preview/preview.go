// Package preview renders an EditSet into the human-readable pending
// changes a preview-mode Result carries (spec §3 "Result": "on preview, an
// ordered list of pending changes with human-readable description and
// before/after snippets"), using internal/diff to produce the snippets.
package preview

import (
	"fmt"

	"csrefactor/internal/diff"
	"csrefactor/internal/model"
)

// Render converts editSet into one PendingChange per DocumentChange,
// resolving each change's pre-image from sol (the snapshot the edit set was
// computed against) and its post-image by applying the change.
func Render(sol model.Solution, editSet model.EditSet) []model.PendingChange {
	changes := editSet.SortedByPathAscending()
	out := make([]model.PendingChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, renderOne(sol, c))
	}
	return out
}

func renderOne(sol model.Solution, c model.DocumentChange) model.PendingChange {
	switch c.Kind {
	case model.ChangeCreate:
		return model.PendingChange{
			Kind:        c.Kind,
			Path:        c.Path,
			Description: fmt.Sprintf("create %s", c.Path),
			Before:      "",
			After:       c.Apply(""),
		}
	case model.ChangeDelete:
		doc, _ := sol.DocumentByPath(c.Path)
		return model.PendingChange{
			Kind:        c.Kind,
			Path:        c.Path,
			Description: fmt.Sprintf("delete %s", c.Path),
			Before:      doc.Text,
			After:       "",
		}
	default:
		doc, _ := sol.DocumentByPath(c.Path)
		after := c.Apply(doc.Text)
		fileDiff := diff.ComputeDiff(c.Path, c.Path, doc.Text, after)
		return model.PendingChange{
			Kind:        c.Kind,
			Path:        c.Path,
			Description: describeHunks(c.Path, fileDiff),
			Before:      doc.Text,
			After:       after,
		}
	}
}

func describeHunks(path string, fd *diff.FileDiff) string {
	if fd == nil || len(fd.Hunks) == 0 {
		return fmt.Sprintf("modify %s (no textual change)", path)
	}
	return fmt.Sprintf("modify %s (%d hunk(s))", path, len(fd.Hunks))
}
