// Package commit implements the Commit Layer of spec §4.4: an all-or-nothing
// multi-file write that diffs a new Solution against the workspace's
// current one, stages every change as a sibling temp file, fsyncs, then
// renames everything into place under one process-wide lock — or aborts
// with no disk change at all.
package commit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"csrefactor/internal/errtax"
	"csrefactor/internal/logging"
	"csrefactor/internal/model"
	"csrefactor/internal/workspace"
)

// Report is the outcome of a successful commit (spec §4.4 contract).
type Report struct {
	FilesModified []string
	FilesCreated  []string
	FilesDeleted  []string
}

// globalLock serializes the swap+rename window across every Workspace in
// the process, per spec §4.4 "Concurrency": "a single global lock around
// the swap+rename window serializes commits."
var globalLock sync.Mutex

// staged tracks one file through the stage-then-rename pipeline: its temp
// path, its eventual final path, whether it's a brand-new file, and (once
// phase 2 reaches it) the aside-path its pre-image was moved to.
type staged struct {
	tempPath   string
	finalPath  string
	isCreate   bool
	backupPath string
}

// Commit diffs next against ws.CurrentSolution(), writes every created or
// modified document to a sibling temp file and fsyncs it, then — only once
// every temp file is durably written — renames them into place in
// deterministic order (creates, then modifies, then deletes), and finally
// swaps ws's snapshot. Any failure before the rename phase unlinks every
// temp file and returns FilesystemError (Cancelled if ctx is done while
// staging) with no change to disk or to the workspace snapshot.
func Commit(ctx context.Context, ws *workspace.Workspace, next model.Solution) (Report, error) {
	globalLock.Lock()
	defer globalLock.Unlock()

	log := logging.Get(logging.CategoryCommit)
	current := ws.CurrentSolution()

	created, modified, deleted := diff(current, next)

	var stagedFiles []staged

	cleanup := func() {
		for _, s := range stagedFiles {
			_ = os.Remove(s.tempPath)
		}
	}

	createdSet := make(map[string]bool, len(created))
	for _, path := range created {
		createdSet[path] = true
	}

	for _, path := range append(append([]string{}, created...), modified...) {
		doc, ok := next.DocumentByPath(path)
		if !ok {
			cleanup()
			return Report{}, errtax.Newf(errtax.CodeFilesystemError, "document %s missing from target snapshot", path)
		}
		if ctx.Err() != nil {
			cleanup()
			return Report{}, errtax.Wrap(errtax.CodeCancelled, "commit cancelled before staging completed", ctx.Err())
		}
		tmp, err := stageFile(doc.Path, doc.Text)
		if err != nil {
			cleanup()
			return Report{}, errtax.Wrap(errtax.CodeFilesystemError, "failed to stage "+doc.Path, err)
		}
		stagedFiles = append(stagedFiles, staged{tempPath: tmp, finalPath: doc.Path, isCreate: createdSet[doc.Path]})
	}

	// Phase 2: all temporaries are durably written. Rename in deterministic
	// order: creates first, then modifies, then deletes. A Modify's
	// pre-image is renamed aside before its temp file takes its place, so a
	// later failure can restore it instead of leaving the new content
	// stranded on disk.
	renamed := make([]staged, 0, len(stagedFiles))
	for _, s := range stagedFiles {
		if !s.isCreate {
			backup, err := backupAside(s.finalPath)
			if err != nil {
				rollbackRenames(renamed)
				cleanup()
				return Report{}, errtax.Wrap(errtax.CodeFilesystemError, "failed to back up "+s.finalPath, err)
			}
			s.backupPath = backup
		}
		if err := os.Rename(s.tempPath, s.finalPath); err != nil {
			if s.backupPath != "" {
				_ = os.Rename(s.backupPath, s.finalPath)
			}
			rollbackRenames(renamed)
			cleanup()
			return Report{}, errtax.Wrap(errtax.CodeFilesystemError, "failed to rename into place: "+s.finalPath, err)
		}
		renamed = append(renamed, s)
	}
	for _, s := range renamed {
		if s.backupPath != "" {
			_ = os.Remove(s.backupPath)
		}
	}
	for _, path := range deleted {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove deleted document", zap.String("path", path), zap.Error(err))
		}
	}

	ws.UpdateSolution(next)
	log.Info("commit succeeded",
		zap.Int("created", len(created)), zap.Int("modified", len(modified)), zap.Int("deleted", len(deleted)))

	return Report{FilesModified: modified, FilesCreated: created, FilesDeleted: deleted}, nil
}

// stageFile writes content to a new sibling temporary file next to path and
// fsyncs it before returning, so the rename phase only ever moves durable
// bytes.
func stageFile(path, content string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpPath := f.Name()
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}

// backupAside reserves a unique sibling name and renames path to it, so its
// pre-image survives a subsequent overwrite and can be restored by
// rollbackRenames. Returns the reserved path. Fails if path is not a
// regular file, so a directory is never moved aside and replaced.
func backupAside(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".bak-*")
	if err != nil {
		return "", err
	}
	backupPath := f.Name()
	f.Close()
	if err := os.Remove(backupPath); err != nil {
		return "", err
	}
	if err := os.Rename(path, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}

// rollbackRenames restores every already-renamed entry to its pre-commit
// state, walking in reverse order: a Modify's pre-image is renamed back
// over the new content, and a Create's new file is removed outright since
// it never had one. Called with the renamed-so-far slice when a later
// rename in the same commit fails, so a partial commit leaves no file on
// disk modified.
func rollbackRenames(renamed []staged) {
	for i := len(renamed) - 1; i >= 0; i-- {
		s := renamed[i]
		if s.backupPath != "" {
			_ = os.Rename(s.backupPath, s.finalPath)
		} else {
			_ = os.Remove(s.finalPath)
		}
	}
}

// diff computes the created/modified/deleted path sets between a previous
// and next Solution snapshot (spec §4.4 step 1).
func diff(prev, next model.Solution) (created, modified, deleted []string) {
	prevDocs := map[string]model.Document{}
	for _, d := range prev.AllDocuments() {
		prevDocs[d.Path] = d
	}
	nextDocs := map[string]model.Document{}
	for _, d := range next.AllDocuments() {
		nextDocs[d.Path] = d
	}

	for path, nd := range nextDocs {
		if pd, ok := prevDocs[path]; ok {
			if pd.Text != nd.Text {
				modified = append(modified, path)
			}
		} else {
			created = append(created, path)
		}
	}
	for path := range prevDocs {
		if _, ok := nextDocs[path]; !ok {
			deleted = append(deleted, path)
		}
	}

	sort.Strings(created)
	sort.Strings(modified)
	sort.Strings(deleted)
	return created, modified, deleted
}

