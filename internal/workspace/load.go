package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"csrefactor/internal/model"
)

// loadSolution builds a Solution snapshot by scanning root for .csproj
// files (each becomes a Project) and the .cs source files belonging to each
// (each becomes a Document). If root itself is a .csproj file, the solution
// has exactly one Project. A bare directory with no .csproj files underneath
// is treated as a single implicit project rooted at that directory, so the
// engine also works against a loose folder of source files.
func loadSolution(ctx context.Context, root string) (model.Solution, []string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return model.Solution{}, nil, fmt.Errorf("workspace: stat %s: %w", root, err)
	}

	var projectFiles []string
	if !info.IsDir() && strings.EqualFold(filepath.Ext(root), ".csproj") {
		projectFiles = []string{root}
	} else {
		dir := root
		if !info.IsDir() {
			dir = filepath.Dir(root)
		}
		projectFiles, err = findProjectFiles(ctx, dir)
		if err != nil {
			return model.Solution{}, nil, err
		}
	}

	var diagnostics []string
	var projects []model.Project
	if len(projectFiles) == 0 {
		dir := root
		if !info.IsDir() {
			dir = filepath.Dir(root)
		}
		docs, err := findSourceFiles(ctx, dir, nil)
		if err != nil {
			return model.Solution{}, nil, err
		}
		projects = append(projects, model.Project{
			ID:          dir,
			Name:        filepath.Base(dir),
			FilePath:    dir,
			Documents:   docs,
			LanguageTag: "csharp",
		})
	}

	for _, pf := range projectFiles {
		dir := filepath.Dir(pf)
		exclude := otherProjectDirs(projectFiles, pf)
		docs, err := findSourceFiles(ctx, dir, exclude)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("project %s: %v", pf, err))
			continue
		}
		projects = append(projects, model.Project{
			ID:          pf,
			Name:        strings.TrimSuffix(filepath.Base(pf), filepath.Ext(pf)),
			FilePath:    pf,
			Documents:   docs,
			LanguageTag: "csharp",
		})
	}

	return model.Solution{Projects: projects}, diagnostics, nil
}

func findProjectFiles(ctx context.Context, dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csproj") {
			found = append(found, path)
		}
		return nil
	})
	return found, err
}

// otherProjectDirs returns the directories of every project file other than
// self, so a project's source scan doesn't wander into a sibling project
// that happens to live in a nested directory.
func otherProjectDirs(all []string, self string) []string {
	var dirs []string
	for _, pf := range all {
		if pf == self {
			continue
		}
		dirs = append(dirs, filepath.Dir(pf))
	}
	return dirs
}

func findSourceFiles(ctx context.Context, dir string, excludeDirs []string) ([]model.Document, error) {
	var docs []model.Document
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != dir && isExcluded(path, excludeDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".cs") {
			return nil
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, model.Document{
			ID:   model.DocID(path),
			Name: filepath.Base(path),
			Path: path,
			Text: string(text),
		})
		return nil
	})
	return docs, err
}

func isExcluded(path string, excludeDirs []string) bool {
	for _, d := range excludeDirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
