package lib

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

func PathMatchesOneOfPatterns(path string, patterns []string) (bool, error) {
	if path == "" {
		path = "."
	}

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, fmt.Errorf("match pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

// FindFiles returns slash-separated paths relative to root of regular files matching one of patterns.
func FindFiles(root string, patterns ...string) ([]string, error) {
	var found []string

	walkErr := filepath.WalkDir(root, func(absPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == "vendor" || d.Name() == "node_modules" {
				return fs.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, absPath)
		if err != nil {
			return fmt.Errorf("get relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		ok, err := PathMatchesOneOfPatterns(relPath, patterns)
		if err != nil {
			return err
		}
		if ok {
			found = append(found, relPath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	return found, nil
}
