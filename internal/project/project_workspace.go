package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	ignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"
)

const (
	packageManifestName   = "package.json"
	workspaceManifestName = "pnpm-workspace.yaml"
)

type PackageJson struct {
	Name            string            `json:"name"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Engines         map[string]string `json:"engines"`
}

type WorkspacePackage struct {
	Path         string
	Manifest     PackageJson
	ManifestPath string
}

type WorkspaceManifest struct {
	Packages []string `yaml:"packages"`
}

// PnpmWorkspace lists the packages of a pnpm workspace, e.g. a Laravel app with a separate admin frontend.
type PnpmWorkspace struct {
	root string
}

func NewPnpmWorkspace(root string) *PnpmWorkspace {
	return &PnpmWorkspace{root}
}

func readPackageJson(path string) (PackageJson, error) {
	var manifest PackageJson

	content, err := os.ReadFile(path)
	if err != nil {
		return manifest, err
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return manifest, fmt.Errorf("unmarshal package manifest %s: %w", path, err)
	}

	return manifest, nil
}

// GetWorkspacePackages returns nil without error when the project has no pnpm-workspace.yaml.
func (p *PnpmWorkspace) GetWorkspacePackages() ([]WorkspacePackage, error) {
	root := filepath.Clean(p.root)

	workspace, err := p.getWorkspaceManifest()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workspace manifest: %w", err)
	}

	include, exclude := p.splitWorkspacePackagesPatterns(workspace.Packages)

	gitIgnore, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("compile gitignore: %w", err)
	}

	matches := make(map[string]WorkspacePackage, len(include))

	walkErr := filepath.WalkDir(root, func(absPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, absPath)
		if err != nil {
			return fmt.Errorf("get relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		switch {
		case relPath == ".git" || strings.HasPrefix(relPath, ".git/"):
			return fs.SkipDir
		case d.Name() == "node_modules" || d.Name() == "vendor":
			return fs.SkipDir
		}

		if relPath != "." && gitIgnore != nil && (gitIgnore.MatchesPath(relPath) || gitIgnore.MatchesPath(relPath+"/")) {
			return fs.SkipDir
		}

		matchesIncludes, err := lib.PathMatchesOneOfPatterns(relPath, include)
		if err != nil {
			return fmt.Errorf("matching include patterns: %w", err)
		}
		if !matchesIncludes {
			return nil
		}

		matchesExcludes, err := lib.PathMatchesOneOfPatterns(relPath, exclude)
		if err != nil {
			return fmt.Errorf("matching exclude patterns: %w", err)
		}
		if matchesExcludes {
			return nil
		}

		manifest, err := readPackageJson(filepath.Join(absPath, packageManifestName))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}

		matches[relPath] = WorkspacePackage{
			Path:         relPath,
			Manifest:     manifest,
			ManifestPath: filepath.ToSlash(filepath.Join(relPath, packageManifestName)),
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk workspace packages: %w", walkErr)
	}

	packages := make([]WorkspacePackage, 0, len(matches))
	for _, workspacePackage := range matches {
		packages = append(packages, workspacePackage)
	}
	slices.SortFunc(packages, func(a, b WorkspacePackage) int {
		return strings.Compare(a.Path, b.Path)
	})

	return packages, nil
}

func (p *PnpmWorkspace) getWorkspaceManifest() (WorkspaceManifest, error) {
	l := slog.With("context", "pnpm-workspace", "method", "getWorkspaceManifest")

	var manifest WorkspaceManifest

	manifestPath := filepath.Join(filepath.Clean(p.root), workspaceManifestName)
	l.Debug("loading manifest", "path", manifestPath)

	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return manifest, err
	}

	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return manifest, fmt.Errorf("parsing %s: %w", manifestPath, err)
	}

	if len(manifest.Packages) == 0 {
		return manifest, fmt.Errorf("%w - no packages found in %s", lib.BadUserInputError, manifestPath)
	}

	return manifest, nil
}

func (p *PnpmWorkspace) splitWorkspacePackagesPatterns(patterns []string) (includePatterns, excludePatterns []string) {
	for _, pattern := range patterns {
		p := strings.TrimSpace(pattern)
		if p == "" {
			continue
		}

		negative := strings.HasPrefix(p, "!")
		if negative {
			p = strings.TrimSpace(strings.TrimPrefix(p, "!"))
		}

		p = strings.TrimSpace(strings.TrimPrefix(p, "./"))
		p = filepath.ToSlash(p)

		if negative {
			excludePatterns = append(excludePatterns, p)
		} else {
			includePatterns = append(includePatterns, p)
		}
	}

	return includePatterns, excludePatterns
}
