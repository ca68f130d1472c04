// Package project inspects a Laravel project to suggest setup defaults.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
)

var (
	frontendDependencies  = []string{"vite", "laravel-vite-plugin", "laravel-mix", "webpack", "@vitejs/plugin-vue", "@vitejs/plugin-react"}
	buildScriptCandidates = []string{"build", "prod", "production"}
	supportedNodeVersions = []string{"18", "20", "22"}

	nodeMajorRegExp = regexp.MustCompile(`\d+`)
)

// Inspection holds what could be learned about a project. Empty fields mean unknown.
type Inspection struct {
	HasPackageJson    bool
	HasFrontend       bool
	PackageManager    string
	BuildScript       string
	NodeVersion       string
	WorkspacePackages []WorkspacePackage
}

func Inspect(projectDir string) (Inspection, error) {
	l := slog.With("context", "project-inspector", "dir", projectDir)

	var inspection Inspection

	root, err := readPackageJson(filepath.Join(projectDir, packageManifestName))
	switch {
	case err == nil:
		inspection.HasPackageJson = true
	case errors.Is(err, fs.ErrNotExist):
		l.Debug("no package.json found")
	default:
		return inspection, err
	}

	packages, err := NewPnpmWorkspace(projectDir).GetWorkspacePackages()
	if err != nil {
		return inspection, fmt.Errorf("listing workspace packages: %w", err)
	}
	inspection.WorkspacePackages = packages

	inspection.PackageManager = detectPackageManager(projectDir)

	if inspection.HasPackageJson {
		inspection.BuildScript = preferredBuildScript(root)
		inspection.NodeVersion = nodeVersion(root)
		inspection.HasFrontend = hasFrontend(root)
	}
	for _, pkg := range packages {
		if hasFrontend(pkg.Manifest) {
			inspection.HasFrontend = true
		}
	}

	l.Debug("project inspected",
		"frontend", inspection.HasFrontend,
		"package_manager", inspection.PackageManager,
		"build_script", inspection.BuildScript,
		"workspace_packages", len(packages),
	)

	return inspection, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func detectPackageManager(projectDir string) string {
	switch {
	case fileExists(filepath.Join(projectDir, "pnpm-lock.yaml")), fileExists(filepath.Join(projectDir, workspaceManifestName)):
		return "pnpm"
	case fileExists(filepath.Join(projectDir, "package-lock.json")):
		return "npm"
	default:
		return ""
	}
}

func hasFrontend(manifest PackageJson) bool {
	for _, dep := range frontendDependencies {
		if _, ok := manifest.Dependencies[dep]; ok {
			return true
		}
		if _, ok := manifest.DevDependencies[dep]; ok {
			return true
		}
	}
	return preferredBuildScript(manifest) != ""
}

func preferredBuildScript(manifest PackageJson) string {
	for _, script := range buildScriptCandidates {
		if _, ok := manifest.Scripts[script]; ok {
			return script
		}
	}
	return ""
}

// nodeVersion picks the first supported major version out of engines.node, e.g. ">=20.0" gives "20".
func nodeVersion(manifest PackageJson) string {
	constraint, ok := manifest.Engines["node"]
	if !ok {
		return ""
	}
	for _, major := range nodeMajorRegExp.FindAllString(constraint, -1) {
		if slices.Contains(supportedNodeVersions, major) {
			return major
		}
	}
	return ""
}
