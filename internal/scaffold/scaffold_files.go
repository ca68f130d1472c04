package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/prompt"
)

type copyOperation struct {
	from string
	to   string
}

var (
	stubOperations = []copyOperation{
		{from: "docker", to: "docker"},
		{from: ".dockerignore", to: ".dockerignore"},
		{from: "cicd/cloudbuild.yaml.stub", to: "cloudbuild.yaml"},
	}
	healthStubOperations = []copyOperation{
		{from: "app/Http/Controllers/HealthCheckController.php", to: "app/Http/Controllers/HealthCheckController.php"},
		{from: "app/Services/HealthCheckService.php", to: "app/Services/HealthCheckService.php"},
	}
)

func (s *Service) targetPath(rel string) string {
	return filepath.Join(s.projectDir, filepath.FromSlash(rel))
}

func pathExists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// copyStub copies one file or directory from the stub set. Directory targets are replaced as a whole.
// A missing source is reported and skipped, an existing target needs force or a confirmed overwrite.
func (s *Service) copyStub(ctx context.Context, op copyOperation, force bool) error {
	info, err := fs.Stat(s.stubs, op.from)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.printer.Warningf("Source not found: %s", op.from)
			return nil
		}
		return fmt.Errorf("stat stub %s: %w", op.from, err)
	}

	target := s.targetPath(op.to)
	exists, err := pathExists(target)
	if err != nil {
		return fmt.Errorf("checking target %s: %w", op.to, err)
	}

	if exists && !force {
		overwrite, err := s.prompter.Confirm(ctx, prompt.ConfirmConfig{
			Message: fmt.Sprintf("Target already exists: %s. Overwrite?", op.to),
			Default: false,
		})
		if err != nil {
			return err
		}
		if !overwrite {
			s.printer.Infof("Skipped: %s", op.to)
			return nil
		}
	}

	if info.IsDir() {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("removing existing directory %s: %w", op.to, err)
		}
		if err := copyDir(s.stubs, op.from, target); err != nil {
			return fmt.Errorf("copying directory %s: %w", op.from, err)
		}
		s.recordCreated(op.to + "/")
		s.printer.Successf("Created: %s/", op.to)
		return nil
	}

	if err := copyFile(s.stubs, op.from, target); err != nil {
		return fmt.Errorf("copying file %s: %w", op.from, err)
	}
	s.recordCreated(op.to)
	s.printer.Successf("Created: %s", op.to)
	return nil
}

func copyDir(fsys fs.FS, root string, target string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		dest := filepath.Join(target, filepath.FromSlash(rel))

		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		return copyFile(fsys, p, dest)
	})
}

func copyFile(fsys fs.FS, source string, target string) error {
	in, err := fsys.Open(path.Clean(source))
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
