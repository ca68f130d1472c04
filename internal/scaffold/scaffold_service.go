// Package scaffold generates the Docker and Cloud Build files that deploy a Laravel app to Cloud Run.
package scaffold

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/output"
	"github.com/AnotherFullstackDev/spinewire/internal/project"
	"github.com/AnotherFullstackDev/spinewire/internal/prompt"
	"github.com/AnotherFullstackDev/spinewire/internal/render"
)

const totalSteps = 9

type createdFile struct {
	path     string
	modified bool
}

func (f createdFile) String() string {
	if f.modified {
		return f.path + " (modified)"
	}
	return f.path
}

type Result struct {
	Settings     Settings
	CreatedFiles []string
}

type Service struct {
	projectDir string
	stubs      fs.FS
	defaults   config.Defaults
	healthPath string
	prompter   prompt.Prompter
	printer    *output.Printer
	renderer   *render.Renderer
	lookupEnv  func(string) (string, bool)

	inspection   project.Inspection
	createdFiles []createdFile
}

func NewService(projectDir string, stubs fs.FS, cfg *config.Config, prompter prompt.Prompter, printer *output.Printer) *Service {
	return &Service{
		projectDir: projectDir,
		stubs:      stubs,
		defaults:   cfg.Defaults,
		healthPath: orDefault(cfg.Health.Path, lib.DefaultHealthPath),
		prompter:   prompter,
		printer:    printer,
		renderer:   newStubRenderer(),
		lookupEnv:  os.LookupEnv,
	}
}

func (s *Service) recordCreated(path string) {
	s.createdFiles = append(s.createdFiles, createdFile{path: path})
}

func (s *Service) recordModified(path string) {
	s.createdFiles = append(s.createdFiles, createdFile{path: path, modified: true})
}

// Run executes the setup steps in order and stops at the first failing one.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	l := slog.With("context", "scaffold-service", "method", "Run", "dir", s.projectDir)

	s.createdFiles = nil
	s.printer.Header("Spine Wire - Setup")

	s.printer.Step(1, totalSteps, "Gathering configuration")
	inspection, err := project.Inspect(s.projectDir)
	if err != nil {
		return nil, fmt.Errorf("inspecting project: %w", err)
	}
	s.inspection = inspection

	settings, err := s.gather(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("gathering configuration: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	values, err := settings.Values()
	if err != nil {
		return nil, err
	}
	l.Debug("configuration gathered", "project_id", settings.ProjectID, "client", settings.ClientName, "app", settings.AppName)

	s.printer.Step(2, totalSteps, "Confirming configuration")
	if !opts.IgnoreExtras && !opts.Yes {
		proceed, err := s.confirm(ctx, settings)
		if err != nil {
			return nil, err
		}
		if !proceed {
			s.printer.Warningf("Setup cancelled.")
			return nil, fmt.Errorf("%w - setup declined", lib.CancelledError)
		}
	}

	s.printer.Step(3, totalSteps, "Copying deployment files")
	for _, op := range stubOperations {
		if err := s.copyStub(ctx, op, opts.Force); err != nil {
			return nil, err
		}
	}

	s.printer.Step(4, totalSteps, "Rendering templates")
	if err := s.renderTemplates(values); err != nil {
		return nil, err
	}

	s.printer.Step(5, totalSteps, "Copying health check files")
	if err := s.copyHealthStubs(ctx, opts.Force); err != nil {
		return nil, err
	}

	s.printer.Step(6, totalSteps, "Installing health check route")
	if err := s.installHealthRoute(); err != nil {
		return nil, err
	}

	s.printer.Step(7, totalSteps, "Setting executable permissions on scripts")
	if err := s.setScriptPermissions(); err != nil {
		return nil, err
	}

	s.printer.Step(8, totalSteps, "Checking .gitignore")
	if err := s.warnIgnoredFiles(); err != nil {
		return nil, err
	}

	s.printer.Step(9, totalSteps, "Done")
	s.displayNextSteps()

	created := make([]string, 0, len(s.createdFiles))
	for _, file := range s.createdFiles {
		created = append(created, file.String())
	}

	return &Result{Settings: settings, CreatedFiles: created}, nil
}

func (s *Service) displayNextSteps() {
	s.printer.Header("Setup completed successfully!")
	s.printer.Println("Next steps:")
	s.printer.NumberedList([]string{
		"Review the Docker configuration: docker/Dockerfile, docker/Dockerfile.base",
		"Review the Cloud Build configuration: cloudbuild.yaml",
		fmt.Sprintf("Test the health check endpoint locally: curl http://localhost:8000%s", s.healthPath),
		"Authenticate for local development: gcloud auth application-default login",
		"Build the image locally: docker build -f docker/Dockerfile -t myapp:local .",
	})

	if len(s.createdFiles) > 0 {
		s.printer.Blank()
		s.printer.Println("Files and directories created:")
		items := make([]string, 0, len(s.createdFiles))
		for _, file := range s.createdFiles {
			items = append(items, file.String())
		}
		s.printer.List(items)
	}

	s.printer.Blank()
	s.printer.Println("Happy deploying!")
}
