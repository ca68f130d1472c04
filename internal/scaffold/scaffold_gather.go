package scaffold

import (
	"context"
	"fmt"
	"slices"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/output"
	"github.com/AnotherFullstackDev/spinewire/internal/prompt"
)

// valueOrAsk returns the flag value when set, otherwise asks. Flag values go through the same validator as answers.
func (s *Service) valueOrAsk(ctx context.Context, flagValue string, cfg prompt.InputConfig) (string, error) {
	if flagValue == "" {
		return s.prompter.Input(ctx, cfg)
	}

	if cfg.Validator != nil {
		if err := cfg.Validator(flagValue); err != nil {
			return "", err
		}
	}
	s.printer.Successf("%s: %s", cfg.Message, flagValue)
	return flagValue, nil
}

func validateClientName(value string) error {
	if lib.SanitizeClientName(value) == "" {
		return fmt.Errorf("%w - client name is required and must contain letters or digits", lib.BadUserInputError)
	}
	return nil
}

func validateAppName(value string) error {
	if lib.Slug(value) == "" {
		return fmt.Errorf("%w - application name must contain letters or digits", lib.BadUserInputError)
	}
	return nil
}

func (s *Service) gather(ctx context.Context, opts Options) (Settings, error) {
	var settings Settings

	projectID, err := s.gatherProjectID(ctx, opts)
	if err != nil {
		return settings, err
	}
	settings.ProjectID = projectID

	clientNameInput, err := s.valueOrAsk(ctx, opts.ClientName, prompt.InputConfig{
		Message:   "Client name (e.g., mycompany, acme)",
		Help:      "Names the Artifact Registry repository; lowercase letters, digits and dashes are kept.",
		Validator: validateClientName,
	})
	if err != nil {
		return settings, err
	}
	settings.ClientName = lib.SanitizeClientName(clientNameInput)
	if settings.ClientName != clientNameInput {
		s.printer.Infof("Client name sanitized to: %s", settings.ClientName)
	}

	settings.GcpRegion, err = s.valueOrAsk(ctx, opts.Region, prompt.InputConfig{
		Message: "GCP Region",
		Default: s.defaults.GcpRegion,
		Help:    "Region of Cloud Run and Artifact Registry, for example europe-west1.",
	})
	if err != nil {
		return settings, err
	}

	appNameInput, err := s.valueOrAsk(ctx, opts.AppName, prompt.InputConfig{
		Message:   "Application name",
		Default:   s.defaults.AppName,
		Help:      "Used as the Cloud Run service and image name.",
		Validator: validateAppName,
	})
	if err != nil {
		return settings, err
	}
	settings.AppName = lib.Slug(appNameInput)
	if settings.AppName != appNameInput {
		s.printer.Infof("App name sanitized to: %s", settings.AppName)
	}

	if opts.IgnoreExtras {
		s.applyDefaultExtras(&settings, opts)
		s.printer.Successf("Docker configuration: using defaults (--ignore-extras)")
		return settings, nil
	}

	if err := s.askExtras(ctx, &settings, opts); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s *Service) gatherProjectID(ctx context.Context, opts Options) (string, error) {
	projectID := opts.ProjectID
	switch {
	case projectID != "":
		s.printer.Successf("GCP Project ID: %s", projectID)
	default:
		if envProjectID, ok := s.lookupEnv(lib.GoogleCloudProjectEnv); ok && envProjectID != "" {
			projectID = envProjectID
			s.printer.Successf("GCP Project ID (from %s): %s", lib.GoogleCloudProjectEnv, projectID)
			break
		}

		answer, err := s.prompter.Input(ctx, prompt.InputConfig{Message: "GCP Project ID (required)"})
		if err != nil {
			return "", err
		}
		projectID = answer
	}

	if projectID == "" {
		return "", fmt.Errorf("%w - GCP Project ID is required", lib.BadUserInputError)
	}
	return projectID, nil
}

func (s *Service) applyDefaultExtras(settings *Settings, opts Options) {
	settings.EnableFrontend = s.defaults.EnableFrontend
	settings.EnableImagick = s.defaults.EnableImagick
	settings.EnableRedis = s.defaults.EnableRedis

	if settings.EnableFrontend {
		settings.NodeVersion = s.defaults.NodeVersion
		settings.PackageManager = s.defaults.PackageManager
		settings.NpmBuildScript = orDefault(opts.NpmBuildScript, s.defaults.NpmBuildScript)
	}
}

// askExtras asks for Docker features. Answers found by project inspection take precedence over config defaults.
func (s *Service) askExtras(ctx context.Context, settings *Settings, opts Options) error {
	s.printer.Header("Docker Configuration")

	var err error
	settings.EnableFrontend, err = s.prompter.Confirm(ctx, prompt.ConfirmConfig{
		Message: "Does your project need Node.js for frontend asset compilation? (Vite, Mix, etc.)",
		Default: s.defaults.EnableFrontend || s.inspection.HasFrontend,
	})
	if err != nil {
		return err
	}

	if settings.EnableFrontend {
		nodeVersion := orDefault(s.inspection.NodeVersion, s.defaults.NodeVersion)
		idx, err := s.prompter.Select(ctx, prompt.SelectConfig{
			Message:      "Node.js version",
			Options:      NodeVersions,
			DefaultIndex: max(slices.Index(NodeVersions, nodeVersion), 0),
		})
		if err != nil {
			return err
		}
		settings.NodeVersion = NodeVersions[idx]

		packageManager := orDefault(s.inspection.PackageManager, s.defaults.PackageManager)
		idx, err = s.prompter.Select(ctx, prompt.SelectConfig{
			Message:      "Package manager",
			Options:      PackageManagers,
			DefaultIndex: max(slices.Index(PackageManagers, packageManager), 0),
		})
		if err != nil {
			return err
		}
		settings.PackageManager = PackageManagers[idx]

		settings.NpmBuildScript, err = s.valueOrAsk(ctx, opts.NpmBuildScript, prompt.InputConfig{
			Message: "NPM build script (check your package.json: build, prod, etc.)",
			Default: orDefault(s.inspection.BuildScript, s.defaults.NpmBuildScript),
		})
		if err != nil {
			return err
		}
	}

	settings.EnableImagick, err = s.prompter.Confirm(ctx, prompt.ConfirmConfig{
		Message: "Enable ImageMagick for image processing? (imagick extension)",
		Default: s.defaults.EnableImagick,
	})
	if err != nil {
		return err
	}

	settings.EnableRedis, err = s.prompter.Confirm(ctx, prompt.ConfirmConfig{
		Message: "Enable Redis PHP extension?",
		Default: s.defaults.EnableRedis,
	})
	return err
}

func (s *Service) confirm(ctx context.Context, settings Settings) (bool, error) {
	s.printer.Header("Configuration Summary")
	s.printer.Table([]string{"Setting", "Value"}, [][]string{
		{"GCP Project ID", settings.ProjectID},
		{"Client Name", settings.ClientName},
		{"GCP Region", settings.GcpRegion},
		{"App Name", settings.AppName},
	})
	s.printer.Blank()
	s.printer.Table([]string{"Docker Features", "Enabled"}, [][]string{
		{"Frontend Build Tools", output.YesNo(settings.EnableFrontend)},
		{"ImageMagick", output.YesNo(settings.EnableImagick)},
		{"Redis Extension", output.YesNo(settings.EnableRedis)},
	})
	s.printer.Blank()

	return s.prompter.Confirm(ctx, prompt.ConfirmConfig{Message: "Proceed with this configuration?", Default: true})
}
