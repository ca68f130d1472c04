package devops

import (
	"log/slog"

	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/AnotherFullstackDev/spinewire/internal/scaffold"
	"github.com/spf13/cobra"
)

func newSetupCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var opts scaffold.Options
	var env string

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Set up Docker, Cloud Build and health check files for Cloud Run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(env, locator)
			if err != nil {
				return err
			}

			scaffoldSvc, err := serviceFactory.NewScaffoldService()
			if err != nil {
				return err
			}

			result, err := scaffoldSvc.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			slog.Debug("setup finished", "files", len(result.CreatedFiles), "project_id", result.Settings.ProjectID)
			return nil
		},
	}

	flags := setupCmd.Flags()
	flags.StringVar(&opts.ProjectID, "project-id", "", "GCP project ID")
	flags.StringVar(&opts.Region, "region", "", "GCP region")
	flags.StringVar(&opts.ClientName, "client-name", "", "Client name, used as the Artifact Registry repository")
	flags.StringVar(&opts.AppName, "app-name", "", "Application name")
	flags.StringVar(&opts.NpmBuildScript, "npm-build-script", "", "npm script that builds the frontend")
	flags.BoolVar(&opts.Force, "force", false, "Overwrite existing files without asking")
	flags.BoolVar(&opts.IgnoreExtras, "ignore-extras", false, "Use config defaults for the Docker extras and skip the confirmation")
	flags.BoolVar(&opts.Yes, "yes", false, "Skip the final confirmation")
	flags.StringVar(&env, "env", "", "Config environment to apply")

	return setupCmd
}
