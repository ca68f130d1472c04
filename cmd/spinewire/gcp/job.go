package gcp

import (
	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/spf13/cobra"
)

func newJobCmd(locator *factories.SharedServicesLocator, env *string) *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Run Cloud Run jobs",
	}

	jobCmd.AddCommand(newJobRunCmd(locator, env))

	return jobCmd
}

func newJobRunCmd(locator *factories.SharedServicesLocator, env *string) *cobra.Command {
	var wait bool
	var region string

	cmd := &cobra.Command{
		Use:   "run [name] -- [args...]",
		Short: "Execute a Cloud Run job, optionally overriding the container arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}
			if region != "" {
				serviceFactory.Config().CloudRun.Region = region
			}

			runner, err := serviceFactory.NewJobsRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			execution, err := runner.RunJob(cmd.Context(), args[0], wait, args[1:]...)
			if err != nil {
				return err
			}

			if wait {
				locator.Printer.Successf("Job %s finished: %s", args[0], execution)
			} else {
				locator.Printer.Successf("Job %s started: %s", args[0], execution)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the execution to finish")
	cmd.Flags().StringVar(&region, "region", "", "Cloud Run region, defaults to cloud_run.region")
	return cmd
}
