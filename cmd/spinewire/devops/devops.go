package devops

import (
	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/spf13/cobra"
)

func NewDevopsCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	devopsCmd := &cobra.Command{
		Use:   "devops",
		Short: "Generate deployment files for Google Cloud Run",
	}

	devopsCmd.AddCommand(newSetupCmd(locator))

	return devopsCmd
}
