package gcp

import (
	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/spf13/cobra"
)

func NewGcpCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var env string

	gcpCmd := &cobra.Command{
		Use:   "gcp",
		Short: "Work with the Google Cloud services used by the app",
	}

	gcpCmd.PersistentFlags().StringVar(&env, "env", "", "Config environment to apply")

	gcpCmd.AddCommand(newStorageCmd(locator, &env))
	gcpCmd.AddCommand(newPubSubCmd(locator, &env))
	gcpCmd.AddCommand(newJobCmd(locator, &env))

	return gcpCmd
}
