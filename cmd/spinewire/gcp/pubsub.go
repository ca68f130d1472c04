package gcp

import (
	"fmt"
	"io"

	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/spf13/cobra"
)

func newPubSubCmd(locator *factories.SharedServicesLocator, env *string) *cobra.Command {
	pubsubCmd := &cobra.Command{
		Use:   "pubsub",
		Short: "Publish messages to Pub/Sub topics",
	}

	pubsubCmd.AddCommand(newPublishCmd(locator, env))

	return pubsubCmd
}

func newPublishCmd(locator *factories.SharedServicesLocator, env *string) *cobra.Command {
	var attributes map[string]string

	cmd := &cobra.Command{
		Use:   "publish [topic] [data]",
		Short: "Publish a message, - reads the data from stdin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := []byte(args[1])
			if args[1] == "-" {
				var err error
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading message from stdin: %w", err)
				}
			}

			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			publisher, err := serviceFactory.NewPublisher(cmd.Context())
			if err != nil {
				return err
			}
			defer publisher.Close()

			serverID, err := publisher.Publish(cmd.Context(), args[0], data, attributes)
			if err != nil {
				return err
			}

			locator.Printer.Successf("Published message %s to %s", serverID, serviceFactory.Config().Topic(args[0]))
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&attributes, "attr", nil, "Message attribute as key=value, repeatable")
	return cmd
}
