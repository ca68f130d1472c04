package gcp

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/spf13/cobra"
)

const defaultDisk = "gcs"

func newStorageCmd(locator *factories.SharedServicesLocator, env *string) *cobra.Command {
	var disk string

	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Read, write and sign objects on a configured storage disk",
	}

	storageCmd.PersistentFlags().StringVar(&disk, "disk", defaultDisk, "Storage disk from the config")

	storageCmd.AddCommand(
		newStorageURLCmd(locator, env, &disk),
		newStorageTempURLCmd(locator, env, &disk),
		newStorageUploadURLCmd(locator, env, &disk),
		newStoragePutCmd(locator, env, &disk),
		newStorageGetCmd(locator, env, &disk),
		newStorageDeleteCmd(locator, env, &disk),
		newStorageExistsCmd(locator, env, &disk),
	)

	return storageCmd
}

func newStorageURLCmd(locator *factories.SharedServicesLocator, env, disk *string) *cobra.Command {
	return &cobra.Command{
		Use:   "url [path]",
		Short: "Print the public URL of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			d, err := serviceFactory.NewDisk(cmd.Context(), *disk)
			if err != nil {
				return err
			}
			defer d.Close()

			locator.Printer.Println(d.URL(args[0]))
			return nil
		},
	}
}

func newStorageTempURLCmd(locator *factories.SharedServicesLocator, env, disk *string) *cobra.Command {
	var expires time.Duration

	cmd := &cobra.Command{
		Use:   "temp-url [path]",
		Short: "Print a signed download URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			d, err := serviceFactory.NewDisk(cmd.Context(), *disk)
			if err != nil {
				return err
			}
			defer d.Close()

			u, err := d.TemporaryURL(cmd.Context(), args[0], time.Now().Add(expires))
			if err != nil {
				return err
			}

			locator.Printer.Println(u)
			return nil
		},
	}

	cmd.Flags().DurationVar(&expires, "expires", 15*time.Minute, "URL lifetime")
	return cmd
}

func newStorageUploadURLCmd(locator *factories.SharedServicesLocator, env, disk *string) *cobra.Command {
	var expires time.Duration
	var contentType string

	cmd := &cobra.Command{
		Use:   "upload-url [path]",
		Short: "Print a signed upload URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			d, err := serviceFactory.NewDisk(cmd.Context(), *disk)
			if err != nil {
				return err
			}
			defer d.Close()

			u, err := d.TemporaryUploadURL(cmd.Context(), args[0], time.Now().Add(expires), contentType)
			if err != nil {
				return err
			}

			locator.Printer.Println(u)
			return nil
		},
	}

	cmd.Flags().DurationVar(&expires, "expires", 15*time.Minute, "URL lifetime")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type the upload must use")
	return cmd
}

func newStoragePutCmd(locator *factories.SharedServicesLocator, env, disk *string) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "put [local file] [path]",
		Short: "Upload a local file, - reads stdin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()
				src = f
			}

			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			d, err := serviceFactory.NewDisk(cmd.Context(), *disk)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Put(cmd.Context(), args[1], src, contentType); err != nil {
				return err
			}

			locator.Printer.Successf("Uploaded %s", d.URL(args[1]))
			return nil
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "Object content type")
	return cmd
}

func newStorageGetCmd(locator *factories.SharedServicesLocator, env, disk *string) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "get [path]",
		Short: "Download an object to stdout or a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			d, err := serviceFactory.NewDisk(cmd.Context(), *disk)
			if err != nil {
				return err
			}
			defer d.Close()

			r, err := d.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			dst := cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outputPath, err)
				}
				defer f.Close()
				dst = f
			}

			if _, err := io.Copy(dst, r); err != nil {
				return fmt.Errorf("downloading %s: %w", args[0], err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newStorageDeleteCmd(locator *factories.SharedServicesLocator, env, disk *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [path]",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			d, err := serviceFactory.NewDisk(cmd.Context(), *disk)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			locator.Printer.Successf("Deleted %s", args[0])
			return nil
		},
	}
}

func newStorageExistsCmd(locator *factories.SharedServicesLocator, env, disk *string) *cobra.Command {
	return &cobra.Command{
		Use:   "exists [path]",
		Short: "Report whether an object exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			d, err := serviceFactory.NewDisk(cmd.Context(), *disk)
			if err != nil {
				return err
			}
			defer d.Close()

			exists, err := d.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			locator.Printer.Println(exists)
			return nil
		},
	}
}
