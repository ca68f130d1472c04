package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AnotherFullstackDev/spinewire/internal/factories"
	"github.com/AnotherFullstackDev/spinewire/internal/health"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/spf13/cobra"
)

func NewHealthCmd(locator *factories.SharedServicesLocator) *cobra.Command {
	var env string

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check the database and Google Cloud credentials",
	}

	healthCmd.PersistentFlags().StringVar(&env, "env", "", "Config environment to apply")

	healthCmd.AddCommand(newServeCmd(locator, &env))
	healthCmd.AddCommand(newCheckCmd(locator, &env))

	return healthCmd
}

// listenAddr honors PORT, which Cloud Run sets for every container.
func listenAddr(configured string) string {
	if port, ok := os.LookupEnv(lib.PortEnv); ok && port != "" {
		return ":" + port
	}
	if configured == "" {
		return lib.DefaultHealthAddr
	}
	return configured
}

func newServeCmd(locator *factories.SharedServicesLocator, env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the health endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			cfg := serviceFactory.Config()
			server := &http.Server{
				Addr:              listenAddr(cfg.Health.Addr),
				Handler:           health.NewRouter(serviceFactory.NewHealthService(), cfg.Health.Path, cfg.Health.Detailed),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			slog.InfoContext(ctx, "serving health endpoint", "addr", server.Addr, "path", cfg.Health.Path)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving health endpoint: %w", err)
			}
			return nil
		},
	}
}

func newCheckCmd(locator *factories.SharedServicesLocator, env *string) *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Print one health report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serviceFactory, err := factories.NewServiceFactory(*env, locator)
			if err != nil {
				return err
			}

			report := serviceFactory.NewHealthService().Check(cmd.Context(), detailed || serviceFactory.Config().Health.Detailed)

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				return fmt.Errorf("writing health report: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include error messages and the project ID")
	return cmd
}
