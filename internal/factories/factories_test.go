package factories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/gcp"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/output"
	"github.com/AnotherFullstackDev/spinewire/internal/placeholders"
	"github.com/AnotherFullstackDev/spinewire/internal/prompt"
	"github.com/stretchr/testify/require"
)

const factoryConfigYAML = `
defaults:
  app_name: '{{ project.dir }}'
storage:
  disks:
    gcs:
      bucket: 'acme-uploads'
environments:
  staging:
    stubs_path: './missing-stubs'
    storage:
      disks:
        gcs:
          bucket: ''
`

func newTestLocator(t *testing.T) *SharedServicesLocator {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "acme-api")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lib.ConfigFileName), []byte(factoryConfigYAML), 0o644))

	cfg, err := config.LoadProjectConfig(dir)
	require.NoError(t, err)

	return NewSharedServicesLocator(cfg, dir, output.NewPrinter(os.Stdout, os.Stderr), prompt.NewScripted(), placeholders.NewService(dir, nil))
}

func TestServiceFactory(t *testing.T) {
	r := require.New(t)

	t.Run("should resolve dynamic config values", func(t *testing.T) {
		f, err := NewServiceFactory("", newTestLocator(t))
		r.NoError(err)
		r.Equal("acme-api", f.Config().Defaults.AppName)
	})

	t.Run("should apply the environment overlay", func(t *testing.T) {
		locator := newTestLocator(t)
		f, err := NewServiceFactory("staging", locator)
		r.NoError(err)
		r.Equal("staging", f.Config().Environment)
		r.Empty(locator.Config.Environment)

		_, err = f.NewScaffoldService()
		r.ErrorIs(err, lib.BadUserInputError)

		_, err = f.NewDisk(t.Context(), "gcs")
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("should reject unknown environments", func(t *testing.T) {
		_, err := NewServiceFactory("qa", newTestLocator(t))
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("should build the scaffold service from embedded stubs", func(t *testing.T) {
		f, err := NewServiceFactory("", newTestLocator(t))
		r.NoError(err)

		svc, err := f.NewScaffoldService()
		r.NoError(err)
		r.NotNil(svc)
	})

	t.Run("should build the health service from the environment", func(t *testing.T) {
		f, err := NewServiceFactory("", newTestLocator(t))
		r.NoError(err)

		f.env = gcp.Environment{
			LookupEnv: func(key string) (string, bool) {
				env := map[string]string{
					lib.AppEnvEnv:          "production",
					lib.GceMetadataHostEnv: "127.0.0.1:1",
				}
				v, ok := env[key]
				return v, ok
			},
			Stat: os.Stat,
		}

		report := f.NewHealthService().Check(t.Context(), false)
		r.Equal("acme-api", report.Service)
		r.Equal("production", report.Environment)
		r.Equal("not_configured", report.Database.Status)
	})
}
