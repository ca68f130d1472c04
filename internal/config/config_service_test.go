package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/stretchr/testify/require"
)

func configToReader(config string) io.Reader {
	return io.NopCloser(strings.NewReader(config))
}

const configYAML = `
defaults:
  gcp_region: 'us-central1'
  app_name: 'api'
  enable_frontend: true
  package_manager: 'npm'
storage:
  disks:
    gcs:
      bucket: 'acme-uploads'
      path_prefix: 'tenants'
pubsub:
  topics:
    orders: 'orders-v1'
logging:
  log_name: 'acme-api'
environments:
  staging:
    defaults:
      gcp_region: 'europe-west4'
      enable_redis: true
    storage:
      disks:
        gcs:
          bucket: 'acme-uploads-staging'
`

type staticResolver map[string]string

func (s staticResolver) ResolveValues(values map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case string:
			if replacement, ok := s[v]; ok {
				resolved[key] = replacement
				continue
			}
			resolved[key] = v
		case map[string]any:
			nested, err := s.ResolveValues(v)
			if err != nil {
				return nil, err
			}
			resolved[key] = nested
		default:
			resolved[key] = value
		}
	}
	return resolved, nil
}

func TestConfig(t *testing.T) {
	r := require.New(t)

	t.Run("must parse config", func(t *testing.T) {
		cfg, err := NewConfigFromReader(configToReader(configYAML))
		r.NoError(err)
		r.Equal("us-central1", cfg.Defaults.GcpRegion)
		r.Equal("api", cfg.Defaults.AppName)
		r.True(cfg.Defaults.EnableFrontend)
		r.Equal("npm", cfg.Defaults.PackageManager)
		r.Equal("acme-uploads", cfg.Storage.Disks["gcs"].Bucket)
		r.Equal("acme-api", cfg.Logging.LogName)
		r.Contains(cfg.Environments, "staging")
	})

	t.Run("must fill defaults", func(t *testing.T) {
		cfg, err := NewConfigFromReader(configToReader("stubs_path: './stubs'\n"))
		r.NoError(err)
		r.Equal(lib.DefaultGcpRegion, cfg.Defaults.GcpRegion)
		r.Equal(lib.DefaultAppName, cfg.Defaults.AppName)
		r.Equal(lib.DefaultNodeVersion, cfg.Defaults.NodeVersion)
		r.Equal(lib.DefaultPackageManager, cfg.Defaults.PackageManager)
		r.Equal(lib.DefaultNpmBuildScript, cfg.Defaults.NpmBuildScript)
		r.Equal(lib.DefaultHealthPath, cfg.Health.Path)
		r.Equal(lib.DefaultHealthAddr, cfg.Health.Addr)
		r.Equal("info", cfg.Logging.Level)
		r.Equal("./stubs", cfg.StubsPath)
		r.False(cfg.Defaults.EnableRedis)
	})

	t.Run("must parse config with environment", func(t *testing.T) {
		cfg, err := NewConfigFromReader(configToReader(configYAML))
		r.NoError(err)

		cfgWithEnv, err := cfg.WithEnvironment("staging")
		r.NoError(err)

		r.Equal("staging", cfgWithEnv.Environment)
		r.Equal("europe-west4", cfgWithEnv.Defaults.GcpRegion)
		r.True(cfgWithEnv.Defaults.EnableRedis)
		r.Equal("api", cfgWithEnv.Defaults.AppName)
		r.Equal("acme-uploads-staging", cfgWithEnv.Storage.Disks["gcs"].Bucket)
		r.Equal("tenants", cfgWithEnv.Storage.Disks["gcs"].PathPrefix)

		r.Equal("us-central1", cfg.Defaults.GcpRegion)
		r.Equal("acme-uploads", cfg.Storage.Disks["gcs"].Bucket)
		r.Empty(cfg.Environment)
	})

	t.Run("must return same config for empty environment", func(t *testing.T) {
		cfg, err := NewConfigFromReader(configToReader(configYAML))
		r.NoError(err)

		same, err := cfg.WithEnvironment("")
		r.NoError(err)
		r.Same(cfg, same)
	})

	t.Run("must reject unknown environment", func(t *testing.T) {
		cfg, err := NewConfigFromReader(configToReader(configYAML))
		r.NoError(err)

		_, err = cfg.WithEnvironment("production")
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("must resolve dynamic values", func(t *testing.T) {
		cfg, err := NewConfigFromReader(configToReader("defaults:\n  app_name: '{{ project.dir }}'\n"))
		r.NoError(err)

		resolved, err := cfg.WithResolvedValues(staticResolver{"{{ project.dir }}": "acme-api"})
		r.NoError(err)
		r.Equal("acme-api", resolved.Defaults.AppName)
		r.Equal(lib.DefaultGcpRegion, resolved.Defaults.GcpRegion)
	})

	t.Run("must look up disks and topics", func(t *testing.T) {
		cfg, err := NewConfigFromReader(configToReader(configYAML))
		r.NoError(err)

		disk, err := cfg.Disk("gcs")
		r.NoError(err)
		r.Equal("acme-uploads", disk.Bucket)

		_, err = cfg.Disk("s3")
		r.ErrorIs(err, lib.BadUserInputError)

		r.Equal("orders-v1", cfg.Topic("orders"))
		r.Equal("invoices", cfg.Topic("invoices"))
	})
}

func TestConfigEnvironmentVariables(t *testing.T) {
	r := require.New(t)

	t.Run("must prefer environment variables over file values", func(t *testing.T) {
		t.Setenv(lib.GcpRegionEnv, "asia-east1")
		t.Setenv("SPINEWIRE_DEFAULTS_NODE_VERSION", "20")

		cfg, err := NewConfigFromReader(configToReader(configYAML))
		r.NoError(err)
		r.Equal("asia-east1", cfg.Defaults.GcpRegion)
		r.Equal("20", cfg.Defaults.NodeVersion)
	})

	t.Run("must read shared application variables", func(t *testing.T) {
		t.Setenv(lib.AppNameEnv, "billing")
		t.Setenv(lib.GoogleCloudProjectEnv, "acme-prod")
		t.Setenv(lib.HealthCheckPathEnv, "/up")

		cfg, err := NewConfigFromReader(configToReader("{}\n"))
		r.NoError(err)
		r.Equal("billing", cfg.Defaults.AppName)
		r.Equal("acme-prod", cfg.CloudRun.ProjectID)
		r.Equal("/up", cfg.Health.Path)
	})
}

func TestLoadProjectConfig(t *testing.T) {
	r := require.New(t)

	t.Run("must fall back to defaults without a config file", func(t *testing.T) {
		cfg, err := LoadProjectConfig(t.TempDir())
		r.NoError(err)
		r.Equal(lib.DefaultAppName, cfg.Defaults.AppName)
	})

	t.Run("must read config file from project directory", func(t *testing.T) {
		dir := t.TempDir()
		r.NoError(os.WriteFile(filepath.Join(dir, lib.ConfigFileName), []byte(configYAML), 0o644))

		cfg, err := LoadProjectConfig(dir)
		r.NoError(err)
		r.Equal("api", cfg.Defaults.AppName)
	})
}
