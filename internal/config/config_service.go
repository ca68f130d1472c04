package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/spf13/viper"
)

type Config struct {
	Defaults     Defaults                  `mapstructure:"defaults"`
	StubsPath    string                    `mapstructure:"stubs_path"`
	Environments map[string]map[string]any `mapstructure:"environments"`
	Health       HealthConfig              `mapstructure:"health"`
	Storage      StorageConfig             `mapstructure:"storage"`
	PubSub       PubSubConfig              `mapstructure:"pubsub"`
	Logging      LoggingConfig             `mapstructure:"logging"`
	CloudRun     CloudRunConfig            `mapstructure:"cloud_run"`

	// Environment is the overlay applied by WithEnvironment, empty for the base config.
	Environment string `mapstructure:"-"`

	v *viper.Viper
}

// Defaults seed the answers of the setup command.
type Defaults struct {
	GcpRegion      string `mapstructure:"gcp_region"`
	AppName        string `mapstructure:"app_name"`
	EnableFrontend bool   `mapstructure:"enable_frontend"`
	NodeVersion    string `mapstructure:"node_version"`
	PackageManager string `mapstructure:"package_manager"`
	NpmBuildScript string `mapstructure:"npm_build_script"`
	EnableImagick  bool   `mapstructure:"enable_imagick"`
	EnableRedis    bool   `mapstructure:"enable_redis"`
}

type HealthConfig struct {
	Path     string `mapstructure:"path"`
	Addr     string `mapstructure:"addr"`
	Detailed bool   `mapstructure:"detailed"`
}

type StorageConfig struct {
	Disks map[string]DiskConfig `mapstructure:"disks"`
}

type DiskConfig struct {
	Bucket         string `mapstructure:"bucket"`
	PathPrefix     string `mapstructure:"path_prefix"`
	StorageApiUri  string `mapstructure:"storage_api_uri"`
	ServiceAccount string `mapstructure:"service_account"`
}

type PubSubConfig struct {
	Topics map[string]string `mapstructure:"topics"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	LogName string `mapstructure:"log_name"`
}

type CloudRunConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Region    string `mapstructure:"region"`
}

type ValuesResolver interface {
	ResolveValues(values map[string]any) (map[string]any, error)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("defaults.gcp_region", lib.DefaultGcpRegion)
	v.SetDefault("defaults.app_name", lib.DefaultAppName)
	v.SetDefault("defaults.enable_frontend", false)
	v.SetDefault("defaults.node_version", lib.DefaultNodeVersion)
	v.SetDefault("defaults.package_manager", lib.DefaultPackageManager)
	v.SetDefault("defaults.npm_build_script", lib.DefaultNpmBuildScript)
	v.SetDefault("defaults.enable_imagick", false)
	v.SetDefault("defaults.enable_redis", false)
	v.SetDefault("stubs_path", "")
	v.SetDefault("health.path", lib.DefaultHealthPath)
	v.SetDefault("health.addr", lib.DefaultHealthAddr)
	v.SetDefault("health.detailed", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.log_name", "")
	v.SetDefault("cloud_run.project_id", "")
	v.SetDefault("cloud_run.region", lib.DefaultGcpRegion)

	v.SetEnvPrefix(lib.EnvKeyPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the generated Laravel app shares these with the CLI
	_ = v.BindEnv("defaults.gcp_region", lib.EnvKeyPrefix+"_DEFAULTS_GCP_REGION", lib.GcpRegionEnv)
	_ = v.BindEnv("defaults.app_name", lib.EnvKeyPrefix+"_DEFAULTS_APP_NAME", lib.AppNameEnv)
	_ = v.BindEnv("cloud_run.project_id", lib.EnvKeyPrefix+"_CLOUD_RUN_PROJECT_ID", lib.GoogleCloudProjectEnv)
	_ = v.BindEnv("health.path", lib.EnvKeyPrefix+"_HEALTH_PATH", lib.HealthCheckPathEnv)
	_ = v.BindEnv("logging.level", lib.LogLevelEnv)
	_ = v.BindEnv("logging.format", lib.LogFormatEnv)

	return v
}

func newConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.v = v
	return &cfg, nil
}

func NewConfigFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return newConfigFromViper(v)
}

func NewConfigFromReader(reader io.Reader) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(reader); err != nil {
		return nil, fmt.Errorf("reading config from reader: %w", err)
	}

	return newConfigFromViper(v)
}

// LoadProjectConfig reads spinewire.yaml from projectDir when present and falls back to defaults.
func LoadProjectConfig(projectDir string) (*Config, error) {
	path := filepath.Join(projectDir, lib.ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newConfigFromViper(newViper())
		}
		return nil, fmt.Errorf("checking config file %s: %w", path, err)
	}

	return NewConfigFromPath(path)
}

func (c *Config) WithEnvironment(env string) (*Config, error) {
	if env == "" {
		return c, nil
	}

	overrides, ok := c.Environments[env]
	if !ok {
		return nil, fmt.Errorf("%w - environment '%s' not found in config", lib.BadUserInputError, env)
	}

	newV := newViper()
	if err := newV.MergeConfigMap(c.v.AllSettings()); err != nil {
		return nil, fmt.Errorf("merging config map from global config instance: %w", err)
	}
	if err := newV.MergeConfigMap(overrides); err != nil {
		return nil, fmt.Errorf("merging environment config map: %w", err)
	}

	cfg, err := newConfigFromViper(newV)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling config with environment: %w", err)
	}

	cfg.Environment = env
	return cfg, nil
}

// WithResolvedValues returns a copy where dynamic expressions in every value have been resolved.
func (c *Config) WithResolvedValues(resolver ValuesResolver) (*Config, error) {
	resolved, err := resolver.ResolveValues(c.v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("resolving config values: %w", err)
	}

	newV := newViper()
	if err := newV.MergeConfigMap(resolved); err != nil {
		return nil, fmt.Errorf("merging resolved config map: %w", err)
	}

	cfg, err := newConfigFromViper(newV)
	if err != nil {
		return nil, err
	}

	cfg.Environment = c.Environment
	return cfg, nil
}

func (c *Config) Disk(name string) (DiskConfig, error) {
	disk, ok := c.Storage.Disks[name]
	if !ok {
		return DiskConfig{}, fmt.Errorf("%w - storage disk '%s' not found in config", lib.BadUserInputError, name)
	}
	if disk.Bucket == "" {
		return DiskConfig{}, fmt.Errorf("%w - storage disk '%s' has no bucket", lib.BadUserInputError, name)
	}
	return disk, nil
}

// Topic resolves a configured alias; unknown aliases are used as topic IDs.
func (c *Config) Topic(alias string) string {
	if topic, ok := c.PubSub.Topics[alias]; ok && topic != "" {
		return topic
	}
	return alias
}
