package factories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/gcp"
	"github.com/AnotherFullstackDev/spinewire/internal/health"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/scaffold"
)

type ServiceFactory struct {
	config     *config.Config
	projectDir string
	locator    *SharedServicesLocator
	env        gcp.Environment
}

// NewServiceFactory resolves dynamic config values and applies the environment overlay before
// building any service.
func NewServiceFactory(env string, locator *SharedServicesLocator) (*ServiceFactory, error) {
	cfg, err := locator.Config.WithEnvironment(env)
	if err != nil {
		return nil, fmt.Errorf("loading environment specific config: %w", err)
	}

	if locator.PlaceholdersService != nil {
		cfg, err = cfg.WithResolvedValues(locator.PlaceholdersService)
		if err != nil {
			return nil, err
		}
	}

	return &ServiceFactory{
		config:     cfg,
		projectDir: locator.ProjectDir,
		locator:    locator.WithConfig(cfg),
		env:        gcp.OSEnvironment(),
	}, nil
}

func (f *ServiceFactory) Config() *config.Config {
	return f.config
}

func (f *ServiceFactory) NewScaffoldService() (*scaffold.Service, error) {
	stubs, err := scaffold.StubsFS(f.projectDir, f.config.StubsPath)
	if err != nil {
		return nil, fmt.Errorf("loading stubs: %w", err)
	}

	return scaffold.NewService(f.projectDir, stubs, f.config, f.locator.Prompter, f.locator.Printer), nil
}

func (f *ServiceFactory) NewDisk(ctx context.Context, name string) (*gcp.Disk, error) {
	diskCfg, err := f.config.Disk(name)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "loading storage disk", "disk", name, "bucket", diskCfg.Bucket)
	return gcp.NewDisk(ctx, diskCfg)
}

func (f *ServiceFactory) NewPublisher(ctx context.Context) (*gcp.Publisher, error) {
	projectID, _ := f.env.LookupEnv(lib.GoogleCloudProjectEnv)
	if projectID == "" {
		projectID = f.config.CloudRun.ProjectID
	}

	return gcp.NewPublisher(ctx, projectID, f.config)
}

func (f *ServiceFactory) NewJobsRunner(ctx context.Context) (*gcp.JobsRunner, error) {
	cloudRunCfg := f.config.CloudRun
	if cloudRunCfg.ProjectID == "" {
		projectID, err := gcp.ProjectID(ctx, f.env)
		if err != nil {
			return nil, fmt.Errorf("detecting Cloud Run project: %w", err)
		}
		cloudRunCfg.ProjectID = projectID
	}

	return gcp.NewJobsRunner(ctx, cloudRunCfg)
}

func (f *ServiceFactory) NewHealthService() *health.Service {
	appName, _ := f.env.LookupEnv(lib.AppNameEnv)
	if appName == "" {
		appName = f.config.Defaults.AppName
	}
	appEnv, _ := f.env.LookupEnv(lib.AppEnvEnv)
	if appEnv == "" {
		appEnv = f.config.Environment
	}
	databaseURL, _ := f.env.LookupEnv(lib.DatabaseUrlEnv)

	return health.NewService(appName, appEnv, databaseURL, f.env)
}
