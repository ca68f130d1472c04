package lib

import "fmt"

const (
	EnvKeyPrefix = "SPINEWIRE"
)

var (
	LogLevelEnv  = fmt.Sprintf("%s_%s", EnvKeyPrefix, "LOG_LEVEL")
	LogFormatEnv = fmt.Sprintf("%s_%s", EnvKeyPrefix, "LOG_FORMAT")
)

// Ambient Google Cloud environment, shared with the generated Laravel app.
const (
	GoogleCloudProjectEnv    = "GOOGLE_CLOUD_PROJECT"
	GoogleCredentialsEnv     = "GOOGLE_APPLICATION_CREDENTIALS"
	GceMetadataHostEnv       = "GCE_METADATA_HOST"
	DefaultGceMetadataHost   = "metadata.google.internal"
	GcloudAdcRelativePath    = ".config/gcloud/application_default_credentials.json"
	CloudPlatformScope       = "https://www.googleapis.com/auth/cloud-platform"
	DefaultStorageApiUri     = "https://storage.googleapis.com"
	DefaultGcpRegion         = "europe-west1"
	DefaultAppName           = "backend"
	DefaultCloudLogName      = "laravel-app"
	DefaultHealthPath        = "/health"
	DefaultHealthAddr        = ":8080"
	HealthCheckPathEnv       = "HEALTH_CHECK_PATH"
	GcpRegionEnv             = "GCP_REGION"
	AppNameEnv               = "APP_NAME"
	AppEnvEnv                = "APP_ENV"
	PortEnv                  = "PORT"
	DatabaseUrlEnv           = "DATABASE_URL"
	HomeEnv                  = "HOME"
	UserProfileEnv           = "USERPROFILE"
	DefaultNodeVersion       = "22"
	DefaultPackageManager    = "pnpm"
	DefaultNpmBuildScript    = "build"
	DefaultUploadContentType = "application/octet-stream"
	ConfigFileName           = "spinewire.yaml"
	HealthRoutesRelativePath = "routes/web.php"
	EntrypointScriptsPattern = "docker/entrypoints/**/*.sh"
)
