// Package gcp wraps the Google Cloud clients used by Laravel apps on Cloud Run.
// Every client authenticates with Application Default Credentials.
package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/compute/metadata"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"golang.org/x/oauth2/google"
)

type AuthMethod string

const (
	AuthMethodNone               AuthMethod = ""
	AuthMethodServiceAccountFile AuthMethod = "service_account_file"
	AuthMethodGceMetadata        AuthMethod = "gce_metadata"
	AuthMethodGcloudCli          AuthMethod = "gcloud_cli"
)

const metadataProbeTimeout = time.Second

// Environment is the process environment the detection reads; tests replace it.
type Environment struct {
	LookupEnv func(string) (string, bool)
	Stat      func(string) (os.FileInfo, error)
}

func OSEnvironment() Environment {
	return Environment{LookupEnv: os.LookupEnv, Stat: os.Stat}
}

func (e Environment) get(key string) string {
	value, _ := e.LookupEnv(key)
	return value
}

func (e Environment) fileExists(path string) bool {
	st, err := e.Stat(path)
	return err == nil && !st.IsDir()
}

// DetectAuthMethod reports which ADC source is available, in the order ADC itself consults them.
func DetectAuthMethod(ctx context.Context, env Environment) AuthMethod {
	if credentialsFile := env.get(lib.GoogleCredentialsEnv); credentialsFile != "" && env.fileExists(credentialsFile) {
		return AuthMethodServiceAccountFile
	}

	if IsRunningOnGcp(ctx, env) {
		return AuthMethodGceMetadata
	}

	home := env.get(lib.HomeEnv)
	if home == "" {
		home = env.get(lib.UserProfileEnv)
	}
	if home != "" && env.fileExists(filepath.Join(home, filepath.FromSlash(lib.GcloudAdcRelativePath))) {
		return AuthMethodGcloudCli
	}

	return AuthMethodNone
}

// IsRunningOnGcp probes the metadata server at GCE_METADATA_HOST, or the well-known host, for a project ID.
func IsRunningOnGcp(ctx context.Context, env Environment) bool {
	host := env.get(lib.GceMetadataHostEnv)
	if host == "" {
		host = lib.DefaultGceMetadataHost
	}

	client, err := lib.NewApiClient("http://"+host, map[string]string{"Metadata-Flavor": "Google"})
	if err != nil {
		slog.DebugContext(ctx, "invalid metadata host", "host", host, "error", err)
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, metadataProbeTimeout)
	defer cancel()

	resp, err := client.NewGetRequest(probeCtx, client.URL("computeMetadata/v1/project/project-id")).Do()
	if err != nil {
		slog.DebugContext(ctx, "metadata server not reachable", "host", host, "error", err)
		return false
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}

	return resp.StatusCode == http.StatusOK
}

// ProjectID returns GOOGLE_CLOUD_PROJECT, then the metadata server project, then the ADC project.
func ProjectID(ctx context.Context, env Environment) (string, error) {
	if projectID := env.get(lib.GoogleCloudProjectEnv); projectID != "" {
		return projectID, nil
	}

	if metadata.OnGCE() {
		projectID, err := metadata.ProjectIDWithContext(ctx)
		if err == nil && projectID != "" {
			return projectID, nil
		}
		slog.DebugContext(ctx, "metadata project id lookup failed", "error", err)
	}

	creds, err := google.FindDefaultCredentials(ctx, lib.CloudPlatformScope)
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}
	if creds.ProjectID == "" {
		return "", fmt.Errorf("%w - no GCP project configured, set %s", lib.BadUserInputError, lib.GoogleCloudProjectEnv)
	}
	return creds.ProjectID, nil
}

type credentialsFile struct {
	Type string `json:"type"`
}

// CanSignNatively reports whether the default credentials can sign blobs without IAM delegation:
// a service account key, or the metadata server identity.
func CanSignNatively(ctx context.Context) bool {
	creds, err := google.FindDefaultCredentials(ctx, lib.CloudPlatformScope)
	if err != nil {
		slog.DebugContext(ctx, "no default credentials", "error", err)
		return false
	}

	if len(creds.JSON) == 0 {
		return metadata.OnGCE()
	}

	var file credentialsFile
	if err := json.Unmarshal(creds.JSON, &file); err != nil {
		return false
	}
	return file.Type == "service_account"
}
