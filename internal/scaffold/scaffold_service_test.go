package scaffold

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/output"
	"github.com/AnotherFullstackDev/spinewire/internal/prompt"
	"github.com/AnotherFullstackDev/spinewire/internal/render"
	"github.com/AnotherFullstackDev/spinewire/internal/testutil"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const laravelRoutes = `<?php

use Illuminate\Support\Facades\Route;

Route::get('/', function () {
    return view('welcome');
});
`

type testService struct {
	*Service
	root     string
	prompter *prompt.Scripted
	stderr   *bytes.Buffer
}

func newTestService(t *testing.T, stubs fs.FS, env map[string]string, answers ...any) testService {
	t.Helper()

	root := t.TempDir()
	testutil.WriteFile(t, root, "routes/web.php", laravelRoutes)
	testutil.WriteFile(t, root, "composer.json", `{"name": "acme/api"}`)

	cfg, err := config.NewConfigFromReader(strings.NewReader("defaults:\n  gcp_region: europe-west1\n  app_name: backend\n"))
	require.NoError(t, err)

	scripted := prompt.NewScripted(answers...)
	stderr := &bytes.Buffer{}
	s := NewService(root, stubs, cfg, scripted, output.NewPrinter(&bytes.Buffer{}, stderr))
	s.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	return testService{Service: s, root: root, prompter: scripted, stderr: stderr}
}

func fileMode(t *testing.T, root, rel string) os.FileMode {
	t.Helper()
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return info.Mode().Perm()
}

func TestSetupWithDefaults(t *testing.T) {
	r := require.New(t)

	ts := newTestService(t, EmbeddedStubs(), nil)
	result, err := ts.Run(context.Background(), Options{
		ProjectID:    "acme-prod",
		ClientName:   "Acme Corp",
		AppName:      "API",
		IgnoreExtras: true,
	})
	r.NoError(err)

	t.Run("should sanitize names", func(t *testing.T) {
		r.Equal("acme-corp", result.Settings.ClientName)
		r.Equal("api", result.Settings.AppName)
		r.Equal("europe-west1", result.Settings.GcpRegion)
		r.Equal([]string{"GCP Region"}, ts.prompter.Asked)
		r.Contains(ts.stderr.String(), "Client name sanitized to: acme-corp")
	})

	t.Run("should render the Dockerfile without frontend", func(t *testing.T) {
		dockerfile := testutil.ReadFile(t, ts.root, "docker/Dockerfile")
		r.Contains(dockerfile, "ARG BASE_IMAGE=europe-west1-docker.pkg.dev/acme-prod/acme-corp/api-base:latest")
		r.Contains(dockerfile, "APP_NAME=api")
		r.Contains(dockerfile, "GOOGLE_CLOUD_PROJECT=acme-prod")
		r.Contains(dockerfile, "# No frontend build")
		r.NotContains(dockerfile, "FROM node")
		r.NotContains(dockerfile, "{{")
		r.NoFileExists(filepath.Join(ts.root, "docker", "Dockerfile.stub"))
	})

	t.Run("should render the base image with gd instead of imagick", func(t *testing.T) {
		base := testutil.ReadFile(t, ts.root, "docker/Dockerfile.base")
		r.Contains(base, "docker-php-ext-install -j\"$(nproc)\" gd")
		r.NotContains(base, "imagick")
		r.NotContains(base, "redis")
		r.NotContains(base, "{{")
		r.NoFileExists(filepath.Join(ts.root, "docker", "Dockerfile.base.stub"))
	})

	t.Run("should render a valid cloudbuild.yaml", func(t *testing.T) {
		content := testutil.ReadFile(t, ts.root, "cloudbuild.yaml")
		var doc map[string]any
		r.NoError(yaml.Unmarshal([]byte(content), &doc))

		substitutions := doc["substitutions"].(map[string]any)
		r.Equal("europe-west1", substitutions["_REGION"])
		r.Equal("europe-west1-docker.pkg.dev/acme-prod/acme-corp/api", substitutions["_IMAGE"])
		r.Equal("acme-corp-api", substitutions["_SERVICE"])
	})

	t.Run("should copy health check stubs and route", func(t *testing.T) {
		r.FileExists(filepath.Join(ts.root, "app", "Http", "Controllers", "HealthCheckController.php"))
		r.FileExists(filepath.Join(ts.root, "app", "Services", "HealthCheckService.php"))
		r.FileExists(filepath.Join(ts.root, ".dockerignore"))

		routes := testutil.ReadFile(t, ts.root, "routes/web.php")
		r.True(strings.HasPrefix(routes, laravelRoutes))
		r.Contains(routes, `Route::get('/health', \App\Http\Controllers\HealthCheckController::class)->name('health');`)
	})

	t.Run("should make entrypoints executable", func(t *testing.T) {
		for _, script := range []string{"bootstrap.sh", "job.sh", "migrate.sh", "web.sh"} {
			r.Equal(os.FileMode(0o755), fileMode(t, ts.root, "docker/entrypoints/"+script), script)
		}
		r.Equal(os.FileMode(0o644), fileMode(t, ts.root, "docker/nginx.conf"))
	})

	t.Run("should report created files", func(t *testing.T) {
		r.Equal([]string{
			"docker/",
			".dockerignore",
			"cloudbuild.yaml",
			"app/Http/Controllers/HealthCheckController.php",
			"app/Services/HealthCheckService.php",
			"routes/web.php (modified)",
		}, result.CreatedFiles)
	})
}

func TestSetupInteractive(t *testing.T) {
	r := require.New(t)

	t.Run("should build a frontend image with the chosen package manager", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), map[string]string{lib.GoogleCloudProjectEnv: "acme-staging"},
			"acme", // client name
			nil,    // region
			nil,    // app name
			true,   // frontend
			"20",   // node version
			"npm",  // package manager
			nil,    // build script
			true,   // imagick
			true,   // redis
			true,   // proceed
		)
		testutil.WriteFile(t, ts.root, "package.json", `{"scripts": {"prod": "vite build"}, "devDependencies": {"vite": "^5.0.0"}}`)

		result, err := ts.Run(context.Background(), Options{})
		r.NoError(err)
		r.Equal("acme-staging", result.Settings.ProjectID)
		r.Equal("backend", result.Settings.AppName)
		r.Equal("prod", result.Settings.NpmBuildScript)
		r.Len(ts.prompter.Asked, 10)

		dockerfile := testutil.ReadFile(t, ts.root, "docker/Dockerfile")
		r.Contains(dockerfile, "FROM node:20-alpine AS assets")
		r.Contains(dockerfile, "RUN npm ci")
		r.Contains(dockerfile, "RUN npm run prod")
		r.Contains(dockerfile, "COPY --from=assets /app/public/build ./public/build")
		r.NotContains(dockerfile, "pnpm")
		r.NotContains(dockerfile, "# No frontend build")

		base := testutil.ReadFile(t, ts.root, "docker/Dockerfile.base")
		r.Contains(base, "pecl install imagick")
		r.Contains(base, "libmagickwand-dev")
		r.Contains(base, "pecl install redis")
		r.NotContains(base, "libwebp-dev")
	})

	t.Run("should cancel when the summary is declined", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil, false, false, false, false)

		_, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod", ClientName: "acme", Region: "europe-west1", AppName: "api"})
		r.ErrorIs(err, lib.CancelledError)
		r.NoDirExists(filepath.Join(ts.root, "docker"))
	})

	t.Run("should skip the summary with yes", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil, false, false, false)

		_, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod", ClientName: "acme", Region: "europe-west1", AppName: "api", Yes: true})
		r.NoError(err)
		r.NotContains(ts.prompter.Asked, "Proceed with this configuration?")
	})

	t.Run("should require a project id", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil, "")

		_, err := ts.Run(context.Background(), Options{})
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("should require a client name", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil, "")

		_, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod"})
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("should reject client names without letters or digits", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)

		_, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod", ClientName: "!!!", IgnoreExtras: true})
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("should reject app names that slugify to nothing", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil, "acme", nil, "...")

		_, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod", IgnoreExtras: true})
		r.ErrorIs(err, lib.BadUserInputError)
		r.Contains(ts.prompter.Asked, "Application name")
	})

	t.Run("should slugify app names like Laravel", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)

		result, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod", ClientName: "acme", Region: "europe-west1", AppName: "Café API.v2", IgnoreExtras: true})
		r.NoError(err)
		r.Equal("cafe-apiv2", result.Settings.AppName)
	})

	t.Run("should reject project ids that cannot form an image repository", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)

		_, err := ts.Run(context.Background(), Options{ProjectID: "Acme_Prod", ClientName: "acme", Region: "europe-west1", AppName: "api", IgnoreExtras: true})
		r.ErrorIs(err, lib.BadUserInputError)
	})
}

func TestSetupExistingFiles(t *testing.T) {
	r := require.New(t)
	opts := Options{ProjectID: "acme-prod", ClientName: "acme", Region: "europe-west1", AppName: "api", IgnoreExtras: true}

	t.Run("should keep existing targets when overwrite is declined", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil, false)
		testutil.WriteFile(t, ts.root, "docker/Dockerfile", "FROM custom\n")

		result, err := ts.Run(context.Background(), opts)
		r.NoError(err)
		r.Equal([]string{"Target already exists: docker. Overwrite?"}, ts.prompter.Asked)
		r.Equal("FROM custom\n", testutil.ReadFile(t, ts.root, "docker/Dockerfile"))
		r.NotContains(result.CreatedFiles, "docker/")
		r.Contains(ts.stderr.String(), "Skipped: docker")
	})

	t.Run("should replace existing directories with force", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)
		testutil.WriteFile(t, ts.root, "docker/legacy.conf", "x")
		testutil.WriteFile(t, ts.root, "app/Services/HealthCheckService.php", "<?php // custom")

		_, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod", ClientName: "acme", Region: "europe-west1", AppName: "api", IgnoreExtras: true, Force: true})
		r.NoError(err)
		r.Empty(ts.prompter.Asked)
		r.NoFileExists(filepath.Join(ts.root, "docker", "legacy.conf"))
		r.Contains(testutil.ReadFile(t, ts.root, "app/Services/HealthCheckService.php"), "class HealthCheckService")
	})

	t.Run("should not install the health route twice", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)
		routes := laravelRoutes + "Route::get(\"/health\", fn () => 'ok');\n"
		testutil.WriteFile(t, ts.root, "routes/web.php", routes)

		result, err := ts.Run(context.Background(), opts)
		r.NoError(err)
		r.Equal(routes, testutil.ReadFile(t, ts.root, "routes/web.php"))
		r.NotContains(result.CreatedFiles, "routes/web.php (modified)")
	})

	t.Run("should warn about a missing routes file", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)
		r.NoError(os.Remove(filepath.Join(ts.root, "routes", "web.php")))

		_, err := ts.Run(context.Background(), opts)
		r.NoError(err)
		r.Contains(ts.stderr.String(), "routes/web.php not found")
	})

	t.Run("should make nested project entrypoints executable", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)
		testutil.WriteFile(t, ts.root, "docker/entrypoints/workers/queue.sh", "#!/bin/sh\n")
		testutil.WriteFile(t, ts.root, "docker/entrypoints/README.md", "entrypoints\n")

		_, err := ts.Run(context.Background(), Options{ProjectID: "acme-prod", ClientName: "acme", Region: "europe-west1", AppName: "api", IgnoreExtras: true})
		r.NoError(err)
		r.Equal(os.FileMode(0o755), fileMode(t, ts.root, "docker/entrypoints/workers/queue.sh"))
	})

	t.Run("should warn about ignored files", func(t *testing.T) {
		ts := newTestService(t, EmbeddedStubs(), nil)
		testutil.WriteFile(t, ts.root, ".gitignore", "/vendor\ndocker/\n")

		_, err := ts.Run(context.Background(), opts)
		r.NoError(err)
		r.Contains(ts.stderr.String(), "docker/ is ignored by .gitignore")
		r.NotContains(ts.stderr.String(), "cloudbuild.yaml is ignored")
	})
}

func TestSetupCustomStubs(t *testing.T) {
	r := require.New(t)
	opts := Options{ProjectID: "acme-prod", ClientName: "acme", Region: "europe-west1", AppName: "api", IgnoreExtras: true}

	t.Run("should warn about missing sources and scripts", func(t *testing.T) {
		stubs := fstest.MapFS{
			"cicd/cloudbuild.yaml.stub": {Data: []byte("steps:\n  - name: '{{IMAGE_REPOSITORY}}'\n")},
		}
		ts := newTestService(t, stubs, nil)

		result, err := ts.Run(context.Background(), opts)
		r.NoError(err)
		r.Equal("steps:\n  - name: 'europe-west1-docker.pkg.dev/acme-prod/acme/api'\n", testutil.ReadFile(t, ts.root, "cloudbuild.yaml"))
		r.Contains(ts.stderr.String(), "Source not found: docker")
		r.Contains(ts.stderr.String(), "No script files found")
		r.Equal([]string{"cloudbuild.yaml", "routes/web.php (modified)"}, result.CreatedFiles)
	})

	t.Run("should fail on malformed templates", func(t *testing.T) {
		stubs := fstest.MapFS{
			"cicd/cloudbuild.yaml.stub": {Data: []byte("steps: []\n{{#IF:ENABLE_REDIS}}\n")},
		}
		ts := newTestService(t, stubs, nil)

		_, err := ts.Run(context.Background(), opts)
		r.ErrorIs(err, render.ErrMalformedTemplate)
	})

	t.Run("should fail when cloudbuild.yaml is not valid YAML", func(t *testing.T) {
		stubs := fstest.MapFS{
			"cicd/cloudbuild.yaml.stub": {Data: []byte("steps: [\n")},
		}
		ts := newTestService(t, stubs, nil)

		_, err := ts.Run(context.Background(), opts)
		r.ErrorIs(err, lib.BadUserInputError)
	})

	t.Run("should load stubs from a project directory", func(t *testing.T) {
		root := t.TempDir()
		testutil.WriteFile(t, root, "deploy/stubs/.dockerignore", "vendor\n")

		stubs, err := StubsFS(root, "deploy/stubs")
		r.NoError(err)
		content, err := fs.ReadFile(stubs, ".dockerignore")
		r.NoError(err)
		r.Equal("vendor\n", string(content))

		_, err = StubsFS(root, "missing")
		r.ErrorIs(err, lib.BadUserInputError)
	})
}

func TestSettings(t *testing.T) {
	r := require.New(t)

	valid := Settings{ProjectID: "acme-prod", ClientName: "acme", GcpRegion: "europe-west1", AppName: "api"}

	t.Run("should derive renderer flags", func(t *testing.T) {
		settings := valid
		settings.EnableFrontend = true
		settings.PackageManager = "pnpm"

		values, err := settings.Values()
		r.NoError(err)
		r.Equal(true, values["use_pnpm"])
		r.Equal(false, values["use_npm"])
		r.Equal(false, values["disable_frontend"])
		r.Equal(true, values["disable_imagick"])
		r.Equal(lib.DefaultNodeVersion, values["node_version"])
		r.Equal(lib.DefaultNpmBuildScript, values["npm_build_script"])
	})

	t.Run("should default frontend placeholders when the frontend is disabled", func(t *testing.T) {
		values, err := valid.Values()
		r.NoError(err)
		r.Equal(lib.DefaultPackageManager, values["package_manager"])
		r.Equal(false, values["use_pnpm"])
		r.Equal(true, values["disable_frontend"])
	})

	t.Run("should validate settings", func(t *testing.T) {
		r.NoError(valid.Validate())

		cases := map[string]Settings{
			"missing project": {ClientName: "acme", GcpRegion: "europe-west1", AppName: "api"},
			"client not slug": {ProjectID: "p", ClientName: "Acme", GcpRegion: "europe-west1", AppName: "api"},
			"node version":    {ProjectID: "p", ClientName: "acme", GcpRegion: "europe-west1", AppName: "api", NodeVersion: "16"},
			"package manager": {ProjectID: "p", ClientName: "acme", GcpRegion: "europe-west1", AppName: "api", PackageManager: "yarn"},
			"build script":    {ProjectID: "p", ClientName: "acme", GcpRegion: "europe-west1", AppName: "api", NpmBuildScript: "build && rm -rf /"},
		}
		for name, settings := range cases {
			r.ErrorIs(settings.Validate(), lib.BadUserInputError, name)
		}
	})

	t.Run("should build artifact registry repositories", func(t *testing.T) {
		repository, err := ArtifactRegistryRepository("us-central1", "acme-prod", "acme", "admin")
		r.NoError(err)
		r.Equal("us-central1-docker.pkg.dev/acme-prod/acme/admin", repository)

		_, err = ArtifactRegistryRepository("us-central1", "acme-prod", "", "admin")
		r.ErrorIs(err, lib.BadUserInputError)

		_, err = ArtifactRegistryRepository("us-central1", "Acme", "acme", "admin")
		r.ErrorIs(err, lib.BadUserInputError)
	})
}
