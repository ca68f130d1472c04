package scaffold

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/render"
	"github.com/go-playground/validator/v10"
)

var (
	NodeVersions    = []string{"18", "20", "22"}
	PackageManagers = []string{"npm", "pnpm"}

	slugRegExp      = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	npmScriptRegExp = regexp.MustCompile(`^[A-Za-z0-9:_.-]+$`)
	validate        = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegExp.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("npm_script", func(fl validator.FieldLevel) bool {
		return npmScriptRegExp.MatchString(fl.Field().String())
	})
	return v
}

// Options mirror the flags of the setup command. Empty strings mean "ask".
type Options struct {
	ProjectID      string
	Region         string
	ClientName     string
	AppName        string
	NpmBuildScript string
	Force          bool
	IgnoreExtras   bool
	Yes            bool
}

// Settings are the gathered answers that drive stub rendering.
type Settings struct {
	ProjectID      string `validate:"required"`
	ClientName     string `validate:"required,slug"`
	GcpRegion      string `validate:"required,slug"`
	AppName        string `validate:"required,slug"`
	EnableFrontend bool
	NodeVersion    string `validate:"omitempty,oneof=18 20 22"`
	PackageManager string `validate:"omitempty,oneof=npm pnpm"`
	NpmBuildScript string `validate:"omitempty,npm_script"`
	EnableImagick  bool
	EnableRedis    bool
}

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("%w - invalid settings: %s", lib.BadUserInputError, strings.Join(fields, ", "))
		}
		return fmt.Errorf("validating settings: %w", err)
	}
	return nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func (s Settings) nodeVersion() string {
	return orDefault(s.NodeVersion, lib.DefaultNodeVersion)
}

func (s Settings) packageManager() string {
	return orDefault(s.PackageManager, lib.DefaultPackageManager)
}

func (s Settings) npmBuildScript() string {
	return orDefault(s.NpmBuildScript, lib.DefaultNpmBuildScript)
}

// Values builds the renderer input. Frontend placeholders fall back to defaults when the frontend is disabled.
func (s Settings) Values() (render.Values, error) {
	imageRepository, err := ArtifactRegistryRepository(s.GcpRegion, s.ProjectID, s.ClientName, s.AppName)
	if err != nil {
		return nil, err
	}

	return render.Values{
		"project_id":       s.ProjectID,
		"client_name":      s.ClientName,
		"gcp_region":       s.GcpRegion,
		"app_name":         s.AppName,
		"node_version":     s.nodeVersion(),
		"package_manager":  s.packageManager(),
		"npm_build_script": s.npmBuildScript(),
		"image_repository": imageRepository,
		"enable_frontend":  s.EnableFrontend,
		"disable_frontend": !s.EnableFrontend,
		"use_npm":          s.EnableFrontend && s.packageManager() == "npm",
		"use_pnpm":         s.EnableFrontend && s.packageManager() == "pnpm",
		"enable_imagick":   s.EnableImagick,
		"disable_imagick":  !s.EnableImagick,
		"enable_redis":     s.EnableRedis,
	}, nil
}
