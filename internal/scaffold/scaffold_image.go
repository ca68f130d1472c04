package scaffold

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/google/go-containerregistry/pkg/name"
)

const artifactRegistryHostSuffix = "-docker.pkg.dev"

// ArtifactRegistryRepository builds <region>-docker.pkg.dev/<project>/<client>/<app> and checks it is a valid repository reference.
func ArtifactRegistryRepository(region, projectID, clientName, appName string) (string, error) {
	repository := fmt.Sprintf("%s%s/%s/%s/%s", region, artifactRegistryHostSuffix, projectID, clientName, appName)

	parts := strings.Split(repository, "/")
	if len(parts) != 4 || slicesContainEmpty(parts) {
		return "", fmt.Errorf("%w - invalid Artifact Registry repository: %s, expected format: <region>-docker.pkg.dev/<project>/<repository>/<image>", lib.BadUserInputError, repository)
	}

	ref, err := name.NewRepository(repository, name.StrictValidation)
	if err != nil {
		return "", fmt.Errorf("%w - invalid Artifact Registry repository %s: %s", lib.BadUserInputError, repository, err)
	}
	slog.Debug("image repository resolved", "registry", ref.RegistryStr(), "repository", ref.RepositoryStr())

	return ref.Name(), nil
}

func slicesContainEmpty(parts []string) bool {
	for _, part := range parts {
		if part == "" || part == artifactRegistryHostSuffix {
			return true
		}
	}
	return false
}
