package scaffold

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	ignore "github.com/sabhiram/go-gitignore"
)

const executableMode = 0o755

func (s *Service) setScriptPermissions() error {
	scripts, err := lib.FindFiles(s.projectDir, lib.EntrypointScriptsPattern)
	if err != nil {
		return fmt.Errorf("finding entrypoint scripts: %w", err)
	}
	slices.Sort(scripts)

	if len(scripts) == 0 {
		s.printer.Warningf("No script files found to set permissions on.")
		return nil
	}

	for _, script := range scripts {
		if err := os.Chmod(s.targetPath(script), executableMode); err != nil {
			return fmt.Errorf("making %s executable: %w", script, err)
		}
		s.printer.Successf("Made executable: %s", script)
	}
	return nil
}

// warnIgnoredFiles reports created paths that the project's .gitignore would keep out of the repository.
func (s *Service) warnIgnoredFiles() error {
	gitIgnore, err := ignore.CompileIgnoreFile(s.targetPath(".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("compile gitignore: %w", err)
	}

	for _, file := range s.createdFiles {
		if gitIgnore.MatchesPath(file.path) || gitIgnore.MatchesPath(strings.TrimSuffix(file.path, "/")) {
			s.printer.Warningf("%s is ignored by .gitignore and will not be committed", file.path)
		}
	}
	return nil
}
