package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
)

//go:embed all:stubs
var embeddedStubs embed.FS

// EmbeddedStubs returns the stub set shipped with the binary, rooted at the stubs directory.
func EmbeddedStubs() fs.FS {
	stubs, err := fs.Sub(embeddedStubs, "stubs")
	if err != nil {
		panic(fmt.Sprintf("embedded stubs: %v", err))
	}
	return stubs
}

// StubsFS returns the embedded stubs unless stubsPath points to a custom stub directory.
// A relative stubsPath is resolved against projectDir.
func StubsFS(projectDir, stubsPath string) (fs.FS, error) {
	if stubsPath == "" {
		return EmbeddedStubs(), nil
	}

	if !filepath.IsAbs(stubsPath) {
		stubsPath = filepath.Join(projectDir, stubsPath)
	}

	st, err := os.Stat(stubsPath)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w - stubs directory not found: %s", lib.BadUserInputError, stubsPath)
	}

	return os.DirFS(stubsPath), nil
}
