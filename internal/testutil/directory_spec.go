// Package testutil builds file trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type FileSpec struct {
	Name    string
	Content string
}

// DirectorySpec maps slash separated directories, relative to a root, to the files they hold.
type DirectorySpec map[string][]*FileSpec

func (d DirectorySpec) Build(t *testing.T, root string) {
	t.Helper()
	for directoryPath, files := range d {
		MkdirAll(t, root, directoryPath)
		for _, file := range files {
			if file != nil {
				WriteFile(t, root, directoryPath+"/"+file.Name, file.Content)
			}
		}
	}
}

func WriteFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	err := os.MkdirAll(filepath.Dir(abs), 0o755)
	require.NoError(t, err)
	err = os.WriteFile(abs, []byte(content), 0o644)
	require.NoError(t, err)
}

func MkdirAll(t *testing.T, root string, rel string) {
	t.Helper()
	err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0o755)
	require.NoError(t, err)
}

func ReadFile(t *testing.T, root string, rel string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(content)
}
