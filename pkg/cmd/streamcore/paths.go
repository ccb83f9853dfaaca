package streamcore

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// defaultBlobDir returns the directory blobs and SD blobs are fanned out
// into when no --blobdir flag is given.
func defaultBlobDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, "streamcore", "blobs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// defaultManifestDBPath returns the SQLite manifest database path when no
// --manifest-db flag is given, creating its parent directory.
func defaultManifestDBPath() (string, error) {
	return xdg.DataFile("streamcore/manifest.db")
}
