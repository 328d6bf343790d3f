package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/reed-hollis/photoshelfbackend/config"
)

var errOutsideRoot = errors.New("path escapes the root directory")

// resolveCollectionPath maps a request-supplied collection path onto the
// filesystem. Returns the absolute directory path and the cleaned
// root-relative key used for the rating store and registry. Paths that
// resolve outside the root are rejected before any stat.
func resolveCollectionPath(cfg config.Config, requested string) (absPath, relKey string, err error) {
	requested = strings.TrimPrefix(filepath.ToSlash(requested), "/")
	absPath = filepath.Clean(filepath.Join(cfg.RootDirectory, filepath.FromSlash(requested)))

	root := filepath.Clean(cfg.RootDirectory)
	if absPath != root && !strings.HasPrefix(absPath, root+string(os.PathSeparator)) {
		return "", "", errOutsideRoot
	}

	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", "", err
	}
	relKey = filepath.ToSlash(rel)
	return absPath, relKey, nil
}
