package frontend

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadDir reads the supported files under root. Paths are slash separated
// and relative to root; hidden directories are skipped.
func (r *Registry) LoadDir(root string) ([]File, error) {
	var files []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		if !r.Supports(rel) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		files = append(files, File{Path: rel, Content: content})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", root, err)
	}

	return files, nil
}
