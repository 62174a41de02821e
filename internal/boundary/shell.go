package boundary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const defaultShell = `<!doctype html>
<html><head><meta charset="utf-8"><title>Notifications</title></head>
<body><p>You are offline. Cached notifications will sync when the connection returns.</p></body></html>
`

// LoadShell reads the offline shell assets under dir, keyed by URL path.
// A missing or empty dir yields a minimal shell with only ShellEntry.
func LoadShell(dir string) (map[string][]byte, error) {
	shell := map[string][]byte{ShellEntry: []byte(defaultShell)}
	if dir == "" {
		return shell, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		shell["/"+filepath.ToSlash(rel)] = body

		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return shell, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load shell assets: %w", err)
	}

	return shell, nil
}
