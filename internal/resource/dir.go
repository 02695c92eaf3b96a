package resource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirResolver resolves request paths against a filesystem directory root.
type DirResolver struct {
	root string
}

// NewDirResolver creates a resolver rooted at the given directory.
func NewDirResolver(root string) (*DirResolver, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	return &DirResolver{root: root}, nil
}

// Resolve stats the file under the root. Path traversal outside the root is
// neutralized before joining. Directories are not served.
func (d *DirResolver) Resolve(_ context.Context, path string) (*Location, error) {
	// Clean relative to "/" so ".." segments cannot escape the root.
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	full := filepath.Join(d.root, clean)

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	return NewLocation(path, info.Name(), info.ModTime(), info.Size(), func() (io.ReadCloser, error) {
		return os.Open(full)
	}), nil
}
