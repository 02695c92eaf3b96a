package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	gopath "path"
	"strings"
	"time"
)

// FSResolver resolves request paths against an fs.FS, typically an
// embedded asset bundle.
type FSResolver struct {
	fsys fs.FS
	// Embedded files carry a zero mod time; substitute the resolver's
	// creation time so validators and version markers stay usable.
	fallbackModTime time.Time
}

// NewFSResolver creates a resolver over fsys.
func NewFSResolver(fsys fs.FS) *FSResolver {
	return &FSResolver{fsys: fsys, fallbackModTime: time.Now().Truncate(time.Second)}
}

// Resolve stats the named file in the underlying filesystem. Directories
// and paths that are not valid fs paths are not served.
func (f *FSResolver) Resolve(_ context.Context, path string) (*Location, error) {
	name := gopath.Clean(strings.TrimPrefix(path, "/"))
	if name == "." || !fs.ValidPath(name) {
		return nil, ErrNotFound
	}

	info, err := fs.Stat(f.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, ErrNotFound
	}

	modTime := info.ModTime()
	if modTime.IsZero() {
		modTime = f.fallbackModTime
	}

	return NewLocation(path, info.Name(), modTime, info.Size(), func() (io.ReadCloser, error) {
		return f.fsys.Open(name)
	}), nil
}
