// Package resource serves static resources with cache-busting version
// markers, conditional caching and content-type resolution. Resolution of
// request paths to byte sources is pluggable via the Resolver interface;
// implementations cover filesystem directories, embedded asset bundles
// and S3 buckets.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound is returned by resolvers when no resource exists at a path.
var ErrNotFound = errors.New("resource not found")

// Resolver resolves a logical request path to a Location.
// Implementations return ErrNotFound for absent resources; any other error
// is treated as a metadata/I-O failure and propagated by the handler.
type Resolver interface {
	Resolve(ctx context.Context, path string) (*Location, error)
}

// Location is a resolved handle to the byte source behind a request path.
// It is valid for the duration of one request and is never cached.
type Location struct {
	// Path is the logical path that resolved to this location.
	Path string
	// Name is the filename component, used for content-type resolution
	// and download disposition.
	Name string
	// ModTime is the resource's last modification time.
	ModTime time.Time
	// Size is the resource size in bytes, or -1 if unknown.
	Size int64

	open func() (io.ReadCloser, error)
}

// NewLocation builds a Location whose byte stream is produced by open.
func NewLocation(path, name string, modTime time.Time, size int64, open func() (io.ReadCloser, error)) *Location {
	return &Location{Path: path, Name: name, ModTime: modTime, Size: size, open: open}
}

// Open opens the resource's byte stream. The caller owns the stream and
// must close it on all paths.
func (l *Location) Open() (io.ReadCloser, error) {
	if l.open == nil {
		return nil, fmt.Errorf("no byte source for %s", l.Path)
	}
	return l.open()
}
