// Package mimetypes maps filename extensions to content types.
package mimetypes

import (
	"mime"
	"path/filepath"
	"strings"
)

// Resolver resolves content types from filenames. A custom override table
// is consulted before the platform MIME registry; the empty string means
// no mapping is known.
type Resolver struct {
	overrides map[string]string
}

// New creates a Resolver with overrides for extensions the platform
// registry commonly misses.
func New() *Resolver {
	return &Resolver{
		overrides: map[string]string{
			".mjs":   "text/javascript",
			".map":   "application/json",
			".wasm":  "application/wasm",
			".woff2": "font/woff2",
		},
	}
}

// Add registers a content type for an extension (with leading dot).
// Existing mappings are replaced.
func (r *Resolver) Add(ext, contentType string) {
	r.overrides[strings.ToLower(ext)] = contentType
}

// ContentTypeFor returns the content type for filename, or "" when the
// extension is missing or unmapped.
func (r *Resolver) ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}
	if contentType, ok := r.overrides[ext]; ok {
		return contentType
	}
	return mime.TypeByExtension(ext)
}
