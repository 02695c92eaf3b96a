// Package webassets provides the embedded default asset bundle.
package webassets

import "embed"

//go:embed css js
var Assets embed.FS
