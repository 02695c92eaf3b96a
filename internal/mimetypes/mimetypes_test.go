package mimetypes

import (
	"strings"
	"testing"
)

func TestContentTypeForKnownExtension(t *testing.T) {
	r := New()

	if got := r.ContentTypeFor("css/style.css"); !strings.Contains(got, "text/css") {
		t.Errorf("ContentTypeFor(style.css) = %q", got)
	}
	if got := r.ContentTypeFor("index.HTML"); !strings.Contains(got, "text/html") {
		t.Errorf("ContentTypeFor(index.HTML) = %q", got)
	}
}

func TestContentTypeForOverride(t *testing.T) {
	r := New()

	if got := r.ContentTypeFor("module.wasm"); got != "application/wasm" {
		t.Errorf("ContentTypeFor(module.wasm) = %q", got)
	}
}

func TestContentTypeForUnknown(t *testing.T) {
	r := New()

	if got := r.ContentTypeFor("blob.xyzdat"); got != "" {
		t.Errorf("ContentTypeFor(blob.xyzdat) = %q, want empty", got)
	}
	if got := r.ContentTypeFor("README"); got != "" {
		t.Errorf("ContentTypeFor(README) = %q, want empty", got)
	}
}

func TestAdd(t *testing.T) {
	r := New()
	r.Add(".xyzdat", "application/x-xyz")

	if got := r.ContentTypeFor("blob.xyzdat"); got != "application/x-xyz" {
		t.Errorf("ContentTypeFor after Add = %q", got)
	}
}
