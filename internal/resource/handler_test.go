package resource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ycmag/pippo/internal/httpcache"
	"github.com/ycmag/pippo/internal/mimetypes"
)

type fakeResource struct {
	data      string
	modTime   time.Time
	openCount int
}

type fakeResources map[string]*fakeResource

// fakeResolver serves in-memory resources and counts stream opens.
type fakeResolver struct {
	resources fakeResources
	err       error // returned for every path when set
}

func (f *fakeResolver) Resolve(_ context.Context, path string) (*Location, error) {
	if f.err != nil {
		return nil, f.err
	}
	res, ok := f.resources[path]
	if !ok {
		return nil, ErrNotFound
	}
	name := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		name = path[i+1:]
	}
	return NewLocation(path, name, res.modTime, int64(len(res.data)), func() (io.ReadCloser, error) {
		res.openCount++
		return io.NopCloser(strings.NewReader(res.data)), nil
	}), nil
}

func newTestHandler(t *testing.T, resources fakeResources) *Handler {
	t.Helper()
	return NewHandler("/static", &fakeResolver{resources: resources}, httpcache.New(time.Hour), mimetypes.New(), nil)
}

func get(h http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHandlerServesResource(t *testing.T) {
	h := newTestHandler(t, fakeResources{
		"css/style.css": {data: "body{}", modTime: time.UnixMilli(1699999999000)},
	})

	w := get(h, "/static/css/style.css", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "body{}" {
		t.Errorf("body = %q", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/css") {
		t.Errorf("Content-Type = %q, want text/css", ct)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("missing ETag header")
	}
	if w.Header().Get("Last-Modified") == "" {
		t.Error("missing Last-Modified header")
	}
}

func TestHandlerStripsVersionMarker(t *testing.T) {
	h := newTestHandler(t, fakeResources{
		"app.js": {data: "console.log(1);", modTime: time.UnixMilli(1699999999000)},
	})

	w := get(h, "/static/app-ver-1699999999000.js", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "console.log(1);" {
		t.Errorf("body = %q", got)
	}
}

func TestHandlerNotFound(t *testing.T) {
	h := newTestHandler(t, fakeResources{})

	w := get(h, "/static/missing.png", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("404 body should be empty, got %q", w.Body.String())
	}
}

func TestHandlerNotModifiedSkipsStream(t *testing.T) {
	res := &fakeResource{data: "body{}", modTime: time.UnixMilli(1699999999000)}
	h := newTestHandler(t, fakeResources{"style.css": res})

	first := get(h, "/static/style.css", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.Code)
	}
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag header")
	}
	if res.openCount != 1 {
		t.Fatalf("openCount = %d after first request, want 1", res.openCount)
	}

	second := get(h, "/static/style.css", map[string]string{"If-None-Match": etag})
	if second.Code != http.StatusNotModified {
		t.Fatalf("second status = %d, want 304", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Errorf("304 body should be empty, got %q", second.Body.String())
	}
	if res.openCount != 1 {
		t.Errorf("byte stream opened on 304 path (openCount = %d)", res.openCount)
	}
}

func TestHandlerNotModifiedByTime(t *testing.T) {
	modTime := time.Date(2023, 11, 14, 22, 13, 19, 0, time.UTC)
	h := newTestHandler(t, fakeResources{
		"style.css": {data: "body{}", modTime: modTime},
	})

	w := get(h, "/static/style.css", map[string]string{
		"If-Modified-Since": modTime.Format(http.TimeFormat),
	})
	if w.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w.Code)
	}
}

func TestHandlerUnknownExtensionStreamsAsFile(t *testing.T) {
	h := newTestHandler(t, fakeResources{
		"blob.xyzdat": {data: "\x00\x01\x02", modTime: time.UnixMilli(1)},
	})

	w := get(h, "/static/blob.xyzdat", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "\x00\x01\x02" {
		t.Errorf("body = %q", got)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "blob.xyzdat") {
		t.Errorf("Content-Disposition = %q, want filename hint", cd)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", ct)
	}
}

func TestHandlerResolverFailure(t *testing.T) {
	h := NewHandler("/static", &fakeResolver{err: errors.New("backend down")}, nil, nil, nil)

	w := get(h, "/static/app.js", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
