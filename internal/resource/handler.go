package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ycmag/pippo/internal/httpcache"
	"github.com/ycmag/pippo/internal/metrics"
	"github.com/ycmag/pippo/internal/mimetypes"
)

// Handler serves static resources under a URL prefix. It strips version
// markers from request paths, resolves the unversioned path through its
// Resolver and streams the result with conditional caching. The handler
// holds no per-request state; concurrent requests are fully independent.
type Handler struct {
	prefix   string
	resolver Resolver
	cache    *httpcache.Toolkit
	mimes    *mimetypes.Resolver
	log      *zap.Logger
}

// NewHandler creates a handler serving resolver under the given URL prefix.
// A nil cache toolkit, MIME resolver or logger falls back to a default.
func NewHandler(prefix string, resolver Resolver, cache *httpcache.Toolkit, mimes *mimetypes.Resolver, log *zap.Logger) *Handler {
	if cache == nil {
		cache = httpcache.New(0)
	}
	if mimes == nil {
		mimes = mimetypes.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		prefix:   strings.TrimSuffix(prefix, "/"),
		resolver: resolver,
		cache:    cache,
		mimes:    mimes,
		log:      log,
	}
}

// Prefix returns the URL prefix the handler is mounted under.
func (h *Handler) Prefix() string { return h.prefix }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.prefix)
	path = strings.TrimPrefix(path, "/")

	start := time.Now()
	if err := h.handleResource(r.Context(), w, r, path); err != nil {
		// Everything but not-found surfaces here: translate to a 5xx
		// and log, never mask the cause.
		h.log.Error("resource request failed",
			zap.String("path", path), zap.Error(err))
		metrics.RecordResourceRequest(http.StatusInternalServerError)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
	metrics.RecordResolveDuration(time.Since(start))
}

// handleResource computes the unversioned form of path, resolves it and
// either commits a bodyless 404 or streams the resource. Exactly one
// response commit happens per call; a returned error means nothing was
// written yet.
func (h *Handler) handleResource(ctx context.Context, w http.ResponseWriter, r *http.Request, path string) error {
	if unversioned := RemoveVersion(path); unversioned != path {
		h.log.Debug("removed version from resource path",
			zap.String("from", path), zap.String("to", unversioned))
		metrics.RecordVersionStrip()
		path = unversioned
	}

	loc, err := h.resolver.Resolve(ctx, path)
	if errors.Is(err, ErrNotFound) {
		metrics.RecordResourceRequest(http.StatusNotFound)
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve %q: %w", path, err)
	}

	return h.stream(w, r, loc)
}

// stream applies the conditional-cache validators and either commits a
// bodyless 304 or sends the resource. The byte stream is never opened on
// the 304 path.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, loc *Location) error {
	if h.cache.ApplyValidators(w, r, loc.ModTime) {
		metrics.RecordResourceRequest(http.StatusNotModified)
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	return h.send(w, loc)
}

func (h *Handler) send(w http.ResponseWriter, loc *Location) error {
	body, err := loc.Open()
	if err != nil {
		return fmt.Errorf("open resource %s: %w", loc.Path, err)
	}
	defer body.Close()

	if contentType := h.mimes.ContentTypeFor(loc.Name); contentType != "" {
		h.log.Debug("streaming as resource", zap.String("path", loc.Path))
		w.Header().Set("Content-Type", contentType)
	} else {
		// No MIME mapping: hand the stream out as a named download and
		// let the client infer the type from the filename.
		h.log.Debug("streaming as file", zap.String("path", loc.Path))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", loc.Name))
	}
	if loc.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(loc.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, body)
	if err != nil {
		// Headers are committed; nothing to do but log.
		h.log.Warn("resource transfer error",
			zap.String("path", loc.Path), zap.Error(err))
	}
	metrics.RecordResourceRequest(http.StatusOK)
	metrics.RecordResourceBytes(n)
	return nil
}
