// Package httpcache applies HTTP conditional-caching validators
// (ETag / Last-Modified) to responses.
package httpcache

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Toolkit computes and checks cache validators derived from a resource's
// last-modified time. A single Toolkit is shared by handlers; it holds no
// mutable state.
type Toolkit struct {
	maxAge time.Duration
}

// New creates a Toolkit. When maxAge is positive, responses carry a
// "Cache-Control: public, max-age=..." header.
func New(maxAge time.Duration) *Toolkit {
	return &Toolkit{maxAge: maxAge}
}

// ETagFor returns the entity tag derived from modTime.
func (t *Toolkit) ETagFor(modTime time.Time) string {
	return `"` + strconv.FormatInt(modTime.UnixMilli(), 16) + `"`
}

// ApplyValidators sets the ETag, Last-Modified and Cache-Control headers on
// the response and checks the request validators (If-None-Match first, then
// If-Modified-Since). It reports whether the response should be committed
// as 304 Not Modified with no body.
func (t *Toolkit) ApplyValidators(w http.ResponseWriter, r *http.Request, modTime time.Time) bool {
	if modTime.IsZero() {
		return false
	}

	etag := t.ETagFor(modTime)
	h := w.Header()
	h.Set("ETag", etag)
	h.Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))
	if t.maxAge > 0 {
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(t.maxAge.Seconds())))
	}

	if match := r.Header.Get("If-None-Match"); match != "" {
		return etagMatch(match, etag)
	}

	if since := r.Header.Get("If-Modified-Since"); since != "" {
		if when, err := http.ParseTime(since); err == nil {
			// Last-Modified has second granularity on the wire.
			return !modTime.Truncate(time.Second).After(when)
		}
	}

	return false
}

// etagMatch reports whether the If-None-Match header value matches etag.
// Weak comparison: a "W/" prefix on either side is ignored.
func etagMatch(header, etag string) bool {
	if header == "*" {
		return true
	}
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
