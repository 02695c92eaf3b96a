package resource

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// versionPattern matches an embedded cache-busting marker: "-ver-" followed
// by digits, terminated by the extension dot or the end of the path.
var versionPattern = regexp.MustCompile(`-ver-[0-9]+(\.|$)`)

// RemoveVersion strips the first version marker from path, splicing out
// exactly the matched span. The trailing dot, when present, belongs to the
// extension and is kept. A path without a marker is returned unchanged.
func RemoveVersion(path string) string {
	m := versionPattern.FindStringIndex(path)
	if m == nil {
		return path
	}
	end := m[1]
	if path[end-1] == '.' {
		end--
	}
	return path[:m[0]] + path[end:]
}

// InjectVersion returns path with a "-ver-<timestamp>" marker spliced in
// before the final extension dot, or appended when the path has no
// extension. The timestamp is the resolved resource's last-modified time in
// milliseconds, so the marker changes whenever the resource does.
// The path must resolve; any resolution or metadata failure is fatal.
func (h *Handler) InjectVersion(ctx context.Context, path string) (string, error) {
	loc, err := h.resolver.Resolve(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read last-modified for %q: %w", path, err)
	}

	marker := "-ver-" + strconv.FormatInt(loc.ModTime.UnixMilli(), 10)

	var versioned string
	if dot := strings.LastIndexByte(path, '.'); dot == -1 {
		versioned = path + marker
	} else {
		versioned = path[:dot] + marker + path[dot:]
	}

	h.log.Debug("injected version in resource path",
		zap.String("from", path),
		zap.String("to", versioned))

	return versioned, nil
}
