package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/petal-labs/svgen/core"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// svgOutputPath returns <dir>/<sanitized id>-<index+1>.svg.
func svgOutputPath(dir, id string, index int) string {
	safeID := unsafeFileChars.ReplaceAllString(id, "_")
	return filepath.Join(dir, fmt.Sprintf("%s-%d.svg", safeID, index+1))
}

// saveSvgResponse writes every document in resp to dir and returns the
// absolute paths written. An empty dir means the working directory.
func saveSvgResponse(resp *core.SvgResponse, dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := make([]string, 0, len(resp.Data))
	for i, doc := range resp.Data {
		path := svgOutputPath(dir, resp.ID, i)
		if err := os.WriteFile(path, []byte(doc.SVG), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
