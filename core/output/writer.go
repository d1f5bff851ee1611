// Package output handles file naming and writing for PageMark outputs.
// Single pages are named after the URL (e.g. example_com_docs.red_flags.html).
// Crawled pages mirror the URL path structure under the output directory.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// WritePage writes output for a single URL. A non-empty tag (usually the
// reading mode) is placed between the name and the extension.
func (w *Writer) WritePage(rawURL, tag string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, FilenameFromURL(rawURL)+tagSuffix(tag)+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// WriteMirror writes output for crawl mode, mirroring the URL path.
// Example: https://site.com/docs/intro -> <dir>/docs/intro.json
func (w *Writer) WriteMirror(rawURL, tag string, data []byte, ext string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	urlPath := strings.Trim(parsed.Path, "/")
	if urlPath == "" {
		urlPath = "index"
	}
	segs := strings.Split(urlPath, "/")
	for i, s := range segs {
		segs[i] = sanitize(s)
	}

	fullPath := filepath.Join(append([]string{w.OutputDir}, segs...)...) + tagSuffix(tag) + ext

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

func tagSuffix(tag string) string {
	if tag == "" {
		return ""
	}
	return "." + sanitize(tag)
}

// FilenameFromURL converts a URL into a flat filename.
// Example: https://example.com/docs/intro -> example_com_docs_intro
func FilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return sanitize(rawURL)
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(parsed.Path, "/")
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces everything but ASCII letters, digits, '-' and '_' with '_'.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch < unicode.MaxASCII && (unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '-' || ch == '_') {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "page"
	}
	return b.String()
}
