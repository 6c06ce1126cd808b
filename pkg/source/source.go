// SPDX-License-Identifier: MPL-2.0

// Package source resolves the locator strings the lifecycle operations
// accept — URLs, local archive files, local directories, bare package
// names and name==version pins — into something the package manager
// can install.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"wheelhouse/pkg/archive"
)

// Resolved is the outcome of locator resolution.
type Resolved struct {
	// Installable is the value handed to the package manager: a local
	// directory path, or a requirement string (name or name==version)
	// for index-resolved sources.
	Installable string
	// Dir is the local directory backing the source, when there is
	// one. Empty for index-resolved sources.
	Dir string
	// Temporary marks Dir as created during resolution; callers own
	// its removal via Cleanup.
	Temporary bool

	// tempRoot is the temporary directory that actually holds Dir.
	tempRoot string
}

// HTTPStatusError reports a non-200 response while fetching a source.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request to %s failed with HTTP error: %d", e.URL, e.StatusCode)
}

// Get resolves a source locator.
//
//   - file/http/https URLs are downloaded and extracted to a fresh
//     temporary directory; any other URL scheme is rejected.
//   - A local archive file is extracted to a temporary directory.
//   - A local directory is used in place (with ~ expanded).
//   - name==version pins have their name canonicalized via the index.
//   - Anything else is treated as a bare index package name.
func Get(ctx context.Context, logger *log.Logger, index *IndexClient, locator string) (*Resolved, error) {
	logger.Debug("retrieving source", "source", locator)

	if scheme, _, ok := strings.Cut(locator, "://"); ok {
		switch scheme {
		case "file", "http", "https":
			dir, root, err := fetchAndExtract(ctx, locator)
			if err != nil {
				return nil, err
			}
			return &Resolved{Installable: dir, Dir: dir, Temporary: true, tempRoot: root}, nil
		default:
			return nil, fmt.Errorf("source URL type %s is not supported", scheme)
		}
	}

	if info, err := os.Stat(locator); err == nil && !info.IsDir() {
		dir, root, err := extractToTemp(locator)
		if err != nil {
			return nil, err
		}
		return &Resolved{Installable: dir, Dir: dir, Temporary: true, tempRoot: root}, nil
	}

	expanded := expandUser(locator)
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source path: %w", err)
		}
		return &Resolved{Installable: abs, Dir: abs}, nil
	}

	if name, version, ok := strings.Cut(locator, "=="); ok {
		canonical, _, err := index.NameAndVersion(ctx, name)
		if err != nil {
			return nil, err
		}
		return &Resolved{Installable: canonical + "==" + version}, nil
	}

	canonical, _, err := index.NameAndVersion(ctx, locator)
	if err != nil {
		return nil, err
	}
	return &Resolved{Installable: canonical}, nil
}

// Cleanup removes the temporary directory backing the source, if any.
func (r *Resolved) Cleanup() {
	if r.Temporary && r.tempRoot != "" {
		os.RemoveAll(r.tempRoot)
	}
}

// fetchAndExtract downloads a URL to a temporary file and extracts it.
func fetchAndExtract(ctx context.Context, url string) (string, string, error) {
	tmpFile, err := os.CreateTemp("", "wheelhouse-source-*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := download(ctx, url, tmpFile); err != nil {
		tmpFile.Close()
		return "", "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", "", err
	}

	return extractToTemp(tmpPath)
}

// download streams a file/http/https URL into w. Non-200 responses are
// reported as a typed *HTTPStatusError.
func download(ctx context.Context, url string, w io.Writer) error {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to download file: %w", err)
		}
		defer file.Close()
		_, err = io.Copy(w, file)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

// extractToTemp extracts an archive file into a fresh temporary
// directory and returns the single top-level directory inside it,
// along with the temporary root that owns it.
func extractToTemp(archivePath string) (string, string, error) {
	tmpDir, err := os.MkdirTemp("", "wheelhouse-source-")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	if err := archive.Extract(archivePath, tmpDir); err != nil {
		os.RemoveAll(tmpDir)
		return "", "", err
	}

	top, err := archive.TopLevelDir(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", "", err
	}
	return top, tmpDir, nil
}

// expandUser replaces a leading ~ with the home directory.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
