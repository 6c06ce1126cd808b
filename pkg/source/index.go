// SPDX-License-Identifier: MPL-2.0

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultIndexURL is the JSON metadata endpoint of the public package
// index, with one %s slot for the package name.
const DefaultIndexURL = "https://pypi.org/pypi/%s/json"

// IndexClient looks up package metadata on an index server. The zero
// value is not usable; construct with NewIndexClient.
type IndexClient struct {
	urlTemplate string
	httpClient  *http.Client
}

// NewIndexClient returns a client for the given endpoint template
// (empty means DefaultIndexURL).
func NewIndexClient(urlTemplate string) *IndexClient {
	if urlTemplate == "" {
		urlTemplate = DefaultIndexURL
	}
	return &IndexClient{
		urlTemplate: urlTemplate,
		httpClient:  http.DefaultClient,
	}
}

// NameAndVersion resolves a bare package name to its canonical index
// spelling and latest released version.
func (c *IndexClient) NameAndVersion(ctx context.Context, packageName string) (string, string, error) {
	url := fmt.Sprintf(c.urlTemplate, packageName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build index request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to retrieve info for package %s: %w", packageName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var payload struct {
		Info struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("failed to parse index response for %s: %w", packageName, err)
	}

	return payload.Info.Name, payload.Info.Version, nil
}
