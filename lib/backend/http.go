// Copyright 2026 The Slicetile Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTP fetches resources with GET requests against a base URL. The
// entire response body is read into memory before Acquire returns,
// so the stream it yields is seekable and the connection is never
// held open across decode. Retry and backoff are the caller's
// concern.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP backend using http.DefaultClient. The base
// URL should name the directory-like prefix resource names are
// resolved against.
func NewHTTP(baseURL string) *HTTP {
	return NewHTTPWithClient(baseURL, http.DefaultClient)
}

// NewHTTPWithClient creates an HTTP backend with a custom client.
// Tests use this to point at an httptest.Server; deployments use it
// for timeouts or custom transports.
func NewHTTPWithClient(baseURL string, client *http.Client) *HTTP {
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Acquire performs a full synchronous GET of baseURL/name and
// returns an in-memory stream over the response body.
func (b *HTTP) Acquire(ctx context.Context, name string, expectedChecksum string) (Stream, error) {
	resource, err := b.resolve(name)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", resource, err)
	}

	response, err := b.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", resource, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", resource, response.Status)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", resource, err)
	}

	return newMemoryStream(body), nil
}

// resolve joins a resource name onto the base URL, preserving any
// query string the base carries (pre-signed URL prefixes).
func (b *HTTP) resolve(name string) (string, error) {
	parsed, err := url.Parse(b.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", b.baseURL, err)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/" + strings.TrimLeft(name, "/")
	return parsed.String(), nil
}
