// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogpu/gglife/shaders"
)

// DefaultHTTPTimeout bounds a single HTTPLoader request.
const DefaultHTTPTimeout = 10 * time.Second

// Loader fetches program source text by identifier. Load blocks until the
// whole text is available. Failures wrap ErrResourceUnavailable.
type Loader interface {
	Load(id string) (string, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(id string) (string, error)

// Load calls f(id).
func (f LoaderFunc) Load(id string) (string, error) { return f(id) }

// FSLoader loads identifiers as paths inside a file system.
type FSLoader struct {
	FS fs.FS
}

// Load reads the file named id.
func (l FSLoader) Load(id string) (string, error) {
	b, err := fs.ReadFile(l.FS, strings.TrimPrefix(id, "/"))
	if err != nil {
		return "", &ResourceError{ID: id, Err: err}
	}
	return string(b), nil
}

// DefaultLoader serves the WGSL programs embedded in package shaders.
func DefaultLoader() Loader {
	return FSLoader{FS: shaders.FS()}
}

// HTTPLoader fetches identifiers relative to a base URL. Any non-2xx status
// is a failure. There are no retries and no caching.
type HTTPLoader struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPLoader creates a loader for baseURL. A nil client uses one with
// DefaultHTTPTimeout.
func NewHTTPLoader(baseURL string, client *http.Client) (*HTTPLoader, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("gglife: parse loader URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gglife: loader URL %q is not http(s)", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPLoader{base: u, client: client}, nil
}

// Load performs a GET for id and returns the body.
func (l *HTTPLoader) Load(id string) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(id, "/"))
	if err != nil {
		return "", &ResourceError{ID: id, Err: err}
	}
	target := l.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, target.String(), nil)
	if err != nil {
		return "", &ResourceError{ID: id, Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", &ResourceError{ID: id, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ResourceError{ID: id, Err: fmt.Errorf("GET %s: %s", target, resp.Status)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ResourceError{ID: id, Err: err}
	}
	return string(b), nil
}
