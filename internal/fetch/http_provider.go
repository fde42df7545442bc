package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// HTTPProvider implements RepoProvider over a remote Maven-layout HTTP(S)
// repository. Authentication flows and mirror negotiation are explicitly
// out of scope (spec.md §1); this only issues plain GET/HEAD requests.
//
// No example repository in this corpus performs raw Maven-style HTTP
// fetches with checksum sidecars, so this file is stdlib net/http rather
// than a third-party HTTP client — see DESIGN.md.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider rooted at baseURL (e.g.
// "https://repo.maven.apache.org/maven2").
func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPProvider{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (p *HTTPProvider) url(relPath string) string {
	return p.baseURL + "/" + strings.TrimPrefix(path.Clean("/"+relPath), "/")
}

// Get performs an HTTP GET for relPath.
func (p *HTTPProvider) Get(relPath string) ([]byte, error) {
	resp, err := p.client.Get(p.url(relPath))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", relPath, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("GET %s: %w", relPath, os404{relPath})
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: status %d", relPath, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Exists issues a HEAD request.
func (p *HTTPProvider) Exists(relPath string) (bool, error) {
	resp, err := p.client.Head(p.url(relPath))
	if err != nil {
		return false, fmt.Errorf("HEAD %s: %w", relPath, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// ModTime reads the Last-Modified response header, when present.
func (p *HTTPProvider) ModTime(relPath string) (time.Time, bool) {
	resp, err := p.client.Head(p.url(relPath))
	if err != nil {
		return time.Time{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, false
	}
	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return time.Time{}, false
	}
	t, err := http.ParseTime(lm)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Put always fails — remote repositories in this engine are read-only.
func (p *HTTPProvider) Put(relPath string, data []byte) error {
	return fmt.Errorf("put %s: remote repositories are read-only", relPath)
}

// IsLocal is always false for HTTPProvider.
func (p *HTTPProvider) IsLocal() bool { return false }

// os404 is a sentinel error distinguishing "definitively absent" (404)
// from other transport failures, used by Fetcher to implement
// authoritative short-circuiting.
type os404 struct{ path string }

func (e os404) Error() string { return fmt.Sprintf("%s: not found", e.path) }

// IsNotFound reports whether err represents a definitive "not found"
// response from a repository.
func IsNotFound(err error) bool {
	var nf os404
	return errors.As(err, &nf)
}
