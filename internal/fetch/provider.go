// Package fetch retrieves files from local, cache, and remote Maven-layout
// repositories, and the Fetcher in fetcher.go implements checksum
// validation, snapshot freshness, and the local-before-parent repository
// chain described in spec.md §4.2 and §6.
package fetch

import "time"

// RepoProvider is the storage backend behind a depgraph.Repository: a
// local directory, a local cache mirror, or a remote HTTP server. It
// deliberately knows nothing about Maven coordinates — it moves bytes at
// a path relative to the repository root.
type RepoProvider interface {
	// Get retrieves the bytes at path, relative to the repository root.
	Get(path string) ([]byte, error)

	// Exists reports whether path is present without fetching its body.
	Exists(path string) (bool, error)

	// ModTime returns the last-modified time of path, when known (always
	// known for local/cache providers, best-effort for remote ones via
	// Last-Modified). ok is false when the provider cannot answer.
	ModTime(path string) (t time.Time, ok bool)

	// Put writes path into the provider — used by cache repositories to
	// mirror bytes obtained from their parent.
	Put(path string, data []byte) error

	// IsLocal reports whether this provider is backed by local disk
	// (true for FSProvider, false for HTTPProvider).
	IsLocal() bool
}
