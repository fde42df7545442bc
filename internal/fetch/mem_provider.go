package fetch

import (
	"fmt"
	"time"
)

// MemProvider is an in-memory RepoProvider used by resolver and fetcher
// tests to play the part of a remote repository without touching the
// network or the filesystem — adapted from the fake file-system provider
// pattern used for scan tests.
type MemProvider struct {
	files map[string][]byte
	times map[string]time.Time
	local bool
}

// NewMemProvider creates an empty in-memory repository.
func NewMemProvider(local bool) *MemProvider {
	return &MemProvider{
		files: make(map[string][]byte),
		times: make(map[string]time.Time),
		local: local,
	}
}

// Put stores data at path and records "now" as its mod time, just as a
// real cache write-through would.
func (p *MemProvider) Put(path string, data []byte) error {
	p.files[path] = data
	p.times[path] = time.Now()
	return nil
}

// PutAt stores data at path with an explicit mod time, for tests that
// need to simulate stale snapshot metadata.
func (p *MemProvider) PutAt(path string, data []byte, at time.Time) {
	p.files[path] = data
	p.times[path] = at
}

func (p *MemProvider) Get(path string) ([]byte, error) {
	data, ok := p.files[path]
	if !ok {
		return nil, os404{path}
	}
	return data, nil
}

func (p *MemProvider) Exists(path string) (bool, error) {
	_, ok := p.files[path]
	return ok, nil
}

func (p *MemProvider) ModTime(path string) (time.Time, bool) {
	t, ok := p.times[path]
	return t, ok
}

func (p *MemProvider) IsLocal() bool { return p.local }

func (p *MemProvider) String() string {
	return fmt.Sprintf("mem(%d files)", len(p.files))
}
