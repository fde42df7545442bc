package fetch

import (
	"fmt"
	"strings"
	"time"

	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/scopebuild/scopebuild/internal/progress"
)

// Binding pairs a depgraph.Repository with the RepoProvider that serves
// it — a Repository alone is a value describing policy (checksum
// policy, recheck interval, authoritative); Binding adds the transport.
type Binding struct {
	Repo     depgraph.Repository
	Provider RepoProvider
}

// Fetcher retrieves POMs, metadata, and artifacts from an ordered
// repository chain, implementing spec.md §4.2 steps 1, 3 (transport
// only), 8, 9 and the snapshot rules.
type Fetcher struct {
	chain   []Binding
	offline bool
	locks   *coordinateLocks
	prog    *progress.Progress
	now     func() time.Time
}

// NewFetcher builds a fetcher over chain, ordered with every cache
// repository immediately before its parent and duplicates coalesced
// (spec.md §4.2 step 1).
func NewFetcher(chain []Binding, offline bool, prog *progress.Progress) *Fetcher {
	return &Fetcher{
		chain:   orderChain(chain),
		offline: offline,
		locks:   newCoordinateLocks(),
		prog:    prog,
		now:     time.Now,
	}
}

func orderChain(chain []Binding) []Binding {
	byName := make(map[string]Binding, len(chain))
	for _, b := range chain {
		if _, ok := byName[b.Repo.Name]; !ok {
			byName[b.Repo.Name] = b
		}
	}
	seen := make(map[string]bool)
	var ordered []Binding
	for _, b := range chain {
		if seen[b.Repo.Name] {
			continue
		}
		if b.Repo.Cache != nil && !seen[b.Repo.Cache.Name] {
			// Move the cache's own Binding, wherever the caller listed
			// it, to just ahead of its parent.
			if c, ok := byName[b.Repo.Cache.Name]; ok {
				seen[c.Repo.Name] = true
				ordered = append(ordered, c)
			}
		}
		seen[b.Repo.Name] = true
		ordered = append(ordered, b)
	}
	return ordered
}

func (f *Fetcher) candidates() []Binding {
	if !f.offline {
		return f.chain
	}
	var local []Binding
	for _, b := range f.chain {
		if b.Repo.Local || b.Provider.IsLocal() {
			local = append(local, b)
		}
	}
	return local
}

// pomPath returns the repository-relative path of a POM file.
func pomPath(id depgraph.DependencyId) string {
	return artifactDir(id) + "/" + id.Name + "-" + id.Version + ".pom"
}

func artifactDir(id depgraph.DependencyId) string {
	return strings.ReplaceAll(id.Group, ".", "/") + "/" + id.Name + "/" + id.Version
}

func metadataPath(id depgraph.DependencyId) string {
	return artifactDir(id) + "/maven-metadata.xml"
}

// artifactFilePath returns the repository-relative path of the artifact
// file for id with extension ext (jar, pom, etc.), honoring any
// classifier and resolved snapshot filename.
func artifactFilePath(id depgraph.DependencyId, ext, concreteVersion string) string {
	name := id.Name + "-" + concreteVersion
	if id.Classifier != "" {
		name += "-" + id.Classifier
	}
	return artifactDir(id) + "/" + name + "." + ext
}

// FetchResult carries the bytes plus provenance needed to populate a
// depgraph.ResolvedDependency.
type FetchResult struct {
	Data       []byte
	Repository *depgraph.Repository
	OriginURL  string
	FromCache  bool
}

// FetchPOM retrieves the POM for id, trying repositories in chain order.
// The first repository whose bytes pass the configured checksum policy
// is authoritative for this coordinate (spec.md §4.2 step 3). A
// repository flagged Authoritative that answers a definitive "not
// found" stops the chain (spec.md §4.2 "Authoritative repositories").
func (f *Fetcher) FetchPOM(id depgraph.DependencyId) (*FetchResult, error) {
	var res *FetchResult
	err := f.locks.withLock(id.String(), func() error {
		r, err := f.fetchChecked(id, pomPath(id))
		res = r
		return err
	})
	return res, err
}

func (f *Fetcher) fetchChecked(id depgraph.DependencyId, path string) (*FetchResult, error) {
	var errs []string
	for _, b := range f.candidates() {
		f.report(progress.EventRepositoryTry, id, b.Repo.Name, "")
		data, err := b.Provider.Get(path)
		if err != nil {
			if IsNotFound(err) && b.Repo.Authoritative {
				return nil, fmt.Errorf("%s: not found in authoritative repository %s", id, b.Repo.Name)
			}
			errs = append(errs, fmt.Sprintf("%s: %v", b.Repo.Name, err))
			continue
		}

		if b.Repo.ChecksumPolicy != "" && b.Repo.ChecksumPolicy != depgraph.ChecksumIgnore {
			if _, err := verifyChecksum(b.Provider, path, data); err != nil {
				f.report(progress.EventChecksumMismatch, id, b.Repo.Name, err.Error())
				if b.Repo.ChecksumPolicy == depgraph.ChecksumFail {
					errs = append(errs, fmt.Sprintf("%s: checksum: %v", b.Repo.Name, err))
					continue
				}
				// warn: keep the bytes anyway
			}
		}

		f.mirrorToCache(b, path, data)
		repo := b.Repo
		return &FetchResult{Data: data, Repository: &repo, FromCache: b.Provider.IsLocal()}, nil
	}
	return nil, fmt.Errorf("%s: not found in any repository (%s)", id, strings.Join(errs, "; "))
}

// mirrorToCache writes fetched bytes into b's cache repository, if any,
// so subsequent requests are served locally.
func (f *Fetcher) mirrorToCache(b Binding, path string, data []byte) {
	if b.Repo.Cache == nil {
		return
	}
	for _, c := range f.chain {
		if c.Repo.Name == b.Repo.Cache.Name {
			_ = c.Provider.Put(path, data)
			return
		}
	}
}

// FetchArtifact retrieves the artifact file for id (extension ext),
// resolving the concrete snapshot filename first when id is a snapshot.
func (f *Fetcher) FetchArtifact(id depgraph.DependencyId, ext string) (*FetchResult, error) {
	var res *FetchResult
	err := f.locks.withLock(id.String()+"@"+ext, func() error {
		concreteVersion := id.Version
		if id.IsSnapshot() {
			v, err := f.resolveSnapshotVersion(id)
			if err != nil {
				return err
			}
			concreteVersion = v
		}
		path := artifactFilePath(id, ext, concreteVersion)
		r, err := f.fetchChecked(id, path)
		if err != nil {
			f.report(progress.EventNodeFailed, id, "", err.Error())
			return err
		}
		f.report(progress.EventArtifactFetched, id, r.Repository.Name, path)
		res = r
		return nil
	})
	return res, err
}

// resolveSnapshotVersion implements spec.md §4.2's snapshot handling: a
// SnapshotVersionOverride is used verbatim; otherwise maven-metadata.xml
// is consulted (refetched when stale per the repository's
// SnapshotRecheckInterval); with no metadata at all the engine falls
// back to the non-unique "-SNAPSHOT" filename (spec.md §9 open
// question).
func (f *Fetcher) resolveSnapshotVersion(id depgraph.DependencyId) (string, error) {
	if id.SnapshotVersionOverride != "" {
		return strings.Replace(id.Version, "SNAPSHOT", id.SnapshotVersionOverride, 1), nil
	}

	path := metadataPath(id)
	candidates := f.candidates()
	for i, b := range candidates {
		if f.metadataStale(b, path) {
			f.report(progress.EventSnapshotMetadataStale, id, b.Repo.Name, "")
			if i < len(candidates)-1 {
				// A fresher copy may exist further down the chain
				// (typically the upstream repository behind this
				// cache): skip this stale copy rather than serve it.
				continue
			}
		}
		data, err := b.Provider.Get(path)
		if err != nil {
			continue
		}
		f.mirrorToCache(b, path, data)
		if v, ok := parseSnapshotVersion(data); ok {
			return v, nil
		}
	}
	return id.Version, nil // fall back to "...-SNAPSHOT" filename
}

// metadataStale reports whether b's cached metadata copy should be
// considered expired and refetched from upstream.
func (f *Fetcher) metadataStale(b Binding, path string) bool {
	if b.Repo.SnapshotRecheckInterval == 0 {
		return true
	}
	if b.Repo.SnapshotRecheckInterval < 0 {
		return false
	}
	t, ok := b.Provider.ModTime(path)
	if !ok {
		return true
	}
	return f.now().Sub(t) > time.Duration(b.Repo.SnapshotRecheckInterval)*time.Second
}

func (f *Fetcher) report(t progress.EventType, id depgraph.DependencyId, repoName, info string) {
	if f.prog == nil {
		return
	}
	ev := progress.Event{Type: t, Coordinate: id.String(), Repository: repoName}
	switch t {
	case progress.EventArtifactFetched:
		ev.Path = info
	case progress.EventChecksumMismatch, progress.EventNodeFailed:
		ev.Reason = info
	default:
		ev.Info = info
	}
	f.prog.Report(ev)
}
