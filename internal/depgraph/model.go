// Package depgraph holds the immutable coordinate and graph value types used
// by the dependency resolver: dependency ids, exclusions, repositories and
// resolved nodes.
package depgraph

import (
	"strings"
	"sync"
)

// Scope is a Maven-style dependency scope.
type Scope string

const (
	ScopeCompile  Scope = "compile"
	ScopeProvided Scope = "provided"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeSystem   Scope = "system"
	ScopeImport   Scope = "import" // BOM import, dependencyManagement only
	ScopeAggregate Scope = "aggregate"
)

// ArtifactType is either a concrete file extension or the marker meaning
// "inspect the resolved POM's packaging to decide".
type ArtifactType string

const (
	TypeChooseByPackaging ArtifactType = "choose-by-packaging"
	TypePom               ArtifactType = "pom"
	TypeJar               ArtifactType = "jar"
)

// DependencyId identifies a single Maven coordinate.
type DependencyId struct {
	Group                  string
	Name                   string
	Version                string
	Classifier             string       // default ""
	Type                   ArtifactType // default TypeChooseByPackaging
	SnapshotVersionOverride string      // default "", verbatim timestamped version
}

// IsSnapshot reports whether the version string names a snapshot.
func (d DependencyId) IsSnapshot() bool {
	return strings.HasSuffix(d.Version, "-SNAPSHOT")
}

// GroupName is the (group, name) identity used for version mediation —
// two DependencyIds with the same GroupName compete for the same slot in
// the resolved graph regardless of version.
func (d DependencyId) GroupName() string {
	return d.Group + ":" + d.Name
}

// String renders the canonical group:name:version[:classifier][@type] form
// used by the query/print round-trip (spec.md §8).
func (d DependencyId) String() string {
	var b strings.Builder
	b.WriteString(d.Group)
	b.WriteByte(':')
	b.WriteString(d.Name)
	b.WriteByte(':')
	b.WriteString(d.Version)
	if d.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(d.Classifier)
	}
	if d.Type != "" && d.Type != TypeChooseByPackaging {
		b.WriteByte('@')
		b.WriteString(string(d.Type))
	}
	return b.String()
}

// ParseDependencyId parses the canonical form produced by String. Absent
// type defaults to TypeChooseByPackaging, matching the zero value used
// throughout the resolver.
func ParseDependencyId(s string) (DependencyId, bool) {
	var id DependencyId
	if at := strings.IndexByte(s, '@'); at >= 0 {
		id.Type = ArtifactType(s[at+1:])
		s = s[:at]
	} else {
		id.Type = TypeChooseByPackaging
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 3:
		id.Group, id.Name, id.Version = parts[0], parts[1], parts[2]
	case 4:
		id.Group, id.Name, id.Version, id.Classifier = parts[0], parts[1], parts[2], parts[3]
	default:
		return DependencyId{}, false
	}
	if id.Group == "" || id.Name == "" || id.Version == "" {
		return DependencyId{}, false
	}
	return id, true
}

// DependencyExclusion is a wildcard-capable match pattern; a nil/empty
// field is a wildcard for that attribute.
type DependencyExclusion struct {
	Group      string
	Name       string
	Version    string
	Classifier string
	Type       string
}

// Matches reports whether the exclusion pattern matches id.
func (e DependencyExclusion) Matches(id DependencyId) bool {
	if e.Group != "" && e.Group != id.Group {
		return false
	}
	if e.Name != "" && e.Name != id.Name {
		return false
	}
	if e.Version != "" && e.Version != id.Version {
		return false
	}
	if e.Classifier != "" && e.Classifier != id.Classifier {
		return false
	}
	if e.Type != "" && e.Type != string(id.Type) {
		return false
	}
	return true
}

// Dependency is one edge in the declared dependency graph, as it appears
// directly in a POM or as a root handed to the resolver.
type Dependency struct {
	ID                   DependencyId
	Scope                Scope
	Optional             bool
	Exclusions           []DependencyExclusion
	DependencyManagement []Dependency // only meaningful on the POM's own closure
}

// Repository is a Maven-layout artifact source.
type Repository struct {
	Name                    string
	URL                     string
	Cache                   *Repository // a local mirror written-through on fetch
	ChecksumPolicy          ChecksumPolicy
	SnapshotRecheckInterval int // seconds; 0 = always refetch, <0 = never after first success
	Authoritative           bool
	Local                   bool // file: scheme, no Cache
}

// ChecksumPolicy controls how checksum mismatches are treated.
type ChecksumPolicy string

const (
	ChecksumFail   ChecksumPolicy = "fail"
	ChecksumWarn   ChecksumPolicy = "warn"
	ChecksumIgnore ChecksumPolicy = "ignore"
)

// ArtifactPath references a single fetched file on disk.
type ArtifactPath struct {
	Path       string
	Repository *Repository
	OriginURL  string
	FromCache  bool

	dataOnce sync.Once
	data     []byte
	dataErr  error
	reader   func() ([]byte, error)
}

// NewArtifactPath builds a path whose Data is loaded lazily via read on
// first access and retained afterwards.
func NewArtifactPath(path string, repo *Repository, originURL string, fromCache bool, read func() ([]byte, error)) *ArtifactPath {
	return &ArtifactPath{Path: path, Repository: repo, OriginURL: originURL, FromCache: fromCache, reader: read}
}

// Data returns the artifact bytes, reading them from disk on first call.
func (a *ArtifactPath) Data() ([]byte, error) {
	a.dataOnce.Do(func() {
		if a.reader != nil {
			a.data, a.dataErr = a.reader()
		}
	})
	return a.data, a.dataErr
}

// ResolvedDependency is one node of the completed dependency graph.
type ResolvedDependency struct {
	ID           DependencyId
	Scope        Scope
	Transitive   []Dependency
	ResolvedFrom *Repository
	Artifact     *ArtifactPath
	Log          string // non-empty means this node has an error

	// Overridden is set when this coordinate lost Maven mediation
	// (spec.md §4.2 step 2: nearest declaration wins, earlier
	// declaration order breaks ties at equal depth) against
	// OverriddenBy; an overridden node is never expanded and carries no
	// Artifact or Transitive of its own.
	Overridden   bool
	OverriddenBy string
}

// HasError reports whether resolution of this node failed.
func (r ResolvedDependency) HasError() bool {
	return r.Log != ""
}
