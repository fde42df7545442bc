package pom

import (
	"fmt"
	"strings"

	"github.com/scopebuild/scopebuild/internal/depgraph"
)

// PomFetcher retrieves the raw bytes of another POM by coordinate; the
// resolver satisfies it with an adapter over fetch.Fetcher's FetchPOM
// (which returns a *fetch.FetchResult), kept as a narrow interface here
// so this package never imports the transport layer.
type PomFetcher interface {
	FetchPOM(id depgraph.DependencyId) ([]byte, error)
}

// Effective is a POM after parent inheritance, property substitution and
// profile merging, with its inherited and own dependency-management
// entries collected but not yet applied to Dependencies (the resolver
// applies them) — everything the resolver needs to expand one node's
// transitive edges.
type Effective struct {
	ID                   depgraph.DependencyId
	Packaging            string
	Dependencies         []depgraph.Dependency
	DependencyManagement []depgraph.Dependency
}

const maxParentDepth = 10

// Resolve builds the Effective POM for data, recursively pulling in
// parent POMs (up to maxParentDepth, matching Maven's own practical
// ceiling) via fetcher. activeProps drives profile activation.
func Resolve(data []byte, fetcher PomFetcher, activeProps map[string]string) (*Effective, error) {
	proj, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse pom: %w", err)
	}

	props := make(map[string]string)
	var inheritedMgmt []Dependency

	if proj.Parent != nil && proj.Parent.GroupID != "" {
		parentProps, parentMgmt, err := resolveParentChain(*proj.Parent, fetcher, activeProps, 0)
		if err != nil {
			return nil, err
		}
		mergeInto(props, parentProps)
		inheritedMgmt = append(inheritedMgmt, parentMgmt...)
	}

	mergeInto(props, map[string]string(proj.Properties))

	groupID := firstNonEmpty(proj.GroupID, parentGroupID(proj), "")
	version := firstNonEmpty(proj.Version, parentVersion(proj), "")
	mergeInto(props, projectCoordinateProperties(groupID, proj.ArtifactID, version))

	active := ActiveProfiles(proj.Profiles, activeProps)

	var rawDeps []Dependency
	rawDeps = append(rawDeps, proj.Dependencies...)
	for _, p := range active {
		rawDeps = append(rawDeps, p.Dependencies...)
	}

	var rawMgmt []Dependency
	rawMgmt = append(rawMgmt, proj.DependencyManagement.Dependencies...)
	for _, p := range active {
		rawMgmt = append(rawMgmt, p.DependencyManagement.Dependencies...)
	}

	mgmt := append(inheritedMgmt, rawMgmt...)

	deps := make([]depgraph.Dependency, 0, len(rawDeps))
	for _, d := range rawDeps {
		deps = append(deps, toDependency(d, props))
	}
	mgmtDeps := make([]depgraph.Dependency, 0, len(mgmt))
	for _, d := range mgmt {
		mgmtDeps = append(mgmtDeps, toDependency(d, props))
	}

	return &Effective{
		ID:                   depgraph.DependencyId{Group: groupID, Name: proj.ArtifactID, Version: version},
		Packaging:            firstNonEmpty(resolveRefs(proj.Packaging, props, nil), "jar"),
		Dependencies:         deps,
		DependencyManagement: mgmtDeps,
	}, nil
}

// resolveParentChain walks the <parent> chain, returning the merged
// property set (nearer ancestors win) and the accumulated
// dependencyManagement entries (nearer ancestors take precedence when
// later merged against the child's own entries by the caller).
func resolveParentChain(ref Parent, fetcher PomFetcher, activeProps map[string]string, depth int) (map[string]string, []Dependency, error) {
	if depth >= maxParentDepth {
		return nil, nil, nil
	}
	id := depgraph.DependencyId{Group: ref.GroupID, Name: ref.ArtifactID, Version: ref.Version, Type: depgraph.TypePom}
	data, err := fetcher.FetchPOM(id)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch parent %s: %w", id, err)
	}
	parent, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse parent %s: %w", id, err)
	}

	props := make(map[string]string)
	var mgmt []Dependency

	if parent.Parent != nil && parent.Parent.GroupID != "" {
		grandProps, grandMgmt, err := resolveParentChain(*parent.Parent, fetcher, activeProps, depth+1)
		if err != nil {
			return nil, nil, err
		}
		mergeInto(props, grandProps)
		mgmt = append(mgmt, grandMgmt...)
	}

	mergeInto(props, map[string]string(parent.Properties))
	mergeInto(props, projectCoordinateProperties(parent.GroupID, parent.ArtifactID, parent.Version))
	props["parent.groupId"] = parent.GroupID
	props["parent.artifactId"] = parent.ArtifactID
	props["parent.version"] = parent.Version

	active := ActiveProfiles(parent.Profiles, activeProps)
	mgmt = append(mgmt, parent.DependencyManagement.Dependencies...)
	for _, p := range active {
		mgmt = append(mgmt, p.DependencyManagement.Dependencies...)
	}

	return props, mgmt, nil
}

func toDependency(d Dependency, props map[string]string) depgraph.Dependency {
	excls := make([]depgraph.DependencyExclusion, 0, len(d.Exclusions))
	for _, e := range d.Exclusions {
		excl := depgraph.DependencyExclusion{}
		if e.GroupID != "*" {
			excl.Group = resolveRefs(e.GroupID, props, nil)
		}
		if e.ArtifactID != "*" {
			excl.Name = resolveRefs(e.ArtifactID, props, nil)
		}
		excls = append(excls, excl)
	}
	return depgraph.Dependency{
		ID: depgraph.DependencyId{
			Group:      resolveRefs(d.GroupID, props, nil),
			Name:       resolveRefs(d.ArtifactID, props, nil),
			Version:    ResolveVersion(d.Version, props),
			Classifier: resolveRefs(d.Classifier, props, nil),
			Type:       artifactType(resolveRefs(d.Type, props, nil)),
		},
		Scope:      mapScope(resolveRefs(d.Scope, props, nil)),
		Optional:   strings.EqualFold(strings.TrimSpace(d.Optional), "true"),
		Exclusions: excls,
	}
}

func artifactType(t string) depgraph.ArtifactType {
	switch t {
	case "", "jar":
		return depgraph.TypeChooseByPackaging
	case "pom":
		return depgraph.TypePom
	default:
		return depgraph.ArtifactType(t)
	}
}

func mapScope(s string) depgraph.Scope {
	switch s {
	case "", "compile":
		return depgraph.ScopeCompile
	case "provided":
		return depgraph.ScopeProvided
	case "runtime":
		return depgraph.ScopeRuntime
	case "test":
		return depgraph.ScopeTest
	case "system":
		return depgraph.ScopeSystem
	case "import":
		return depgraph.ScopeImport
	default:
		return depgraph.ScopeCompile
	}
}

func parentGroupID(p *Project) string {
	if p.Parent != nil {
		return p.Parent.GroupID
	}
	return ""
}

func parentVersion(p *Project) string {
	if p.Parent != nil {
		return p.Parent.Version
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
