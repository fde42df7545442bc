// Package resolver computes the transitive dependency graph: breadth-first
// expansion from a set of roots with nearest-wins mediation, Maven scope
// propagation, exclusion/optional pruning, and artifact fetch — grounded
// on the teacher's scanning walk/progress-reporting shape but replacing
// "discover files" with "discover dependency edges".
package resolver

import (
	"fmt"
	"sort"

	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/scopebuild/scopebuild/internal/fetch"
	"github.com/scopebuild/scopebuild/internal/idgen"
	"github.com/scopebuild/scopebuild/internal/pom"
	"github.com/scopebuild/scopebuild/internal/progress"
)

// scopeTable implements spec.md §4.2 step 5: effective child scope given
// the parent's effective scope and the child's declared scope. A missing
// entry means the edge is pruned.
var scopeTable = map[depgraph.Scope]map[depgraph.Scope]depgraph.Scope{
	depgraph.ScopeCompile: {
		depgraph.ScopeCompile: depgraph.ScopeCompile,
		depgraph.ScopeRuntime: depgraph.ScopeRuntime,
	},
	depgraph.ScopeRuntime: {
		depgraph.ScopeCompile: depgraph.ScopeRuntime,
		depgraph.ScopeRuntime: depgraph.ScopeRuntime,
	},
	depgraph.ScopeTest: {
		depgraph.ScopeCompile: depgraph.ScopeTest,
		depgraph.ScopeRuntime: depgraph.ScopeTest,
	},
	depgraph.ScopeProvided: {
		depgraph.ScopeCompile: depgraph.ScopeProvided,
		depgraph.ScopeRuntime: depgraph.ScopeProvided,
	},
}

// Graph is the completed resolution result.
type Graph struct {
	Nodes    map[string]*depgraph.ResolvedDependency // keyed by DependencyId.String()
	Complete bool
}

// Resolver drives POM and artifact retrieval through a Fetcher while
// applying the mediation, scope, and pruning rules.
type Resolver struct {
	fetcher     *fetch.Fetcher
	prog        *progress.Progress
	activeProps map[string]string
	scopeTable  map[depgraph.Scope]map[depgraph.Scope]depgraph.Scope
}

// New creates a Resolver. activeProps seeds Maven profile activation
// (e.g. -D properties passed on the query line).
func New(fetcher *fetch.Fetcher, prog *progress.Progress, activeProps map[string]string) *Resolver {
	if prog == nil {
		prog = progress.New(false, nil)
	}
	return &Resolver{fetcher: fetcher, prog: prog, activeProps: activeProps, scopeTable: scopeTable}
}

// SetScopeTable overrides the default Maven scope-propagation table, e.g.
// from a workspace config's scope-mediation overrides section. A nil or
// empty table restores the default.
func (r *Resolver) SetScopeTable(table map[depgraph.Scope]map[depgraph.Scope]depgraph.Scope) {
	if len(table) == 0 {
		r.scopeTable = scopeTable
		return
	}
	r.scopeTable = table
}

type pomAdapter struct{ f *fetch.Fetcher }

func (a pomAdapter) FetchPOM(id depgraph.DependencyId) ([]byte, error) {
	res, err := a.f.FetchPOM(id)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

type queued struct {
	id         depgraph.DependencyId
	scope      depgraph.Scope
	optional   bool
	depth      int
	exclusions []depgraph.DependencyExclusion
}

// Resolve expands roots into a complete dependency graph.
func (r *Resolver) Resolve(roots []depgraph.Dependency) *Graph {
	r.prog.ResolveStart(len(roots))

	nodes := make(map[string]*depgraph.ResolvedDependency)
	winner := make(map[string]string) // group:name -> winning DependencyId.String()
	expanded := make(map[string]bool)
	complete := true

	var queue []queued
	for _, d := range roots {
		queue = append(queue, queued{id: d.ID, scope: d.Scope, optional: d.Optional, depth: 0, exclusions: d.Exclusions})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		gn := item.id.GroupName()
		if existing, ok := winner[gn]; ok && existing != item.id.String() {
			// A nearer or earlier-declared version already owns this
			// slot (spec.md §4.2 step 2); store the loser as overridden
			// instead of dropping it without a trace.
			key := item.id.String()
			if _, seen := nodes[key]; !seen {
				nodes[key] = &depgraph.ResolvedDependency{
					ID: item.id, Scope: item.scope, Overridden: true, OverriddenBy: existing,
				}
			}
			continue
		}
		if excludedBy(item.exclusions, item.id) {
			continue
		}
		if item.optional && item.depth > 0 {
			continue
		}

		key := item.id.String()
		if expanded[key] {
			continue
		}
		expanded[key] = true
		winner[gn] = key

		node := &depgraph.ResolvedDependency{ID: item.id, Scope: item.scope}
		nodes[key] = node

		eff, err := r.expand(item.id)
		if err != nil {
			node.Log = err.Error()
			complete = false
			r.prog.Report(progress.Event{Type: progress.EventNodeFailed, Coordinate: key, Reason: err.Error(), Depth: item.depth})
			continue
		}

		artifactType := item.id.Type
		if artifactType == "" || artifactType == depgraph.TypeChooseByPackaging {
			artifactType = packagingToType(eff.Packaging)
		}

		if artifactType != depgraph.TypePom {
			art, err := r.fetchArtifact(item.id, string(artifactType))
			if err != nil {
				node.Log = err.Error()
				complete = false
			} else {
				node.Artifact = art
			}
		}

		// test/system scoped nodes never propagate their own transitive
		// dependencies (spec.md §4.2 step 6).
		if item.scope == depgraph.ScopeTest || item.scope == depgraph.ScopeSystem {
			node.Transitive = nil
			continue
		}

		childExclusions := append([]depgraph.DependencyExclusion{}, item.exclusions...)
		for _, d := range eff.Dependencies {
			if d.Scope == depgraph.ScopeImport || d.Scope == depgraph.ScopeSystem {
				continue
			}
			childScope, ok := r.scopeTable[item.scope][d.Scope]
			if item.depth == 0 {
				// Roots propagate using their own declared scope directly.
				childScope, ok = d.Scope, true
			}
			if !ok {
				continue
			}
			merged := append(append([]depgraph.DependencyExclusion{}, childExclusions...), d.Exclusions...)
			node.Transitive = append(node.Transitive, d)
			queue = append(queue, queued{id: d.ID, scope: childScope, optional: d.Optional, depth: item.depth + 1, exclusions: merged})
		}
	}

	r.prog.ResolveComplete(len(nodes), countFailed(nodes))
	return &Graph{Nodes: nodes, Complete: complete}
}

func countFailed(nodes map[string]*depgraph.ResolvedDependency) int {
	n := 0
	for _, v := range nodes {
		if v.HasError() {
			n++
		}
	}
	return n
}

func (r *Resolver) expand(id depgraph.DependencyId) (*pom.Effective, error) {
	res, err := r.fetcher.FetchPOM(id)
	if err != nil {
		return nil, fmt.Errorf("pom %s: %w", id, err)
	}
	eff, err := pom.Resolve(res.Data, pomAdapter{r.fetcher}, r.activeProps)
	if err != nil {
		return nil, fmt.Errorf("pom %s: %w", id, err)
	}
	applyManagement(eff)
	return eff, nil
}

// applyManagement implements spec.md §4.2 step 4 for versions and
// exclusions: a direct dependency's missing version, and its exclusions
// when it declares none, are taken from the matching entry of the POM's
// effective dependencyManagement section. The managed optional flag is
// not applied, and neither in practice is the managed scope: pom.Resolve
// has already read an undeclared scope as compile.
func applyManagement(eff *pom.Effective) {
	mgmtByKey := make(map[string]depgraph.Dependency, len(eff.DependencyManagement))
	for _, m := range eff.DependencyManagement {
		mgmtByKey[managementKey(m.ID)] = m
	}
	for i, d := range eff.Dependencies {
		m, ok := mgmtByKey[managementKey(d.ID)]
		if !ok {
			continue
		}
		if d.ID.Version == "" {
			eff.Dependencies[i].ID.Version = m.ID.Version
		}
		if d.Scope == "" {
			eff.Dependencies[i].Scope = m.Scope
		}
		if len(d.Exclusions) == 0 {
			eff.Dependencies[i].Exclusions = m.Exclusions
		}
	}
}

func managementKey(id depgraph.DependencyId) string {
	return id.Group + ":" + id.Name + ":" + id.Classifier + ":" + string(id.Type)
}

func packagingToType(packaging string) depgraph.ArtifactType {
	switch packaging {
	case "", "jar", "bundle":
		return depgraph.TypeJar
	case "pom":
		return depgraph.TypePom
	default:
		return depgraph.ArtifactType(packaging)
	}
}

func excludedBy(exclusions []depgraph.DependencyExclusion, id depgraph.DependencyId) bool {
	for _, e := range exclusions {
		if e.Matches(id) {
			return true
		}
	}
	return false
}

func (r *Resolver) fetchArtifact(id depgraph.DependencyId, ext string) (*depgraph.ArtifactPath, error) {
	res, err := r.fetcher.FetchArtifact(id, ext)
	if err != nil {
		return nil, err
	}
	data := res.Data
	return depgraph.NewArtifactPath("", res.Repository, res.OriginURL, res.FromCache, func() ([]byte, error) {
		return data, nil
	}), nil
}

// identityFor returns a stable fingerprint of a resolved graph, derived
// from its sorted node keys without hashing any artifact's bytes.
func identityFor(g *Graph) string {
	ids := make([]string, 0, len(g.Nodes))
	for k := range g.Nodes {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return idgen.StableID(ids...)
}
