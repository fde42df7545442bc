// Package engine wires the key-graph, resolver, fetcher, and assembly
// pipeline together into the one built-in Project every query is
// evaluated against. Compiling a user's own build script into Project/
// Configuration/Archetype bindings is the build-script bootstrap spec.md
// §1 explicitly places out of scope; this package supplies the fixed set
// of keys (repositories, dependency resolution, classpath, assembly)
// that a compiled build script would otherwise extend, so the CLI has a
// concrete graph to query end to end.
package engine

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/scopebuild/scopebuild/internal/assembly"
	"github.com/scopebuild/scopebuild/internal/config"
	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/scopebuild/scopebuild/internal/fetch"
	"github.com/scopebuild/scopebuild/internal/input"
	"github.com/scopebuild/scopebuild/internal/keygraph"
	"github.com/scopebuild/scopebuild/internal/progress"
	"github.com/scopebuild/scopebuild/internal/resolver"
	"github.com/scopebuild/scopebuild/internal/workspace"
)

// RepositoriesKey lists the effective repository chain for the workspace.
var RepositoriesKey = keygraph.NewTypedKey[[]depgraph.Repository]("repositories", "the effective repository chain, in declared order")

// ResolveKey resolves the "coordinates" input (comma-separated
// group:name:version[:classifier][@type] entries) into a complete
// dependency graph.
var ResolveKey = keygraph.NewTypedKey[*resolver.Graph]("resolve", "resolve the coordinates input into a dependency graph")

// ClasspathKey lists the coordinates of ResolveKey's nodes that carry an
// artifact, sorted by coordinate string; declaration order is not kept.
// Mediation losers carry no artifact, so each group:name appears once.
var ClasspathKey = keygraph.NewTypedKey[[]string]("classpath", "the resolved, ordered classpath for the coordinates input")

// AssembleKey runs the fat-archive pipeline over ResolveKey's resolved
// artifacts and returns the deterministically ordered entry paths that
// would be written to the output archive.
var AssembleKey = keygraph.NewTypedKey[[]assembly.ResolvedEntry]("assemble", "assemble the coordinates input's artifacts into one deterministic entry set")

// RunEnvironmentKey builds the environment map a (delegated) run-task
// collaborator would spawn a JVM subprocess with: every forwarded
// environment variable, plus a JVM debug agent argument derived from
// WEMI_RUN_DEBUG_PORT. This engine only assembles the map; it never
// spawns the subprocess itself.
var RunEnvironmentKey = keygraph.NewTypedKey[map[string]string]("runEnvironment", "the environment map a run task would spawn its JVM subprocess with")

// Registry lists every built-in key by name, for the "keys" introspection
// command and for dispatching a parsed query.Command.Key to a *keygraph.Key.
var Registry = map[string]*keygraph.Key{
	RepositoriesKey.Name:   RepositoriesKey.Key,
	ResolveKey.Name:        ResolveKey.Key,
	ClasspathKey.Name:      ClasspathKey.Key,
	AssembleKey.Name:       AssembleKey.Key,
	RunEnvironmentKey.Name: RunEnvironmentKey.Key,
}

// configurationScopes lists the Maven scope visibility of each built-in
// configuration's classpath (spec.md §4.4's scope-propagation table
// mirrored onto the configurations a query can actually layer):
// compile sees compile-time-only dependencies, runtime sees what a
// packaged application needs, test sees everything.
var configurationScopes = map[string]map[depgraph.Scope]bool{
	"compile": {depgraph.ScopeCompile: true, depgraph.ScopeProvided: true, depgraph.ScopeSystem: true},
	"runtime": {depgraph.ScopeCompile: true, depgraph.ScopeRuntime: true},
	"test":    {depgraph.ScopeCompile: true, depgraph.ScopeRuntime: true, depgraph.ScopeProvided: true, depgraph.ScopeSystem: true, depgraph.ScopeTest: true},
	"provided": {depgraph.ScopeProvided: true},
}

// Engine bundles the configuration needed to answer a query: the
// workspace layout, the effective repository chain, and the project
// scope every query is evaluated within.
type Engine struct {
	Layout         *workspace.Layout
	Config         *config.WorkspaceConfig
	Settings       *config.Settings
	Evaluator      *keygraph.Evaluator
	RootScope      *keygraph.Scope
	Configurations map[string]*keygraph.Configuration

	// currentInput is the input source for whichever query is presently
	// being evaluated. Bindings read from it by closing over e rather
	// than over a parameter, since BindingFunc carries only a *Scope.
	// Safe because the evaluator enforces a single active evaluation at
	// a time (see keygraph.Evaluator).
	currentInput *input.Source
}

// New builds an Engine for the given workspace.
func New(layout *workspace.Layout, cfg *config.WorkspaceConfig, settings *config.Settings) (*Engine, error) {
	repos, err := cfg.ResolveRepositories()
	if err != nil {
		return nil, fmt.Errorf("resolve repositories: %w", err)
	}

	e := &Engine{Layout: layout, Config: cfg, Settings: settings, Evaluator: keygraph.NewEvaluator()}

	// jvm is the archetype every workspace project extends. It supplies
	// the RunEnvironmentKey default a project that never customizes its
	// run environment falls back to; a project-level binding (none
	// exists yet here) would take precedence, since BaseHolders lists
	// the project ahead of its archetypes.
	jvm := keygraph.NewArchetype("jvm", nil)
	if err := jvm.Set(RunEnvironmentKey.Key, func(*keygraph.Scope) (any, error) {
		env := buildRunEnvironment(os.Environ())
		env["JAVA_TOOL_OPTIONS"] = "-Dfile.encoding=UTF-8"
		return env, nil
	}); err != nil {
		return nil, err
	}
	jvm.Lock()

	project := keygraph.NewProject("workspace", layout.Root, jvm)
	if err := project.Set(RepositoriesKey.Key, func(*keygraph.Scope) (any, error) {
		return repos, nil
	}); err != nil {
		return nil, err
	}
	if err := project.Set(ResolveKey.Key, func(*keygraph.Scope) (any, error) {
		return e.resolveCoordinates(repos)
	}); err != nil {
		return nil, err
	}
	if err := project.Set(ClasspathKey.Key, func(*keygraph.Scope) (any, error) {
		graph, err := e.resolveCoordinates(repos)
		if err != nil {
			return nil, err
		}
		return classpathFrom(graph, nil), nil
	}); err != nil {
		return nil, err
	}
	if err := project.Set(AssembleKey.Key, func(*keygraph.Scope) (any, error) {
		graph, err := e.resolveCoordinates(repos)
		if err != nil {
			return nil, err
		}
		return assembleFrom(graph, nil)
	}); err != nil {
		return nil, err
	}
	project.Lock()

	e.RootScope = keygraph.BaseScope(project)
	e.Configurations, err = buildConfigurations(e, repos)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// buildConfigurations creates the built-in compile/runtime/test/provided
// Configuration holders a query can layer with a "config:" prefix. Each
// overrides ClasspathKey and AssembleKey to restrict the resolved graph
// to the dependency scopes visible from that configuration (spec.md
// §4.4's scope-propagation table); ResolveKey and RepositoriesKey are
// left to the project's own binding, since the full dependency graph
// doesn't vary by configuration.
func buildConfigurations(e *Engine, repos []depgraph.Repository) (map[string]*keygraph.Configuration, error) {
	configs := make(map[string]*keygraph.Configuration, len(configurationScopes))
	for name, visible := range configurationScopes {
		cfg := keygraph.NewConfiguration(name, nil)
		if err := cfg.Set(ClasspathKey.Key, func(*keygraph.Scope) (any, error) {
			graph, err := e.resolveCoordinates(repos)
			if err != nil {
				return nil, err
			}
			return classpathFrom(graph, visible), nil
		}); err != nil {
			return nil, err
		}
		if err := cfg.Set(AssembleKey.Key, func(*keygraph.Scope) (any, error) {
			graph, err := e.resolveCoordinates(repos)
			if err != nil {
				return nil, err
			}
			return assembleFrom(graph, visible)
		}); err != nil {
			return nil, err
		}
		cfg.Lock()
		configs[name] = cfg
	}
	return configs, nil
}

// SetCurrentInput installs the input source bindings should read from
// for the query about to be evaluated.
func (e *Engine) SetCurrentInput(s *input.Source) {
	e.currentInput = s
}

func (e *Engine) resolveCoordinates(repos []depgraph.Repository) (*resolver.Graph, error) {
	roots, err := e.readRootDependencies()
	if err != nil {
		return nil, err
	}

	bindings, err := fetch.BindRepositories(repos, e.Layout.Root, http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("bind repositories: %w", err)
	}
	prog := progress.New(false, nil)
	switch {
	case e.Settings.Debug:
		prog = progress.New(true, progress.NewTreeHandler(os.Stderr))
	case e.Settings.Verbose:
		prog = progress.New(true, progress.DefaultStderrHandler())
	}
	fetcher := fetch.NewFetcher(bindings, e.Settings.Offline, prog)
	scopeTable := e.Config.ScopeTable()
	r := resolver.New(fetcher, prog, nil)
	r.SetScopeTable(scopeTable)
	graph := r.Resolve(roots)
	e.reportCacheFeatures(graph)
	return graph, nil
}

// reportCacheFeatures surfaces each resolved node's cache provenance
// (internal/fetch already computes FromCache per fetched artifact) as a
// "cache-hit"/"cache-miss" Feature event on the evaluator's listener,
// so a REPL/CLI listener watching the evaluation trace sees the same
// signal the resolver itself used to decide whether to hit the network.
func (e *Engine) reportCacheFeatures(graph *resolver.Graph) {
	listener := e.Evaluator.CurrentListener()
	for _, node := range graph.Nodes {
		if node.Artifact == nil {
			continue
		}
		if node.Artifact.FromCache {
			listener.Feature("cache-hit")
		} else {
			listener.Feature("cache-miss")
		}
	}
}

func (e *Engine) readRootDependencies() ([]depgraph.Dependency, error) {
	if e.currentInput == nil {
		return nil, fmt.Errorf("no coordinates input source for this evaluation")
	}
	raw, ok := e.currentInput.Read("coordinates", "dependency coordinates (group:name:version, comma-separated)", validateCoordinates)
	if !ok {
		return nil, fmt.Errorf("coordinates input is required")
	}
	return parseCoordinates(raw)
}

func validateCoordinates(v string) error {
	for _, part := range strings.Split(v, ",") {
		if _, ok := depgraph.ParseDependencyId(strings.TrimSpace(part)); !ok {
			return fmt.Errorf("invalid coordinate %q", part)
		}
	}
	return nil
}

func parseCoordinates(raw string) ([]depgraph.Dependency, error) {
	parts := strings.Split(raw, ",")
	deps := make([]depgraph.Dependency, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, ok := depgraph.ParseDependencyId(part)
		if !ok {
			return nil, fmt.Errorf("invalid coordinate %q", part)
		}
		deps = append(deps, depgraph.Dependency{ID: id, Scope: depgraph.ScopeCompile})
	}
	return deps, nil
}

// buildRunEnvironment turns a process's environment lines ("KEY=value",
// the same shape os.Environ returns) into the map a run task's spawned
// JVM subprocess would receive, adding a debug agent argument when
// WEMI_RUN_DEBUG_PORT names a valid port.
func buildRunEnvironment(environ []string) map[string]string {
	env := make(map[string]string, len(environ)+1)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	if raw, ok := env["WEMI_RUN_DEBUG_PORT"]; ok {
		if port, err := strconv.Atoi(raw); err == nil && port > 0 {
			env["JVM_DEBUG_ARG"] = fmt.Sprintf("-agentlib:jdwp=transport=dt_socket,server=y,suspend=n,address=*:%d", port)
		}
	}
	return env
}

// classpathFrom collects the sorted coordinates of nodes that carry an
// artifact, restricted to nodes whose scope is visible when visible is
// non-nil (a built-in configuration's view of the graph).
func classpathFrom(graph *resolver.Graph, visible map[depgraph.Scope]bool) []string {
	paths := make([]string, 0, len(graph.Nodes))
	for key, node := range graph.Nodes {
		if node.Artifact == nil {
			continue
		}
		if visible != nil && !visible[node.Scope] {
			continue
		}
		paths = append(paths, key)
	}
	sort.Strings(paths)
	return paths
}

func assembleFrom(graph *resolver.Graph, visible map[depgraph.Scope]bool) ([]assembly.ResolvedEntry, error) {
	p := assembly.NewPipeline()
	var candidates []assembly.Candidate
	for key, node := range graph.Nodes {
		if node.Artifact == nil {
			continue
		}
		if visible != nil && !visible[node.Scope] {
			continue
		}
		artifact := node.Artifact
		candidates = append(candidates, assembly.Candidate{
			InternalPath: key + ".jar",
			Own:          false,
			Read:         artifact.Data,
		})
	}
	return p.Run(candidates)
}
