package config

import (
	"os"
	"path/filepath"

	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/scopebuild/scopebuild/internal/rules"
	"gopkg.in/yaml.v3"
)

// RepositoryConfig is the on-disk shape of one repository entry in
// .wemi/workspace.yml.
type RepositoryConfig struct {
	Name                    string `yaml:"name"`
	URL                     string `yaml:"url"`
	ChecksumPolicy          string `yaml:"checksum_policy,omitempty"`
	SnapshotRecheckInterval int    `yaml:"snapshot_recheck_interval,omitempty"`
	Authoritative           bool   `yaml:"authoritative,omitempty"`
	Local                   bool   `yaml:"local,omitempty"`
}

// ScopeOverride is one entry of the workspace's Maven scope-mediation
// table: a dependency declared with Declared scope, reached through a
// parent edge of scope Parent, resolves to Result (an empty Result prunes
// the edge instead). Once any override is declared, the declared entries
// form the whole table: the built-in table is not consulted, so every
// (Parent, Declared) pair not listed is pruned.
type ScopeOverride struct {
	Parent   string `yaml:"parent"`
	Declared string `yaml:"declared"`
	Result   string `yaml:"result"`
}

// AssemblyConfig holds workspace-wide defaults for the fat-archive
// pipeline.
type AssemblyConfig struct {
	DefaultStrategy string   `yaml:"default_strategy,omitempty"` // first-wins, last-wins, concatenate, fail, discard
	ConcatenatePaths []string `yaml:"concatenate_paths,omitempty"`
	ExcludePaths     []string `yaml:"exclude_paths,omitempty"` // doublestar glob patterns
}

// WorkspaceConfig represents .wemi/workspace.yml: the per-workspace
// settings layered under CLI flags and environment variables.
type WorkspaceConfig struct {
	Properties     map[string]interface{} `yaml:"properties,omitempty"`
	Repositories   []RepositoryConfig      `yaml:"repositories,omitempty"`
	ScopeOverrides []ScopeOverride         `yaml:"scope_overrides,omitempty"`
	Assembly       AssemblyConfig          `yaml:"assembly,omitempty"`
	Query          QueryOptions            `yaml:"query,omitempty"`
}

// LoadWorkspaceConfig attempts to load .wemi/workspace.yml from the
// workspace root. Returns an empty config (not an error) if the file
// doesn't exist.
func LoadWorkspaceConfig(workspaceRoot string) (*WorkspaceConfig, error) {
	configPath := filepath.Join(workspaceRoot, ".wemi", "workspace.yml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &WorkspaceConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg WorkspaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveRepositories resolves the effective repository chain: the
// workspace's own declarations if any, otherwise the engine's built-in
// defaults.
func (c *WorkspaceConfig) ResolveRepositories() ([]depgraph.Repository, error) {
	if c == nil || len(c.Repositories) == 0 {
		return rules.LoadDefaultRepositories()
	}

	repos := make([]depgraph.Repository, 0, len(c.Repositories))
	for _, rc := range c.Repositories {
		policy := depgraph.ChecksumPolicy(rc.ChecksumPolicy)
		if policy == "" {
			policy = depgraph.ChecksumWarn
		}
		repos = append(repos, depgraph.Repository{
			Name:                    rc.Name,
			URL:                     rc.URL,
			ChecksumPolicy:          policy,
			SnapshotRecheckInterval: rc.SnapshotRecheckInterval,
			Authoritative:           rc.Authoritative,
			Local:                   rc.Local,
		})
	}
	return repos, nil
}

// ScopeTable builds a Maven scope-propagation table from the workspace's
// overrides, or nil if none were declared (callers should fall back to
// the resolver's built-in default in that case).
func (c *WorkspaceConfig) ScopeTable() map[depgraph.Scope]map[depgraph.Scope]depgraph.Scope {
	if c == nil || len(c.ScopeOverrides) == 0 {
		return nil
	}
	table := make(map[depgraph.Scope]map[depgraph.Scope]depgraph.Scope)
	for _, o := range c.ScopeOverrides {
		parent := depgraph.Scope(o.Parent)
		if table[parent] == nil {
			table[parent] = make(map[depgraph.Scope]depgraph.Scope)
		}
		if o.Result != "" {
			table[parent][depgraph.Scope(o.Declared)] = depgraph.Scope(o.Result)
		}
	}
	return table
}
