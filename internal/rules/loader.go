// Package rules loads the engine's built-in default repository chain —
// the one a workspace gets when it declares none of its own — from
// embedded YAML, the way the teacher embeds its rule definitions.
package rules

import (
	"embed"
	"fmt"

	"github.com/scopebuild/scopebuild/internal/depgraph"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// repositoryDef is the on-disk shape of one entry in defaults/repositories.yaml.
type repositoryDef struct {
	Name                    string `yaml:"name"`
	URL                     string `yaml:"url"`
	ChecksumPolicy          string `yaml:"checksum_policy"`
	SnapshotRecheckInterval int    `yaml:"snapshot_recheck_interval"`
	Authoritative           bool   `yaml:"authoritative"`
	Local                   bool   `yaml:"local"`
}

// LoadDefaultRepositories returns the built-in repository chain (Maven
// Central plus a local file-system cache) used whenever a workspace
// config declares no repositories of its own.
func LoadDefaultRepositories() ([]depgraph.Repository, error) {
	data, err := defaultsFS.ReadFile("defaults/repositories.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded default repositories: %w", err)
	}

	var defs []repositoryDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default repositories: %w", err)
	}

	repos := make([]depgraph.Repository, 0, len(defs))
	for _, d := range defs {
		if d.Name == "" || d.URL == "" {
			return nil, fmt.Errorf("invalid default repository entry: name and url are required")
		}
		repos = append(repos, depgraph.Repository{
			Name:                    d.Name,
			URL:                     d.URL,
			ChecksumPolicy:          depgraph.ChecksumPolicy(defaultString(d.ChecksumPolicy, "warn")),
			SnapshotRecheckInterval: d.SnapshotRecheckInterval,
			Authoritative:           d.Authoritative,
			Local:                   d.Local,
		})
	}
	return repos, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
