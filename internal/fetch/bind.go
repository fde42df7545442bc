package fetch

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/scopebuild/scopebuild/internal/depgraph"
)

// BindRepositories builds the ordered []Binding a Fetcher needs from a
// workspace's effective repository list: each repository's URL is routed
// to an FSProvider (file:) or HTTPProvider (http/https), "{workspace}" in
// a URL is substituted with workspaceRoot, and any remote repository with
// no declared Cache is wired to mirror into the first local repository in
// the chain, matching spec.md §4.2's write-through cache requirement.
func BindRepositories(repos []depgraph.Repository, workspaceRoot string, httpClient *http.Client) ([]Binding, error) {
	resolved := make([]depgraph.Repository, len(repos))
	copy(resolved, repos)

	var firstLocalName string
	for _, r := range resolved {
		if r.Local {
			firstLocalName = r.Name
			break
		}
	}
	if firstLocalName != "" {
		for i := range resolved {
			if !resolved[i].Local && resolved[i].Cache == nil {
				resolved[i].Cache = &depgraph.Repository{Name: firstLocalName}
			}
		}
	}

	bindings := make([]Binding, 0, len(resolved))
	for _, repo := range resolved {
		provider, err := providerFor(repo, workspaceRoot, httpClient)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{Repo: repo, Provider: provider})
	}
	return bindings, nil
}

func providerFor(repo depgraph.Repository, workspaceRoot string, httpClient *http.Client) (RepoProvider, error) {
	url := strings.ReplaceAll(repo.URL, "{workspace}", workspaceRoot)
	switch {
	case strings.HasPrefix(url, "file://"):
		return NewFSProvider(strings.TrimPrefix(url, "file://")), nil
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return NewHTTPProvider(url, httpClient), nil
	default:
		return nil, fmt.Errorf("repository %s: unsupported URL scheme %q", repo.Name, repo.URL)
	}
}
