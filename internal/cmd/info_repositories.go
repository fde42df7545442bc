package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var repositoriesFormat string

var repositoriesCmd = &cobra.Command{
	Use:   "repositories",
	Short: "List the effective repository chain",
	Long:  `Repositories lists the workspace's effective repository chain in the order the workspace config (or the built-in default) declares it.`,
	Run:   runRepositories,
}

func init() {
	setupFormatFlag(repositoriesCmd, &repositoriesFormat)
}

// RepositoryInfo describes one repository in the effective chain.
type RepositoryInfo struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	ChecksumPolicy string `json:"checksum_policy"`
	Authoritative  bool   `json:"authoritative"`
	Local          bool   `json:"local"`
}

// RepositoriesResult is the output for the repositories command.
type RepositoriesResult struct {
	Repositories []RepositoryInfo `json:"repositories"`
}

func (r *RepositoriesResult) ToJSON() interface{} { return r }

func (r *RepositoriesResult) ToText(w io.Writer) {
	for _, repo := range r.Repositories {
		tag := ""
		if repo.Local {
			tag = " (local)"
		} else if repo.Authoritative {
			tag = " (authoritative)"
		}
		fmt.Fprintf(w, "%s: %s%s\n", repo.Name, repo.URL, tag)
	}
	fmt.Fprintf(w, "\nTotal: %d repositories\n", len(r.Repositories))
}

func runRepositories(cmd *cobra.Command, args []string) {
	repos, err := eng.Config.ResolveRepositories()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed to resolve repositories: %v\n", err)
		return
	}

	infos := make([]RepositoryInfo, 0, len(repos))
	for _, r := range repos {
		infos = append(infos, RepositoryInfo{
			Name:           r.Name,
			URL:            r.URL,
			ChecksumPolicy: string(r.ChecksumPolicy),
			Authoritative:  r.Authoritative,
			Local:          r.Local,
		})
	}

	Output(&RepositoriesResult{Repositories: infos}, repositoriesFormat)
}
