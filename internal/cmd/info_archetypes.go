package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var archetypesFormat string

var archetypesCmd = &cobra.Command{
	Use:   "archetypes",
	Short: "List the archetypes layered into the workspace's root scope",
	Long:  `Archetypes lists every archetype ancestor the workspace's project holder extends, most specific first, excluding the project holder itself.`,
	Run:   runArchetypes,
}

func init() {
	setupFormatFlag(archetypesCmd, &archetypesFormat)
}

// ArchetypesResult is the output for the archetypes command.
type ArchetypesResult struct {
	Archetypes []string `json:"archetypes"`
}

func (r *ArchetypesResult) ToJSON() interface{} { return r }

func (r *ArchetypesResult) ToText(w io.Writer) {
	if len(r.Archetypes) == 0 {
		fmt.Fprintln(w, "no archetypes")
		return
	}
	for _, name := range r.Archetypes {
		fmt.Fprintln(w, name)
	}
}

func runArchetypes(cmd *cobra.Command, args []string) {
	var names []string
	for _, h := range eng.RootScope.Holders[1:] {
		names = append(names, h.HolderName())
	}
	Output(&ArchetypesResult{Archetypes: names}, archetypesFormat)
}
