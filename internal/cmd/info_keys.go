package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/scopebuild/scopebuild/internal/engine"
	"github.com/spf13/cobra"
)

var keysFormat string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List every key this workspace can evaluate",
	Long:  `Keys lists every built-in key by name, its description, and whether it has a default value, for "project/config:key" lookup from a query.`,
	Run:   runKeys,
}

func init() {
	setupFormatFlag(keysCmd, &keysFormat)
}

// KeyInfo describes one key available for a query to name.
type KeyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HasDefault  bool   `json:"has_default"`
}

// KeysResult is the output for the keys command.
type KeysResult struct {
	Keys []KeyInfo `json:"keys"`
}

func (r *KeysResult) ToJSON() interface{} { return r }

func (r *KeysResult) ToText(w io.Writer) {
	for _, k := range r.Keys {
		fmt.Fprintf(w, "%s — %s\n", k.Name, k.Description)
	}
	fmt.Fprintf(w, "\nTotal: %d keys\n", len(r.Keys))
}

func runKeys(cmd *cobra.Command, args []string) {
	names := make([]string, 0, len(engine.Registry))
	for name := range engine.Registry {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([]KeyInfo, 0, len(names))
	for _, name := range names {
		k := engine.Registry[name]
		keys = append(keys, KeyInfo{Name: k.Name, Description: k.Description, HasDefault: k.HasDefault()})
	}

	Output(&KeysResult{Keys: keys}, keysFormat)
}
