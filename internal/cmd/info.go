package cmd

import (
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Inspect the workspace: keys, archetypes, and repositories",
	Long:  `Info lists what a query can name: the built-in keys, any archetypes in scope, and the effective repository chain.`,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.AddCommand(keysCmd)
	infoCmd.AddCommand(archetypesCmd)
	infoCmd.AddCommand(repositoriesCmd)
}
