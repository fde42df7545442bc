// Command wemi runs the build engine's CLI: one-shot queries, the
// interactive REPL, and the info-style introspection subcommands.
package main

import "github.com/scopebuild/scopebuild/internal/cmd"

func main() {
	cmd.Execute()
}
