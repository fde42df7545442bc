package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/scopebuild/scopebuild/internal/engine"
	"github.com/scopebuild/scopebuild/internal/input"
	"github.com/scopebuild/scopebuild/internal/query"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [query ...]",
	Short: "Evaluate one or more queries against the workspace",
	Long: `Run evaluates each query in order, stopping at the first failure and
abandoning the rest. A query follows "project/config1:config2:key input*"
(see "wemi repl" for the full grammar); results are printed according to
--machine-readable-output.

Examples:
  wemi run resolve com.example:app:1.0
  wemi run "classpath com.example:app:1.0; assemble com.example:app:1.0"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueries,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	for _, raw := range args {
		commands, err := query.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse query %q: %w", raw, err)
		}
		for _, c := range commands {
			if err := evaluateCommand(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// evaluateCommand dispatches one parsed query.Command through the
// engine's registry and prints its result. Each "config:" segment is
// layered onto the workspace's root scope in the order it was written,
// left to right, matching "wonderland:arctic:key" layering arctic over
// a scope that already has wonderland in it.
func evaluateCommand(c query.Command) error {
	if c.Project != "" && c.Project != eng.RootScope.Name {
		return fmt.Errorf("unknown project %q", c.Project)
	}

	scope := eng.RootScope
	for _, name := range c.Configurations {
		cfg, ok := eng.Configurations[name]
		if !ok {
			return fmt.Errorf("unknown configuration %q", name)
		}
		scope = eng.Evaluator.Layer(scope, cfg)
	}

	key, ok := engine.Registry[c.Key]
	if !ok {
		return fmt.Errorf("unknown key %q", c.Key)
	}

	named := make(map[string]string, len(c.Inputs))
	var positional []string
	for _, in := range c.Inputs {
		if in.Name != "" {
			named[in.Name] = in.Value
		} else {
			positional = append(positional, in.Value)
		}
	}
	eng.SetCurrentInput(input.NewSource(named, positional, settings.Interactive, os.Stdin, os.Stdout))

	value, err := eng.Evaluator.Evaluate(context.Background(), scope, key)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Key, err)
	}

	writeResult(os.Stdout, c.Key, value, settings.MachineReadableOutput)
	return nil
}
