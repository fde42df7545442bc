package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/scopebuild/scopebuild/internal/query"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive query loop",
	Long: `Repl reads one query per line from stdin and evaluates it against the
workspace, printing its result and continuing on to the next line even if
one query fails. Exit with ctrl-D or "exit".`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	return repl(os.Stdin, os.Stdout)
}

func repl(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "wemi> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		commands, err := query.Parse(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		for _, c := range commands {
			if err := evaluateCommand(c); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				break
			}
		}
	}
}
