package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/scopebuild/scopebuild/internal/assembly"
	"github.com/scopebuild/scopebuild/internal/depgraph"
	"github.com/scopebuild/scopebuild/internal/resolver"
)

// queryResult is the stable shape a machine-readable query result is
// marshaled into: a scalar when the key's value collapses to one item,
// an array otherwise.
type queryResult struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// presentLines renders any of the five built-in keys' result types into
// an ordered list of plain-text lines, the common representation every
// output format (shell, json, text) builds from.
func presentLines(value any) []string {
	switch v := value.(type) {
	case []depgraph.Repository:
		lines := make([]string, 0, len(v))
		for _, r := range v {
			lines = append(lines, fmt.Sprintf("%s=%s", r.Name, r.URL))
		}
		return lines
	case *resolver.Graph:
		lines := make([]string, 0, len(v.Nodes))
		for k, node := range v.Nodes {
			if node.Overridden {
				lines = append(lines, fmt.Sprintf("%s (overridden by %s)", k, node.OverriddenBy))
				continue
			}
			lines = append(lines, k)
		}
		sort.Strings(lines)
		return lines
	case []string:
		lines := make([]string, len(v))
		copy(lines, v)
		return lines
	case []assembly.ResolvedEntry:
		lines := make([]string, 0, len(v))
		for _, e := range v {
			lines = append(lines, e.Path)
		}
		return lines
	case map[string]string:
		lines := make([]string, 0, len(v))
		for k, val := range v {
			lines = append(lines, fmt.Sprintf("%s=%s", k, val))
		}
		sort.Strings(lines)
		return lines
	default:
		return []string{fmt.Sprintf("%v", v)}
	}
}

// writeResult prints one key's evaluated value in the requested format:
// "shell" collapses it to a single line, "json" emits a queryResult
// object, and anything else (including "") prints human-readable text.
func writeResult(w io.Writer, keyName string, value any, format string) {
	lines := presentLines(value)

	switch format {
	case "shell":
		fmt.Fprintln(w, strings.Join(lines, " "))
	case "json":
		var payload interface{} = lines
		if len(lines) == 1 {
			payload = lines[0]
		}
		data, err := json.Marshal(queryResult{Key: keyName, Value: payload})
		if err != nil {
			fmt.Fprintf(w, `{"key":%q,"error":%q}`+"\n", keyName, err.Error())
			return
		}
		fmt.Fprintln(w, string(data))
	default:
		if len(lines) == 1 {
			fmt.Fprintf(w, "%s: %s\n", keyName, lines[0])
			return
		}
		fmt.Fprintf(w, "%s:\n", keyName)
		for _, line := range lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}
