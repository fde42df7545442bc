// Package input implements ordered sourcing of user-supplied parameters
// for key evaluation: named inputs, positional inputs, and an
// interactive prompt fallback, each consumed at most once per
// evaluation (spec.md §4.4).
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Validator rejects a candidate string, returning a description of why
// when it does.
type Validator func(value string) error

// NoValidation accepts every candidate, including the empty string.
func NoValidation(string) error { return nil }

// Source holds the inputs collected for one top-level query invocation:
// named (key=value) pairs and positional ("free") values, in
// declaration order, plus whether interactive prompting is allowed.
type Source struct {
	named       map[string]*namedInput
	namedOrder  []string
	positional  []*positionalInput
	interactive bool
	in          io.Reader
	out         io.Writer
}

type namedInput struct {
	value    string
	consumed bool
}

type positionalInput struct {
	value    string
	consumed bool
}

// NewSource builds a Source from the (name, value) pairs and bare
// positional values produced by the query parser. interactive forces
// prompting even when stdin/stdout are not a TTY (e.g. --interactive).
func NewSource(named map[string]string, positional []string, interactive bool, in io.Reader, out io.Writer) *Source {
	s := &Source{
		named:       make(map[string]*namedInput, len(named)),
		positional:  make([]*positionalInput, 0, len(positional)),
		interactive: interactive,
		in:          in,
		out:         out,
	}
	for k, v := range named {
		s.named[k] = &namedInput{value: v}
		s.namedOrder = append(s.namedOrder, k)
	}
	for _, v := range positional {
		s.positional = append(s.positional, &positionalInput{value: v})
	}
	return s
}

// IsInteractive reports whether a prompt may be shown: explicitly
// forced, or both stdin and stdout are attached to a terminal.
func (s *Source) IsInteractive(stdinFd, stdoutFd uintptr) bool {
	return s.interactive || (isatty.IsTerminal(stdinFd) && isatty.IsTerminal(stdoutFd))
}

// Read resolves one value for inputKey: the first unconsumed named
// input matching inputKey, else the first unconsumed positional input,
// else an interactive prompt when IsInteractive allows one (in and out
// must be the terminal's files unless prompting is forced). validator may reject a
// candidate, in which case the next source is tried (and the prompt, if
// reached, re-asks until accepted or canceled).
func (s *Source) Read(inputKey, prompt string, validator Validator) (string, bool) {
	if validator == nil {
		validator = NoValidation
	}

	if n, ok := s.named[inputKey]; ok && !n.consumed {
		if err := validator(n.value); err == nil {
			n.consumed = true
			return n.value, true
		}
	}

	for _, p := range s.positional {
		if p.consumed {
			continue
		}
		if err := validator(p.value); err == nil {
			p.consumed = true
			return p.value, true
		}
	}

	if s.in == nil || s.out == nil {
		return "", false
	}
	if !s.interactive {
		inFile, inOK := s.in.(*os.File)
		outFile, outOK := s.out.(*os.File)
		if !inOK || !outOK || !s.IsInteractive(inFile.Fd(), outFile.Fd()) {
			return "", false
		}
	}
	return s.promptLoop(inputKey, prompt, validator)
}

func (s *Source) promptLoop(inputKey, prompt string, validator Validator) (string, bool) {
	reader := bufio.NewReader(s.in)
	for {
		fmt.Fprintf(s.out, "%s: ", displayPrompt(inputKey, prompt))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", false
		}
		line = strings.TrimRight(line, "\r\n")
		if err := validator(line); err != nil {
			fmt.Fprintf(s.out, "invalid value: %v\n", err)
			continue
		}
		return line, true
	}
}

func displayPrompt(inputKey, prompt string) string {
	if prompt != "" {
		return prompt
	}
	return inputKey
}
