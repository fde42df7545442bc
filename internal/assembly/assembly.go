// Package assembly merges classpath entries — directory trees and
// archives — into a single deterministic output archive, implementing
// rename, conflict-resolution, and map-filter stages. The grouping and
// sorted, deduplicated merge here follows the same dedup-map-then-sort
// idiom the original payload aggregator used for merging per-node
// results into one rolled-up view, now applied to archive entries
// instead of scan payloads.
package assembly

import (
	"fmt"
	"sort"
)

// Strategy names a conflict-resolution policy for entries that share a
// final internal path after renaming.
type Strategy string

const (
	FirstWins   Strategy = "first-wins"
	LastWins    Strategy = "last-wins"
	Concatenate Strategy = "concatenate"
	Fail        Strategy = "fail"
	Discard     Strategy = "discard"
)

// Candidate is one file discovered from a classpath entry, tagged with
// its provenance.
type Candidate struct {
	InternalPath string
	Own          bool
	Read         func() ([]byte, error)
	order        int // global discovery order, for deterministic tie-breaks
}

// RenameFunc maps a candidate's original internal path to its final
// one; the default is the identity function.
type RenameFunc func(path string) string

// StrategyChooser decides the merge strategy for a group of candidates
// sharing the same final path. NoConflictStrategyChooser fails on any
// group with more than one candidate.
type StrategyChooser func(path string, group []Candidate) Strategy

// NoConflictStrategyChooser is the default chooser: any unexpected
// conflict is an error.
func NoConflictStrategyChooser(string, []Candidate) Strategy { return Fail }

// MapFilter decides whether a resolved (path, data) pair survives into
// the final archive.
type MapFilter func(path string) bool

// KeepAll is the default MapFilter.
func KeepAll(string) bool { return true }

// Pipeline holds the configuration for one assembly run.
type Pipeline struct {
	Rename   RenameFunc
	Chooser  StrategyChooser
	Filter   MapFilter
	Resolver func(path string, group []Candidate, strategy Strategy) ([]byte, error)
}

// NewPipeline creates a Pipeline with identity rename, the
// fail-on-conflict chooser, and a keep-all filter.
func NewPipeline() *Pipeline {
	p := &Pipeline{
		Rename:  func(path string) string { return path },
		Chooser: NoConflictStrategyChooser,
		Filter:  KeepAll,
	}
	p.Resolver = p.defaultResolve
	return p
}

// ResolvedEntry is one final (path -> bytes) mapping ready for archive
// emission.
type ResolvedEntry struct {
	Path string
	Data []byte
}

// Run executes rename, conflict resolution, and the map-filter over
// candidates, returning entries sorted by internal path for
// deterministic emission.
func (p *Pipeline) Run(candidates []Candidate) ([]ResolvedEntry, error) {
	for i := range candidates {
		candidates[i].order = i
		candidates[i].InternalPath = p.Rename(candidates[i].InternalPath)
	}

	groups := make(map[string][]Candidate)
	for _, c := range candidates {
		groups[c.InternalPath] = append(groups[c.InternalPath], c)
	}

	var resolved []ResolvedEntry
	for path, group := range groups {
		if !p.Filter(path) {
			continue
		}
		strategy := Fail
		if len(group) > 1 {
			strategy = p.Chooser(path, group)
		} else {
			strategy = FirstWins
		}
		data, err := p.Resolver(path, group, strategy)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		if data == nil {
			continue // Discard
		}
		resolved = append(resolved, ResolvedEntry{Path: path, Data: data})
	}

	sort.Slice(resolved, func(i, j int) bool { return resolved[i].Path < resolved[j].Path })
	return resolved, nil
}

// singleWinner implements the "own candidate always wins a tie against
// a non-own candidate at the same path, regardless of order" contract:
// whichever candidate in group is own takes priority over the
// position-based pick that firstWins would otherwise select.
func singleWinner(group []Candidate, firstWins bool) Candidate {
	for _, c := range group {
		if c.Own {
			return c
		}
	}
	if firstWins {
		return group[0]
	}
	return group[len(group)-1]
}

func (p *Pipeline) defaultResolve(path string, group []Candidate, strategy Strategy) ([]byte, error) {
	switch strategy {
	case FirstWins:
		return singleWinner(group, true).Read()
	case LastWins:
		return singleWinner(group, false).Read()
	case Discard:
		return nil, nil
	case Concatenate:
		var out []byte
		for _, c := range group {
			data, err := c.Read()
			if err != nil {
				return nil, err
			}
			out = append(out, data...)
			if len(out) > 0 && out[len(out)-1] != '\n' {
				out = append(out, '\n')
			}
		}
		return out, nil
	case Fail:
		return nil, fmt.Errorf("%d conflicting entries at %q with no resolution strategy", len(group), path)
	default:
		return nil, fmt.Errorf("unknown conflict strategy %q", strategy)
	}
}
