package keygraph

import "github.com/scopebuild/scopebuild/internal/idgen"

// Scope is a reverse linked-list node over an ordered holder list. The
// root scope of a project is its base scope with no parent; layering a
// configuration over a scope produces a new, memoized Scope.
type Scope struct {
	Name    string
	Holders []Holder
	Parent  *Scope

	id string
}

// BaseScope builds the root scope for project p: project holder first,
// then its archetypes and their parents, most specific first.
func BaseScope(p *Project) *Scope {
	return &Scope{Name: p.HolderName(), Holders: p.BaseHolders(), id: "project:" + p.HolderName()}
}

// scopeCache memoizes layer(parent, configuration) by the parent's
// identity and the configuration's identity, matching the "scopes for a
// given (parent, C) pair are memoized" invariant.
type scopeCache struct {
	entries map[string]*Scope
}

func newScopeCache() *scopeCache {
	return &scopeCache{entries: make(map[string]*Scope)}
}

// Layer computes the scope produced by layering configuration c over
// parent, memoizing the result for this (parent, c) pair.
func (sc *scopeCache) Layer(parent *Scope, c *Configuration) *Scope {
	key := idgen.StableID(parent.id, c.HolderName())
	if s, ok := sc.entries[key]; ok {
		return s
	}
	holders := layerHolders(parent.Holders, c)
	s := &Scope{Name: c.HolderName(), Holders: holders, Parent: parent, id: key}
	sc.entries[key] = s
	return s
}

// layerHolders implements spec.md §3/§4.1's configuration-extension
// rule in both directions it names:
//
//  1. "any holder in S that extends C" — a holder already in existing
//     may itself declare an extension targeting c (or one of c's
//     ancestors). That extension outranks C entirely: C is being
//     freshly brought into scope specifically so the already-present
//     holder's specialization of it takes over, so it is hoisted above
//     both c and the rest of existing.
//  2. "extensions ... provided by C and its ancestors" — c's own chain
//     may declare an extension targeting a holder already in existing.
//     That extension is inserted directly above its target within the
//     existing list, without outranking c itself: c's own bindings
//     still take precedence over a specialization of something it
//     merely shadows.
//
// Both directions resolve extensions-of-extensions recursively
// (spec.md §8 scenario 6), and memoization happens one layer up in
// scopeCache.Layer.
func layerHolders(existing []Holder, c *Configuration) []Holder {
	var hoisted []Holder
	hoistedSeen := make(map[string]bool)
	for cur := c; cur != nil; cur = cur.Parent {
		ext := findExtensionAmong(existing, cur.HolderName())
		if ext == nil {
			continue
		}
		hoisted = append(hoisted, resolveExtensionChainAmong(existing, ext, hoistedSeen)...)
	}

	inlineSeen := make(map[string]bool)
	rebuilt := make([]Holder, 0, len(existing))
	for _, h := range existing {
		if ext := findExtension(c, h.HolderName()); ext != nil {
			rebuilt = append(rebuilt, resolveExtensionChain(ext, c, inlineSeen)...)
		}
		rebuilt = append(rebuilt, h)
	}

	var cfgChain []Holder
	for cur := c; cur != nil; cur = cur.Parent {
		cfgChain = append(cfgChain, cur)
	}

	out := make([]Holder, 0, len(hoisted)+len(cfgChain)+len(rebuilt))
	out = append(out, hoisted...)
	out = append(out, cfgChain...)
	out = append(out, rebuilt...)
	return out
}

// findExtension looks for a ConfigurationExtension targeting
// targetName, searching c and its ancestors, nearest first.
func findExtension(c *Configuration, targetName string) *ConfigurationExtension {
	for cur := c; cur != nil; cur = cur.Parent {
		if ext := cur.extensionFor(targetName); ext != nil {
			return ext
		}
	}
	return nil
}

// findExtensionAmong looks for a ConfigurationExtension targeting
// targetName declared on any of holders, first match wins.
func findExtensionAmong(holders []Holder, targetName string) *ConfigurationExtension {
	for _, h := range holders {
		if ext := h.extensionFor(targetName); ext != nil {
			return ext
		}
	}
	return nil
}

// resolveExtensionChain expands ext into itself plus any further
// extension c's own chain declares targeting ext's own name,
// recursively, guarding against cycles via seen.
func resolveExtensionChain(ext *ConfigurationExtension, c *Configuration, seen map[string]bool) []Holder {
	if seen[ext.HolderName()] {
		return nil
	}
	seen[ext.HolderName()] = true

	var out []Holder
	if further := findExtension(c, ext.HolderName()); further != nil && further != ext {
		out = append(out, resolveExtensionChain(further, c, seen)...)
	}
	out = append(out, ext)
	return out
}

// resolveExtensionChainAmong expands ext into itself plus any further
// extension declared among holders targeting ext's own name,
// recursively, guarding against cycles via seen.
func resolveExtensionChainAmong(holders []Holder, ext *ConfigurationExtension, seen map[string]bool) []Holder {
	if seen[ext.HolderName()] {
		return nil
	}
	seen[ext.HolderName()] = true

	var out []Holder
	if further := findExtensionAmong(holders, ext.HolderName()); further != nil && further != ext {
		out = append(out, resolveExtensionChainAmong(holders, further, seen)...)
	}
	out = append(out, ext)
	return out
}
