// Package idgen produces stable, content-derived identifiers used to key
// scope memoization and the resolver's graph fingerprint.
package idgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StableID derives a deterministic 20-character id from a sequence of
// parts, e.g. a project name plus its configuration stack. Scope
// identity (spec.md §3: "Scope identity depends on (project,
// configuration stack)") is computed this way so memoized scopes for an
// identical stack always collide on the same key.
func StableID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%s\x00", p)
	}
	return hex.EncodeToString(h.Sum(nil))[:20]
}
