package pom

import "strings"

// ActiveProfiles selects the profiles from proj that apply given the
// caller-supplied activation properties (e.g. from workspace settings or
// -D flags on the query line). Profiles explicitly activated by a
// matching condition take precedence; when none match, profiles marked
// activeByDefault apply — mirroring Maven's own fallback rule.
func ActiveProfiles(profiles []Profile, activeProps map[string]string) []Profile {
	var explicit, defaults []Profile
	for _, p := range profiles {
		if strings.EqualFold(strings.TrimSpace(p.Activation.ActiveByDefault), "true") {
			defaults = append(defaults, p)
		}
		if isActive(p.Activation, activeProps) {
			explicit = append(explicit, p)
		}
	}
	if len(explicit) > 0 {
		return explicit
	}
	return defaults
}

// isActive evaluates property-based activation only: JDK/OS/file
// conditions require information this engine does not model (no JVM
// toolchain detection, no build-time filesystem probing) and are never
// activated, matching the conservative stance used for static
// resolution elsewhere in this package.
func isActive(a Activation, activeProps map[string]string) bool {
	if a.Property.Name == "" {
		return false
	}
	name := a.Property.Name
	negate := strings.HasPrefix(name, "!")
	if negate {
		name = name[1:]
	}
	val, set := activeProps[name]
	if a.Property.Value == "" {
		if negate {
			return !set
		}
		return set
	}
	matches := set && val == a.Property.Value
	if negate {
		return !matches
	}
	return matches
}
