package pom

import "regexp"

var propertyRefRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// resolveRefs substitutes every ${name} reference in value using props,
// recursively, detecting cycles by tracking the names currently being
// expanded on the call stack. An unresolved or cyclic reference is left
// verbatim, matching Maven's own lenient behavior.
func resolveRefs(value string, props map[string]string, seen map[string]bool) string {
	if !containsRef(value) {
		return value
	}
	if seen == nil {
		seen = make(map[string]bool)
	}
	return propertyRefRegex.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-1]
		if seen[name] {
			return match
		}
		resolved, ok := props[name]
		if !ok {
			return match
		}
		seen[name] = true
		out := resolveRefs(resolved, props, seen)
		delete(seen, name)
		return out
	})
}

func containsRef(s string) bool {
	return propertyRefRegex.MatchString(s)
}

// ResolveVersion applies property substitution to a dependency's raw
// version string.
func ResolveVersion(version string, props map[string]string) string {
	return resolveRefs(version, props, make(map[string]bool))
}

// projectCoordinateProperties returns the project.*/pom.* self-reference
// properties Maven implicitly defines for every POM.
func projectCoordinateProperties(groupID, artifactID, version string) map[string]string {
	props := make(map[string]string)
	if groupID != "" {
		props["project.groupId"] = groupID
		props["pom.groupId"] = groupID
		props["groupId"] = groupID
	}
	if artifactID != "" {
		props["project.artifactId"] = artifactID
		props["pom.artifactId"] = artifactID
		props["artifactId"] = artifactID
	}
	if version != "" {
		props["project.version"] = version
		props["pom.version"] = version
		props["version"] = version
	}
	return props
}

func mergeInto(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
