package discovery

import (
	"strconv"
	"strings"
)

// Dependency declares one plugin's requirement on another plugin's
// presence and version, per spec.md §6.
type Dependency struct {
	Name        string
	Requirement string // "*", "1.2.3", "^1.2.3", or "~1.2.3"
	Optional    bool
}

// MatchRequirement reports whether version satisfies requirement.
// Supported forms, matching original_source/src/plugin/compatibility.rs
// term for term:
//
//   - "*"        matches any version
//   - "^X.Y.Z"   matches any version with the same major X that is >= X.Y.Z
//   - "~X.Y.Z"   matches any version with the same major.minor X.Y that is >= X.Y.Z
//   - otherwise  exact string equality
func MatchRequirement(requirement, version string) bool {
	if requirement == "*" {
		return true
	}
	if req, ok := strings.CutPrefix(requirement, "^"); ok {
		return matchesCaret(req, version)
	}
	if req, ok := strings.CutPrefix(requirement, "~"); ok {
		return matchesTilde(req, version)
	}
	return requirement == version
}

func parseVersionParts(v string) []int {
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		parts = append(parts, n)
	}
	return parts
}

func matchesCaret(requirement, version string) bool {
	req := parseVersionParts(requirement)
	ver := parseVersionParts(version)
	if len(req) == 0 || len(ver) == 0 {
		return false
	}
	if req[0] != ver[0] {
		return false
	}
	return compareVersionParts(ver, req) >= 0
}

func matchesTilde(requirement, version string) bool {
	req := parseVersionParts(requirement)
	ver := parseVersionParts(version)
	if len(req) < 2 || len(ver) < 2 {
		return false
	}
	if req[0] != ver[0] || req[1] != ver[1] {
		return false
	}
	return compareVersionParts(ver, req) >= 0
}

func compareVersionParts(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var pa, pb int
		if i < len(a) {
			pa = a[i]
		}
		if i < len(b) {
			pb = b[i]
		}
		if pa < pb {
			return -1
		}
		if pa > pb {
			return 1
		}
	}
	return 0
}

// APIMajorVersion returns the year component of a date-coded API
// version (YYYYMMDD), e.g. 20250727 -> 2025.
func APIMajorVersion(apiVersion int) int {
	return apiVersion / 10000
}

// APICompatible reports whether a plugin's API version shares the
// host's major (year) version.
func APICompatible(hostAPIVersion, pluginAPIVersion int) bool {
	return APIMajorVersion(hostAPIVersion) == APIMajorVersion(pluginAPIVersion)
}

// Candidate is the minimal view of a registered plugin that dependency
// validation and cycle detection need: its name, version, and the
// dependencies it declares.
type Candidate struct {
	Name         string
	Version      string
	Dependencies []Dependency
}

// ValidateDependencies checks that every non-optional dependency of
// candidate is present in available with a satisfying version, and
// that candidate is not part of a dependency cycle within available.
func ValidateDependencies(candidate Candidate, available []Candidate) error {
	index := make(map[string]Candidate, len(available))
	for _, c := range available {
		index[c.Name] = c
	}
	index[candidate.Name] = candidate

	if hasCycle(candidate.Name, index, map[string]bool{}, map[string]bool{}) {
		return ErrDependencyCycle
	}

	for _, dep := range candidate.Dependencies {
		found, ok := index[dep.Name]
		if !ok {
			if dep.Optional {
				continue
			}
			return ErrDependencyMissing
		}
		if !MatchRequirement(dep.Requirement, found.Version) {
			return ErrDependencyVersion
		}
	}
	return nil
}

// hasCycle performs a DFS from name through the dependency graph
// described by index, using the visiting/visited sets to detect a
// back-edge (cycle) versus a plugin already fully explored on another
// branch, mirroring has_circular_dependency_recursive in
// compatibility.rs.
func hasCycle(name string, index map[string]Candidate, visiting, visited map[string]bool) bool {
	if visiting[name] {
		return true
	}
	if visited[name] {
		return false
	}
	visiting[name] = true
	if c, ok := index[name]; ok {
		for _, dep := range c.Dependencies {
			if _, exists := index[dep.Name]; !exists {
				continue
			}
			if hasCycle(dep.Name, index, visiting, visited) {
				return true
			}
		}
	}
	delete(visiting, name)
	visited[name] = true
	return false
}
