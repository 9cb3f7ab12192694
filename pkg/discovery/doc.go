// Package discovery resolves plugin descriptors into the
// version-checked plugin set the registry loads (spec.md §4.7): API
// version compatibility, dependency requirement matching, and
// dependency-graph cycle detection, plus parsing of external plugin
// descriptor files.
//
// Grounded on original_source/src/plugin/compatibility.rs and
// discovery.rs: API versions are date-coded integers (YYYYMMDD) and
// "compatible" means same year; dependency requirements use the same
// four forms (exact, "*", "^major.minor.patch", "~major.minor.patch")
// compared field-by-field rather than via a general semver library, to
// match the original's exact acceptance/rejection behaviour term for
// term.
package discovery
