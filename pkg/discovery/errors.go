package discovery

import "errors"

var (
	// ErrVersionIncompatible is returned when a plugin's API version
	// does not share the host's major (year) version.
	ErrVersionIncompatible = errors.New("discovery: plugin API version incompatible")

	// ErrDependencyMissing is returned when a required, non-optional
	// dependency is not present among the candidate plugin set.
	ErrDependencyMissing = errors.New("discovery: required dependency not available")

	// ErrDependencyVersion is returned when a dependency is present but
	// its version does not satisfy the declared requirement.
	ErrDependencyVersion = errors.New("discovery: dependency version requirement not satisfied")

	// ErrDependencyCycle is returned when a plugin's dependency graph
	// contains a cycle.
	ErrDependencyCycle = errors.New("discovery: circular plugin dependency")

	// ErrDescriptorInvalid wraps the reason an external plugin
	// descriptor file was skipped: it failed to parse or is missing
	// required fields.
	ErrDescriptorInvalid = errors.New("discovery: invalid plugin descriptor")
)
