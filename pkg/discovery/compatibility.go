package discovery

import "fmt"

// CheckCompatibility validates one descriptor against the host API
// version and the full candidate set (for dependency and cycle
// checks), per spec.md §4.2/§4.7. It wraps the sentinel errors in this
// package with the descriptor's name for diagnostics.
func CheckCompatibility(hostAPIVersion int, desc Descriptor, available []Descriptor) error {
	if !APICompatible(hostAPIVersion, desc.APIVersion) {
		return fmt.Errorf("%w: %s requires API version %d, host is %d",
			ErrVersionIncompatible, desc.Name, desc.APIVersion, hostAPIVersion)
	}

	candidates := make([]Candidate, 0, len(available))
	for _, d := range available {
		candidates = append(candidates, d.Candidate())
	}
	if err := ValidateDependencies(desc.Candidate(), candidates); err != nil {
		return fmt.Errorf("%s: %w", desc.Name, err)
	}
	return nil
}
