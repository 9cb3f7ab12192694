package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchRequirement(t *testing.T) {
	tests := []struct {
		name        string
		requirement string
		version     string
		expected    bool
	}{
		{"wildcard", "*", "2.5.3", true},
		{"exact match", "1.0.0", "1.0.0", true},
		{"exact mismatch", "1.0.0", "1.0.1", false},
		{"caret same major higher patch", "^1.0.0", "1.9.9", true},
		{"caret different major", "^1.0.0", "2.0.0", false},
		{"tilde same minor higher patch", "~1.2.0", "1.2.5", true},
		{"tilde different minor", "~1.2.0", "1.3.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MatchRequirement(tt.requirement, tt.version))
		})
	}
}

func TestAPICompatible(t *testing.T) {
	assert.True(t, APICompatible(20250727, 20250101))
	assert.True(t, APICompatible(20250727, 20251231))
	assert.False(t, APICompatible(20250727, 20240727))
	assert.False(t, APICompatible(20250727, 20260727))
}

func TestAPIMajorVersion(t *testing.T) {
	assert.Equal(t, 2025, APIMajorVersion(20250727))
	assert.Equal(t, 2024, APIMajorVersion(20240101))
}

func TestValidateDependencies(t *testing.T) {
	plugin := Candidate{
		Name:    "consumer",
		Version: "1.0.0",
		Dependencies: []Dependency{
			{Name: "producer", Requirement: "1.0.0"},
		},
	}
	producer := Candidate{Name: "producer", Version: "1.0.0"}

	t.Run("dependency satisfied", func(t *testing.T) {
		err := ValidateDependencies(plugin, []Candidate{producer})
		assert.NoError(t, err)
	})

	t.Run("dependency missing", func(t *testing.T) {
		err := ValidateDependencies(plugin, nil)
		assert.ErrorIs(t, err, ErrDependencyMissing)
	})

	t.Run("optional dependency missing is fine", func(t *testing.T) {
		optionalPlugin := Candidate{
			Name:         "consumer",
			Version:      "1.0.0",
			Dependencies: []Dependency{{Name: "producer", Requirement: "1.0.0", Optional: true}},
		}
		err := ValidateDependencies(optionalPlugin, nil)
		assert.NoError(t, err)
	})

	t.Run("dependency version mismatch", func(t *testing.T) {
		oldProducer := Candidate{Name: "producer", Version: "0.9.0"}
		err := ValidateDependencies(plugin, []Candidate{oldProducer})
		assert.ErrorIs(t, err, ErrDependencyVersion)
	})

	t.Run("circular dependency detected", func(t *testing.T) {
		a := Candidate{Name: "a", Dependencies: []Dependency{{Name: "b", Requirement: "*"}}}
		b := Candidate{Name: "b", Dependencies: []Dependency{{Name: "a", Requirement: "*"}}}
		err := ValidateDependencies(a, []Candidate{b})
		assert.ErrorIs(t, err, ErrDependencyCycle)
	})
}
