package discovery

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/deeprave/gstats-sub001/pkg/log"
	"gopkg.in/yaml.v3"
)

// Descriptor is the on-disk (or builtin-factory) record describing a
// plugin's identity, version, capabilities, and dependencies, per
// spec.md §4.7 and the glossary entry it adds.
type Descriptor struct {
	Name          string       `yaml:"name" json:"name"`
	Version       string       `yaml:"version" json:"version"`
	APIVersion    int          `yaml:"api_version" json:"api_version"`
	PluginType    string       `yaml:"plugin_type" json:"plugin_type"`
	Priority      int          `yaml:"priority" json:"priority"`
	LoadByDefault bool         `yaml:"load_by_default" json:"load_by_default"`
	Capabilities  []string     `yaml:"capabilities" json:"capabilities"`
	Dependencies  []Dependency `yaml:"dependencies" json:"dependencies"`

	// Builtin is true for descriptors synthesized from a builtin
	// factory registration rather than parsed from a file. Never set
	// from file content.
	Builtin bool `yaml:"-" json:"-"`

	// SourcePath is the file the descriptor was parsed from, empty for
	// builtins.
	SourcePath string `yaml:"-" json:"-"`
}

func (d Descriptor) Candidate() Candidate {
	return Candidate{Name: d.Name, Version: d.Version, Dependencies: d.Dependencies}
}

// Discover builds the full set of plugin descriptors: one per name in
// builtinNames (synthesized via the registered builtin factories, see
// RegisterBuiltinDescriptor) plus every descriptor file found by
// recursively walking externalDir. An external descriptor with the same
// Name as a builtin overrides it, per spec.md §4.7. A descriptor file
// that fails to parse is skipped with a warning; the returned error
// covers only failures of the directory walk itself.
func Discover(builtinNames []string, externalDir string) ([]Descriptor, error) {
	byName := make(map[string]Descriptor, len(builtinNames))
	for _, name := range builtinNames {
		desc, ok := builtinDescriptor(name)
		if !ok {
			continue
		}
		byName[name] = desc
	}

	if externalDir != "" {
		external, err := walkExternal(externalDir)
		if err != nil {
			return nil, err
		}
		for _, desc := range external {
			byName[desc.Name] = desc
		}
	}

	out := make([]Descriptor, 0, len(byName))
	for _, desc := range byName {
		out = append(out, desc)
	}
	return out, nil
}

func walkExternal(dir string) ([]Descriptor, error) {
	var out []Descriptor
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			return nil
		}
		desc, err := parseDescriptorFile(path, ext)
		if err != nil {
			log.WithComponent("discovery").Warn().
				Err(fmt.Errorf("%w: %s: %v", ErrDescriptorInvalid, path, err)).
				Msg("skipping invalid plugin descriptor")
			return nil
		}
		desc.SourcePath = path
		out = append(out, desc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseDescriptorFile(path, ext string) (Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}
	var desc Descriptor
	if ext == ".json" {
		err = json.Unmarshal(raw, &desc)
	} else {
		err = yaml.Unmarshal(raw, &desc)
	}
	if err != nil {
		return Descriptor{}, err
	}
	if desc.Name == "" {
		return Descriptor{}, fmt.Errorf("missing name")
	}
	return desc, nil
}

var builtinFactories = map[string]Descriptor{}

// RegisterBuiltinDescriptor records the descriptor for a builtin plugin
// factory so Discover can include it without touching the filesystem.
// Called from each builtin plugin package's init.
func RegisterBuiltinDescriptor(desc Descriptor) {
	desc.Builtin = true
	builtinFactories[desc.Name] = desc
}

func builtinDescriptor(name string) (Descriptor, bool) {
	desc, ok := builtinFactories[name]
	return desc, ok
}
