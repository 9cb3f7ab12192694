package plugin

import (
	"fmt"
	"sort"
	"strings"
)

// Resolution is the outcome of resolving a command string to a plugin
// and function, per spec.md §6's command-resolution scenario.
type Resolution struct {
	PluginName   string
	FunctionName string
	IsDefault    bool
	Explicit     bool // true if input used "plugin:function" syntax
}

// CommandResolver maps function names advertised by active plugins to
// their providers and resolves a command string against them,
// detecting ambiguity when more than one plugin advertises the same
// function with no explicit "plugin:function" qualifier.
//
// Grounded on original_source's CommandMapper, trimmed of its
// suggestion engine and contextual help (CLI-only concerns; see
// spec.md §9's "treat CLI parsing as external").
type CommandResolver struct {
	registry *Registry
}

// NewCommandResolver builds a resolver backed by registry, consulting
// it fresh on every Resolve call so newly activated or deactivated
// plugins are reflected without re-registration.
func NewCommandResolver(registry *Registry) *CommandResolver {
	return &CommandResolver{registry: registry}
}

type provider struct {
	pluginName string
	isDefault  bool
}

// functionProviders returns, for every active plugin, the set of
// (plugin, function) pairs it advertises, keyed by canonical function
// name (aliases resolved to their primary name).
func (c *CommandResolver) functionProviders() map[string][]provider {
	out := make(map[string][]provider)
	for _, name := range c.registry.List() {
		p, ok := c.registry.Get(name)
		if !ok {
			continue
		}
		for _, fn := range p.AdvertisedFunctions() {
			out[fn.Name] = append(out[fn.Name], provider{pluginName: name, isDefault: fn.IsDefault})
			for _, alias := range fn.Aliases {
				out[alias] = append(out[alias], provider{pluginName: name, isDefault: fn.IsDefault})
			}
		}
	}
	return out
}

// Resolve resolves input, either "function", "plugin:function", or a
// bare plugin name, to the plugin that should handle it.
func (c *CommandResolver) Resolve(input string) (Resolution, error) {
	if colon := strings.IndexByte(input, ':'); colon >= 0 {
		return c.resolveExplicit(input[:colon], input[colon+1:])
	}

	providers := c.functionProviders()
	if matches := providers[input]; len(matches) == 1 {
		return Resolution{PluginName: matches[0].pluginName, FunctionName: input, IsDefault: matches[0].isDefault}, nil
	} else if len(matches) > 1 {
		return Resolution{}, c.ambiguityError(input, matches)
	}

	if p, ok := c.registry.Get(input); ok {
		return Resolution{PluginName: input, FunctionName: p.DefaultFunction(), IsDefault: true}, nil
	}

	return Resolution{}, fmt.Errorf("%q: %w", input, ErrUnknownPlugin)
}

func (c *CommandResolver) resolveExplicit(pluginName, functionName string) (Resolution, error) {
	p, ok := c.registry.Get(pluginName)
	if !ok {
		return Resolution{}, fmt.Errorf("%q: %w", pluginName, ErrUnknownPlugin)
	}
	for _, fn := range p.AdvertisedFunctions() {
		if fn.Name == functionName {
			return Resolution{PluginName: pluginName, FunctionName: fn.Name, IsDefault: fn.IsDefault, Explicit: true}, nil
		}
		for _, alias := range fn.Aliases {
			if alias == functionName {
				return Resolution{PluginName: pluginName, FunctionName: fn.Name, IsDefault: fn.IsDefault, Explicit: true}, nil
			}
		}
	}
	return Resolution{}, fmt.Errorf("plugin %q does not provide function %q: %w", pluginName, functionName, ErrUnknownFunction)
}

func (c *CommandResolver) ambiguityError(function string, matches []provider) error {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.pluginName
	}
	sort.Strings(names)
	return fmt.Errorf("function %q provided by %s, use plugin:function syntax to disambiguate: %w",
		function, strings.Join(names, ", "), ErrAmbiguousFunction)
}
