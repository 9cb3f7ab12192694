package format

import (
	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/export"
	"gopkg.in/yaml.v3"
)

// YAML renders each DataExport as a top-level mapping keyed by plugin
// ID, grounded on ExportPlugin::format_yaml. Unlike the original's
// hand-built string output, this uses gopkg.in/yaml.v3's marshaler
// directly against a structured intermediate, the same library
// pkg/discovery uses for descriptor parsing.
type YAML struct{}

type yamlExport struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Data        any    `yaml:"data"`
}

func (YAML) Format(data []*events.DataExport, _ export.Config) (string, error) {
	out := make(map[string]yamlExport, len(data))
	for _, exp := range data {
		out[exp.PluginID] = yamlExport{
			Title:       exp.Title,
			Description: exp.Description,
			Data:        payloadToJSON(exp),
		}
	}
	raw, err := yaml.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
