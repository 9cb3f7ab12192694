package format

import (
	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/export"
	json "github.com/goccy/go-json"
)

// JSON renders each DataExport as a named object keyed by plugin ID,
// grounded on ExportPlugin::format_json in the original implementation.
// Marshaling uses github.com/goccy/go-json (already present in the
// teacher's dependency closure, indirectly, via its API server stack)
// rather than encoding/json, for its drop-in faster Marshal/MarshalIndent.
type JSON struct{}

type jsonExport struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Data        any    `json:"data"`
}

func (JSON) Format(data []*events.DataExport, _ export.Config) (string, error) {
	out := make(map[string]jsonExport, len(data))
	for _, exp := range data {
		out[exp.PluginID] = jsonExport{
			Title:       exp.Title,
			Description: exp.Description,
			Type:        exp.DataType.String(),
			Data:        payloadToJSON(exp),
		}
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func payloadToJSON(exp *events.DataExport) any {
	switch exp.DataType {
	case events.DataTabular:
		rows := make([]map[string]any, 0, len(exp.Payload.Rows))
		for _, row := range exp.Payload.Rows {
			obj := make(map[string]any, len(row.Values))
			for i, v := range row.Values {
				if i < len(exp.Schema.Columns) {
					obj[exp.Schema.Columns[i].Name] = v
				}
			}
			rows = append(rows, obj)
		}
		return rows
	case events.DataKeyValue:
		return exp.Payload.KeyValue
	case events.DataHierarchical:
		return exp.Payload.Tree
	default:
		return nil
	}
}
