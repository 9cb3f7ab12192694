// Package format implements the external collaborator named in spec.md
// §6: turning a []*events.DataExport plus an export.Config into an
// output string. JSON, YAML, and Console are implemented here; CSV,
// XML, HTML, Markdown, and Template are named-but-unimplemented
// export.OutputFormat values, same as spec.md leaves all six external.
package format

import (
	"fmt"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/export"
)

// Formatter renders a complete set of DataExports to a string.
type Formatter interface {
	Format(data []*events.DataExport, cfg export.Config) (string, error)
}

// ErrUnsupportedFormat is returned by Select for an OutputFormat with
// no registered Formatter.
var ErrUnsupportedFormat = fmt.Errorf("format: unsupported output format")

// Select returns the Formatter registered for f.
func Select(f export.OutputFormat) (Formatter, error) {
	switch f {
	case export.FormatJSON:
		return JSON{}, nil
	case export.FormatYAML:
		return YAML{}, nil
	case export.FormatConsole:
		return Console{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}
