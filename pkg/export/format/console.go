package format

import (
	"fmt"
	"strings"

	"github.com/deeprave/gstats-sub001/pkg/events"
	"github.com/deeprave/gstats-sub001/pkg/export"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Console renders each Tabular DataExport as a bordered table via
// github.com/jedib0t/go-pretty/v6/table, grounded on
// greg-hellings-devdashboard's ConsoleFormatter.Render: one table
// writer per export, rounded style, header row from the schema.
// KeyValue and Hierarchical exports render as a simpler two-column
// key/value table, since go-pretty's table model has no native tree
// rendering.
type Console struct{}

func (Console) Format(data []*events.DataExport, _ export.Config) (string, error) {
	var b strings.Builder
	for i, exp := range data {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\n", exp.Title)
		if exp.Description != "" {
			fmt.Fprintf(&b, "%s\n", exp.Description)
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(&stringsWriter{&b})
		tw.SetStyle(table.StyleRounded)

		switch exp.DataType {
		case events.DataTabular:
			renderTabular(tw, exp)
		case events.DataKeyValue:
			renderKeyValue(tw, exp)
		case events.DataHierarchical:
			renderHierarchical(tw, exp)
		}

		tw.Render()
	}
	return b.String(), nil
}

func renderTabular(tw table.Writer, exp *events.DataExport) {
	header := make(table.Row, len(exp.Schema.Columns))
	for i, col := range exp.Schema.Columns {
		header[i] = col.Name
	}
	tw.AppendHeader(header)
	for _, row := range exp.Payload.Rows {
		values := make(table.Row, len(row.Values))
		for i, v := range row.Values {
			values[i] = v
		}
		tw.AppendRow(values)
	}
}

func renderKeyValue(tw table.Writer, exp *events.DataExport) {
	tw.AppendHeader(table.Row{"Key", "Value"})
	for k, v := range exp.Payload.KeyValue {
		tw.AppendRow(table.Row{k, v})
	}
}

func renderHierarchical(tw table.Writer, exp *events.DataExport) {
	tw.AppendHeader(table.Row{"Key", "Value"})
	if exp.Payload.Tree != nil {
		appendTreeRows(tw, "", *exp.Payload.Tree)
	}
}

func appendTreeRows(tw table.Writer, prefix string, node events.TreeNode) {
	name := node.Key
	if prefix != "" {
		name = prefix + "." + node.Key
	}
	if node.Value != nil {
		tw.AppendRow(table.Row{name, node.Value})
	}
	for _, child := range node.Children {
		appendTreeRows(tw, name, child)
	}
}

// stringsWriter adapts a *strings.Builder to io.Writer so go-pretty can
// write directly into the accumulating output buffer.
type stringsWriter struct {
	b *strings.Builder
}

func (w *stringsWriter) Write(p []byte) (int, error) {
	return w.b.Write(p)
}
