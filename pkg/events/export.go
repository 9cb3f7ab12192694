package events

import (
	"sync/atomic"
	"time"
)

// DataType classifies the shape of a DataExport's payload.
type DataType int

const (
	DataTabular DataType = iota
	DataKeyValue
	DataHierarchical
)

func (t DataType) String() string {
	switch t {
	case DataTabular:
		return "tabular"
	case DataKeyValue:
		return "key_value"
	case DataHierarchical:
		return "hierarchical"
	default:
		return "unknown"
	}
}

// ColumnType is the declared type of one schema column.
type ColumnType int

const (
	ColumnString ColumnType = iota
	ColumnInteger
	ColumnFloat
	ColumnBoolean
)

func (t ColumnType) String() string {
	switch t {
	case ColumnString:
		return "string"
	case ColumnInteger:
		return "integer"
	case ColumnFloat:
		return "float"
	case ColumnBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Column describes one field of a Tabular DataExport's schema.
type Column struct {
	Name        string
	Type        ColumnType
	Description string
}

// Schema describes the columns of a Tabular DataExport. Schema is
// empty for KeyValue and Hierarchical payloads.
type Schema struct {
	Columns []Column
}

// Row is one record of a Tabular DataExport's payload.
type Row struct {
	Values []any
}

// TreeNode is one node of a Hierarchical DataExport's payload.
type TreeNode struct {
	Key      string
	Value    any
	Children []TreeNode
}

// Payload is the closed set of shapes a DataExport's data may take,
// matching its DataType.
type Payload struct {
	Rows     []Row
	KeyValue map[string]any
	Tree     *TreeNode
}

// ExportHints carries formatting preferences a processing plugin
// attaches to its export; the export plugin's chosen Formatter may use
// them but is not required to honor every field.
type ExportHints struct {
	PreferredFormats  []string
	SortBy            string
	SortAscending     bool
	Limit             int
	IncludeTotals     bool
	IncludeRowNumbers bool
	CustomHints       map[string]string
}

// DataExport is the immutable, schema-bearing snapshot a processing
// plugin hands to the export plugin. Once constructed via NewDataExport
// it must not be mutated; callers needing a variant must build a new
// DataExport. The embedded refcount is diagnostic only — Go's garbage
// collector owns the actual lifetime — and lets log sinks and tests
// report how many holders currently reference a given export, mirroring
// the teacher's preference for explicit accounting (queue size_bytes,
// memory-pressure bands) over implicit lifetime tracking.
type DataExport struct {
	PluginID    string
	Title       string
	Description string
	DataType    DataType
	Schema      Schema
	Payload     Payload
	Hints       ExportHints
	Timestamp   time.Time

	refs atomic.Int64
}

// NewDataExport constructs a DataExport with an initial reference count
// of one, representing the producing plugin's own hold.
func NewDataExport(pluginID, title string, dataType DataType) *DataExport {
	e := &DataExport{
		PluginID:  pluginID,
		Title:     title,
		DataType:  dataType,
		Timestamp: time.Now(),
	}
	e.refs.Store(1)
	return e
}

// Retain increments the diagnostic reference count and returns the same
// export, for callers that want to track how many holders are
// outstanding (e.g. the Data Coordinator retaining a copy alongside a
// log sink).
func (e *DataExport) Retain() *DataExport {
	e.refs.Add(1)
	return e
}

// Release decrements the diagnostic reference count.
func (e *DataExport) Release() {
	e.refs.Add(-1)
}

// RefCount returns the current diagnostic reference count.
func (e *DataExport) RefCount() int64 {
	return e.refs.Load()
}
