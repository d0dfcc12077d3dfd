package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// RenderFormat represents the chart file format.
	RenderFormat string

	// SourceBackend represents where experiment records are read from.
	SourceBackend string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All render formats supported.
const (
	NoRender   RenderFormat = "none" // default
	HTMLRender RenderFormat = "html"
	PNGRender  RenderFormat = "png"
	SVGRender  RenderFormat = "svg"
)

// All record source backends supported.
const (
	FileBackend       SourceBackend = "file" // default
	SQLiteBackend     SourceBackend = "sqlite"
	MySQLBackend      SourceBackend = "mysql"
	PostgreSQLBackend SourceBackend = "postgresql"
)

// Canonical column names shared by every record source and sink.
const (
	ColExperimentID = "experiment_id"
	ColMetricName   = "metric_name"
	ColStep         = "step"
	ColValue        = "value"
)

// RecordColumns lists the record columns in canonical order.
var RecordColumns = []string{ColExperimentID, ColMetricName, ColStep, ColValue}

// DownsampleThreshold is the default maximum number of points per metric series.
const DownsampleThreshold = 2000

// Palette is the fixed set of line colors, assigned by selection position.
var Palette = []string{
	"#8884d8",
	"#82ca9d",
	"#ffc658",
	"#ff8042",
	"#0088FE",
	"#00C49F",
}

// ValidOutputModes is the set of accepted output formats.
var ValidOutputModes = map[OutputMode]bool{
	CSVOut:     true,
	TextOut:    true,
	JSONOut:    true,
	ParquetOut: true,
}

// ValidRenderFormats is the set of accepted chart formats.
var ValidRenderFormats = map[RenderFormat]bool{
	NoRender:   true,
	HTMLRender: true,
	PNGRender:  true,
	SVGRender:  true,
}

// ValidSourceBackends is the set of accepted record backends.
var ValidSourceBackends = map[SourceBackend]bool{
	FileBackend:       true,
	SQLiteBackend:     true,
	MySQLBackend:      true,
	PostgreSQLBackend: true,
}

// IsDatabase reports whether the backend is SQL based.
func (b SourceBackend) IsDatabase() bool {
	return b == SQLiteBackend || b == MySQLBackend || b == PostgreSQLBackend
}
