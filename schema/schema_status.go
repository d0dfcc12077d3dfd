package schema

// SourceStatus represents the status of a SQL record source.
type SourceStatus struct {
	Backend       string `json:"backend"`
	Table         string `json:"table"`
	Connected     bool   `json:"connected"`
	TotalRecords  int    `json:"total_records"`
	Experiments   int    `json:"experiments"`
	Metrics       int    `json:"metrics"`
	SchemaVersion uint   `json:"schema_version"`
	Dirty         bool   `json:"dirty"`
}
