package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
)

// WriteStatus prints a record source status report. Parquet is not meaningful
// for a single status record, so it falls back to text.
func WriteStatus(status schema.SourceStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusCSV(w, status)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusText(w, status)
		}, "Wrote status")
	}
}

func statusPairs(status schema.SourceStatus) [][2]string {
	return [][2]string{
		{"backend", status.Backend},
		{"table", status.Table},
		{"connected", strconv.FormatBool(status.Connected)},
		{"total_records", strconv.Itoa(status.TotalRecords)},
		{"experiments", strconv.Itoa(status.Experiments)},
		{"metrics", strconv.Itoa(status.Metrics)},
		{"schema_version", strconv.FormatUint(uint64(status.SchemaVersion), 10)},
		{"dirty", strconv.FormatBool(status.Dirty)},
	}
}

func writeStatusCSV(w io.Writer, status schema.SourceStatus) error {
	return writeCSVWithHeader(w, []string{"key", "value"}, func(cw *csv.Writer) error {
		for _, kv := range statusPairs(status) {
			if err := cw.Write(kv[:]); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeStatusText(w io.Writer, status schema.SourceStatus) error {
	lines := []string{
		contract.HeaderColor.Sprint("Record Source Status"),
		fmt.Sprintf("  Backend:        %s", status.Backend),
		fmt.Sprintf("  Table:          %s", status.Table),
		fmt.Sprintf("  Connection:     %s", contract.GetStatusLabel(status.Connected, false)),
		fmt.Sprintf("  Records:        %d", status.TotalRecords),
		fmt.Sprintf("  Experiments:    %d", status.Experiments),
		fmt.Sprintf("  Metrics:        %d", status.Metrics),
		fmt.Sprintf("  Schema version: %d (%s)", status.SchemaVersion, contract.GetStatusLabel(status.SchemaVersion > 0, status.Dirty)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
