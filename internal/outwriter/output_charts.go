package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/parquet"
	"github.com/huangsam/stepviz/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteChartResults outputs chart data, dispatching on the configured output format.
func WriteChartResults(inputs []schema.ChartRenderInput, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, chartsOrEmpty(inputs))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartCSV(w, inputs, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetFile(cfg.OutputFile, func(path string) error {
			return parquet.WriteRecordsParquet(parquet.ConvertChartRows(inputs), path)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartTable(w, inputs, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
	return nil
}

func chartsOrEmpty(inputs []schema.ChartRenderInput) []schema.ChartRenderInput {
	if inputs == nil {
		return []schema.ChartRenderInput{}
	}
	return inputs
}

// writeChartCSV writes the shown points in long format, one line per
// experiment, metric and step. Missing values are skipped so the file reads
// back as ordinary records.
func writeChartCSV(w io.Writer, inputs []schema.ChartRenderInput, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, schema.RecordColumns, func(cw *csv.Writer) error {
		for _, in := range inputs {
			for _, row := range in.Rows {
				step := strconv.FormatInt(row.Step, 10)
				for _, id := range in.LineIDs {
					v, ok := row.Value(id)
					if !ok {
						continue
					}
					if err := cw.Write([]string{id, in.Metric, step, fmtFloat(v)}); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
}

// writeChartTable writes one summary line per chart.
func writeChartTable(w io.Writer, inputs []schema.ChartRenderInput, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Points", "Lines", "Y-Domain", "Steps", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, in := range inputs {
		shown := len(in.Rows)
		row := []string{
			contract.TruncatePath(in.Metric, nameWidth),
			formatPoints(in.RawPoints, shown, intFmt),
			fmt.Sprintf(intFmt, len(in.LineIDs)),
			fmt.Sprintf("[%s, %s]", fmtFloat(in.YDomain[0]), fmtFloat(in.YDomain[1])),
			formatStepRange(in.Rows),
			contract.GetStatusLabel(shown > 0, shown < in.RawPoints),
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d charts for %d experiments (threshold: %d points)\n",
		len(inputs), countLines(inputs), cfg.Threshold); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Computed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// formatPoints renders "raw" or "raw → shown" when the series was downsampled.
func formatPoints(raw, shown int, intFmt string) string {
	if shown == raw {
		return fmt.Sprintf(intFmt, raw)
	}
	return fmt.Sprintf(intFmt+" → "+intFmt, raw, shown)
}

func formatStepRange(rows []schema.StepRow) string {
	if len(rows) == 0 {
		return "-"
	}
	return fmt.Sprintf("%d..%d", rows[0].Step, rows[len(rows)-1].Step)
}

func countLines(inputs []schema.ChartRenderInput) int {
	if len(inputs) == 0 {
		return 0
	}
	return len(inputs[0].LineIDs)
}
