package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/parquet"
	"github.com/huangsam/stepviz/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteExperimentSummaries outputs one row per experiment in the configured format.
func WriteExperimentSummaries(summaries []schema.ExperimentSummary, cfg *contract.Config) error {
	_, intFmt := createFormatters(cfg.Precision)
	if summaries == nil {
		summaries = []schema.ExperimentSummary{}
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summaries)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExperimentCSV(w, summaries)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetFile(cfg.OutputFile, func(path string) error {
			return parquet.WriteRowsParquet(parquet.ConvertExperimentSummaries(summaries), path)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExperimentTable(w, summaries, cfg, intFmt)
		}, "Wrote table")
	}
	return nil
}

// WriteMetricSummaries outputs one row per metric in the configured format.
func WriteMetricSummaries(summaries []schema.MetricSummary, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	if summaries == nil {
		summaries = []schema.MetricSummary{}
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summaries)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricCSV(w, summaries, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetFile(cfg.OutputFile, func(path string) error {
			return parquet.WriteRowsParquet(parquet.ConvertMetricSummaries(summaries), path)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricTable(w, summaries, cfg, fmtFloat, intFmt)
		}, "Wrote table")
	}
	return nil
}

func writeExperimentCSV(w io.Writer, summaries []schema.ExperimentSummary) error {
	header := []string{"experiment_id", "records", "metrics", "min_step", "max_step"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range summaries {
			rec := []string{
				s.ExperimentID,
				strconv.Itoa(s.Records),
				strings.Join(s.Metrics, ";"),
				strconv.FormatInt(s.MinStep, 10),
				strconv.FormatInt(s.MaxStep, 10),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeMetricCSV(w io.Writer, summaries []schema.MetricSummary, fmtFloat func(float64) string) error {
	header := []string{"metric", "records", "experiments", "min_step", "max_step", "min_value", "max_value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range summaries {
			rec := []string{
				s.Metric,
				strconv.Itoa(s.Records),
				strconv.Itoa(s.Experiments),
				strconv.FormatInt(s.MinStep, 10),
				strconv.FormatInt(s.MaxStep, 10),
				fmtFloat(s.MinValue),
				fmtFloat(s.MaxValue),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeExperimentTable(w io.Writer, summaries []schema.ExperimentSummary, cfg *contract.Config, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Experiment", "Records", "Metrics", "Steps"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	total := 0
	for _, s := range summaries {
		data = append(data, []string{
			contract.TruncatePath(s.ExperimentID, nameWidth),
			fmt.Sprintf(intFmt, s.Records),
			fmt.Sprintf(intFmt, len(s.Metrics)),
			fmt.Sprintf("%d..%d", s.MinStep, s.MaxStep),
		})
		total += s.Records
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Found %d experiments (total records: %d)\n", len(summaries), total)
	return err
}

func writeMetricTable(w io.Writer, summaries []schema.MetricSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Records", "Experiments", "Steps", "Min", "Max"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, s := range summaries {
		data = append(data, []string{
			contract.TruncatePath(s.Metric, nameWidth),
			fmt.Sprintf(intFmt, s.Records),
			fmt.Sprintf(intFmt, s.Experiments),
			fmt.Sprintf("%d..%d", s.MinStep, s.MaxStep),
			fmtFloat(s.MinValue),
			fmtFloat(s.MaxValue),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Found %d metrics\n", len(summaries))
	return err
}
