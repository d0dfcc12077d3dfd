// Package main provides a performance benchmarking tool for the stepviz CLI.
// It generates synthetic record files of increasing size, runs each command
// multiple times per input format, treats the first successful run as cold and
// averages the rest as warm, then writes a CSV report for documentation.
//
// Prerequisites:
// - stepviz binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the generated record files are written
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aclements/go-moremath/stats"
	"github.com/huangsam/stepviz/internal/parquet"
)

// BenchmarkResult holds the timings of one command against one dataset.
type BenchmarkResult struct {
	Dataset  string
	Format   string
	Command  string
	ColdTime string
	WarmTime string
	WarmDev  string
}

// Dataset describes a synthetic record file.
type Dataset struct {
	Name        string
	Experiments int
	Metrics     int
	Steps       int
}

// Records is the number of rows the dataset expands to.
func (d Dataset) Records() int {
	return d.Experiments * d.Metrics * d.Steps
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Datasets []Dataset
	Formats  []string
	Commands map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Runs:    5,
		Datasets: []Dataset{
			{Name: "small", Experiments: 4, Metrics: 4, Steps: 1_000},
			{Name: "medium", Experiments: 8, Metrics: 8, Steps: 10_000},
			{Name: "large", Experiments: 16, Metrics: 8, Steps: 20_000},
		},
		Formats: []string{"csv", "parquet"},
		Commands: map[string][]string{
			"charts":      {"charts", "--threshold", "1000"},
			"experiments": {"experiments"},
			"metrics":     {"metrics"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the stepviz binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("stepviz"); err != nil {
		return fmt.Errorf("stepviz binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// runBenchmarks generates every dataset and times each command against it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d runs per command\n",
		len(config.Datasets), config.Timeout, config.Runs)

	for _, ds := range config.Datasets {
		fmt.Printf("Generating %s dataset (%d records)\n", ds.Name, ds.Records())
		files, err := generateDataset(config.WorkDir, ds)
		if err != nil {
			fmt.Printf("  Skipping %s: %v\n", ds.Name, err)
			continue
		}

		for _, format := range config.Formats {
			for _, command := range []string{"experiments", "metrics", "charts"} {
				args := append(append([]string{}, config.Commands[command]...), files[format])
				results = append(results, runBenchmarkSuite(config, ds.Name, format, command, args))
			}
		}
	}

	return results
}

// generateDataset writes ds as both CSV and Parquet and returns the paths by format
func generateDataset(dir string, ds Dataset) (map[string]string, error) {
	rows := make([]parquet.RecordRow, 0, ds.Records())
	for e := range ds.Experiments {
		expID := fmt.Sprintf("exp-%02d", e)
		for m := range ds.Metrics {
			metric := fmt.Sprintf("metric_%02d", m)
			for step := range ds.Steps {
				rows = append(rows, parquet.NewRecordRow(expID, metric, int64(step), syntheticValue(e, m, step)))
			}
		}
	}

	csvPath := filepath.Join(dir, ds.Name+".csv")
	if err := writeCSV(csvPath, rows); err != nil {
		return nil, err
	}
	parquetPath := filepath.Join(dir, ds.Name+".parquet")
	if err := parquet.WriteRecordsParquet(rows, parquetPath); err != nil {
		return nil, err
	}
	return map[string]string{"csv": csvPath, "parquet": parquetPath}, nil
}

// syntheticValue is a decaying curve with a little per-experiment wobble
func syntheticValue(exp, metric, step int) float64 {
	base := float64(metric+1) / math.Sqrt(float64(step+1))
	return base + 0.05*math.Sin(float64(step*(exp+1))/50)
}

func writeCSV(path string, rows []parquet.RecordRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"experiment_id", "metric_name", "step", "value"}); err != nil {
		return err
	}
	for i, r := range rows {
		p, err := r.ToDataPoint(i + 1)
		if err != nil {
			return err
		}
		rec := []string{p.ExperimentID, p.MetricName, strconv.FormatInt(p.Step, 10), strconv.FormatFloat(p.Value, 'g', -1, 64)}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarkSuite times one command and formats its cold and warm numbers
func runBenchmarkSuite(config BenchmarkConfig, dataset, format, command string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s (%s)\n", command, dataset, format)

	coldTime, warmTimes := runBenchmark(config, command, args)

	coldStr := "TIMEOUT"
	if coldTime > 0 {
		coldStr = fmt.Sprintf("%.3fs", coldTime)
	}
	warmStr, devStr := "TIMEOUT", "-"
	if len(warmTimes) > 0 {
		sample := stats.Sample{Xs: warmTimes}
		warmStr = fmt.Sprintf("%.3fs", sample.Mean())
		if len(warmTimes) > 1 {
			devStr = fmt.Sprintf("%.3fs", sample.StdDev())
		}
	}

	fmt.Printf("  Cold time: %s, Warm average: %s (stddev %s)\n", coldStr, warmStr, devStr)

	return BenchmarkResult{
		Dataset:  dataset,
		Format:   format,
		Command:  command,
		ColdTime: coldStr,
		WarmTime: warmStr,
		WarmDev:  devStr,
	}
}

// runBenchmark executes a stepviz command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("stepviz", args...)
		cmd.Env = append(os.Environ(), "STEPVIZ_COLOR=no", "STEPVIZ_WIDTH=120")

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	switch command {
	case "charts":
		return strings.Contains(outputStr, "Computed in")
	case "experiments":
		return strings.Contains(outputStr, "experiments (total records:")
	default:
		return strings.Contains(outputStr, "Found") && strings.Contains(outputStr, "metrics")
	}
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/stepviz_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "format", "cmd", "cold_time", "warm_avg", "warm_stddev"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		if err := writer.Write([]string{r.Dataset, r.Format, r.Command, r.ColdTime, r.WarmTime, r.WarmDev}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "experiments", "Experiments:")
	printCommandSummary(results, "metrics", "Metrics:")
	printCommandSummary(results, "charts", "Charts:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, r := range results {
		if r.Command == command {
			fmt.Printf("  %-7s %-8s: Cold: %s, Warm: %s\n", r.Dataset, r.Format, r.ColdTime, r.WarmTime)
		}
	}
}
