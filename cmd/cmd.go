// Package cmd defines the command-line interface for stepviz.
package cmd

import (
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(chartsCmd)
	rootCmd.AddCommand(experimentsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the source subcommands to the parent source command
	sourceCmd.AddCommand(sourceMigrateCmd)
	sourceCmd.AddCommand(sourceStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("input", "i", "", "Comma-separated list of .csv or .parquet record files")
	rootCmd.PersistentFlags().String("source-backend", string(schema.FileBackend), "Record source: file or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("source-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("source-table", contract.DefaultSourceTable, "Table holding the experiment records")
	rootCmd.PersistentFlags().StringP("select", "s", "", "Comma-separated experiment ids to compare, in color order (default: all)")
	rootCmd.PersistentFlags().IntP("threshold", "t", contract.DefaultThreshold, "Maximum points per metric chart")
	rootCmd.PersistentFlags().Int("queue-size", contract.DefaultQueueSize, "Pending computation requests kept before the oldest is dropped")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of chartsCmd to Viper
	chartsCmd.Flags().String("render", string(schema.NoRender), "Also draw charts as files: none or html or png or svg")
	chartsCmd.Flags().String("render-dir", contract.DefaultRenderDir, "Directory for rendered chart files")
	if err := viper.BindPFlags(chartsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding charts flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address for the dashboard server")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of sourceMigrateCmd to Viper
	sourceMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(sourceMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding source migrate flags", err)
	}
}
