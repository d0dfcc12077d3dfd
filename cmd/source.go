package cmd

import (
	"fmt"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/outwriter"
	"github.com/huangsam/stepviz/internal/source"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sourceCmd manages SQL record sources.
//
// Note: source subcommands use minimal initialization (sourceSetup) instead of
// the full sharedSetup. They never read input files.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage the SQL record source",
	Long: `Provision and inspect the database table that stepviz reads records from.

Supported backends: SQLite (default file ~/.stepviz.db), MySQL, PostgreSQL

Subcommands:
  status  - Show record counts and the schema version
  migrate - Create or upgrade the experiment_metrics table

Examples:
  stepviz source migrate --source-backend sqlite
  stepviz source status --source-backend mysql --source-db-connect 'user:pass@tcp(localhost:3306)/metrics'`,
}

// sourceMigrateCmd runs schema migrations on the record database.
var sourceMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the default experiment_metrics table.

By default, migrates to the latest version. Use --target-version for specific versions.
Custom tables passed via --source-table are not managed by migrations.

Examples:
  # Migrate to latest version (default)
  stepviz source migrate --source-backend sqlite

  # Rollback everything
  stepviz source migrate --source-backend sqlite --target-version 0`,
	PreRunE: sourceSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		res, err := source.Migrate(cfg.SourceBackend, cfg.SourceDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		if !res.Changed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Database already at version %d\n", res.To)
			return
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s from version %d to %d\n", cfg.SourceBackend, res.From, res.To)
	},
}

// sourceStatusCmd shows the status of the record database.
var sourceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show record source status and statistics",
	Long: `Display the connection state, record counts and schema version of the record database.

Examples:
  stepviz source status --source-backend sqlite
  stepviz source status --source-backend postgresql --output json`,
	PreRunE: sourceSetup,
	Run: func(_ *cobra.Command, _ []string) {
		src := openSource()
		defer closeSource(src)

		statusSrc, ok := src.(contract.StatusSource)
		if !ok {
			contract.LogFatal("Cannot get source status", fmt.Errorf("%s does not report status", src.Describe()))
		}
		status, err := statusSrc.Status(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot get source status", err)
		}
		if err := outwriter.NewOutWriter().WriteSourceStatus(status, cfg); err != nil {
			contract.LogFatal("Cannot write source status", err)
		}
	},
}
