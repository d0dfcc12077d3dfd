package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// SQLSource reads records from a metrics table in a SQL database.
type SQLSource struct {
	db        *sql.DB
	backend   schema.SourceBackend
	tableName string
}

var _ contract.StatusSource = &SQLSource{} // Compile-time check

// NewSQLSource opens the database and checks the table name. The table itself
// is only read at Load time.
func NewSQLSource(backend schema.SourceBackend, connStr, tableName string) (*SQLSource, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	return &SQLSource{db: db, backend: backend, tableName: tableName}, nil
}

// Load implements contract.RecordSource.
func (s *SQLSource) Load(ctx context.Context) (schema.LoadResult, error) {
	query := fmt.Sprintf("SELECT experiment_id, metric_name, step, value FROM %s ORDER BY id",
		quoteTableName(s.tableName, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return schema.LoadResult{}, fmt.Errorf("failed to query table %s: %w", s.tableName, err)
	}
	defer func() { _ = rows.Close() }()

	var tracker loadTracker
	for row := 1; rows.Next(); row++ {
		var (
			expID, metric sql.NullString
			step          sql.NullInt64
			value         sql.NullFloat64
		)
		if err := rows.Scan(&expID, &metric, &step, &value); err != nil {
			return schema.LoadResult{}, fmt.Errorf("failed to scan row %d: %w", row, err)
		}
		p, err := nullableToDataPoint(row, expID, metric, step, value)
		if err != nil {
			tracker.reject(err)
			continue
		}
		tracker.accept(p)
	}
	if err := rows.Err(); err != nil {
		return schema.LoadResult{}, fmt.Errorf("failed to read table %s: %w", s.tableName, err)
	}
	if tracker.result.Rejected > 0 {
		logrus.WithField("table", s.tableName).Warnf("Skipped %d invalid rows", tracker.result.Rejected)
	}
	return tracker.result, nil
}

func nullableToDataPoint(row int, expID, metric sql.NullString, step sql.NullInt64, value sql.NullFloat64) (schema.ExperimentDataPoint, error) {
	switch {
	case !expID.Valid:
		return schema.ExperimentDataPoint{}, &schema.RecordError{Row: row, Field: schema.ColExperimentID, Reason: "NULL"}
	case !metric.Valid:
		return schema.ExperimentDataPoint{}, &schema.RecordError{Row: row, Field: schema.ColMetricName, Reason: "NULL"}
	case !step.Valid:
		return schema.ExperimentDataPoint{}, &schema.RecordError{Row: row, Field: schema.ColStep, Reason: "NULL"}
	case !value.Valid || math.IsNaN(value.Float64):
		return schema.ExperimentDataPoint{}, &schema.RecordError{Row: row, Field: schema.ColValue, Reason: "NULL or NaN"}
	}
	p := schema.ExperimentDataPoint{ExperimentID: expID.String, MetricName: metric.String, Step: step.Int64, Value: value.Float64}
	if err := p.Validate(); err != nil {
		var recErr *schema.RecordError
		if errors.As(err, &recErr) {
			recErr.Row = row
		}
		return schema.ExperimentDataPoint{}, err
	}
	return p, nil
}

// Describe implements contract.RecordSource.
func (s *SQLSource) Describe() string {
	return fmt.Sprintf("%s:%s", s.backend, s.tableName)
}

// Close implements contract.RecordSource.
func (s *SQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Status returns status information about the metrics table.
func (s *SQLSource) Status(ctx context.Context) (schema.SourceStatus, error) {
	status := schema.SourceStatus{
		Backend:   string(s.backend),
		Table:     s.tableName,
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	status.SchemaVersion, status.Dirty = s.migrationVersion(ctx)

	quotedTableName := quoteTableName(s.tableName, s.backend)
	countQuery := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT experiment_id), COUNT(DISTINCT metric_name) FROM %s", quotedTableName)
	row := s.db.QueryRowContext(ctx, countQuery)
	if err := row.Scan(&status.TotalRecords, &status.Experiments, &status.Metrics); err != nil {
		return status, fmt.Errorf("failed to get record counts: %w", err)
	}
	return status, nil
}

// migrationVersion reads the golang-migrate bookkeeping table. A database that
// was never migrated reports version 0.
func (s *SQLSource) migrationVersion(ctx context.Context) (uint, bool) {
	var version int64
	var dirty bool
	row := s.db.QueryRowContext(ctx, "SELECT version, dirty FROM schema_migrations LIMIT 1")
	if err := row.Scan(&version, &dirty); err != nil || version < 0 {
		return 0, false
	}
	return uint(version), dirty
}
