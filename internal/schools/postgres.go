package schools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/spigell/school-matcher/internal/utils"
)

const DefaultTable = "school_data_general"

// PostgresSource reads schools from a Postgres table, one JSON row per school.
type PostgresSource struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// OpenPostgres opens a connection pool for dsn. The pool is verified lazily by
// Ping.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

func NewPostgresSource(db *sql.DB, table string, logger *zap.Logger) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSource{db: db, table: table, logger: logger}
}

// Ping checks the connection, retrying up to attempts times with a fixed delay.
func (s *PostgresSource) Ping(ctx context.Context, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = s.db.PingContext(ctx); err == nil {
			return nil
		}
		s.logger.Warn("postgres ping failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == attempts {
			break
		}
		if waitErr := utils.WaitFor(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
	return fmt.Errorf("ping postgres: %w", err)
}

func (s *PostgresSource) query(divisions []string) (string, []any) {
	base := fmt.Sprintf("SELECT row_to_json(s) FROM %s AS s", pq.QuoteIdentifier(s.table))
	if len(divisions) == 0 {
		return base + " ORDER BY s.school_name", nil
	}
	return base + " WHERE s.division_group = ANY($1) ORDER BY s.school_name", []any{pq.Array(divisions)}
}

func (s *PostgresSource) Schools(ctx context.Context, divisions ...string) ([]*School, error) {
	query, args := s.query(divisions)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schools: %w", err)
	}
	defer rows.Close()

	var records []map[string]any
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan school row: %w", err)
		}
		var record map[string]any
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("parse school row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate school rows: %w", err)
	}

	s.logger.Debug("schools loaded from postgres",
		zap.String("table", s.table),
		zap.Strings("divisions", divisions),
		zap.Int("count", len(records)),
	)

	return Decode(records)
}
