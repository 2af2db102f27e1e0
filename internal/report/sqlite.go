package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/limaJavier/fjsp/internal/batch"
)

// SQLiteStore accumulates batch rows across runs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        instance TEXT NOT NULL,
        jobs INTEGER,
        machines INTEGER,
        operations INTEGER,
        binary_vars INTEGER,
        continuous_vars INTEGER,
        constraints INTEGER,
        makespan REAL,
        gap REAL,
        time_s REAL,
        status TEXT,
        error TEXT,
        created_at INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts the rows in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, rows []batch.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	for _, row := range rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, instance, jobs, machines, operations, binary_vars, continuous_vars, constraints, makespan, gap, time_s, status, error, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.RunID, row.Instance, row.Jobs, row.Machines, row.Operations, row.Binary, row.Continuous, row.Constraints,
			nullable(row.Makespan), nullable(row.Gap), row.Time.Seconds(), row.Status, row.Error, now)
		if err != nil {
			return fmt.Errorf("insert %v: %w", row.Instance, err)
		}
	}
	return tx.Commit()
}

// Rows returns the rows of a run in insertion order.
func (s *SQLiteStore) Rows(ctx context.Context, runID string) ([]batch.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, instance, jobs, machines, operations, binary_vars, continuous_vars, constraints, makespan, gap, time_s, status, error
         FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []batch.Row
	for rows.Next() {
		var (
			row           batch.Row
			makespan, gap sql.NullFloat64
			seconds       float64
		)
		if err := rows.Scan(&row.RunID, &row.Instance, &row.Jobs, &row.Machines, &row.Operations, &row.Binary, &row.Continuous,
			&row.Constraints, &makespan, &gap, &seconds, &row.Status, &row.Error); err != nil {
			return nil, err
		}
		if makespan.Valid {
			row.Makespan = &makespan.Float64
		}
		if gap.Valid {
			row.Gap = &gap.Float64
		}
		row.Time = time.Duration(seconds * float64(time.Second))
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func nullable(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}
