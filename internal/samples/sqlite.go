package samples

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	_ "modernc.org/sqlite"
)

// Default table and column names used by SaveSeries and the CLI.
const (
	DefaultTable   = "samples"
	DefaultXColumn = "x"
	DefaultYColumn = "y"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Query names the table and columns a series is read from.
type Query struct {
	Table   string
	XColumn string
	YColumn string
}

// DefaultQuery reads x and y from the samples table.
func DefaultQuery() Query {
	return Query{Table: DefaultTable, XColumn: DefaultXColumn, YColumn: DefaultYColumn}
}

func (q Query) validate() error {
	for _, name := range []string{q.Table, q.XColumn, q.YColumn} {
		if !identifier.MatchString(name) {
			return fmt.Errorf("invalid sql identifier %q", name)
		}
	}
	return nil
}

// Store is a SQLite database holding sample series.
type Store struct {
	*sql.DB
}

// OpenStore opens the SQLite database at path, creating it if needed.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	return &Store{db}, nil
}

// LoadSQLite reads a series from an existing database file.
func LoadSQLite(ctx context.Context, path string, q Query) (Series, error) {
	if _, err := os.Stat(path); err != nil {
		return Series{}, fmt.Errorf("failed to open sqlite file: %w", err)
	}
	store, err := OpenStore(path)
	if err != nil {
		return Series{}, err
	}
	defer store.Close()
	return store.Series(ctx, q)
}

// Series reads the rows of q ordered by x. Rows with a NULL x or y are
// skipped.
func (s *Store) Series(ctx context.Context, q Query) (Series, error) {
	if err := q.validate(); err != nil {
		return Series{}, err
	}
	query := fmt.Sprintf(
		`SELECT %[2]s, %[3]s FROM %[1]s WHERE %[2]s IS NOT NULL AND %[3]s IS NOT NULL ORDER BY %[2]s`,
		q.Table, q.XColumn, q.YColumn)
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return Series{}, fmt.Errorf("failed to query %s: %w", q.Table, err)
	}
	defer rows.Close()

	var out Series
	for rows.Next() {
		var x, y float64
		if err := rows.Scan(&x, &y); err != nil {
			return Series{}, fmt.Errorf("failed to scan %s row: %w", q.Table, err)
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, y)
	}
	if err := rows.Err(); err != nil {
		return Series{}, fmt.Errorf("failed to read %s: %w", q.Table, err)
	}
	if out.Len() == 0 {
		return Series{}, fmt.Errorf("%s: %w", q.Table, ErrNoSamples)
	}
	return out, nil
}

// SaveSeries replaces the contents of q.Table with series, creating the
// table if it does not exist.
func (s *Store) SaveSeries(ctx context.Context, q Query, series Series) error {
	if err := q.validate(); err != nil {
		return err
	}
	if len(series.X) != len(series.Y) {
		return fmt.Errorf("series has %d x values and %d y values", len(series.X), len(series.Y))
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s DOUBLE, %s DOUBLE)`, q.Table, q.XColumn, q.YColumn)
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create %s: %w", q.Table, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, q.Table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", q.Table, err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES (?, ?)`, q.Table, q.XColumn, q.YColumn))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for i := range series.X {
		if _, err := stmt.ExecContext(ctx, series.X[i], series.Y[i]); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}
