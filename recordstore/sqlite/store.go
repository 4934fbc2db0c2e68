package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/recordstore"
)

type sqliteStore struct {
	options recordstore.Options
	conn    *sql.DB
}

func (s *sqliteStore) Schema(ctx context.Context) (string, error) {
	var schema string

	err := s.conn.QueryRowContext(
		ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`,
		s.options.Table,
	).Scan(&schema)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("table %q does not exist", s.options.Table)
	}
	if err != nil {
		return "", err
	}

	return schema, nil
}

func (s *sqliteStore) Select(ctx context.Context, query string) (*recordstore.Rows, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &recordstore.Rows{Columns: columns}

	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scan := make([]any, len(columns))
		for i := range values {
			scan[i] = &values[i]
		}

		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}

		tuple := make([]string, len(columns))
		for i, v := range values {
			tuple[i] = v.String
		}

		result.Values = append(result.Values, tuple)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *sqliteStore) Insert(ctx context.Context, table *record.Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}

	if err := s.createTable(ctx, table.Columns); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(table.Columns)), ", ")
	insert := fmt.Sprintf(
		`INSERT INTO %s VALUES (%s)`,
		quoteIdent(s.options.Table),
		placeholders,
	)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(table.Columns))
	for _, rec := range table.Records {
		for i, col := range table.Columns {
			v, _ := rec.Get(col)
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *sqliteStore) createTable(ctx context.Context, columns []string) error {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " TEXT"
	}

	create := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (%s)`,
		quoteIdent(s.options.Table),
		strings.Join(defs, ", "),
	)

	_, err := s.conn.ExecContext(ctx, create)
	return err
}

// quoteIdent double-quotes an identifier; column names like
// "alert.signature" need it.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func NewStore(opts ...recordstore.Option) recordstore.RecordStore {
	options := recordstore.NewOptions(opts...)

	s := &sqliteStore{
		options: options,
	}

	conn, err := sql.Open("sqlite", options.Location)
	if err != nil {
		detail := "failed to open sqlite record store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if err := conn.Ping(); err != nil {
		detail := "failed to ping sqlite record store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	s.conn = conn

	return s
}
