package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/recordstore"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"postgres",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		detail := "failed to register pg record store with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

type postgresStore struct {
	options recordstore.Options
	conn    *sql.DB
}

func (p *postgresStore) Schema(ctx context.Context) (string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := p.conn.QueryContext(ctx, query, p.options.Table)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return "", err
		}
		columns = append(columns, quoteIdent(col)+" TEXT")
	}

	if err := rows.Err(); err != nil {
		return "", err
	}

	if len(columns) == 0 {
		return "", fmt.Errorf("table %q does not exist", p.options.Table)
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (%s)",
		quoteIdent(p.options.Table),
		strings.Join(columns, ", "),
	), nil
}

func (p *postgresStore) Select(ctx context.Context, query string) (*recordstore.Rows, error) {
	rows, err := p.conn.QueryContext(ctx, query)
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

func (p *postgresStore) Insert(ctx context.Context, table *record.Table) error {
	if len(table.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}

	if err := p.createTable(ctx, table.Columns); err != nil {
		return err
	}

	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := make([]string, len(table.Columns))
	for i := range table.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	insert := fmt.Sprintf(
		`INSERT INTO %s VALUES (%s)`,
		quoteIdent(p.options.Table),
		strings.Join(placeholders, ", "),
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

func (p *postgresStore) createTable(ctx context.Context, columns []string) error {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " TEXT"
	}

	create := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (%s)`,
		quoteIdent(p.options.Table),
		strings.Join(defs, ", "),
	)

	_, err := p.conn.ExecContext(ctx, create)
	return err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func NewStore(opts ...recordstore.Option) recordstore.RecordStore {
	options := recordstore.NewOptions(opts...)

	p := &postgresStore{
		options: options,
	}

	conn, err := sql.Open(DRIVER, options.Location)
	if err != nil {
		detail := "failed to connect with postgres record store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if err := conn.Ping(); err != nil {
		detail := "failed to ping with postgres record store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if err := otelsql.RecordStats(conn); err != nil {
		detail := "failed to initialize instrumentation for postgres record store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	p.conn = conn

	return p
}
