package recordstore

import (
	"context"

	"github.com/jimyoyo0329/socagent/record"
)

// Rows is the ordered result of a read query: resolvable column names plus
// one string tuple per row.
type Rows struct {
	Columns []string
	Values  [][]string
}

// RecordStore is the relational mirror of the ingested alerts. Every column
// is text-typed. Select only accepts a single read statement; callers are
// responsible for validating generated queries before execution.
type RecordStore interface {
	Schema(ctx context.Context) (string, error)
	Select(ctx context.Context, query string) (*Rows, error)
	Insert(ctx context.Context, table *record.Table) error
}
