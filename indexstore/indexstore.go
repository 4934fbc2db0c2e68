package indexstore

import (
	"context"

	"github.com/jimyoyo0329/socagent/record"
)

// Entry is one stored (document, vector, metadata) unit. Entries are
// immutable once added; re-ingestion creates new entries with new ids.
type Entry struct {
	Id        string
	Document  string
	Embedding []float32
	Metadata  map[string]string
}

// Result pairs an entry with its distance from the query vector. For
// cosine-style metrics similarity is 1 - distance.
type Result struct {
	Entry    Entry
	Distance float64
}

// IndexStore persists index entries and answers nearest-neighbor and
// exact-match queries. Query returns at most topK results ordered by
// ascending distance; a nil or empty filter leaves the search
// unconstrained.
type IndexStore interface {
	Add(ctx context.Context, entries []Entry) error
	Query(ctx context.Context, vector []float32, topK int, filter record.Filter) ([]Result, error)
	Get(ctx context.Context, filter record.Filter, limit int) ([]Entry, error)
	Count(ctx context.Context) (int, error)
}
