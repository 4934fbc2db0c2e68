// Package ingest batch-loads alert tables into the vector index and the
// relational record store. Ingestion is additive: re-running it creates
// new entries with new ids, so callers wanting a clean load must reset the
// target stores first.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jimyoyo0329/socagent/embedder"
	"github.com/jimyoyo0329/socagent/indexstore"
	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/recordstore"
)

type Pipeline struct {
	embedder embedder.Embedder
	index    indexstore.IndexStore
	records  recordstore.RecordStore
}

// Run encodes every row with the same canonical encoder the matcher uses
// at query time, embeds the batch, and writes both stores. It returns the
// number of ingested rows.
func (p *Pipeline) Run(ctx context.Context, table *record.Table) (int, error) {
	if len(table.Records) == 0 {
		return 0, nil
	}

	texts := table.Texts()

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}

	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("expected %d vectors, got %d", len(texts), len(vectors))
	}

	base, err := p.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count index entries: %w", err)
	}

	entries := make([]indexstore.Entry, len(table.Records))
	for i, rec := range table.Records {
		entries[i] = indexstore.Entry{
			Id:        fmt.Sprintf("doc_%d", base+i),
			Document:  texts[i],
			Embedding: vectors[i],
			Metadata:  rec.Metadata(),
		}
	}

	if err := p.index.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("add index entries: %w", err)
	}

	if p.records != nil {
		if err := p.records.Insert(ctx, table); err != nil {
			return 0, fmt.Errorf("insert records: %w", err)
		}
	}

	slog.InfoContext(ctx, "ingested alert batch", "rows", len(table.Records), "base_id", base)

	return len(table.Records), nil
}

// New builds a pipeline. records may be nil when only the vector index is
// being populated.
func New(e embedder.Embedder, index indexstore.IndexStore, records recordstore.RecordStore) *Pipeline {
	return &Pipeline{
		embedder: e,
		index:    index,
		records:  records,
	}
}
