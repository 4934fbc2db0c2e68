// Package router answers free-form questions about prior alerts by
// translating them into a structured query against the record store, and
// falling back to vector search against the index store when translation
// or execution fails. The two stores are independently maintained mirrors
// of the same data; the router never assumes their contents align.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jimyoyo0329/socagent/embedder"
	"github.com/jimyoyo0329/socagent/generator"
	"github.com/jimyoyo0329/socagent/indexstore"
	"github.com/jimyoyo0329/socagent/recordstore"
	"github.com/jimyoyo0329/socagent/synthesis"
)

// NoResultText is the sentinel entry returned when both paths come up empty.
const NoResultText = "no matching records found"

const translateSystemPrompt = `You are a security database analyst. Translate the user's question into a single SQL query.
Rules:
1. Use SELECT only; never any other statement type.
2. If the user names specific columns, select only those columns.
3. Use syntax the backing database understands; every column is text-typed.
4. Return only the SQL statement, with no explanation and no formatting markers.`

const needsRetrievalSystemPrompt = `You decide whether a user question requires looking up prior security events from the database.
Event records carry fields such as source IP, destination IP, alert signature, domain, payload, note, and alert time.
The question may name these fields directly or ask about related events indirectly, for example:
- find everything about some host
- records about "Suspicious domain reqres.in has been detected!"
- list all events whose source IP is 10.0.0.1
- show the n most recent records
Answer with exactly "YES" or "NO".`

type Router struct {
	options   Options
	generator generator.Generator
	records   recordstore.RecordStore
	index     indexstore.IndexStore
	embedder  embedder.Embedder
	synth     *synthesis.Synthesizer
}

// Answer runs the structured path and degrades to vector fallback on any
// translation or execution failure. It returns an ordered, finite sequence
// of summaries; an empty outcome is the NoResultText sentinel, never an
// absent value.
func (r *Router) Answer(ctx context.Context, question string) ([]string, error) {
	summaries, err := r.structured(ctx, question)
	if err == nil {
		return summaries, nil
	}

	slog.WarnContext(ctx, "structured query path failed, falling back to vector search", "error", err)

	return r.fallback(ctx, question)
}

// NeedsRetrieval classifies whether the question requires database lookup
// at all.
func (r *Router) NeedsRetrieval(ctx context.Context, question string) (bool, error) {
	answer, err := r.generator.Generate(ctx, []generator.Message{
		generator.System(needsRetrievalSystemPrompt),
		generator.User(question),
	})
	if err != nil {
		return false, err
	}

	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "yes"), nil
}

func (r *Router) structured(ctx context.Context, question string) ([]string, error) {
	schema, err := r.records.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe schema: %w", err)
	}

	raw, err := r.translate(ctx, question, schema)
	if err != nil {
		return nil, fmt.Errorf("translate question: %w", err)
	}

	query := CleanQuery(raw)

	if err := ValidateSelect(query); err != nil {
		return nil, fmt.Errorf("validate query %q: %w", query, err)
	}

	slog.DebugContext(ctx, "executing translated query", "query", query)

	rows, err := r.records.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	if rows == nil || len(rows.Values) == 0 {
		return nil, fmt.Errorf("query returned no rows")
	}

	summaries := make([]string, 0, len(rows.Values)+1)

	for i, values := range rows.Values {
		summary, err := r.synth.SummarizeRow(ctx, question, rows.Columns, values, i+1)
		if err != nil {
			// one bad row must not sink the batch
			summary = fmt.Sprintf("summary of event %d failed: %v", i+1, err)
		}
		summaries = append(summaries, summary)
	}

	if len(summaries) >= 2 {
		comparison, err := r.synth.Compare(ctx, question, summaries)
		if err != nil {
			comparison = fmt.Sprintf("event comparison failed: %v", err)
		}
		summaries = append(summaries, comparison)
	}

	return summaries, nil
}

func (r *Router) translate(ctx context.Context, question string, schema string) (string, error) {
	user := fmt.Sprintf(
		"User question: %s\n\nDatabase schema:\n%s\n\nProduce the query:",
		question,
		schema,
	)

	return r.generator.Generate(ctx, []generator.Message{
		generator.System(translateSystemPrompt),
		generator.User(user),
	})
}

func (r *Router) fallback(ctx context.Context, question string) ([]string, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := r.index.Query(ctx, vector, r.options.TopK, nil)
	if err != nil {
		return nil, fmt.Errorf("vector fallback: %w", err)
	}

	if len(results) == 0 {
		return []string{NoResultText}, nil
	}

	docs := make([]string, 0, len(results))
	for _, res := range results {
		docs = append(docs, res.Entry.Document)
	}

	return docs, nil
}

func New(
	g generator.Generator,
	records recordstore.RecordStore,
	index indexstore.IndexStore,
	e embedder.Embedder,
	opts ...Option,
) *Router {
	options := NewOptions(opts...)

	return &Router{
		options:   options,
		generator: g,
		records:   records,
		index:     index,
		embedder:  e,
		synth:     synthesis.New(g),
	}
}
