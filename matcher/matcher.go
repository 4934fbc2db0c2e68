package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/jimyoyo0329/socagent/embedder"
	"github.com/jimyoyo0329/socagent/indexstore"
	"github.com/jimyoyo0329/socagent/record"
)

// Match is the outcome of a similarity lookup. A miss is a normal result,
// not an error: Found is false and Similarity is zero.
type Match struct {
	Found        bool
	Similarity   float64
	QueryText    string
	ExemplarNote string
	Entry        indexstore.Entry
}

// Matcher retrieves the best annotated prior event for a new alert row.
type Matcher struct {
	options  Options
	embedder embedder.Embedder
	index    indexstore.IndexStore
}

// Match encodes the row, embeds it, narrows the search with an exact-match
// filter over the allow-listed fields, and picks the first candidate (in
// ascending-distance order) whose similarity clears the threshold and whose
// metadata carries a non-empty note. The threshold is a policy knob owned
// by the caller; different call sites use different values.
func (m *Matcher) Match(ctx context.Context, row *record.Record, topK int, threshold float64) (Match, error) {
	queryText := row.Text()

	miss := Match{QueryText: queryText}

	vector, err := m.embedder.Embed(ctx, queryText)
	if err != nil {
		return miss, fmt.Errorf("embed query: %w", err)
	}

	filter := record.BuildFilter(row, m.options.FilterFields)

	results, err := m.index.Query(ctx, vector, topK, filter)
	if err != nil {
		return miss, fmt.Errorf("query index: %w", err)
	}

	for _, res := range results {
		similarity := 1 - res.Distance
		if similarity < threshold {
			continue
		}

		note := strings.TrimSpace(res.Entry.Metadata["note"])
		if len(note) == 0 || note == record.NullValue {
			continue
		}

		return Match{
			Found:        true,
			Similarity:   similarity,
			QueryText:    queryText,
			ExemplarNote: note,
			Entry:        res.Entry,
		}, nil
	}

	return miss, nil
}

func New(e embedder.Embedder, index indexstore.IndexStore, opts ...Option) *Matcher {
	options := NewOptions(opts...)

	return &Matcher{
		options:  options,
		embedder: e,
		index:    index,
	}
}
