package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyoyo0329/socagent/generator"
	"github.com/jimyoyo0329/socagent/indexstore"
	memoryindex "github.com/jimyoyo0329/socagent/indexstore/memory"
	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/recordstore"
)

type fakeGenerator struct {
	fn func(messages []generator.Message) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []generator.Message) (string, error) {
	return f.fn(messages)
}

type fakeRecords struct {
	schema    string
	schemaErr error
	rows      *recordstore.Rows
	selectErr error
	gotQuery  string
}

func (f *fakeRecords) Schema(ctx context.Context) (string, error) {
	return f.schema, f.schemaErr
}

func (f *fakeRecords) Select(ctx context.Context, query string) (*recordstore.Rows, error) {
	f.gotQuery = query
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.rows, nil
}

func (f *fakeRecords) Insert(ctx context.Context, table *record.Table) error {
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = f.vector
	}
	return vectors, f.err
}

// routingGenerator answers each collaborator prompt by keying off its
// system message.
func routingGenerator(sql string, summaryErr error) *fakeGenerator {
	return &fakeGenerator{fn: func(messages []generator.Message) (string, error) {
		system := messages[0].Content
		switch {
		case strings.Contains(system, "Translate the user's question"):
			return sql, nil
		case strings.Contains(system, "structured summary of the event data"):
			if summaryErr != nil {
				return "", summaryErr
			}
			return "row summary", nil
		case strings.Contains(system, "comparing multiple security events"):
			if summaryErr != nil {
				return "", summaryErr
			}
			return "comparison", nil
		default:
			return "", errors.New("unexpected prompt")
		}
	}}
}

func seededIndex(t *testing.T, docs ...string) indexstore.IndexStore {
	t.Helper()
	idx := memoryindex.NewStore()
	entries := make([]indexstore.Entry, len(docs))
	for i, doc := range docs {
		entries[i] = indexstore.Entry{
			Document:  doc,
			Embedding: []float32{1, 0},
			Metadata:  map[string]string{},
		}
	}
	require.NoError(t, idx.Add(context.Background(), entries))
	return idx
}

func TestAnswerStructuredSingleRow(t *testing.T) {
	records := &fakeRecords{
		schema: `CREATE TABLE soc_data ("src_ip" TEXT, "note" TEXT)`,
		rows: &recordstore.Rows{
			Columns: []string{"src_ip", "note"},
			Values:  [][]string{{"10.0.0.1", "phishing"}},
		},
	}

	r := New(
		routingGenerator("SELECT * FROM soc_data;", nil),
		records,
		seededIndex(t),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "what happened on 10.0.0.1?")
	require.NoError(t, err)

	assert.Equal(t, []string{"row summary"}, summaries)
	assert.Equal(t, "SELECT * FROM soc_data;", records.gotQuery)
}

func TestAnswerStructuredMultipleRowsAppendsComparison(t *testing.T) {
	records := &fakeRecords{
		schema: `CREATE TABLE soc_data ("src_ip" TEXT)`,
		rows: &recordstore.Rows{
			Columns: []string{"src_ip"},
			Values:  [][]string{{"10.0.0.1"}, {"10.0.0.2"}},
		},
	}

	r := New(
		routingGenerator("SELECT src_ip FROM soc_data;", nil),
		records,
		seededIndex(t),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "compare the two hosts")
	require.NoError(t, err)

	require.Len(t, summaries, 3)
	assert.Equal(t, "comparison", summaries[2])
}

func TestAnswerPerRowFailureDoesNotAbortBatch(t *testing.T) {
	records := &fakeRecords{
		schema: `CREATE TABLE soc_data ("src_ip" TEXT)`,
		rows: &recordstore.Rows{
			Columns: []string{"src_ip"},
			Values:  [][]string{{"10.0.0.1"}, {"10.0.0.2"}},
		},
	}

	r := New(
		routingGenerator("SELECT src_ip FROM soc_data;", errors.New("model overloaded")),
		records,
		seededIndex(t),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "compare the two hosts")
	require.NoError(t, err)

	require.Len(t, summaries, 3)
	assert.Contains(t, summaries[0], "summary of event 1 failed")
	assert.Contains(t, summaries[1], "summary of event 2 failed")
	assert.Contains(t, summaries[2], "event comparison failed")
}

func TestAnswerFallsBackOnExecutionFailure(t *testing.T) {
	records := &fakeRecords{
		schema:    `CREATE TABLE soc_data ("src_ip" TEXT)`,
		selectErr: errors.New("no such column: host"),
	}

	r := New(
		routingGenerator("SELECT host FROM soc_data;", nil),
		records,
		seededIndex(t, "src_ip: 10.0.0.1 | note: phishing"),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "what about 10.0.0.1?")
	require.NoError(t, err)

	assert.Equal(t, []string{"src_ip: 10.0.0.1 | note: phishing"}, summaries)
}

func TestAnswerFallsBackOnNonSelectTranslation(t *testing.T) {
	records := &fakeRecords{
		schema: `CREATE TABLE soc_data ("src_ip" TEXT)`,
	}

	r := New(
		routingGenerator("DROP TABLE soc_data;", nil),
		records,
		seededIndex(t, "doc one"),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, []string{"doc one"}, summaries)
	assert.Empty(t, records.gotQuery)
}

func TestAnswerFallsBackOnProseTranslation(t *testing.T) {
	records := &fakeRecords{
		schema: `CREATE TABLE soc_data ("src_ip" TEXT)`,
	}

	r := New(
		routingGenerator("I cannot answer that question.", nil),
		records,
		seededIndex(t, "doc one"),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, []string{"doc one"}, summaries)
}

func TestAnswerEmptyBothPathsReturnsSentinel(t *testing.T) {
	records := &fakeRecords{
		schemaErr: errors.New("store unreachable"),
	}

	r := New(
		routingGenerator("SELECT * FROM soc_data;", nil),
		records,
		memoryindex.NewStore(),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, []string{NoResultText}, summaries)
}

func TestAnswerEmptyResultTriggersFallback(t *testing.T) {
	records := &fakeRecords{
		schema: `CREATE TABLE soc_data ("src_ip" TEXT)`,
		rows:   &recordstore.Rows{Columns: []string{"src_ip"}},
	}

	r := New(
		routingGenerator("SELECT src_ip FROM soc_data;", nil),
		records,
		seededIndex(t, "doc one"),
		&fakeEmbedder{vector: []float32{1, 0}},
	)

	summaries, err := r.Answer(context.Background(), "anything")
	require.NoError(t, err)

	assert.Equal(t, []string{"doc one"}, summaries)
}

func TestNeedsRetrieval(t *testing.T) {
	yes := &fakeGenerator{fn: func([]generator.Message) (string, error) {
		return "YES", nil
	}}
	no := &fakeGenerator{fn: func([]generator.Message) (string, error) {
		return "No, this is small talk.", nil
	}}

	idx := memoryindex.NewStore()
	e := &fakeEmbedder{vector: []float32{1, 0}}
	records := &fakeRecords{}

	needed, err := New(yes, records, idx, e).NeedsRetrieval(context.Background(), "find events from 10.0.0.1")
	require.NoError(t, err)
	assert.True(t, needed)

	needed, err = New(no, records, idx, e).NeedsRetrieval(context.Background(), "hello")
	require.NoError(t, err)
	assert.False(t, needed)
}
