package annotate

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
	"github.com/jimyoyo0329/socagent/matcher"
	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/synthesis"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []generator.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newService(t *testing.T, g generator.Generator, e *fakeEmbedder, entries ...indexstore.Entry) *Service {
	t.Helper()

	idx := memoryindex.NewStore()
	require.NoError(t, idx.Add(context.Background(), entries))

	return New(matcher.New(e, idx), synthesis.New(g))
}

func inputTable(t *testing.T) *record.Table {
	t.Helper()
	table, err := record.ReadCSV(strings.NewReader(
		"src_ip,domain\n10.0.0.1,evil.test\n",
	))
	require.NoError(t, err)
	return table
}

func TestAnnotateWritesGeneratedNote(t *testing.T) {
	s := newService(t,
		&fakeGenerator{reply: "fresh analyst note"},
		&fakeEmbedder{},
		indexstore.Entry{
			Id:        "doc_0",
			Embedding: []float32{1, 0},
			Metadata:  map[string]string{"src_ip": "10.0.0.1", "domain": "evil.test", "note": "prior note"},
		},
	)

	table := inputTable(t)

	results, err := s.Annotate(context.Background(), table, 3, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "fresh analyst note", results[0].Note)
	assert.Equal(t, "prior note", results[0].ExemplarNote)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)

	assert.Contains(t, table.Columns, "note")
	v, ok := table.Records[0].Get("note")
	require.True(t, ok)
	assert.Equal(t, "fresh analyst note", v)
}

func TestAnnotateMissWritesSentinelNote(t *testing.T) {
	s := newService(t, &fakeGenerator{reply: "unused"}, &fakeEmbedder{})

	table := inputTable(t)

	results, err := s.Annotate(context.Background(), table, 3, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, NoMatchNote, results[0].Note)
	assert.Empty(t, results[0].ExemplarNote)
	assert.NotEmpty(t, results[0].QueryText)

	v, _ := table.Records[0].Get("note")
	assert.Equal(t, NoMatchNote, v)
}

func TestAnnotateRowFailureIsInline(t *testing.T) {
	s := newService(t,
		&fakeGenerator{reply: "unused"},
		&fakeEmbedder{err: errors.New("model unavailable")},
	)

	table, err := record.ReadCSV(strings.NewReader(
		"src_ip\n10.0.0.1\n10.0.0.2\n",
	))
	require.NoError(t, err)

	results, err := s.Annotate(context.Background(), table, 3, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Contains(t, r.Note, "note generation failed")
	}
}

func TestAnnotateSynthesisFailureIsInline(t *testing.T) {
	s := newService(t,
		&fakeGenerator{err: errors.New("model overloaded")},
		&fakeEmbedder{},
		indexstore.Entry{
			Id:        "doc_0",
			Embedding: []float32{1, 0},
			Metadata:  map[string]string{"src_ip": "10.0.0.1", "domain": "evil.test", "note": "prior note"},
		},
	)

	table := inputTable(t)

	results, err := s.Annotate(context.Background(), table, 3, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Contains(t, results[0].Note, "note generation failed")
}
