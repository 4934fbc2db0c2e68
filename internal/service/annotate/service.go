// Package annotate walks an uploaded alert table and fills its note column
// from the best-matching prior event.
package annotate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jimyoyo0329/socagent/matcher"
	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/synthesis"
)

// NoMatchNote is written when no prior event clears the threshold. A miss
// is an expected outcome, not a failure.
const NoMatchNote = "no similar annotated event was found to generate a note"

// RowResult carries the generated note plus the diagnostics shown next to
// it: the canonical query text, the best similarity, and the exemplar note
// that seeded generation.
type RowResult struct {
	Note         string
	QueryText    string
	Similarity   float64
	ExemplarNote string
}

type Service struct {
	matcher *matcher.Matcher
	synth   *synthesis.Synthesizer
}

// Annotate matches and annotates every row. A failure on one row is
// recorded inline in that row's note and the batch continues; only the
// per-row placeholders surface it. The table gains a note column and each
// record's note field is overwritten with the result.
func (s *Service) Annotate(ctx context.Context, table *record.Table, topK int, threshold float64) ([]RowResult, error) {
	table.EnsureColumn("note")

	results := make([]RowResult, len(table.Records))

	for i, row := range table.Records {
		result := s.annotateRow(ctx, row, topK, threshold)
		row.Set("note", result.Note)
		results[i] = result
	}

	return results, nil
}

func (s *Service) annotateRow(ctx context.Context, row *record.Record, topK int, threshold float64) RowResult {
	m, err := s.matcher.Match(ctx, row, topK, threshold)
	if err != nil {
		slog.ErrorContext(ctx, "similarity match failed", "error", err)
		return RowResult{
			Note:      fmt.Sprintf("note generation failed: %v", err),
			QueryText: m.QueryText,
		}
	}

	if !m.Found {
		return RowResult{
			Note:      NoMatchNote,
			QueryText: m.QueryText,
		}
	}

	note, err := s.synth.NoteFromExample(ctx, m.ExemplarNote, m.QueryText)
	if err != nil {
		slog.ErrorContext(ctx, "note synthesis failed", "error", err)
		note = fmt.Sprintf("note generation failed: %v", err)
	}

	return RowResult{
		Note:         note,
		QueryText:    m.QueryText,
		Similarity:   m.Similarity,
		ExemplarNote: m.ExemplarNote,
	}
}

func New(m *matcher.Matcher, synth *synthesis.Synthesizer) *Service {
	return &Service{
		matcher: m,
		synth:   synth,
	}
}
