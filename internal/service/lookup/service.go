// Package lookup retrieves prior events by exact field match and outlines
// each hit.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jimyoyo0329/socagent/indexstore"
	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/synthesis"
)

// Fields that may drive an exact-match lookup.
var AllowedFields = []string{"alert.signature", "domain", "src_ip"}

// Hit is one matching prior event: its stored metadata rendered as text
// plus the synthesized outline.
type Hit struct {
	MetadataText string `json:"metadata_text"`
	Outline      string `json:"outline"`
}

type Service struct {
	index indexstore.IndexStore
	synth *synthesis.Synthesizer
}

// Lookup fetches every stored event whose field equals value and outlines
// each one. A blank value matches nothing. An outline failure on one hit
// is recorded inline and the rest proceed.
func (s *Service) Lookup(ctx context.Context, field string, value string, limit int) ([]Hit, error) {
	if !allowed(field) {
		return nil, fmt.Errorf("lookup by %q is not supported", field)
	}

	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return nil, nil
	}

	entries, err := s.index.Get(ctx, record.Filter{field: value}, limit)
	if err != nil {
		return nil, fmt.Errorf("get by %s: %w", field, err)
	}

	hits := make([]Hit, 0, len(entries))

	for i, e := range entries {
		metadataText := synthesis.FormatEventMetadata(e.Metadata)

		outline, err := s.synth.EventOutline(ctx, metadataText)
		if err != nil {
			slog.ErrorContext(ctx, "event outline failed", "error", err, "index", i)
			outline = fmt.Sprintf("outline of event %d failed: %v", i+1, err)
		}

		hits = append(hits, Hit{
			MetadataText: metadataText,
			Outline:      outline,
		})
	}

	return hits, nil
}

func allowed(field string) bool {
	for _, f := range AllowedFields {
		if f == field {
			return true
		}
	}
	return false
}

func New(index indexstore.IndexStore, synth *synthesis.Synthesizer) *Service {
	return &Service{
		index: index,
		synth: synth,
	}
}
