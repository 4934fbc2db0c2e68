// Package synthesis assembles the prompts for every narrative the system
// produces and delegates the wording to a text-generation collaborator.
package synthesis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jimyoyo0329/socagent/generator"
)

const (
	noteSystemPrompt = "You are a security analyst. Given an alert description and an example " +
		"analyst note, write a new note with similar meaning, natural wording, and the same " +
		"format. Do not copy the example verbatim; rephrase it. Keep every person name, job " +
		"title, and team name from the example unchanged."

	outlineSystemPrompt = "You are a security analyst. Read the event details and produce a " +
		"structured outline covering the event background and the key investigation findings."

	outlineFormat = `Produce exactly the following sections, in this order, and nothing else.
Keep the headings and bullet labels unchanged. If a source field is blank,
keep the bullet and mark it "none".

#### Event Background
- Alert signature:
- Source IP:
- Destination IP:
- Related domain:

#### Event Outline
- Responsible person or team:
- Summary:
- Findings:
- Conclusion:`

	summarySystemPrompt = `You are a security analyst. Produce a clear, structured summary of the event data.
Rules:
1. Derive the summary from the field names and values as given; do not invent fields.
2. Prefix each summary with the heading "Event %d summary".
3. Keep the output short; avoid filler.
4. If the data contains a "note" or similar annotation field, use the event
   background / event outline section format, extracting the responsible
   party, summary, findings, and a reasonable conclusion from the note.
5. If there is no note-like field, list the field names and values as plain
   bullets instead.`

	compareSystemPrompt = "You are a security analyst comparing multiple security events."
)

type Synthesizer struct {
	generator generator.Generator
}

// NoteFromExample writes a fresh analyst note for the described alert,
// using a prior note as the style and content template.
func (s *Synthesizer) NoteFromExample(ctx context.Context, exemplarNote string, alertDescription string) (string, error) {
	user := fmt.Sprintf(
		"Alert description:\n%s\n\nExample note:\n%s\n\nWrite the new note and finish with a short list of key points:",
		alertDescription,
		exemplarNote,
	)

	return s.generator.Generate(ctx, []generator.Message{
		generator.System(noteSystemPrompt),
		generator.User(user),
	})
}

// EventOutline turns one event's formatted metadata into a fixed-format
// background/outline narrative.
func (s *Synthesizer) EventOutline(ctx context.Context, metadataText string) (string, error) {
	user := fmt.Sprintf(
		"Event data:\n%s\n\n%s",
		metadataText,
		outlineFormat,
	)

	return s.generator.Generate(ctx, []generator.Message{
		generator.System(outlineSystemPrompt),
		generator.User(user),
	})
}

// SummarizeRow narrates one query-result row. index is 1-based and only
// used for the heading.
func (s *Synthesizer) SummarizeRow(ctx context.Context, userQuery string, columns []string, values []string, index int) (string, error) {
	var b strings.Builder
	for i, col := range columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		if len(strings.TrimSpace(v)) == 0 {
			v = "none"
		}
		fmt.Fprintf(&b, "- %s: %s\n", col, v)
	}

	user := fmt.Sprintf(
		"Event %d summary\n\nUser question:\n%s\n\nEvent data:\n%s\nProduce the structured summary only, with no extra commentary.",
		index,
		userQuery,
		b.String(),
	)

	return s.generator.Generate(ctx, []generator.Message{
		generator.System(fmt.Sprintf(summarySystemPrompt, index)),
		generator.User(user),
	})
}

// Compare appends a similarities/differences narrative over two or more
// row summaries.
func (s *Synthesizer) Compare(ctx context.Context, userQuery string, summaries []string) (string, error) {
	var b strings.Builder
	for i, summary := range summaries {
		fmt.Fprintf(&b, "Event %d:\n%s\n\n", i+1, summary)
	}

	user := fmt.Sprintf(
		`User question:
%s

Event summaries:
%s
Compare these events:
1. First present the events side by side in a table.
2. Then list, as bullets:
 - what they have in common
 - how they differ`,
		userQuery,
		b.String(),
	)

	return s.generator.Generate(ctx, []generator.Message{
		generator.System(compareSystemPrompt),
		generator.User(user),
	})
}

// FormatEventMetadata renders stored metadata as one "field: value" line
// per field, sorted by field name so output is stable.
func FormatEventMetadata(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, meta[k]))
	}

	return strings.Join(lines, "\n")
}

func New(g generator.Generator) *Synthesizer {
	return &Synthesizer{generator: g}
}
