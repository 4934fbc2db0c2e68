package record

import "strings"

const (
	// TimeField is excluded from the comparable text representation.
	TimeField = "time"

	// NullValue marks a blank field in stored metadata.
	NullValue = "nan"

	// Separator joins the encoded field segments. Values containing the
	// separator are not escaped; the boundary between two fields and a
	// literal occurrence inside one value is ambiguous. Known limitation.
	Separator = " | "
)

// Text is the canonical projection of a record used for embedding and
// comparison: "name: value" for every field except time, joined by
// Separator, in field order. The same record always encodes to the same
// bytes, and reordered fields encode differently. Index-time and
// query-time text must come from this one function.
func (r *Record) Text() string {
	parts := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		if f.Name == TimeField {
			continue
		}
		parts = append(parts, f.Name+": "+strings.TrimSpace(f.Value))
	}
	return strings.Join(parts, Separator)
}
