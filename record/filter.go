package record

import (
	"sort"
	"strings"
)

// DefaultFilterFields is the allow-list of fields that may constrain a
// nearest-neighbor search.
var DefaultFilterFields = []string{"src_ip", "dest_ip", "dest_port", "domain"}

// Filter is a conjunction of exact-match constraints over record fields.
// An empty filter constrains nothing.
type Filter map[string]string

// BuildFilter collects equality constraints from the record over the given
// fields. Absent fields, blank values, and the "nan" null marker are
// silently skipped.
func BuildFilter(r *Record, fields []string) Filter {
	f := Filter{}
	for _, name := range fields {
		v, ok := r.Get(name)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if len(v) == 0 || v == NullValue {
			continue
		}
		f[name] = v
	}
	return f
}

// Matches reports whether the metadata satisfies every constraint.
func (f Filter) Matches(meta map[string]string) bool {
	for k, want := range f {
		if meta[k] != want {
			return false
		}
	}
	return true
}

// Keys returns the constrained field names in sorted order, so callers that
// render the filter into a query produce deterministic text.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
