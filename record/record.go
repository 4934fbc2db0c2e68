package record

import "strings"

// Field is one named text value of an alert record.
type Field struct {
	Name  string
	Value string
}

// Record is one ingested alert event: an ordered list of text fields.
// Field order is significant and must be kept consistent between
// ingestion and querying.
type Record struct {
	fields []Field
	index  map[string]int
}

func New() *Record {
	return &Record{
		index: map[string]int{},
	}
}

// FromPairs builds a record from name/value pairs in the given order.
func FromPairs(pairs ...[2]string) *Record {
	r := New()
	for _, p := range pairs {
		r.Set(p[0], p[1])
	}
	return r
}

// Set appends the field, or overwrites its value if the name already exists.
func (r *Record) Set(name string, value string) {
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

func (r *Record) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.fields[i].Value, true
}

// Value returns the trimmed field value, or "" if the field is absent.
func (r *Record) Value(name string) string {
	v, _ := r.Get(name)
	return strings.TrimSpace(v)
}

func (r *Record) Fields() []Field {
	cpy := make([]Field, len(r.fields))
	copy(cpy, r.fields)
	return cpy
}

func (r *Record) Len() int {
	return len(r.fields)
}

func (r *Record) Clone() *Record {
	cpy := New()
	for _, f := range r.fields {
		cpy.Set(f.Name, f.Value)
	}
	return cpy
}

// Metadata projects the record onto a string map for index storage,
// excluding the time field. Blank values are stored as the literal "nan"
// so that filter construction can tell them apart from real values.
func (r *Record) Metadata() map[string]string {
	meta := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		if f.Name == TimeField {
			continue
		}
		v := strings.TrimSpace(f.Value)
		if len(v) == 0 {
			v = NullValue
		}
		meta[f.Name] = v
	}
	return meta
}
