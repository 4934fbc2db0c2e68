package record

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is an ordered batch of records sharing one column set.
type Table struct {
	Columns []string
	Records []*Record
}

// Texts encodes every record in order.
func (t *Table) Texts() []string {
	texts := make([]string, len(t.Records))
	for i, r := range t.Records {
		texts[i] = r.Text()
	}
	return texts
}

// EnsureColumn appends the column with blank values if it is missing.
func (t *Table) EnsureColumn(name string) {
	for _, col := range t.Columns {
		if col == name {
			return
		}
	}
	t.Columns = append(t.Columns, name)
	for _, r := range t.Records {
		if _, ok := r.Get(name); !ok {
			r.Set(name, "")
		}
	}
}

// ReadCSV parses a table whose header row names the fields. Every cell is
// kept as text.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := &Table{Columns: header}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Records)+1, err)
		}

		rec := New()
		for i, col := range header {
			if i < len(row) {
				rec.Set(col, row[i])
			} else {
				rec.Set(col, "")
			}
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// WriteCSV emits the table with its columns as the header row. Fields a
// record does not carry are written blank.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(t.Columns))
	for _, rec := range t.Records {
		for i, col := range t.Columns {
			v, _ := rec.Get(col)
			row[i] = v
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
