// Package tabular converts record collections to and from a simple
// header-projected table shape, with a CSV codec for file export and import.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is a rectangular view of records: a header row of field names and
// one string row per record, column order following Fields.
type Table struct {
	Fields []string
	Rows   [][]string
}

// Project builds a table from field-name keyed records. Only the named
// fields are kept, in the given order; fields missing from a record become
// empty cells.
func Project(fields []string, recs []map[string]string) Table {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = rec[field]
		}
		rows = append(rows, row)
	}
	return Table{Fields: fields, Rows: rows}
}

// Records is the inverse of Project: it zips each row back into a
// field-name keyed record.
func (t Table) Records() []map[string]string {
	recs := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Fields))
		for i, field := range t.Fields {
			if i < len(row) {
				rec[field] = row[i]
			}
		}
		recs = append(recs, rec)
	}
	return recs
}

// WriteCSV writes the table to w, header row first. The destination is
// overwritten wholesale; there is no append mode.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table from r. The first row is the header; an empty
// input yields an empty table.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)

	fields, err := cr.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("read csv header: %w", err)
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return Table{Fields: fields, Rows: rows}, nil
}
