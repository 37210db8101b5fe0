package tabular

import (
	"bytes"
	"strings"
	"testing"
)

func TestProject(t *testing.T) {
	recs := []map[string]string{
		{"id": "1", "name": "alice", "email": "a@x.io"},
		{"id": "2", "name": "bob"},
	}

	table := Project([]string{"id", "email"}, recs)

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0][0] != "1" || table.Rows[0][1] != "a@x.io" {
		t.Errorf("row 0 = %v", table.Rows[0])
	}
	if table.Rows[1][1] != "" {
		t.Errorf("missing field should be empty cell, got %q", table.Rows[1][1])
	}
}

func TestRecords_InverseOfProject(t *testing.T) {
	recs := []map[string]string{
		{"id": "1", "name": "alice"},
		{"id": "2", "name": "bob"},
	}

	got := Project([]string{"id", "name"}, recs).Records()

	if len(got) != len(recs) {
		t.Fatalf("got %d records, want %d", len(got), len(recs))
	}
	for i := range recs {
		for field, want := range recs[i] {
			if got[i][field] != want {
				t.Errorf("record %d field %s = %q, want %q", i, field, got[i][field], want)
			}
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	table := Table{
		Fields: []string{"id", "name", "active"},
		Rows: [][]string{
			{"100", "dev, infra", "true"},
			{"101", `says "hi"`, "false"},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if len(got.Fields) != 3 || got.Fields[1] != "name" {
		t.Errorf("fields = %v", got.Fields)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(got.Rows))
	}
	if got.Rows[0][1] != "dev, infra" {
		t.Errorf("comma cell survived as %q", got.Rows[0][1])
	}
	if got.Rows[1][1] != `says "hi"` {
		t.Errorf("quoted cell survived as %q", got.Rows[1][1])
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(table.Fields) != 0 || len(table.Rows) != 0 {
		t.Errorf("empty input should yield empty table, got %+v", table)
	}
}

func TestReadCSV_RaggedRowFails(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n")); err == nil {
		t.Error("expected error on ragged row")
	}
}
