package orders

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteCSVEscapesSpecialCharacters(t *testing.T) {
	records := []Record{
		{
			"order_id": "1",
			"company":  `Smith, Jones & "Partners"`,
			"status":   "created",
		},
		{
			"order_id": "2",
			"company":  "Plain Co",
			"status":   "paid",
		},
	}

	var buf strings.Builder
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("WriteCSV() produced %d rows, want 3 (header + 2 records)", len(rows))
	}
	for i, field := range Fields {
		if rows[0][i] != field {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], field)
		}
	}
	if got := rows[1][2]; got != `Smith, Jones & "Partners"` {
		t.Errorf("company round trip = %q, want %q", got, `Smith, Jones & "Partners"`)
	}
	if got := rows[2][0]; got != "2" {
		t.Errorf("second record order_id = %q, want %q", got, "2")
	}
}

func TestWriteCSVEmptyRecords(t *testing.T) {
	var buf strings.Builder
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	got := strings.TrimRight(buf.String(), "\n")
	want := strings.Join(Fields, ",")
	if got != want {
		t.Errorf("WriteCSV() header only = %q, want %q", got, want)
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	records := []Record{
		{"order_id": "1", "company": "Acme", "status": "paid", "total": "10.00"},
	}

	if err := WriteCSVFile(path, records); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("WriteCSVFile() wrote %d rows, want 2", len(rows))
	}
	if rows[1][0] != "1" {
		t.Errorf("order_id = %q, want %q", rows[1][0], "1")
	}
}

func TestWriteCSVFileBadPath(t *testing.T) {
	err := WriteCSVFile(filepath.Join(t.TempDir(), "missing", "orders.csv"), nil)
	if err == nil {
		t.Error("WriteCSVFile() expected error for unwritable path, got nil")
	}
}
