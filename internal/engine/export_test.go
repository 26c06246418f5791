package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvdash/internal/models"
)

var exportPoints = []models.Point{
	{Date: day("2021-01-01"), Value: 5},
	{Date: day("2021-01-02"), Value: 3.5},
}

func TestWriteSeriesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSeriesCSV(&buf, exportPoints, "cases"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "date,cases\n") {
		t.Fatalf("unexpected header in %q", buf.String())
	}

	tbl, err := ReadCSV(&buf, ',')
	if err != nil {
		t.Fatal(err)
	}
	got := tbl.frame.Col("cases").Float()
	if len(got) != 2 || got[0] != 5 || got[1] != 3.5 {
		t.Errorf("unexpected values %v", got)
	}
	if tbl.DateColumn() != "date" {
		t.Errorf("expected date column, got %q", tbl.DateColumn())
	}
}

func TestWriteSeriesCSVValueName(t *testing.T) {
	for _, name := range []string{"", "date", "Date"} {
		var buf bytes.Buffer
		if err := WriteSeriesCSV(&buf, exportPoints, name); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(buf.String(), "date,value\n") {
			t.Errorf("name %q: unexpected header in %q", name, buf.String())
		}
	}
}

func TestExportSeries(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out.csv", "out.parquet"} {
		path := filepath.Join(dir, name)
		if err := ExportSeries(path, exportPoints, "cases"); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		tbl, err := Load(path)
		if err != nil {
			t.Fatalf("%s: reload: %v", name, err)
		}
		if tbl.Rows() != len(exportPoints) {
			t.Errorf("%s: expected %d rows, got %d", name, len(exportPoints), tbl.Rows())
		}
	}

	path := filepath.Join(dir, "out.xlsx")
	if err := ExportSeries(path, exportPoints, "cases"); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("unsupported export should not create a file")
	}
}
