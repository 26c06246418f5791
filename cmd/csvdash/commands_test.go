package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvdash/internal/engine"
)

const covidCSV = `date,location,total_cases
2021-01-01,Italy,10
2021-01-02,Italy,12
2021-01-01,Chile,4
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("4\n"))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func dataFile(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "covid.csv")
	if err := os.WriteFile(path, []byte(covidCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestSummaryCommand(t *testing.T) {
	_, path := dataFile(t)
	out, err := run(t, "summary", "--file", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Rows: 3") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCatalogCommand(t *testing.T) {
	_, path := dataFile(t)
	out, err := run(t, "catalog", "-f", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Categorical: location") || !strings.Contains(out, "Numeric:     total_cases") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPlotCommandExports(t *testing.T) {
	dir, path := dataFile(t)
	export := filepath.Join(dir, "series.parquet")

	out, err := run(t, "plot", "-f", path, "-o", dir, "--value", "Chile", "--export", export)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "total_cases over time for Chile") {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "total_cases_Chile.png")); err != nil {
		t.Errorf("chart missing: %v", err)
	}
	tbl, err := engine.Load(export)
	if err != nil {
		t.Fatalf("export not readable: %v", err)
	}
	if tbl.Rows() != 1 {
		t.Errorf("expected 1 exported row, got %d", tbl.Rows())
	}
}

func TestMenuCommand(t *testing.T) {
	_, path := dataFile(t)
	out, err := run(t, "menu", "-f", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Exiting...") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLoadFailure(t *testing.T) {
	_, err := run(t, "summary", "-f", filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, engine.ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}
