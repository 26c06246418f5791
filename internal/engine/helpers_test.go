package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const casesCSV = `date,country,cases
2021-01-01,A,2
2021-01-01,A,3
2021-01-02,A,3
2021-01-01,B,7
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadString(t *testing.T, content string) *Table {
	t.Helper()
	tbl, err := Load(writeTemp(t, "data.csv", content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tbl
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}
