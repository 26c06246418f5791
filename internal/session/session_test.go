package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"csvdash/internal/engine"
)

const covidCSV = `date,location,continent,total_cases,new_cases
2021-01-01,Italy,Europe,10,1
2021-01-02,Italy,Europe,12,2
2021-01-01,Chile,South America,4,4
2021-01-02,Chile,South America,6,2
2021-01-02,Kenya,Africa,3,3
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loaded(t *testing.T, content string) *Session {
	t.Helper()
	s := New(nil)
	if err := s.Load(writeTemp(t, "data.csv", content)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestLoadResetsSelection(t *testing.T) {
	s := loaded(t, covidCSV)

	snap := s.Snapshot()
	if !snap.Loaded || snap.Rows != 5 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	want := Selection{CategoryColumn: "location", CategoryValue: "Italy", ValueColumn: "total_cases"}
	if snap.Selection != want {
		t.Errorf("Expected %+v, got %+v", want, snap.Selection)
	}
	if !reflect.DeepEqual(snap.Domain, []string{"Italy", "Chile", "Kenya"}) {
		t.Errorf("unexpected domain %v", snap.Domain)
	}

	// Reload a different file: nothing of the old selection survives.
	if err := s.Load(writeTemp(t, "other.csv", "date,region,deaths\n2021-01-01,North,1\n")); err != nil {
		t.Fatal(err)
	}
	want = Selection{CategoryColumn: "region", CategoryValue: "North", ValueColumn: "deaths"}
	if got := s.Snapshot().Selection; got != want {
		t.Errorf("after reload expected %+v, got %+v", want, got)
	}
}

func TestFailedLoadKeepsState(t *testing.T) {
	s := loaded(t, covidCSV)
	if err := s.SetCategoryValue("Chile"); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	err := s.Load(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, engine.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if after := s.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed after failed load:\n%+v\n%+v", before, after)
	}
}

func TestSetCategoryColumnResetsValue(t *testing.T) {
	s := loaded(t, covidCSV)
	if err := s.SetCategoryValue("Kenya"); err != nil {
		t.Fatal(err)
	}

	if err := s.SetCategoryColumn("continent"); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Selection.CategoryValue != "Europe" {
		t.Errorf("Expected first continent, got %q", snap.Selection.CategoryValue)
	}
	if !reflect.DeepEqual(snap.Domain, []string{"Europe", "South America", "Africa"}) {
		t.Errorf("unexpected domain %v", snap.Domain)
	}
	if snap.Selection.ValueColumn != "total_cases" {
		t.Errorf("value column should not change, got %q", snap.Selection.ValueColumn)
	}
}

func TestInvalidSelection(t *testing.T) {
	s := loaded(t, covidCSV)
	before := s.Snapshot()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"numeric as category", func() error { return s.SetCategoryColumn("total_cases") }},
		{"unknown category", func() error { return s.SetCategoryColumn("country") }},
		{"value outside domain", func() error { return s.SetCategoryValue("Europe") }},
		{"category as value", func() error { return s.SetValueColumn("location") }},
		{"apply stops midway", func() error {
			return s.Apply(Selection{CategoryColumn: "continent", CategoryValue: "Italy"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("expected ErrInvalidSelection, got %v", err)
			}
			if after := s.Snapshot(); !reflect.DeepEqual(before, after) {
				t.Errorf("state changed:\n%+v\n%+v", before, after)
			}
		})
	}
}

func TestNoData(t *testing.T) {
	s := New(nil)

	if err := s.SetValueColumn("x"); !errors.Is(err, ErrNoData) {
		t.Errorf("SetValueColumn: expected ErrNoData, got %v", err)
	}
	if _, err := s.Series(); !errors.Is(err, ErrNoData) {
		t.Errorf("Series: expected ErrNoData, got %v", err)
	}
	if _, err := s.Summary(); !errors.Is(err, ErrNoData) {
		t.Errorf("Summary: expected ErrNoData, got %v", err)
	}
	if snap := s.Snapshot(); snap.Loaded || snap.Domain == nil || snap.Catalog.Numeric == nil {
		t.Errorf("unexpected empty snapshot %+v", snap)
	}
}

func TestSeries(t *testing.T) {
	s := loaded(t, covidCSV)
	if err := s.Apply(Selection{CategoryValue: "Chile", ValueColumn: "new_cases"}); err != nil {
		t.Fatal(err)
	}

	series, err := s.Series()
	if err != nil {
		t.Fatal(err)
	}
	if series.Title != "new_cases over time for Chile" {
		t.Errorf("unexpected title %q", series.Title)
	}
	if series.XLabel != "Date" || series.YLabel != "new_cases" {
		t.Errorf("unexpected labels %q / %q", series.XLabel, series.YLabel)
	}
	if len(series.Points) != 2 || series.Points[0].Value != 4 || series.Points[1].Value != 2 {
		t.Errorf("unexpected points %v", series.Points)
	}
}

func TestSeriesNotices(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want error
	}{
		{"no categorical columns", "date,cases\n2021-01-01,1\n", engine.ErrEmptyCatalog},
		{"no numeric columns", "date,country\n2021-01-01,A\n", engine.ErrEmptyCatalog},
		{"empty domain", "date,country,cases\n2021-01-01,NA,1\n2021-01-02,,2\n", engine.ErrEmptyDomain},
		{"no date column", "country,cases\nA,1\n", engine.ErrNoDateColumn},
		{"unparseable dates", "date,country,cases\nWeek 1,A,1\nWeek 2,A,2\n", engine.ErrDateFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loaded(t, tt.csv)
			_, err := s.Series()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !engine.IsNotice(err) {
				t.Errorf("expected a notice, got %v", err)
			}
		})
	}
}

func TestSubscribe(t *testing.T) {
	s := New(nil)
	var got []Selection
	s.Subscribe(func(snap Snapshot) {
		// Listeners may read the session again.
		_ = s.Snapshot()
		got = append(got, snap.Selection)
	})

	if err := s.Load(writeTemp(t, "data.csv", covidCSV)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCategoryValue("Kenya"); err != nil {
		t.Fatal(err)
	}
	// Same value again is not a change.
	if err := s.SetCategoryValue("Kenya"); err != nil {
		t.Fatal(err)
	}
	_ = s.SetValueColumn("location")

	if len(got) != 2 {
		t.Fatalf("Expected 2 notifications, got %d: %v", len(got), got)
	}
	if got[1].CategoryValue != "Kenya" {
		t.Errorf("unexpected second notification %+v", got[1])
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := loaded(t, covidCSV)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values := []string{"Italy", "Chile", "Kenya"}
			for j := 0; j < 20; j++ {
				_ = s.SetCategoryValue(values[(i+j)%len(values)])
				if _, err := s.Series(); err != nil {
					t.Errorf("Series: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
