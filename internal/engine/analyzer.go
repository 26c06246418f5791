package engine

import (
	"cmp"
	"math"
	"slices"

	"csvdash/internal/models"
)

// Summarize reports the table shape, missing values per column and basic
// statistics for every numeric column.
func Summarize(t *Table) models.Summary {
	s := models.Summary{
		Rows:    t.Rows(),
		Columns: len(t.Columns()),
		Missing: []models.MissingCount{},
		Numeric: []models.ColumnStats{},
	}

	for _, name := range t.Columns() {
		missing := 0
		for _, na := range t.frame.Col(name).IsNaN() {
			if na {
				missing++
			}
		}
		s.Missing = append(s.Missing, models.MissingCount{Column: name, Count: missing})
	}

	for _, name := range Classify(t).Numeric {
		s.Numeric = append(s.Numeric, columnStats(name, t.frame.Col(name).Float()))
	}
	return s
}

func columnStats(name string, values []float64) models.ColumnStats {
	st := models.ColumnStats{Column: name}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if st.Count == 0 || v < st.Min {
			st.Min = v
		}
		if st.Count == 0 || v > st.Max {
			st.Max = v
		}
		st.Sum += v
		st.Count++
	}
	if st.Count > 0 {
		st.Mean = st.Sum / float64(st.Count)
	}
	return st
}

// TopCategories sums valueColumn per value of groupColumn and returns the n
// largest, highest first. n <= 0 returns every group.
func TopCategories(t *Table, groupColumn, valueColumn string, n int) ([]models.TopItem, error) {
	groups, err := t.column(groupColumn)
	if err != nil {
		return nil, err
	}
	if _, err := t.column(valueColumn); err != nil {
		return nil, err
	}
	values := t.frame.Col(valueColumn).Float()

	index := make(map[string]int)
	items := []models.TopItem{}
	for i := 0; i < groups.Len(); i++ {
		e := groups.Elem(i)
		if e.IsNA() {
			continue
		}
		name := e.String()
		pos, ok := index[name]
		if !ok {
			pos = len(items)
			index[name] = pos
			items = append(items, models.TopItem{Name: name})
		}
		if v := values[i]; !math.IsNaN(v) {
			items[pos].Value += v
		}
	}

	slices.SortFunc(items, func(a, b models.TopItem) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items, nil
}
