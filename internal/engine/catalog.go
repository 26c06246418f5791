package engine

import (
	"fmt"

	"github.com/go-gota/gota/series"
)

// Catalog classifies the columns of a Table. Each list keeps table order.
type Catalog struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
	Date        string   `json:"date,omitempty"`
}

// Check returns ErrEmptyCatalog when there is nothing to select on one side.
func (c Catalog) Check() error {
	switch {
	case len(c.Categorical) == 0:
		return fmt.Errorf("%w: no categorical columns found", ErrEmptyCatalog)
	case len(c.Numeric) == 0:
		return fmt.Errorf("%w: no numeric columns found", ErrEmptyCatalog)
	}
	return nil
}

// Classify derives the Catalog of t. Columns named "date" in any case are
// kept out of both lists; the first of them is the date column.
func Classify(t *Table) Catalog {
	c := Catalog{
		Numeric:     []string{},
		Categorical: []string{},
		Date:        t.dateColumn,
	}
	for _, name := range t.Columns() {
		if isDateName(name) {
			continue
		}
		switch t.frame.Col(name).Type() {
		case series.Int, series.Float:
			c.Numeric = append(c.Numeric, name)
		default:
			c.Categorical = append(c.Categorical, name)
		}
	}
	return c
}

// Domain returns the distinct non-missing values of column in first-seen
// order. An empty slice means the column has no usable values.
func Domain(t *Table, column string) ([]string, error) {
	col, err := t.column(column)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	values := []string{}
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		v := e.String()
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}
