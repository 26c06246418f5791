package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table holds one loaded dataset. It is never modified after it is built;
// a reload produces a new Table.
type Table struct {
	frame dataframe.DataFrame

	// Distinguished date column ("" when the table has none) and the
	// layout its values were validated against at load time. dateErr is
	// set instead of dateLayout when no layout fits; the table still
	// loads but cannot be aggregated over dates.
	dateColumn string
	dateLayout string
	dateErr    error
}

func newTable(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Nrow() == 0 {
		return nil, errors.New("no data rows")
	}

	t := &Table{frame: df}
	for _, name := range df.Names() {
		if isDateName(name) {
			t.dateColumn = name
			break
		}
	}
	if t.dateColumn != "" {
		layout, err := detectLayout(df.Col(t.dateColumn))
		if err != nil {
			t.dateErr = fmt.Errorf("column %q: %w", t.dateColumn, err)
		} else {
			t.dateLayout = layout
		}
	}
	return t, nil
}

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.frame.Nrow() }

// Columns returns the column names in file order.
func (t *Table) Columns() []string { return t.frame.Names() }

// Has reports whether the table has a column with exactly this name.
func (t *Table) Has(name string) bool {
	for _, n := range t.frame.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// DateColumn returns the name of the distinguished date column, or "".
func (t *Table) DateColumn() string { return t.dateColumn }

// DateErr reports why the date column cannot be parsed, or nil.
func (t *Table) DateErr() error { return t.dateErr }

func (t *Table) column(name string) (series.Series, error) {
	if !t.Has(name) {
		return series.Series{}, columnNotFound(name)
	}
	return t.frame.Col(name), nil
}

// dates parses a column into UTC times. ok[i] is false for missing values.
func (t *Table) dates(name string) (dates []time.Time, ok []bool, err error) {
	col, err := t.column(name)
	if err != nil {
		return nil, nil, err
	}
	layout := t.dateLayout
	if name == t.dateColumn && t.dateErr != nil {
		return nil, nil, t.dateErr
	}
	if name != t.dateColumn {
		if layout, err = detectLayout(col); err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", name, err)
		}
	}

	dates = make([]time.Time, col.Len())
	ok = make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			continue
		}
		d, err := time.Parse(layout, strings.TrimSpace(e.String()))
		if err != nil {
			return nil, nil, fmt.Errorf("column %q row %d: %w", name, i+1, ErrDateFormat)
		}
		dates[i] = d.UTC()
		ok[i] = true
	}
	return dates, ok, nil
}

func isDateName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "date")
}
