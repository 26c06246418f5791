package engine

import (
	"math"
	"slices"
	"time"

	"csvdash/internal/models"

	"github.com/go-gota/gota/series"
)

// Aggregate keeps the rows where filterColumn equals filterValue, sums
// valueColumn per distinct date in dateColumn and returns the sums in
// chronological order.
//
// The filter compares in the column's own type: "5" matches an integer 5,
// "A" matches nothing in a numeric column. Missing or non-numeric values
// are left out of the sums; rows without a date belong to no group.
// No matching rows gives an empty series, not an error.
func Aggregate(t *Table, dateColumn, filterColumn, filterValue, valueColumn string) ([]models.Point, error) {
	for _, name := range []string{dateColumn, filterColumn, valueColumn} {
		if !t.Has(name) {
			return nil, columnNotFound(name)
		}
	}

	keep, err := t.match(filterColumn, filterValue)
	if err != nil {
		return nil, err
	}
	dates, hasDate, err := t.dates(dateColumn)
	if err != nil {
		return nil, err
	}
	values := t.frame.Col(valueColumn).Float()

	sums := make(map[time.Time]float64)
	for i := range keep {
		if !keep[i] || !hasDate[i] {
			continue
		}
		sum := sums[dates[i]]
		if v := values[i]; !math.IsNaN(v) {
			sum += v
		}
		sums[dates[i]] = sum
	}

	points := make([]models.Point, 0, len(sums))
	for d, v := range sums {
		points = append(points, models.Point{Date: d, Value: v})
	}
	slices.SortFunc(points, func(a, b models.Point) int { return a.Date.Compare(b.Date) })
	return points, nil
}

// match returns one flag per row telling whether column equals value.
func (t *Table) match(column, value string) ([]bool, error) {
	col, err := t.column(column)
	if err != nil {
		return nil, err
	}
	eq := col.Compare(series.Eq, value)
	if eq.Err != nil {
		return nil, eq.Err
	}
	return eq.Bool()
}
