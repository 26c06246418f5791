package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
)

// dateLayouts are tried in order; the first one every value parses under wins.
// Month/day-first ambiguity therefore resolves to month first.
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"2/1/2006",
	"2006/1/2",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
	"2006-01",
	"2006",
	"Jan-2006",
}

func detectLayout(col series.Series) (string, error) {
	var values []string
	for i := 0; i < col.Len(); i++ {
		if e := col.Elem(i); !e.IsNA() {
			values = append(values, strings.TrimSpace(e.String()))
		}
	}
	if len(values) == 0 {
		return dateLayouts[0], nil
	}

	for _, layout := range dateLayouts {
		if parsesAll(layout, values) {
			return layout, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrDateFormat, values[0])
}

func parsesAll(layout string, values []string) bool {
	for _, v := range values {
		if _, err := time.Parse(layout, v); err != nil {
			return false
		}
	}
	return true
}
