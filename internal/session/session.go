// Package session owns the loaded table and the user's current selection.
// Every front end (HTTP, terminal menu, desktop window) drives the same
// Session, so the reset rules between load, category column, category
// value and value column live in one place.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"csvdash/internal/engine"
	"csvdash/internal/log"
	"csvdash/internal/models"
)

var (
	// ErrNoData is returned by queries made before any file was loaded.
	ErrNoData = errors.New("no data loaded")

	// ErrInvalidSelection is returned when a selection names a column or
	// value that the current table does not offer.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Selection is the user's current choice of filter and value column.
type Selection struct {
	CategoryColumn string `json:"category_column"`
	CategoryValue  string `json:"category_value"`
	ValueColumn    string `json:"value_column"`
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Loaded    bool           `json:"loaded"`
	Path      string         `json:"path,omitempty"`
	Rows      int            `json:"rows"`
	Columns   []string       `json:"columns"`
	Catalog   engine.Catalog `json:"catalog"`
	Domain    []string       `json:"domain"`
	Selection Selection      `json:"selection"`
}

// Series is an aggregated series ready for plotting.
type Series struct {
	Title  string         `json:"title"`
	XLabel string         `json:"x_label"`
	YLabel string         `json:"y_label"`
	Points []models.Point `json:"points"`
}

// Listener is called with the new state after every change.
type Listener func(Snapshot)

type Session struct {
	mu        sync.RWMutex
	path      string
	table     *engine.Table
	catalog   engine.Catalog
	domain    []string
	selection Selection
	listeners []Listener

	logger *log.Logger
}

func New(logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Discard()
	}
	return &Session{logger: logger.WithComponent(log.ComponentSession)}
}

// Subscribe registers fn for state changes.
func (s *Session) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// --- 1. LOAD ---

// Load reads path and makes it the current table. On failure the previous
// state is kept and the *engine.LoadError is returned.
func (s *Session) Load(path string) error {
	t, err := engine.Load(path)
	if err != nil {
		s.logger.Warn("load failed", "path", path, "error", err)
		return err
	}

	cat := engine.Classify(t)
	sel := Selection{
		CategoryColumn: first(cat.Categorical),
		ValueColumn:    first(cat.Numeric),
	}
	domain := []string{}
	if sel.CategoryColumn != "" {
		if domain, err = engine.Domain(t, sel.CategoryColumn); err != nil {
			return err
		}
		sel.CategoryValue = first(domain)
	}

	s.mu.Lock()
	s.path, s.table, s.catalog, s.domain, s.selection = path, t, cat, domain, sel
	snap := s.snapshot()
	s.mu.Unlock()

	s.logger.Info("file loaded", "path", path, "rows", snap.Rows, "columns", len(snap.Columns),
		"numeric", len(snap.Catalog.Numeric), "categorical", len(snap.Catalog.Categorical))
	s.notify(snap)
	return nil
}

// resetDomain recomputes the domain of the selected category column and
// selects its first value. Callers hold mu.
func (s *Session) resetDomain() error {
	s.domain = []string{}
	s.selection.CategoryValue = ""
	if s.selection.CategoryColumn == "" {
		return nil
	}
	domain, err := engine.Domain(s.table, s.selection.CategoryColumn)
	if err != nil {
		return err
	}
	s.domain = domain
	s.selection.CategoryValue = first(domain)
	return nil
}

// --- 2. SELECTION ---

// SetCategoryColumn selects a categorical column and resets the category
// value to the first value of its domain.
func (s *Session) SetCategoryColumn(column string) error {
	return s.update(func() error {
		if !slices.Contains(s.catalog.Categorical, column) {
			return fmt.Errorf("%w: %q is not a categorical column", ErrInvalidSelection, column)
		}
		if column == s.selection.CategoryColumn {
			return nil
		}
		s.selection.CategoryColumn = column
		return s.resetDomain()
	})
}

// SetCategoryValue selects one value of the current domain.
func (s *Session) SetCategoryValue(value string) error {
	return s.update(func() error {
		if !slices.Contains(s.domain, value) {
			return fmt.Errorf("%w: %q is not a value of %q", ErrInvalidSelection, value, s.selection.CategoryColumn)
		}
		s.selection.CategoryValue = value
		return nil
	})
}

// SetValueColumn selects the numeric column to sum.
func (s *Session) SetValueColumn(column string) error {
	return s.update(func() error {
		if !slices.Contains(s.catalog.Numeric, column) {
			return fmt.Errorf("%w: %q is not a numeric column", ErrInvalidSelection, column)
		}
		s.selection.ValueColumn = column
		return nil
	})
}

// Apply sets all three fields in dependency order. Empty fields keep their
// current value, except that a changed category column resets the value
// as SetCategoryColumn does. Nothing changes if any field is invalid.
func (s *Session) Apply(sel Selection) error {
	return s.update(func() error {
		if sel.CategoryColumn != "" && sel.CategoryColumn != s.selection.CategoryColumn {
			if !slices.Contains(s.catalog.Categorical, sel.CategoryColumn) {
				return fmt.Errorf("%w: %q is not a categorical column", ErrInvalidSelection, sel.CategoryColumn)
			}
			s.selection.CategoryColumn = sel.CategoryColumn
			if err := s.resetDomain(); err != nil {
				return err
			}
		}
		if sel.CategoryValue != "" {
			if !slices.Contains(s.domain, sel.CategoryValue) {
				return fmt.Errorf("%w: %q is not a value of %q", ErrInvalidSelection, sel.CategoryValue, s.selection.CategoryColumn)
			}
			s.selection.CategoryValue = sel.CategoryValue
		}
		if sel.ValueColumn != "" {
			if !slices.Contains(s.catalog.Numeric, sel.ValueColumn) {
				return fmt.Errorf("%w: %q is not a numeric column", ErrInvalidSelection, sel.ValueColumn)
			}
			s.selection.ValueColumn = sel.ValueColumn
		}
		return nil
	})
}

// update runs fn under the write lock. When fn fails the previous state is
// restored; otherwise listeners are told about the new state.
func (s *Session) update(fn func() error) error {
	s.mu.Lock()
	if s.table == nil {
		s.mu.Unlock()
		return ErrNoData
	}
	prevSel, prevDomain := s.selection, s.domain
	if err := fn(); err != nil {
		s.selection, s.domain = prevSel, prevDomain
		s.mu.Unlock()
		return err
	}
	changed := s.selection != prevSel
	snap := s.snapshot()
	s.mu.Unlock()

	if changed {
		s.logger.Debug("selection changed", "category_column", snap.Selection.CategoryColumn,
			"category_value", snap.Selection.CategoryValue, "value_column", snap.Selection.ValueColumn)
		s.notify(snap)
	}
	return nil
}

// --- 3. QUERIES ---

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Path:      s.path,
		Catalog:   engine.Catalog{Numeric: []string{}, Categorical: []string{}},
		Domain:    slices.Clone(s.domain),
		Columns:   []string{},
		Selection: s.selection,
	}
	if snap.Domain == nil {
		snap.Domain = []string{}
	}
	if s.table != nil {
		snap.Loaded = true
		snap.Rows = s.table.Rows()
		snap.Columns = s.table.Columns()
		snap.Catalog = engine.Catalog{
			Numeric:     slices.Clone(s.catalog.Numeric),
			Categorical: slices.Clone(s.catalog.Categorical),
			Date:        s.catalog.Date,
		}
	}
	return snap
}

// Table returns the current table.
func (s *Session) Table() (*engine.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrNoData
	}
	return s.table, nil
}

// Domain returns the distinct values of any column of the current table.
func (s *Session) Domain(column string) ([]string, error) {
	t, err := s.Table()
	if err != nil {
		return nil, err
	}
	return engine.Domain(t, column)
}

// Series aggregates the current selection. An empty catalog or domain is
// reported with the notice errors from the engine package.
func (s *Session) Series() (Series, error) {
	s.mu.RLock()
	t, cat, sel, domain := s.table, s.catalog, s.selection, len(s.domain)
	s.mu.RUnlock()

	if t == nil {
		return Series{}, ErrNoData
	}
	if err := cat.Check(); err != nil {
		return Series{}, err
	}
	if domain == 0 {
		return Series{}, fmt.Errorf("%w: %q", engine.ErrEmptyDomain, sel.CategoryColumn)
	}
	if cat.Date == "" {
		return Series{}, engine.ErrNoDateColumn
	}

	points, err := engine.Aggregate(t, cat.Date, sel.CategoryColumn, sel.CategoryValue, sel.ValueColumn)
	if err != nil {
		return Series{}, err
	}
	return Series{
		Title:  fmt.Sprintf("%s over time for %s", sel.ValueColumn, sel.CategoryValue),
		XLabel: "Date",
		YLabel: sel.ValueColumn,
		Points: points,
	}, nil
}

// Summary describes the current table.
func (s *Session) Summary() (models.Summary, error) {
	t, err := s.Table()
	if err != nil {
		return models.Summary{}, err
	}
	return engine.Summarize(t), nil
}

// Top returns the n largest groupColumn totals of valueColumn.
func (s *Session) Top(groupColumn, valueColumn string, n int) ([]models.TopItem, error) {
	t, err := s.Table()
	if err != nil {
		return nil, err
	}
	return engine.TopCategories(t, groupColumn, valueColumn, n)
}

func (s *Session) notify(snap Snapshot) {
	s.mu.RLock()
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
