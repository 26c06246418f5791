// Package desktop is the fyne front end: load a file, pick a category
// column, a category value and a numeric column, then plot.
package desktop

import (
	"errors"
	"fmt"

	"csvdash/internal/chart"
	"csvdash/internal/engine"
	"csvdash/internal/log"
	"csvdash/internal/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// Options size the chart window.
type Options struct {
	ChartWidth  int
	ChartHeight int
}

type Window struct {
	app     fyne.App
	w       fyne.Window
	session *session.Session
	opts    Options
	logger  *log.Logger

	categoryColumn *widget.Select
	categoryValue  *widget.Select
	valueColumn    *widget.Select
	plotButton     *widget.Button
	status         *widget.Label

	// set while the selects are refreshed from the session so their
	// OnChanged callbacks do not write back
	refreshing bool
}

func New(a fyne.App, s *session.Session, opts Options, logger *log.Logger) *Window {
	if logger == nil {
		logger = log.Discard()
	}
	win := &Window{
		app:     a,
		w:       a.NewWindow("CSV Dashboard"),
		session: s,
		opts:    opts,
		logger:  logger.WithComponent(log.ComponentDesktop),
	}

	win.categoryColumn = widget.NewSelect(nil, func(v string) {
		win.apply(func() error { return s.SetCategoryColumn(v) })
	})
	win.categoryValue = widget.NewSelect(nil, func(v string) {
		win.apply(func() error { return s.SetCategoryValue(v) })
	})
	win.valueColumn = widget.NewSelect(nil, func(v string) {
		win.apply(func() error { return s.SetValueColumn(v) })
	})
	win.plotButton = widget.NewButton("Plot", win.Plot)
	win.status = widget.NewLabel("No file loaded")

	form := widget.NewForm(
		widget.NewFormItem("Category column", win.categoryColumn),
		widget.NewFormItem("Category value", win.categoryValue),
		widget.NewFormItem("Numeric column", win.valueColumn),
	)
	win.w.SetContent(container.NewBorder(
		widget.NewButton("Load CSV", win.openFile),
		win.status,
		nil, nil,
		container.NewVBox(form, win.plotButton),
	))
	win.w.Resize(fyne.NewSize(520, 260))

	s.Subscribe(win.refresh)
	win.refresh(s.Snapshot())
	return win
}

// Window returns the main fyne window.
func (win *Window) Window() fyne.Window { return win.w }

// ShowAndRun shows the main window and runs the app event loop.
func (win *Window) ShowAndRun() { win.w.ShowAndRun() }

func (win *Window) openFile() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win.w)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		win.LoadFile(path)
	}, win.w)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".parquet"}))
	open.Resize(fyne.NewSize(800, 600))
	open.Show()
}

// LoadFile loads path into the session and reports the outcome.
func (win *Window) LoadFile(path string) {
	if err := win.session.Load(path); err != nil {
		dialog.ShowError(err, win.w)
		return
	}
	snap := win.session.Snapshot()
	if err := snap.Catalog.Check(); err != nil {
		dialog.ShowInformation("Nothing to select", err.Error(), win.w)
		return
	}
	if len(snap.Domain) == 0 {
		dialog.ShowInformation("Nothing to select",
			fmt.Sprintf("No values found for category column %q.", snap.Selection.CategoryColumn), win.w)
	}
}

// Plot opens a chart window for the current selection.
func (win *Window) Plot() {
	series, err := win.session.Series()
	switch {
	case engine.IsNotice(err), errors.Is(err, session.ErrNoData):
		dialog.ShowInformation("Cannot plot", err.Error(), win.w)
		return
	case err != nil:
		dialog.ShowError(err, win.w)
		return
	}
	if len(series.Points) == 0 {
		dialog.ShowInformation("Cannot plot", "No rows match the current selection.", win.w)
		return
	}

	img, err := chart.Image(chart.LineSpec{
		Title:  series.Title,
		XLabel: series.XLabel,
		YLabel: series.YLabel,
		Points: series.Points,
		Width:  win.opts.ChartWidth,
		Height: win.opts.ChartHeight,
	})
	if err != nil {
		dialog.ShowError(err, win.w)
		return
	}

	picture := canvas.NewImageFromImage(img)
	picture.FillMode = canvas.ImageFillContain
	cw := win.app.NewWindow(series.Title)
	cw.SetContent(picture)
	cw.Resize(fyne.NewSize(float32(img.Bounds().Dx()), float32(img.Bounds().Dy())))
	cw.Show()
	win.logger.Debug("chart shown", "title", series.Title, "points", len(series.Points))
}

func (win *Window) apply(fn func() error) {
	if win.refreshing {
		return
	}
	if err := fn(); err != nil {
		dialog.ShowError(err, win.w)
	}
}

func (win *Window) refresh(snap session.Snapshot) {
	win.refreshing = true
	defer func() { win.refreshing = false }()

	setSelect(win.categoryColumn, snap.Catalog.Categorical, snap.Selection.CategoryColumn)
	setSelect(win.categoryValue, snap.Domain, snap.Selection.CategoryValue)
	setSelect(win.valueColumn, snap.Catalog.Numeric, snap.Selection.ValueColumn)

	if !snap.Loaded {
		win.plotButton.Disable()
		return
	}
	win.plotButton.Enable()
	win.status.SetText(fmt.Sprintf("%s: %d rows, %d columns", snap.Path, snap.Rows, len(snap.Columns)))
}

func setSelect(s *widget.Select, options []string, selected string) {
	s.SetOptions(options)
	if selected == "" {
		s.ClearSelected()
		return
	}
	s.SetSelected(selected)
}
