package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"csvdash/internal/chart"
	"csvdash/internal/engine"
	"csvdash/internal/models"
	"csvdash/internal/session"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Options are the report defaults taken from configuration.
type Options struct {
	OutputDir      string
	TopGroupColumn string
	TopValueColumn string
	TopN           int
	ChartWidth     int
	ChartHeight    int
}

// PrintSummary writes the table summary as aligned text.
func PrintSummary(w io.Writer, s models.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Data summary"))
	fmt.Fprintf(w, "Rows: %s  Columns: %d\n\n", humanize.Comma(int64(s.Rows)), s.Columns)

	fmt.Fprintln(w, headerStyle.Render("Missing values"))
	for _, m := range s.Missing {
		fmt.Fprintf(w, "  %-24s %s\n", m.Column, humanize.Comma(int64(m.Count)))
	}

	if len(s.Numeric) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("  %-24s %12s %16s %16s %16s %16s", "column", "count", "sum", "mean", "min", "max")))
	for _, c := range s.Numeric {
		fmt.Fprintf(w, "  %-24s %12s %16s %16s %16s %16s\n", c.Column, humanize.Comma(int64(c.Count)),
			chart.FormatValue(c.Sum), chart.FormatValue(c.Mean), chart.FormatValue(c.Min), chart.FormatValue(c.Max))
	}
}

// PrintCatalog lists the selectable columns.
func PrintCatalog(w io.Writer, c engine.Catalog) {
	fmt.Fprintln(w, titleStyle.Render("Columns"))
	date := c.Date
	if date == "" {
		date = "(none)"
	}
	fmt.Fprintf(w, "Date:        %s\n", date)
	fmt.Fprintf(w, "Categorical: %s\n", strings.Join(c.Categorical, ", "))
	fmt.Fprintf(w, "Numeric:     %s\n", strings.Join(c.Numeric, ", "))
}

// PrintTop lists ranked category totals.
func PrintTop(w io.Writer, title string, items []models.TopItem) {
	fmt.Fprintln(w, titleStyle.Render(title))
	for i, it := range items {
		fmt.Fprintf(w, "%2d. %-24s %16s\n", i+1, it.Name, chart.FormatValue(it.Value))
	}
}

// PrintSeries lists the points of a series.
func PrintSeries(w io.Writer, s session.Series) {
	fmt.Fprintln(w, titleStyle.Render(s.Title))
	for _, p := range s.Points {
		fmt.Fprintf(w, "  %s %16s\n", p.Date.Format("2006-01-02"), chart.FormatValue(p.Value))
	}
}

// Notice prints an informational message.
func Notice(w io.Writer, msg string) { fmt.Fprintln(w, noticeStyle.Render(msg)) }

// Error prints a failure message.
func Error(w io.Writer, err error) { fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error())) }

// SaveTopChart renders the top categories as a bar chart into the output
// directory and returns the file path.
func SaveTopChart(opts Options, title string, items []models.TopItem) (string, error) {
	path := filepath.Join(opts.OutputDir, fileName("top", opts.TopGroupColumn, opts.TopValueColumn)+".png")
	return path, writeFile(path, func(w io.Writer) error {
		return chart.Bar(w, chart.BarSpec{
			Title:  title,
			XLabel: "Category",
			YLabel: "Value",
			Items:  items,
			Width:  opts.ChartWidth,
			Height: opts.ChartHeight,
		})
	})
}

// SaveSeriesChart renders s as a line chart into the output directory and
// returns the file path.
func SaveSeriesChart(opts Options, s session.Series, category string) (string, error) {
	path := filepath.Join(opts.OutputDir, fileName(s.YLabel, category)+".png")
	return path, writeFile(path, func(w io.Writer) error {
		return chart.Line(w, chart.LineSpec{
			Title:  s.Title,
			XLabel: s.XLabel,
			YLabel: s.YLabel,
			Points: s.Points,
			Width:  opts.ChartWidth,
			Height: opts.ChartHeight,
		})
	})
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func fileName(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.Trim(unsafeChars.ReplaceAllString(p, "_"), "_")
	}
	return strings.Join(parts, "_")
}
