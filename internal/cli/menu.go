package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"csvdash/internal/engine"
	"csvdash/internal/log"
	"csvdash/internal/session"
)

// Menu is the interactive text dashboard over a loaded Session.
type Menu struct {
	session *session.Session
	opts    Options
	in      io.Reader
	out     io.Writer
	logger  *log.Logger
}

func NewMenu(s *session.Session, opts Options, in io.Reader, out io.Writer, logger *log.Logger) *Menu {
	if logger == nil {
		logger = log.Discard()
	}
	return &Menu{session: s, opts: opts, in: in, out: out, logger: logger.WithComponent(log.ComponentCLI)}
}

// Run loops until the user picks exit or input ends.
func (m *Menu) Run() error {
	scanner := bufio.NewScanner(m.in)
	for {
		m.printMenu()
		if !scanner.Scan() {
			fmt.Fprintln(m.out)
			return scanner.Err()
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			m.summary()
		case "2":
			m.top()
		case "3":
			m.plot()
		case "4":
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, titleStyle.Render("==== DATA DASHBOARD ===="))
	fmt.Fprintln(m.out, "1. Show data summary")
	fmt.Fprintf(m.out, "2. Show top %d %s by %s\n", m.opts.TopN, m.opts.TopGroupColumn, m.opts.TopValueColumn)
	fmt.Fprintln(m.out, "3. Plot current selection over time")
	fmt.Fprintln(m.out, "4. Exit")
	fmt.Fprint(m.out, "Choose: ")
}

func (m *Menu) summary() {
	s, err := m.session.Summary()
	if err != nil {
		Error(m.out, err)
		return
	}
	PrintSummary(m.out, s)
}

func (m *Menu) top() {
	items, err := m.session.Top(m.opts.TopGroupColumn, m.opts.TopValueColumn, m.opts.TopN)
	if errors.Is(err, engine.ErrColumnNotFound) {
		fmt.Fprintf(m.out, "Column '%s' or '%s' not found.\n", m.opts.TopGroupColumn, m.opts.TopValueColumn)
		return
	}
	if err != nil {
		Error(m.out, err)
		return
	}

	title := fmt.Sprintf("Top %d %s by %s", m.opts.TopN, m.opts.TopGroupColumn, m.opts.TopValueColumn)
	PrintTop(m.out, title, items)
	if len(items) == 0 {
		return
	}
	path, err := SaveTopChart(m.opts, title, items)
	if err != nil {
		Error(m.out, err)
		return
	}
	m.logger.Info("chart written", "path", path)
	fmt.Fprintf(m.out, "Chart saved to %s\n", path)
}

func (m *Menu) plot() {
	s, err := m.session.Series()
	switch {
	case engine.IsNotice(err):
		Notice(m.out, err.Error())
		return
	case err != nil:
		Error(m.out, err)
		return
	}
	if len(s.Points) == 0 {
		Notice(m.out, "No rows match the current selection.")
		return
	}

	PrintSeries(m.out, s)
	path, err := SaveSeriesChart(m.opts, s, m.session.Snapshot().Selection.CategoryValue)
	if err != nil {
		Error(m.out, err)
		return
	}
	m.logger.Info("chart written", "path", path)
	fmt.Fprintf(m.out, "Chart saved to %s\n", path)
}
