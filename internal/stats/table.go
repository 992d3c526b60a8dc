package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. A table whose columns all have empty
// titles prints no header line.
type column struct {
	title string
	right bool
}

// textTable lays out plain-text rows in aligned columns, measuring cells by
// terminal display width.
type textTable struct {
	cols []column
	rows [][]string
}

func newTable(cols ...column) *textTable {
	return &textTable{cols: cols}
}

// add appends a row. Missing cells are blank; extra cells are dropped.
func (t *textTable) add(cells ...string) {
	row := make([]string, len(t.cols))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *textTable) hasHeader() bool {
	for _, c := range t.cols {
		if c.title != "" {
			return true
		}
	}
	return false
}

func (t *textTable) widths() []int {
	widths := make([]int, len(t.cols))
	for i, c := range t.cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return widths
}

func (t *textTable) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	widths := t.widths()
	render := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if t.cols[i].right {
				parts[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				parts[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		return strings.TrimRight(strings.Join(parts, " "), " ")
	}

	out := make([]string, 0, len(t.rows)+1)
	if t.hasHeader() {
		titles := make([]string, len(t.cols))
		for i, c := range t.cols {
			titles[i] = c.title
		}
		out = append(out, render(titles))
	}
	for _, row := range t.rows {
		out = append(out, render(row))
	}
	return out
}

func (t *textTable) write(w io.Writer) error {
	for _, line := range t.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
