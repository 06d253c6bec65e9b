// Package format renders CLI tables in ASCII or Markdown.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	// ASCII renders fixed-width terminal tables.
	ASCII Mode = iota
	// Markdown renders GitHub-flavoured Markdown tables.
	Markdown
)

// Table accumulates rows and renders them in the Mode set at creation.
type Table struct {
	writer  table.Writer
	mode    Mode
	configs []table.ColumnConfig
}

// NewTable returns an empty table rendering in the given mode.
func NewTable(m Mode) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &Table{writer: w, mode: m}
}

// Header sets the column headers.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.writer.AppendHeader(row)
}

// Row appends a data row. Values are stringified via fmt.Sprint.
func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendRow(row)
}

// Footer appends a footer row, typically totals.
func (t *Table) Footer(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.writer.AppendFooter(row)
}

// columnConfig returns the config for a 1-based column, creating it on first
// use. Settings for the same column merge into one config.
func (t *Table) columnConfig(n int) *table.ColumnConfig {
	for i := range t.configs {
		if t.configs[i].Number == n {
			return &t.configs[i]
		}
	}
	t.configs = append(t.configs, table.ColumnConfig{Number: n})
	return &t.configs[len(t.configs)-1]
}

// RightAlign right-aligns the given 1-based columns, for numeric output.
func (t *Table) RightAlign(cols ...int) {
	for _, n := range cols {
		t.columnConfig(n).Align = text.AlignRight
	}
}

// MaxWidth caps a 1-based column's width, wrapping longer content.
func (t *Table) MaxWidth(col, width int) {
	t.columnConfig(col).WidthMax = width
}

// String renders the table.
func (t *Table) String() string {
	if len(t.configs) > 0 {
		t.writer.SetColumnConfigs(t.configs)
	}
	if t.mode == Markdown {
		return t.writer.RenderMarkdown()
	}
	return t.writer.Render()
}
