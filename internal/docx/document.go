// Package docx exposes the table structure of word-processing documents
// produced by ultrasound equipment: an ordered list of tables, each an
// ordered list of rows of cells, where a cell may hold its own tables.
package docx

import "strings"

// Document is the table view of a .docx file.
type Document struct {
	Tables []*Table
}

// Table is an ordered list of rows.
type Table struct {
	Rows []*Row
}

// Row is an ordered list of cells as they appear in the markup.
type Row struct {
	Cells []*Cell
}

// Cell holds the text of its direct paragraphs (joined by newlines) and any
// tables nested inside it.
type Cell struct {
	Text string
	// ColSpan is the number of grid columns covered (gridSpan); at least 1.
	ColSpan int
	// Continuation marks a vertically merged cell that continues the cell above.
	Continuation bool
	Tables       []*Table
}

// NewTable builds a table from rows.
func NewTable(rows ...*Row) *Table { return &Table{Rows: rows} }

// NewRow builds a row from cells.
func NewRow(cells ...*Cell) *Row { return &Row{Cells: cells} }

// TextRow builds a row of plain text cells.
func TextRow(texts ...string) *Row {
	r := &Row{Cells: make([]*Cell, 0, len(texts))}
	for _, t := range texts {
		r.Cells = append(r.Cells, TextCell(t))
	}
	return r
}

// TextCell builds a single-column cell holding text.
func TextCell(text string) *Cell { return &Cell{Text: text, ColSpan: 1} }

// NestedCell builds a cell that only wraps nested tables.
func NestedCell(tables ...*Table) *Cell { return &Cell{ColSpan: 1, Tables: tables} }

// GridCells returns the row's cells indexed by grid column: a cell spanning n
// columns appears n times. Fixed column offsets in device reports refer to
// grid positions, not markup positions.
func (r *Row) GridCells() []*Cell {
	out := make([]*Cell, 0, len(r.Cells))
	for _, c := range r.Cells {
		span := c.ColSpan
		if span < 1 {
			span = 1
		}
		for i := 0; i < span; i++ {
			out = append(out, c)
		}
	}
	return out
}

// HasNested reports whether any cell of the table holds a nested table.
func (t *Table) HasNested() bool {
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			if len(c.Tables) > 0 {
				return true
			}
		}
	}
	return false
}

// Walk visits every cell of the table depth-first, nested tables included.
// Returning false from fn stops the walk; Walk reports whether it completed.
func (t *Table) Walk(fn func(c *Cell) bool) bool {
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			if !fn(c) {
				return false
			}
			for _, nt := range c.Tables {
				if !nt.Walk(fn) {
					return false
				}
			}
		}
	}
	return true
}

// Contains reports whether any cell text contains needle, ignoring case.
func (t *Table) Contains(needle string) bool {
	needle = strings.ToLower(needle)
	found := false
	t.Walk(func(c *Cell) bool {
		if strings.Contains(strings.ToLower(c.Text), needle) {
			found = true
			return false
		}
		return true
	})
	return found
}
