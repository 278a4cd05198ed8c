package grid

import (
	"log/slog"
	"strings"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/measure"
	"github.com/KaramelBytes/ecoreport/internal/vocab"
)

// Flattened parses single-level tables where labels and readings share one
// grid. Labels are matched against the vocabulary's flattened aliases and
// stored under their canonical names.
type Flattened struct {
	voc      *vocab.Vocabulary
	logger   *slog.Logger
	patterns []string
	// Radius is how many rows above and below a label are searched for its
	// reading when none follows it on the same row.
	Radius int
}

type pos struct{ row, col int }

type flatGrid struct {
	cells map[pos]string
	order []pos
	cols  int
}

func newFlatGrid(t *docx.Table) *flatGrid {
	g := &flatGrid{cells: make(map[pos]string)}
	for r, row := range t.Rows {
		col := 0
		for _, c := range row.Cells {
			span := c.ColSpan
			if span < 1 {
				span = 1
			}
			if text := strings.TrimSpace(c.Text); text != "" && !c.Continuation {
				p := pos{r, col}
				g.cells[p] = text
				g.order = append(g.order, p)
			}
			col += span
		}
		if col > g.cols {
			g.cols = col
		}
	}
	return g
}

// Extract reads every recognised label of t with its nearest reading.
func (f *Flattened) Extract(t *docx.Table) *Raw {
	raw := NewRaw()
	g := newFlatGrid(t)
	for _, p := range g.order {
		m, ok := f.matchLabel(g.cells[p])
		if !ok {
			continue
		}
		if raw.Has(m.key) {
			raw.Warnf("duplicate field %q at row %d ignored", m.key, p.row)
			continue
		}
		value, unit := m.value, m.unit
		if value == "" {
			value, unit = f.findReading(g, p)
		}
		if value == "" {
			f.logger.Debug("label without reading", "field", m.key, "row", p.row, "col", p.col)
			continue
		}
		if unit == "" {
			unit = f.findUnit(g, p)
		}
		raw.Add(m.key, []string{value}, unit)
	}
	return raw
}

type labelMatch struct {
	key, value, unit string
}

// matchLabel recognises "LVIDd", "LVIDd:" and labels carrying their own
// reading such as "LVIDd 48 mm".
func (f *Flattened) matchLabel(text string) (labelMatch, bool) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), ":"))
	for _, p := range f.patterns {
		if strings.EqualFold(text, p) {
			key, _ := f.voc.Canonical(p)
			return labelMatch{key: key}, true
		}
		if len(text) <= len(p) || !strings.EqualFold(text[:len(p)], p) {
			continue
		}
		if sep := text[len(p)]; sep != ' ' && sep != ':' {
			continue
		}
		value, unit, ok := f.reading(strings.TrimLeft(text[len(p):], " :"))
		if !ok {
			continue
		}
		key, _ := f.voc.Canonical(p)
		return labelMatch{key: key, value: value, unit: unit}, true
	}
	return labelMatch{}, false
}

func (f *Flattened) isLabel(text string) bool {
	_, ok := f.matchLabel(text)
	return ok
}

// findReading looks right along the label's row up to the next label, then
// down and up its column within Radius rows, then down the neighbouring
// columns unless a label heads them on the label's row.
func (f *Flattened) findReading(g *flatGrid, at pos) (string, string) {
	for c := at.col + 1; c < g.cols; c++ {
		text, ok := g.cells[pos{at.row, c}]
		if !ok {
			continue
		}
		if v, u, ok := f.reading(text); ok {
			return v, u
		}
		if f.isLabel(text) {
			break
		}
	}
	for _, dir := range []int{1, -1} {
		if v, u, ok := f.scanColumn(g, at, at.col, dir); ok {
			return v, u
		}
	}
	for _, c := range []int{at.col + 1, at.col - 1} {
		if c < 0 || c >= g.cols {
			continue
		}
		if text, ok := g.cells[pos{at.row, c}]; ok && f.isLabel(text) {
			continue
		}
		if v, u, ok := f.scanColumn(g, at, c, 1); ok {
			return v, u
		}
	}
	return "", ""
}

// scanColumn walks column col from the label's row in direction dir for up
// to Radius rows, stopping at another label.
func (f *Flattened) scanColumn(g *flatGrid, at pos, col, dir int) (string, string, bool) {
	for d := 1; d <= f.Radius; d++ {
		text, ok := g.cells[pos{at.row + dir*d, col}]
		if !ok {
			continue
		}
		if v, u, ok := f.reading(text); ok {
			return v, u, true
		}
		if f.isLabel(text) {
			break
		}
	}
	return "", "", false
}

// findUnit looks for a unit token in the label's row and the row below,
// up to two columns to the right.
func (f *Flattened) findUnit(g *flatGrid, at pos) string {
	for r := at.row; r <= at.row+1; r++ {
		for c := at.col; c <= at.col+2; c++ {
			if r == at.row && c == at.col {
				continue
			}
			text, ok := g.cells[pos{r, c}]
			if !ok {
				continue
			}
			if f.voc.IsFlatUnit(text) {
				return strings.TrimSpace(text)
			}
			if _, u, ok := f.reading(text); ok && u != "" {
				return u
			}
		}
	}
	return ""
}

// reading parses "48", "4,8", "48 mm" or "60%" into the number text (decimal
// point) and an optional unit token.
func (f *Flattened) reading(text string) (string, string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", "", false
	}
	num := fields[0]
	var unit string
	if len(num) > 1 && strings.HasSuffix(num, "%") {
		num, unit = strings.TrimSuffix(num, "%"), "%"
	}
	if strings.Count(num, ",") == 1 && !strings.Contains(num, ".") {
		num = strings.Replace(num, ",", ".", 1)
	}
	if _, ok := measure.ParseReading(num); !ok {
		return "", "", false
	}
	if unit == "" && len(fields) > 1 && f.voc.IsFlatUnit(fields[1]) {
		unit = fields[1]
	}
	return num, unit, true
}
