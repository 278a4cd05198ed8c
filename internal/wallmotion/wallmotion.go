// Package wallmotion reads the 17-segment wall motion score table of a
// stress echocardiogram and summarises motility changes between rest and
// peak stress.
package wallmotion

import (
	"strconv"
	"strings"

	"github.com/KaramelBytes/ecoreport/internal/docx"
)

// SegmentCount is the number of myocardial segments in the scoring model.
const SegmentCount = 17

// Score phases.
const (
	Rest = iota
	Peak
	Recovery
)

// Column layout of a scoring row: the first five grid columns identify the
// segment, then name, rest, peak and recovery.
const (
	colName  = 5
	colFirst = 6
	colLast  = 8
	firstRow = 1
	lastRow  = SegmentCount
)

// Score is one phase score. A cell that is not an integer keeps its text.
type Score struct {
	Value int
	Text  string
	Valid bool
}

// Segment is a named myocardial segment with its scores in phase order.
type Segment struct {
	Name   string
	Scores []Score
}

// At returns the integer score of phase; ok is false when the phase is
// missing or not an integer.
func (s Segment) At(phase int) (int, bool) {
	if phase < 0 || phase >= len(s.Scores) || !s.Scores[phase].Valid {
		return 0, false
	}
	return s.Scores[phase].Value, true
}

// Motilidad returns the scores as integers, or text where not numeric.
func (s Segment) Motilidad() []any {
	out := make([]any, 0, len(s.Scores))
	for _, sc := range s.Scores {
		if sc.Valid {
			out = append(out, sc.Value)
		} else {
			out = append(out, sc.Text)
		}
	}
	return out
}

// Extract reads the scoring rows of every table nested in t. A segment
// listed twice keeps its first position and its last scores.
func Extract(t *docx.Table) []Segment {
	var segs []Segment
	index := make(map[string]int)
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			for _, inner := range cell.Tables {
				for i, irow := range inner.Rows {
					if i < firstRow || i > lastRow {
						continue
					}
					seg, ok := readSegment(irow)
					if !ok {
						continue
					}
					if j, seen := index[seg.Name]; seen {
						segs[j] = seg
						continue
					}
					index[seg.Name] = len(segs)
					segs = append(segs, seg)
				}
			}
		}
	}
	return segs
}

func readSegment(row *docx.Row) (Segment, bool) {
	cells := row.GridCells()
	if len(cells) <= colName {
		return Segment{}, false
	}
	seg := Segment{Name: strings.ToLower(cells[colName].Text)}
	if seg.Name == "" {
		return Segment{}, false
	}
	for c := colFirst; c <= colLast && c < len(cells); c++ {
		text := cells[c].Text
		if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			seg.Scores = append(seg.Scores, Score{Value: n, Text: text, Valid: true})
		} else {
			seg.Scores = append(seg.Scores, Score{Text: text})
		}
	}
	return seg, len(seg.Scores) > 0
}
