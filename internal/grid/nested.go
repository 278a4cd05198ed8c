package grid

import (
	"log/slog"
	"strings"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/vocab"
)

// nestedHeaderRows is the number of title rows at the top of each inner table.
const nestedHeaderRows = 2

// Nested parses tables whose cells wrap inner label/value tables.
//
// The first cell of an inner row is the label. Devices indent labels by two
// spaces; a label indented further is a sub-label of the last primary label
// and the field becomes "primary" + "  sub" (e.g. "AV Vmax  PG").
type Nested struct {
	voc    *vocab.Vocabulary
	logger *slog.Logger
}

// Extract reads every inner table of t.
func (n *Nested) Extract(t *docx.Table) *Raw {
	raw := NewRaw()
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			for _, inner := range cell.Tables {
				n.extractInner(inner, raw)
			}
		}
	}
	return raw
}

func (n *Nested) extractInner(inner *docx.Table, raw *Raw) {
	var primary string
	for i, row := range inner.Rows {
		if i < nestedHeaderRows || len(row.Cells) == 0 {
			continue
		}
		label := strings.Replace(row.Cells[0].Text, " ", "", 2)
		key := label
		if strings.HasPrefix(label, " ") {
			key = primary + label
		} else {
			primary = label
		}
		elements := map[string]bool{strings.TrimSpace(label): true}
		if strings.TrimSpace(key) == "" {
			continue
		}

		var values []string
		var unit string
		for _, c := range row.Cells {
			text := strings.TrimSpace(c.Text)
			switch {
			case text == "" || elements[text]:
			case strings.HasSuffix(c.Text, "Last"):
			case n.voc.IsUnit(text):
				if unit == "" {
					unit = text
				}
			default:
				values = append(values, text)
			}
		}
		if len(values) == 0 {
			n.logger.Debug("field without readings skipped", "field", key)
			continue
		}
		if !raw.Add(key, values, unit) {
			n.logger.Debug("duplicate field ignored", "field", key)
		}
	}
}
