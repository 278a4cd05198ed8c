// Package locator finds the tables of a device report by the marker text
// they carry.
package locator

import "github.com/KaramelBytes/ecoreport/internal/docx"

// NoPreference disables the preferred-index probe of a Marker.
const NoPreference = -1

// Marker identifies a table by a text that appears in one of its cells.
type Marker struct {
	Text string
	// Preferred is the table index where the device usually places the table.
	// It is tried first; NoPreference scans in document order only.
	Preferred int
}

// Known report tables.
var (
	Measurement = Marker{Text: "Measure", Preferred: NoPreference}
	WallMotion  = Marker{Text: "WMS", Preferred: 2}
	Patient     = Marker{Text: "Name:", Preferred: 1}
)

// Find returns the first table of doc whose cells (nested cells included)
// contain m.Text, ignoring case, together with its index.
func Find(doc *docx.Document, m Marker) (*docx.Table, int, bool) {
	if doc == nil || m.Text == "" {
		return nil, -1, false
	}
	if i := m.Preferred; i >= 0 && i < len(doc.Tables) && doc.Tables[i].Contains(m.Text) {
		return doc.Tables[i], i, true
	}
	for i, t := range doc.Tables {
		if t.Contains(m.Text) {
			return t, i, true
		}
	}
	return nil, -1, false
}
