// Package patient reads the demographics block of a device report and
// decides which kind of study the report holds.
package patient

import (
	"strings"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/locator"
	"github.com/KaramelBytes/ecoreport/internal/measure"
)

// Demographic fields used by the pipeline.
const (
	FieldName     = "Name"
	FieldGender   = "Gender"
	FieldExamDate = "Exam_Date"
)

// Info is the ordered set of "Key: Value" pairs of the demographics table.
type Info struct {
	rec *measure.Record
}

// NewInfo returns an empty Info.
func NewInfo() *Info { return &Info{rec: measure.NewRecord()} }

// Set stores a field.
func (i *Info) Set(key, value string) { i.rec.SetText(key, value) }

// Get returns a field, or "" when absent.
func (i *Info) Get(key string) string {
	v, ok := i.rec.Get(key)
	if !ok {
		return ""
	}
	return v.String()
}

// Has reports whether key was found.
func (i *Info) Has(key string) bool { return i.rec.Has(key) }

// Gender returns the patient gender as written by the device.
func (i *Info) Gender() string { return i.Get(FieldGender) }

// Name returns the patient name.
func (i *Info) Name() string { return i.Get(FieldName) }

// ExamDate returns the exam date.
func (i *Info) ExamDate() string { return i.Get(FieldExamDate) }

// Keys returns the field names in table order.
func (i *Info) Keys() []string { return i.rec.Keys() }

// Record returns a copy of the fields as a measurement record of text values.
func (i *Info) Record() *measure.Record { return i.rec.Clone() }

// MarshalJSON writes the fields in table order.
func (i *Info) MarshalJSON() ([]byte, error) { return i.rec.MarshalJSON() }

// Extract reads the demographics table: every cell below the title row
// holding "Key: Value". Keys have spaces replaced by underscores; values have
// double spaces collapsed. ok is false when no demographics table exists.
func Extract(doc *docx.Document) (*Info, bool) {
	info := NewInfo()
	table, _, ok := locator.Find(doc, locator.Patient)
	if !ok {
		return info, false
	}
	for r, row := range table.Rows {
		if r == 0 {
			continue
		}
		for _, cell := range row.Cells {
			key, value, found := strings.Cut(cell.Text, ":")
			if !found {
				continue
			}
			key = strings.ReplaceAll(strings.TrimSpace(key), " ", "_")
			if key == "" {
				continue
			}
			info.Set(key, strings.ReplaceAll(strings.TrimSpace(value), "  ", " "))
		}
	}
	return info, true
}
