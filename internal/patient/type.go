package patient

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/locator"
)

// Type is the study kind ("tipo"), which selects the report template.
type Type string

const (
	Card    Type = "card"
	Stress  Type = "stress"
	Carotid Type = "carotid"
	Art     Type = "art"
	Ven     Type = "ven"
)

// Types lists every known study type.
var Types = []Type{Card, Stress, Carotid, Art, Ven}

// ParseType validates a study type name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown study type %q (valid: card, stress, carotid, art, ven)", s)
}

// HasMeasurements reports whether the study carries a cardiac measurement
// table that must be parsed.
func (t Type) HasMeasurements() bool { return t == Card || t == Stress }

// Template returns the file name of the report template for the study.
func (t Type) Template() string {
	switch t {
	case Carotid:
		return "auto vc.docx"
	case Art:
		return "auto art.docx"
	case Ven:
		return "auto ven.docx"
	case Stress:
		return "auto stress.docx"
	}
	return "auto card.docx"
}

// DetectType picks the study type. Vascular studies are recognised by a
// keyword in the file path; otherwise a wall motion table marks a stress
// study and anything else is a cardiac study.
func DetectType(path string, doc *docx.Document) Type {
	switch {
	case strings.Contains(path, "Carotid"):
		return Carotid
	case strings.Contains(path, "Arteries"):
		return Art
	case strings.Contains(path, "Veins"):
		return Ven
	}
	if _, _, ok := locator.Find(doc, locator.WallMotion); ok {
		return Stress
	}
	return Card
}
