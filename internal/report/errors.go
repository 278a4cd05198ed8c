package report

import (
	"fmt"

	"github.com/KaramelBytes/ecoreport/internal/patient"
)

// MissingTableError indicates a table the study type requires is absent.
type MissingTableError struct {
	Path   string
	Marker string
	Tipo   patient.Type
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("%s: no table marked %q found (required for %s studies)", e.Path, e.Marker, e.Tipo)
}

// MissingRequiredFieldError indicates a demographic field needed to interpret
// the study is absent. Info holds whatever was extracted.
type MissingRequiredFieldError struct {
	Path  string
	Field string
	Info  *patient.Info
}

func (e *MissingRequiredFieldError) Error() string {
	if e.Info == nil || len(e.Info.Keys()) == 0 {
		return fmt.Sprintf("%s: missing required field %q (no patient data extracted)", e.Path, e.Field)
	}
	return fmt.Sprintf("%s: missing required field %q (extracted: %v)", e.Path, e.Field, e.Info.Keys())
}
