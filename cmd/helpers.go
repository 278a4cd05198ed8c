package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/patient"
	"github.com/KaramelBytes/ecoreport/internal/report"
)

// explain adds a short hint to the extraction errors users can act on.
func explain(err error) error {
	var mt *report.MissingTableError
	var mf *report.MissingRequiredFieldError
	switch {
	case errors.Is(err, docx.ErrLegacyFormat):
		return fmt.Errorf("%w\n  Hint: soffice --headless --convert-to docx <file>", err)
	case errors.As(err, &mt):
		return fmt.Errorf("%w\n  Hint: pass --tipo if %s is not a %s study", err, mt.Path, mt.Tipo)
	case errors.As(err, &mf):
		return fmt.Errorf("%w\n  Hint: check the patient table of the device export", err)
	}
	return err
}

// parseTipo accepts an empty flag as "detect from the document".
func parseTipo(s string) (patient.Type, error) {
	if s == "" {
		return "", nil
	}
	return patient.ParseType(s)
}
