// Package interpret derives the clinical summary sentences of an
// echocardiography report from normalized measurements.
//
// Rules read the device's field names ("LVd Mass Index(2D-ASE)") and fall back
// to their sanitized form ("LVd_Mass_Index_2D_ASE"), so running them again on
// a normalized record reproduces the same texts. A rule whose inputs are
// missing or non-numeric is skipped and keeps any text already written;
// Atria only fills in its normal-size defaults where no text exists yet.
package interpret

import (
	"fmt"

	"github.com/KaramelBytes/ecoreport/internal/measure"
)

// Output fields.
const (
	KeyMass          = "mass_interpretation"
	KeyMassConc      = "mass_conc"
	KeyDiameter      = "diam_lv_interpretation"
	KeyLAText        = "la_text"
	KeyRAText        = "ra_text"
	KeyAtriumConc    = "conc_atrium"
	KeyStressRatio   = "E_e_rel"
	KeyStressAverage = "e_e_avg"
)

// Input fields.
const (
	FieldMassIndex = "LVd Mass Index(2D-ASE)"
	FieldMass      = "LVd Mass(2D-ASE)"
	FieldRWT       = "RWT(2D)"
	FieldLVIDd     = "LVIDd"
	FieldIVSd      = "IVSd"
	FieldLVPWd     = "LVPWd"
	FieldLAVolume  = "LA ESVI(BP A-L)"
	FieldLABiplane = "Bi-plane LA A-L  LAVI"
	FieldLADiam    = "LAAd"
	FieldRADiam    = "RAAd"
)

// Male is the only gender value with its own thresholds; anything else uses
// the female thresholds.
const Male = "Male"

// Status reports whether a rule wrote its output.
type Status int

const (
	Computed Status = iota
	Skipped
)

func (s Status) String() string {
	if s == Computed {
		return "computed"
	}
	return "skipped"
}

// Result is the outcome of one rule.
type Result struct {
	Rule   string
	Status Status
	Reason string
}

func (r Result) String() string {
	if r.Reason == "" {
		return fmt.Sprintf("%s: %s", r.Rule, r.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Rule, r.Status, r.Reason)
}

func computed(rule string) Result { return Result{Rule: rule, Status: Computed} }

func skipped(rule, format string, args ...any) Result {
	return Result{Rule: rule, Status: Skipped, Reason: fmt.Sprintf(format, args...)}
}

// Apply runs the mass, diameter and atria rules in that order.
func Apply(rec *measure.Record, gender string) []Result {
	return []Result{
		Mass(rec, gender),
		Diameter(rec, gender),
		Atria(rec, gender),
	}
}

// reading returns the numeric value of key, or of its sanitized spelling;
// lists report their largest reading.
func reading(rec *measure.Record, key string) (float64, bool) {
	v, ok := rec.Get(key)
	if !ok {
		if v, ok = rec.Get(measure.SanitizeKey(key)); !ok {
			return 0, false
		}
	}
	return v.Max()
}
