// Package vocab holds the field-name, unit and marker vocabularies used to
// read ultrasound measurement tables. A Vocabulary is built once at startup
// and shared read-only between documents.
package vocab

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Alias maps spellings found in flattened tables to one canonical key.
type Alias struct {
	Canonical string   `yaml:"canonical"`
	Patterns  []string `yaml:"patterns"`
}

// Vocabulary is immutable after construction.
type Vocabulary struct {
	Units        []string `yaml:"units"`
	CalcMarkers  []string `yaml:"calc_markers"`
	RoundKeys    []string `yaml:"round_keys"`
	VelocityKeys []string `yaml:"velocity_keys"`
	FlatAliases  []Alias  `yaml:"flat_aliases"`
	// FlatUnits are extra unit tokens only recognised in flattened tables.
	FlatUnits []string `yaml:"flat_units"`

	units    map[string]struct{}
	flatUnit map[string]struct{}
	markers  map[string]struct{}
	round    map[string]struct{}
	velocity map[string]struct{}
}

var (
	defaultOnce sync.Once
	defaultVoc  *Vocabulary
)

// Default returns the built-in vocabulary for Vinno-style reports.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		defaultVoc = build(builtin())
	})
	return defaultVoc
}

func builtin() Vocabulary {
	return Vocabulary{
		Units: []string{"mm", "cm", "ml", "g", "ms", "mmHg", "cm²", "cm/s", "ml/s", "m²", "ml/m²", "cm²/m²", "g/m²"},
		CalcMarkers: []string{
			"*Dimensionless Index", "*Flow Rate AS", "CSA(LVOT)", "SV(LVOT)", "CSA(AV SV)", "Reg Vol(PISA TR)",
			"EROA(PISA TR)", "Flow Rate(PISA TR)", "Reg Vol(PISA MR)", "EROA(PISA MR)", "Flow Rate(PISA MR)",
			"AVA(VTI)", "RWT(2D)", "LVd Mass(2D-ASE)", "MV E/A Ratio", "Average E'", "E/Med E'", "LVIDd Index(2D)",
			"%LVPW(2D)", "LVESV(A4C Simp)", "EF(A4C Simp)", "E/Lat E'", "E/Avg E'", "*Aortic Sinus Indexed",
			"LVEDVI(A4C Simp)", "LA ESVI(BP A-L)", "AVAI(AVA VTI)", "SI(LVOT)", "%IVS(2D)",
		},
		RoundKeys: []string{
			"LVIDd", "LVIDs", "IVSd", "%FS(2D)", "LVd Mass Index(2D-ASE)",
			"Ao Sinusus", "Ao Diam", "RAAd", "RVAWd", "LVPWd", "LAVI",
			"E/Avg E'", "EF(A4C Simp)", "AR PHT", "LAAd", "LA ESVI(BP A-L)", "Bi-plane LA A-L  LAVI",
			"AV Vmax", "AV Vmax  PG", "LVOT Vmax", "LVOT Vmax  PG", "LVOT Trace  Peak PG", "RVSP  TR Vmax",
			"RVSP    PG", "AV Trace  Vmax", "AV Trace  Peak PG", "TR Vmax  PG",
		},
		VelocityKeys: []string{
			"RVOT Vmax", "AV Vmax", "LVOT Vmax", "TR Vmax", "MV Vel E", "MV Vel A", "Vmax",
			"AV Trace  Vmax", "LVOT Trace  Vmax", "RVSP  TR Vmax",
		},
		FlatUnits: []string{"%"},
		FlatAliases: []Alias{
			{Canonical: "LVIDd", Patterns: []string{"LVIDd", "LVEDD", "DDVI", "LVEDd", "diámetro diastólico"}},
			{Canonical: "LVIDs", Patterns: []string{"LVIDs", "LVESD", "DSVI", "LVESd", "diámetro sistólico"}},
			{Canonical: "EF(A4C Simp)", Patterns: []string{"EF(A4C Simp)", "LVEF", "EF", "FEVI", "fracción de eyección"}},
			{Canonical: "LVPWd", Patterns: []string{"LVPWd", "PWd", "Posterior Wall", "pared posterior"}},
			{Canonical: "IVSd", Patterns: []string{"IVSd", "Septum", "septo", "septum diastolic"}},
			{Canonical: "LAAd", Patterns: []string{"LAAd", "LA", "Left Atrium", "AI", "aurícula izquierda"}},
			{Canonical: "Ao Diam", Patterns: []string{"Ao Diam", "AOD", "Ao", "Aorta", "aortic root", "raíz aórtica"}},
			{Canonical: "LVEDV", Patterns: []string{"LVEDV", "EDV", "volumen diastólico"}},
			{Canonical: "LVESV(A4C Simp)", Patterns: []string{"LVESV(A4C Simp)", "LVESV", "ESV", "volumen sistólico"}},
			{Canonical: "SV(LVOT)", Patterns: []string{"SV(LVOT)", "SV", "stroke volume", "volumen latido"}},
			{Canonical: "%FS(2D)", Patterns: []string{"%FS(2D)", "FS", "fractional shortening", "fracción acortamiento"}},
			{Canonical: "MV E/A Ratio", Patterns: []string{"MV E/A Ratio", "E/A", "E/A ratio", "relación E/A"}},
			{Canonical: "TAPSE", Patterns: []string{"TAPSE"}},
			{Canonical: "FAC", Patterns: []string{"FAC", "fractional area change"}},
			{Canonical: "RVSP", Patterns: []string{"RVSP", "PAPS", "PAP", "presión pulmonar"}},
			{Canonical: "LA ESVI(BP A-L)", Patterns: []string{"LA ESVI(BP A-L)", "LAVI", "LA ESVI"}},
			{Canonical: "LVd Mass Index(2D-ASE)", Patterns: []string{"LVd Mass Index(2D-ASE)", "LV Mass Index", "LVMI"}},
			{Canonical: "RAAd", Patterns: []string{"RAAd", "RA", "Right Atrium", "AD"}},
		},
	}
}

// Load returns the built-in vocabulary extended with the entries of a YAML
// file. Entries are appended; built-in entries cannot be removed.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var extra Vocabulary
	if err := yaml.Unmarshal(b, &extra); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	v := builtin()
	v.Units = appendNew(v.Units, extra.Units)
	v.CalcMarkers = appendNew(v.CalcMarkers, extra.CalcMarkers)
	v.RoundKeys = appendNew(v.RoundKeys, extra.RoundKeys)
	v.VelocityKeys = appendNew(v.VelocityKeys, extra.VelocityKeys)
	v.FlatAliases = append(v.FlatAliases, extra.FlatAliases...)
	v.FlatUnits = appendNew(v.FlatUnits, extra.FlatUnits)
	return build(v), nil
}

func build(v Vocabulary) *Vocabulary {
	v.units = toSet(v.Units)
	v.flatUnit = toSet(v.FlatUnits)
	v.markers = toSet(v.CalcMarkers)
	v.round = toSet(v.RoundKeys)
	v.velocity = toSet(v.VelocityKeys)
	return &v
}

// IsUnit reports whether s (trimmed) is a unit token.
func (v *Vocabulary) IsUnit(s string) bool {
	_, ok := v.units[strings.TrimSpace(s)]
	return ok
}

// IsFlatUnit reports whether s (trimmed) is a unit token of a flattened table.
func (v *Vocabulary) IsFlatUnit(s string) bool {
	if v.IsUnit(s) {
		return true
	}
	_, ok := v.flatUnit[strings.TrimSpace(s)]
	return ok
}

// IsCalcMarker reports whether s names a derived field that may appear inside
// another field's value sequence.
func (v *Vocabulary) IsCalcMarker(s string) bool {
	_, ok := v.markers[s]
	return ok
}

// RoundsToInt reports whether values of key are rounded to whole numbers.
func (v *Vocabulary) RoundsToInt(key string) bool {
	_, ok := v.round[key]
	return ok
}

// IsVelocity reports whether key holds a velocity reported in cm/s.
func (v *Vocabulary) IsVelocity(key string) bool {
	_, ok := v.velocity[key]
	return ok
}

// Canonical returns the canonical key for a flattened-table label, matching
// alias patterns case-insensitively.
func (v *Vocabulary) Canonical(label string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, a := range v.FlatAliases {
		for _, p := range a.Patterns {
			if strings.ToLower(p) == l {
				return a.Canonical, true
			}
		}
	}
	return "", false
}

// Patterns lists every flattened alias pattern, longest first, so prefix
// matching prefers "LA ESVI" over "LA".
func (v *Vocabulary) Patterns() []string {
	var out []string
	for _, a := range v.FlatAliases {
		out = append(out, a.Patterns...)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

func appendNew(base, extra []string) []string {
	seen := toSet(base)
	for _, x := range extra {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		base = append(base, x)
	}
	return base
}
