package interpret

import (
	"strings"

	"github.com/KaramelBytes/ecoreport/internal/measure"
)

const (
	textIndexNormal = "Índice de masa dentro del parámetros de la normalidad"
	textMassNormal  = "Masa dentro de parámetros de la normalidad"
	textHypertrophy = "Hipertrofia"
	textAtriaNormal = "Diámetros conservados"
	rwtConcentric   = 0.42
)

// Mass classifies left-ventricular mass. The indexed mass is preferred over
// the absolute mass. Thresholds: male index >= 115 g/m² or mass >= 200 g,
// otherwise index >= 95 g/m² or mass >= 150 g. A relative wall thickness of
// 0.42 or more makes hypertrophy concentric (eccentric otherwise) and flags
// concentric remodelling when mass is normal.
func Mass(rec *measure.Record, gender string) Result {
	const rule = "mass"
	index, hasIndex := reading(rec, FieldMassIndex)
	var mass float64
	var hasMass bool
	if !hasIndex {
		mass, hasMass = reading(rec, FieldMass)
	}
	if !hasIndex && !hasMass {
		return skipped(rule, "no numeric %s or %s", FieldMassIndex, FieldMass)
	}

	indexLimit, massLimit := 95.0, 150.0
	if gender == Male {
		indexLimit, massLimit = 115, 200
	}
	textMass := textMassNormal
	if hasIndex {
		textMass = textIndexNormal
	}
	if (hasIndex && index >= indexLimit) || (hasMass && mass >= massLimit) {
		textMass = textHypertrophy
	}

	rwt, hasRWT := reading(rec, FieldRWT)
	concentric := hasRWT && rwt >= rwtConcentric
	var textRWT string
	switch {
	case textMass == textHypertrophy && concentric:
		textRWT = " concéntrica"
	case textMass == textHypertrophy:
		textRWT = " excéntrica"
	case concentric:
		textRWT = ", remodelado concéntrico"
	}

	rec.SetText(KeyMass, textMass+textRWT)
	conc := textRWT
	if textMass != textIndexNormal {
		conc = textMass + textRWT
	}
	rec.SetText(KeyMassConc, conc)
	return computed(rule)
}

// Diameter classifies left-ventricular diameter and wall thickness. Walls are
// thickened when IVSd > 12 mm or LVPWd > 9 mm. LVIDd is enlarged above 58 mm
// (54 mm for women) and reduced below 42 mm (38 mm).
func Diameter(rec *measure.Record, gender string) Result {
	const rule = "diameter"
	var missing []string
	vals := make(map[string]float64, 3)
	for _, k := range []string{FieldLVIDd, FieldIVSd, FieldLVPWd} {
		v, ok := reading(rec, k)
		if !ok {
			missing = append(missing, k)
			continue
		}
		vals[k] = v
	}
	if len(missing) > 0 {
		return skipped(rule, "missing %s", strings.Join(missing, ", "))
	}

	textDiam, textThick := "Dimensiones y ", "espesores conservados"
	if vals[FieldIVSd] > 12 || vals[FieldLVPWd] > 9 {
		textDiam, textThick = "Dimensiones conservadas y ", "espesores aumentados"
	}
	upper, lower := 54.0, 38.0
	if gender == Male {
		upper, lower = 58, 42
	}
	switch lvidd := vals[FieldLVIDd]; {
	case lvidd > upper:
		textDiam = "Dimensiones aumentadas, "
	case lvidd < lower:
		textDiam = "Dimensiones disminuidas, "
	}
	rec.SetText(KeyDiameter, textDiam+textThick)
	return computed(rule)
}

// Atria grades both atria. The left atrium is graded by indexed volume when
// available (34/44/54 ml/m²), else by diameter (21/31/41 mm); the right atrium
// by diameter (above 18/28/38 mm). Without any atrial measurement the rule is
// skipped: earlier texts stay and missing ones read as normal.
func Atria(rec *measure.Record, _ string) Result {
	const rule = "atria"
	laText, raText := textAtriaNormal, textAtriaNormal

	lav, hasLAV := reading(rec, FieldLAVolume)
	if !hasLAV {
		lav, hasLAV = reading(rec, FieldLABiplane)
	}
	var lad float64
	var hasLAD bool
	if !hasLAV {
		lad, hasLAD = reading(rec, FieldLADiam)
	}
	rad, hasRAD := reading(rec, FieldRADiam)

	switch {
	case hasLAV:
		laText = grade(lav, 34, 44, 54, false)
	case hasLAD:
		laText = grade(lad, 21, 31, 41, false)
	}
	if hasRAD {
		raText = grade(rad, 18, 28, 38, true)
	}

	if !hasLAV && !hasLAD && !hasRAD {
		for _, kv := range [][2]string{
			{KeyLAText, laText},
			{KeyRAText, raText},
			{KeyAtriumConc, atriumConclusion(laText, raText)},
		} {
			if !rec.Has(kv[0]) {
				rec.SetText(kv[0], kv[1])
			}
		}
		return skipped(rule, "no atrial measurements")
	}
	rec.SetText(KeyLAText, laText)
	rec.SetText(KeyRAText, raText)
	rec.SetText(KeyAtriumConc, atriumConclusion(laText, raText))
	return computed(rule)
}

// grade maps v onto the mild/moderate/severe bands starting at the given
// limits. With exclusive set a band starts just above its limit.
func grade(v, mild, moderate, severe float64, exclusive bool) string {
	above := func(limit float64) bool {
		if exclusive {
			return v > limit
		}
		return v >= limit
	}
	switch {
	case above(severe):
		return "Severamente dilatada"
	case above(moderate):
		return "Moderadamente dilatada"
	case above(mild):
		return "Levemente dilatada"
	}
	return textAtriaNormal
}

func atriumConclusion(la, ra string) string {
	left, right := strings.Contains(la, "dilatada"), strings.Contains(ra, "dilatada")
	switch {
	case left && right:
		return "Aurículas dilatadas"
	case left:
		return "Aurícula izquierda dilatada"
	case right:
		return "Aurícula derecha dilatada"
	}
	return "Aurículas de dimensiones normales"
}
