package wallmotion

import (
	"fmt"
	"strings"
)

// Category is a motility class.
type Category string

const (
	Normokinesis Category = "Normoquinesia"
	Hypokinesis  Category = "Hipoquinesia"
	Akinesis     Category = "Aquinesia"
	Dyskinesis   Category = "Disquinesia"
	Aneurysmal   Category = "Aneurismático"
)

// Categories lists the classes in report order.
var Categories = []Category{Normokinesis, Hypokinesis, Akinesis, Dyskinesis, Aneurysmal}

// Classify maps a wall motion score to its class. Scores other than 2 to 5,
// including non-numeric ones, count as normal.
func Classify(score int, valid bool) Category {
	if !valid {
		return Normokinesis
	}
	switch score {
	case 2:
		return Hypokinesis
	case 3:
		return Akinesis
	case 4:
		return Dyskinesis
	case 5:
		return Aneurysmal
	}
	return Normokinesis
}

// Grouping holds segment names per class, in segment order.
type Grouping map[Category][]string

// Has reports whether name is in class c.
func (g Grouping) Has(c Category, name string) bool {
	for _, n := range g[c] {
		if n == name {
			return true
		}
	}
	return false
}

// Group classifies every segment by its score in phase.
func Group(segs []Segment, phase int) Grouping {
	g := make(Grouping, len(Categories))
	for _, c := range Categories {
		g[c] = nil
	}
	for _, s := range segs {
		c := Classify(s.At(phase))
		g[c] = append(g[c], s.Name)
	}
	return g
}

// Change lists segments by the direction of their score between rest and
// peak stress.
type Change struct {
	Improve   []string
	Ischaemic []string
	Unchanged []string
}

// Delta compares rest and peak scores. A lower score at peak is an
// improvement, a higher one ischaemia. Segments missing either integer score
// are left out.
func Delta(segs []Segment) Change {
	var ch Change
	for _, s := range segs {
		rest, ok1 := s.At(Rest)
		peak, ok2 := s.At(Peak)
		if !ok1 || !ok2 {
			continue
		}
		switch d := rest - peak; {
		case d < 0:
			ch.Ischaemic = append(ch.Ischaemic, s.Name)
		case d > 0:
			ch.Improve = append(ch.Improve, s.Name)
		default:
			ch.Unchanged = append(ch.Unchanged, s.Name)
		}
	}
	return ch
}

// Report is the narrative summary of a stress study.
type Report struct {
	Reposo   string
	Esfuerzo string
	Mejoria  string
	Change   Change
}

// Synthesize builds the rest, stress and improvement sentences.
func Synthesize(segs []Segment) Report {
	rest, peak := Group(segs, Rest), Group(segs, Peak)
	ch := Delta(segs)
	allNormal := len(rest[Normokinesis]) == SegmentCount

	var reposo, esfuerzo, mejoria []string
	if allNormal {
		reposo = append(reposo, "Sin trastornos de la motilidad basal.")
	} else {
		for _, c := range Categories[1:] {
			if len(rest[c]) > 0 {
				reposo = append(reposo, fmt.Sprintf("%s: %s.", c, strings.Join(rest[c], ", ")))
			}
		}
	}

	for _, c := range Categories[1:] {
		var fresh []string
		for _, name := range peak[c] {
			if !rest.Has(c, name) {
				fresh = append(fresh, name)
			}
		}
		if len(fresh) > 0 {
			esfuerzo = append(esfuerzo, fmt.Sprintf("Nueva %s: %s.", c, strings.Join(fresh, ", ")))
		}
	}

	if len(ch.Improve) > 0 {
		mejoria = append(mejoria, fmt.Sprintf("Mejoria de los segmentos: %s.", strings.Join(ch.Improve, ", ")))
	}

	if len(ch.Unchanged) == SegmentCount {
		if allNormal {
			esfuerzo = append(esfuerzo, "Hipercontractilidad de todos los segmentos.")
		} else {
			esfuerzo = append(esfuerzo, "Sin nuevos trastornos de motilidad.")
		}
	}

	return Report{
		Reposo:   strings.Join(reposo, " "),
		Esfuerzo: strings.Join(esfuerzo, " "),
		Mejoria:  strings.Join(mejoria, " "),
		Change:   ch,
	}
}
