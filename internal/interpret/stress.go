package interpret

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/ecoreport/internal/measure"
)

// Stress studies record each Doppler field twice; suffix 0 is rest and
// suffix 1 is peak stress.
var stressPhases = [...]string{"0", "1"}

// StressRatios computes E/e' for rest and peak stress from a sanitized record
// whose lists were expanded. e' is the average of the medial and lateral
// velocities truncated to an integer, or the medial velocity as measured when
// lateral is zero or absent. A phase with a zero e' or without mitral E
// velocity reports the sentinel "XX".
func StressRatios(rec *measure.Record) Result {
	const rule = "stress_e_e"
	ratios := make([]measure.Value, 0, len(stressPhases))
	avgs := make([]measure.Value, 0, len(stressPhases))
	var sentinels int
	for _, ph := range stressPhases {
		mv, hasMV := reading(rec, "MV_Vel_E_"+ph)
		med, _ := reading(rec, "Med_Vel_E_"+ph)
		lat, _ := reading(rec, "Lat_Vel_E_"+ph)

		avg := med
		if lat != 0 {
			avg = float64(int((med + lat) / 2))
			avgs = append(avgs, measure.Int(int(avg)))
		} else {
			avgs = append(avgs, measure.Float(med))
		}
		if avg == 0 || !hasMV {
			ratios = append(ratios, measure.Text(measure.Sentinel))
			sentinels++
			continue
		}
		cm := math.Round(mv*100*100) / 100
		ratios = append(ratios, measure.Int(int(cm/avg)))
	}
	rec.Set(KeyStressRatio, measure.List(ratios...))
	rec.Set(KeyStressAverage, measure.List(avgs...))
	if sentinels > 0 {
		return Result{Rule: rule, Status: Computed, Reason: fmt.Sprintf("%d phase(s) without e' or E velocity", sentinels)}
	}
	return computed(rule)
}
