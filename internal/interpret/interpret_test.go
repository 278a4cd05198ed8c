package interpret

import (
	"testing"

	"github.com/KaramelBytes/ecoreport/internal/measure"
)

func record(kv map[string]measure.Value) *measure.Record {
	rec := measure.NewRecord()
	for k, v := range kv {
		rec.Set(k, v)
	}
	return rec
}

func text(t *testing.T, rec *measure.Record, key string) string {
	t.Helper()
	v, ok := rec.Get(key)
	if !ok {
		t.Fatalf("%s not set", key)
	}
	s, _ := v.Str()
	return s
}

func TestMass(t *testing.T) {
	tests := []struct {
		name     string
		gender   string
		fields   map[string]measure.Value
		wantText string
		wantConc string
	}{
		{
			name:     "male index at threshold",
			gender:   Male,
			fields:   map[string]measure.Value{FieldMassIndex: measure.Float(115), FieldRWT: measure.Float(0.3)},
			wantText: "Hipertrofia excéntrica",
			wantConc: "Hipertrofia excéntrica",
		},
		{
			name:     "male index below threshold",
			gender:   Male,
			fields:   map[string]measure.Value{FieldMassIndex: measure.Float(114.9), FieldRWT: measure.Float(0.3)},
			wantText: textIndexNormal,
			wantConc: "",
		},
		{
			name:     "female index with concentric geometry",
			gender:   "Female",
			fields:   map[string]measure.Value{FieldMassIndex: measure.Int(95), FieldRWT: measure.Float(0.42)},
			wantText: "Hipertrofia concéntrica",
			wantConc: "Hipertrofia concéntrica",
		},
		{
			name:     "normal index with remodelling",
			gender:   Male,
			fields:   map[string]measure.Value{FieldMassIndex: measure.Int(90), FieldRWT: measure.Float(0.5)},
			wantText: textIndexNormal + ", remodelado concéntrico",
			wantConc: ", remodelado concéntrico",
		},
		{
			name:     "absolute mass used without index",
			gender:   "",
			fields:   map[string]measure.Value{FieldMass: measure.List(measure.Float(120), measure.Float(151))},
			wantText: "Hipertrofia excéntrica",
			wantConc: "Hipertrofia excéntrica",
		},
		{
			name:     "normal absolute mass",
			gender:   Male,
			fields:   map[string]measure.Value{FieldMass: measure.Float(199), FieldRWT: measure.Float(0.2)},
			wantText: textMassNormal,
			wantConc: textMassNormal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(tt.fields)
			if res := Mass(rec, tt.gender); res.Status != Computed {
				t.Fatalf("status = %s", res)
			}
			if got := text(t, rec, KeyMass); got != tt.wantText {
				t.Errorf("mass = %q, want %q", got, tt.wantText)
			}
			if got := text(t, rec, KeyMassConc); got != tt.wantConc {
				t.Errorf("conc = %q, want %q", got, tt.wantConc)
			}
		})
	}
}

func TestMassSkipsWithoutInputs(t *testing.T) {
	rec := record(map[string]measure.Value{FieldMass: measure.Text("n/a")})
	if res := Mass(rec, Male); res.Status != Skipped {
		t.Fatalf("status = %s", res)
	}
	if rec.Has(KeyMass) {
		t.Fatalf("skipped rule must not write")
	}
}

func TestDiameter(t *testing.T) {
	tests := []struct {
		name               string
		gender             string
		lvidd, ivsd, lvpwd float64
		want               string
	}{
		{"male normal", Male, 55, 10, 8, "Dimensiones y espesores conservados"},
		{"female enlarged", "Female", 55, 10, 8, "Dimensiones aumentadas, espesores conservados"},
		{"male reduced", Male, 41, 10, 8, "Dimensiones disminuidas, espesores conservados"},
		{"thick septum", Male, 50, 13, 8, "Dimensiones conservadas y espesores aumentados"},
		{"thick wall and enlarged", Male, 60, 10, 10, "Dimensiones aumentadas, espesores aumentados"},
		{"limits are inclusive of normal", Male, 58, 12, 9, "Dimensiones y espesores conservados"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(map[string]measure.Value{
				FieldLVIDd: measure.Float(tt.lvidd),
				FieldIVSd:  measure.Float(tt.ivsd),
				FieldLVPWd: measure.Float(tt.lvpwd),
			})
			Diameter(rec, tt.gender)
			if got := text(t, rec, KeyDiameter); got != tt.want {
				t.Fatalf("diameter = %q, want %q", got, tt.want)
			}
		})
	}

	rec := record(map[string]measure.Value{FieldLVIDd: measure.Int(50), FieldIVSd: measure.Int(10)})
	if res := Diameter(rec, Male); res.Status != Skipped || rec.Has(KeyDiameter) {
		t.Fatalf("missing LVPWd must skip: %s", res)
	}
}

func TestAtria(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]measure.Value
		la, ra     string
		conclusion string
		status     Status
	}{
		{
			name:       "volume mildly dilated",
			fields:     map[string]measure.Value{FieldLAVolume: measure.Int(40)},
			la:         "Levemente dilatada",
			ra:         textAtriaNormal,
			conclusion: "Aurícula izquierda dilatada",
		},
		{
			name:       "volume preferred over diameter",
			fields:     map[string]measure.Value{FieldLAVolume: measure.Int(30), FieldLADiam: measure.Int(45)},
			la:         textAtriaNormal,
			ra:         textAtriaNormal,
			conclusion: "Aurículas de dimensiones normales",
		},
		{
			name:       "biplane volume severe",
			fields:     map[string]measure.Value{FieldLABiplane: measure.Int(54)},
			la:         "Severamente dilatada",
			ra:         textAtriaNormal,
			conclusion: "Aurícula izquierda dilatada",
		},
		{
			name:       "diameter moderate and right atrium",
			fields:     map[string]measure.Value{FieldLADiam: measure.Int(31), FieldRADiam: measure.Int(29)},
			la:         "Moderadamente dilatada",
			ra:         "Moderadamente dilatada",
			conclusion: "Aurículas dilatadas",
		},
		{
			name:       "right atrium band is exclusive",
			fields:     map[string]measure.Value{FieldLADiam: measure.Int(20), FieldRADiam: measure.Int(18)},
			la:         textAtriaNormal,
			ra:         textAtriaNormal,
			conclusion: "Aurículas de dimensiones normales",
		},
		{
			name:       "right atrium alone",
			fields:     map[string]measure.Value{FieldRADiam: measure.List(measure.Int(20), measure.Int(39))},
			la:         textAtriaNormal,
			ra:         "Severamente dilatada",
			conclusion: "Aurícula derecha dilatada",
		},
		{
			name:       "no measurements",
			fields:     map[string]measure.Value{},
			la:         textAtriaNormal,
			ra:         textAtriaNormal,
			conclusion: "Aurículas de dimensiones normales",
			status:     Skipped,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(tt.fields)
			if res := Atria(rec, ""); res.Status != tt.status {
				t.Fatalf("status = %s, want %s", res, tt.status)
			}
			if got := text(t, rec, KeyLAText); got != tt.la {
				t.Errorf("la = %q, want %q", got, tt.la)
			}
			if got := text(t, rec, KeyRAText); got != tt.ra {
				t.Errorf("ra = %q, want %q", got, tt.ra)
			}
			if got := text(t, rec, KeyAtriumConc); got != tt.conclusion {
				t.Errorf("conclusion = %q, want %q", got, tt.conclusion)
			}
		})
	}
}

func TestAtriaSkippedKeepsEarlierText(t *testing.T) {
	rec := record(map[string]measure.Value{
		KeyLAText:     measure.Text("Levemente dilatada"),
		KeyAtriumConc: measure.Text("Aurícula izquierda dilatada"),
	})
	if res := Atria(rec, ""); res.Status != Skipped {
		t.Fatalf("status = %s", res)
	}
	if got := text(t, rec, KeyLAText); got != "Levemente dilatada" {
		t.Errorf("la = %q", got)
	}
	if got := text(t, rec, KeyAtriumConc); got != "Aurícula izquierda dilatada" {
		t.Errorf("conclusion = %q", got)
	}
	if got := text(t, rec, KeyRAText); got != textAtriaNormal {
		t.Errorf("ra default = %q", got)
	}
}

func TestRulesReadSanitizedKeys(t *testing.T) {
	rec := record(map[string]measure.Value{
		"LA_ESVI_BP_A_L":        measure.Int(40),
		"LAAd":                  measure.Int(45),
		"LVd_Mass_Index_2D_ASE": measure.Int(120),
		"RWT_2D":                measure.Float(0.45),
	})
	results := Apply(rec, "Female")
	if results[0].Status != Computed || results[2].Status != Computed {
		t.Fatalf("results = %v", results)
	}
	if got := text(t, rec, KeyLAText); got != "Levemente dilatada" {
		t.Errorf("la = %q, volume must win over diameter", got)
	}
	if got := text(t, rec, KeyMass); got != "Hipertrofia concéntrica" {
		t.Errorf("mass = %q", got)
	}
}

func TestApplyRunsEveryRule(t *testing.T) {
	rec := record(map[string]measure.Value{FieldLAVolume: measure.Int(40)})
	results := Apply(rec, Male)
	if len(results) != 3 {
		t.Fatalf("results = %v", results)
	}
	if results[0].Status != Skipped || results[1].Status != Skipped || results[2].Status != Computed {
		t.Fatalf("results = %v", results)
	}
}

func TestStressRatios(t *testing.T) {
	rec := record(map[string]measure.Value{
		"MV_Vel_E_0":  measure.Float(0.8),
		"MV_Vel_E_1":  measure.Float(1.2),
		"Med_Vel_E_0": measure.Float(8),
		"Lat_Vel_E_0": measure.Float(12),
		"Med_Vel_E_1": measure.Float(9),
	})
	StressRatios(rec)
	ratio, _ := rec.Get(KeyStressRatio)
	if want := measure.List(measure.Int(8), measure.Int(13)); !ratio.Equal(want) {
		t.Fatalf("E/e' = %v, want %v", ratio, want)
	}
	avg, _ := rec.Get(KeyStressAverage)
	if want := measure.List(measure.Int(10), measure.Float(9)); !avg.Equal(want) {
		t.Fatalf("e' = %v, want %v", avg, want)
	}
}

func TestStressRatiosMedialOnlyKeepsFraction(t *testing.T) {
	rec := record(map[string]measure.Value{
		"MV_Vel_E_0":  measure.Float(0.9),
		"MV_Vel_E_1":  measure.Float(0.9),
		"Med_Vel_E_0": measure.Float(8.5),
		"Med_Vel_E_1": measure.Float(8.5),
		"Lat_Vel_E_1": measure.Float(0),
	})
	StressRatios(rec)
	ratio, _ := rec.Get(KeyStressRatio)
	if want := measure.List(measure.Int(10), measure.Int(10)); !ratio.Equal(want) {
		t.Fatalf("E/e' = %v, want %v", ratio, want)
	}
	avg, _ := rec.Get(KeyStressAverage)
	if want := measure.List(measure.Float(8.5), measure.Float(8.5)); !avg.Equal(want) {
		t.Fatalf("e' = %v, want %v", avg, want)
	}
}

func TestStressRatiosZeroAverage(t *testing.T) {
	rec := record(map[string]measure.Value{
		"MV_Vel_E_0": measure.Float(0.8),
		"MV_Vel_E_1": measure.Float(0.9),
	})
	StressRatios(rec)
	ratio, _ := rec.Get(KeyStressRatio)
	sentinel := measure.Text(measure.Sentinel)
	if want := measure.List(sentinel, sentinel); !ratio.Equal(want) {
		t.Fatalf("E/e' = %v, want %v", ratio, want)
	}
}
