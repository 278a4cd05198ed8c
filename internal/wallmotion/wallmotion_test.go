package wallmotion

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/KaramelBytes/ecoreport/internal/docx"
)

func scoreRow(id int, name string, scores ...string) *docx.Row {
	cells := []string{strconv.Itoa(id), "", "", "", "", name}
	return docx.TextRow(append(cells, scores...)...)
}

// wmsTable builds a scoring table where every segment scores 1 except those
// listed in override as name -> [rest, peak, recovery].
func wmsTable(override map[string][3]string) *docx.Table {
	rows := []*docx.Row{docx.TextRow("ID", "", "", "", "", "Segment", "Rest", "Peak", "Recovery")}
	for i := 1; i <= SegmentCount; i++ {
		name := fmt.Sprintf("Seg %02d", i)
		s := [3]string{"1", "1", "1"}
		if o, ok := override[name]; ok {
			s = o
		}
		rows = append(rows, scoreRow(i, name, s[0], s[1], s[2]))
	}
	rows = append(rows, scoreRow(18, "WMSI", "1", "1", "1"))
	return docx.NewTable(
		docx.TextRow("WMS"),
		docx.NewRow(docx.NestedCell(docx.NewTable(rows...))),
	)
}

func TestExtract(t *testing.T) {
	segs := Extract(wmsTable(map[string][3]string{"Seg 03": {"2", "-", "1"}}))
	if len(segs) != SegmentCount {
		t.Fatalf("segments = %d, want %d", len(segs), SegmentCount)
	}
	if segs[0].Name != "seg 01" {
		t.Fatalf("name = %q, want lower-cased", segs[0].Name)
	}
	if got := segs[2].Motilidad(); !reflect.DeepEqual(got, []any{2, "-", 1}) {
		t.Fatalf("motilidad = %v", got)
	}
	if _, ok := segs[2].At(Peak); ok {
		t.Fatalf("non-numeric score must not be valid")
	}
}

func TestExtractUsesGridColumns(t *testing.T) {
	merged := &docx.Cell{Text: "1", ColSpan: 5}
	row := docx.NewRow(merged, docx.TextCell("Apex"), docx.TextCell("3"), docx.TextCell("4"), docx.TextCell("1"))
	table := docx.NewTable(docx.NewRow(docx.NestedCell(docx.NewTable(docx.TextRow("header"), row))))
	segs := Extract(table)
	if len(segs) != 1 || segs[0].Name != "apex" {
		t.Fatalf("segments = %+v", segs)
	}
	if peak, _ := segs[0].At(Peak); peak != 4 {
		t.Fatalf("peak = %d", peak)
	}
}

func TestGroupAndDelta(t *testing.T) {
	segs := []Segment{
		{Name: "a", Scores: []Score{{Value: 1, Valid: true}, {Value: 3, Valid: true}}},
		{Name: "b", Scores: []Score{{Value: 2, Valid: true}, {Value: 1, Valid: true}}},
		{Name: "c", Scores: []Score{{Value: 5, Valid: true}, {Value: 5, Valid: true}}},
		{Name: "d", Scores: []Score{{Value: 4, Valid: true}}},
		{Name: "e", Scores: []Score{{Text: "x"}, {Value: 2, Valid: true}}},
	}
	rest := Group(segs, Rest)
	want := Grouping{
		Normokinesis: {"a", "e"},
		Hypokinesis:  {"b"},
		Akinesis:     nil,
		Dyskinesis:   {"d"},
		Aneurysmal:   {"c"},
	}
	if !reflect.DeepEqual(rest, want) {
		t.Fatalf("rest grouping = %v, want %v", rest, want)
	}
	ch := Delta(segs)
	if !reflect.DeepEqual(ch.Ischaemic, []string{"a"}) ||
		!reflect.DeepEqual(ch.Improve, []string{"b"}) ||
		!reflect.DeepEqual(ch.Unchanged, []string{"c"}) {
		t.Fatalf("delta = %+v", ch)
	}
}

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name     string
		override map[string][3]string
		want     Report
	}{
		{
			name: "all normal and unchanged",
			want: Report{
				Reposo:   "Sin trastornos de la motilidad basal.",
				Esfuerzo: "Hipercontractilidad de todos los segmentos.",
			},
		},
		{
			name:     "new akinesis at peak",
			override: map[string][3]string{"Seg 01": {"1", "3", "1"}},
			want: Report{
				Reposo:   "Sin trastornos de la motilidad basal.",
				Esfuerzo: "Nueva Aquinesia: seg 01.",
			},
		},
		{
			name:     "improvement",
			override: map[string][3]string{"Seg 17": {"2", "1", "1"}},
			want: Report{
				Reposo:  "Hipoquinesia: seg 17.",
				Mejoria: "Mejoria de los segmentos: seg 17.",
			},
		},
		{
			name: "fixed defects",
			override: map[string][3]string{
				"Seg 02": {"2", "2", "2"},
				"Seg 05": {"3", "3", "3"},
			},
			want: Report{
				Reposo:   "Hipoquinesia: seg 02. Aquinesia: seg 05.",
				Esfuerzo: "Sin nuevos trastornos de motilidad.",
			},
		},
		{
			name: "rest defect worsens",
			override: map[string][3]string{
				"Seg 04": {"2", "3", "3"},
				"Seg 06": {"1", "2", "1"},
			},
			want: Report{
				Reposo:   "Hipoquinesia: seg 04.",
				Esfuerzo: "Nueva Hipoquinesia: seg 06. Nueva Aquinesia: seg 04.",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Synthesize(Extract(wmsTable(tt.override)))
			if got.Reposo != tt.want.Reposo {
				t.Errorf("reposo = %q, want %q", got.Reposo, tt.want.Reposo)
			}
			if got.Esfuerzo != tt.want.Esfuerzo {
				t.Errorf("esfuerzo = %q, want %q", got.Esfuerzo, tt.want.Esfuerzo)
			}
			if got.Mejoria != tt.want.Mejoria {
				t.Errorf("mejoria = %q, want %q", got.Mejoria, tt.want.Mejoria)
			}
		})
	}
}
