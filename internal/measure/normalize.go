package measure

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/ecoreport/internal/vocab"
)

const (
	// UnitMetersPerSecond marks velocities already converted from cm/s.
	UnitMetersPerSecond = "m/s"
	// Sentinel replaces a derived ratio whose denominator is zero.
	Sentinel = "XX"
)

// ValueCoercionWarning records a reading that was expected to be numeric but
// could not be parsed. The field keeps its text; extraction continues.
type ValueCoercionWarning struct {
	Key   string
	Value string
}

func (w ValueCoercionWarning) String() string {
	return fmt.Sprintf("%s: %q is not numeric, left as text", w.Key, w.Value)
}

// Stage enriches a record between unit conversion and key sanitization, while
// keys still carry the device's punctuated names.
type Stage func(rec *Record)

// Normalizer turns raw readings into typed values. It holds no per-document
// state and may be shared between goroutines.
type Normalizer struct {
	voc    *vocab.Vocabulary
	logger *slog.Logger
}

// NewNormalizer returns a Normalizer using voc; a nil logger discards output.
func NewNormalizer(voc *vocab.Vocabulary, logger *slog.Logger) *Normalizer {
	if voc == nil {
		voc = vocab.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Normalizer{voc: voc, logger: logger}
}

// Normalize mutates rec in place: list collapse, numeric coercion, velocity
// conversion, the given stages, then key sanitization. Running it again on
// its own output changes nothing.
func (n *Normalizer) Normalize(rec *Record, stages ...Stage) []ValueCoercionWarning {
	n.Collapse(rec)
	warns := n.Coerce(rec)
	n.ConvertVelocities(rec)
	for _, st := range stages {
		st(rec)
	}
	Sanitize(rec)
	for _, w := range warns {
		n.logger.Debug("value left unconverted", "key", w.Key, "value", w.Value)
	}
	return warns
}

// Collapse reduces raw text sequences. A single reading becomes a scalar. A
// sequence that embeds another known key is cut before it and its first
// reading kept (empty text when the key comes first). Other sequences stay
// lists of repeated readings. Lists already holding numbers are left alone.
func (n *Normalizer) Collapse(rec *Record) {
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		if !v.IsList() || !allText(v.list) || len(v.list) == 0 {
			continue
		}
		if len(v.list) == 1 {
			rec.Set(key, v.list[0].WithUnit(v.unit))
			continue
		}
		for i, it := range v.list {
			if !rec.Has(it.text) {
				continue
			}
			first := Text("")
			if i > 0 {
				first = v.list[0]
			}
			rec.Set(key, first.WithUnit(v.unit))
			break
		}
	}
}

// Coerce converts numeric-looking text to numbers. Whitelisted fields are
// rounded half-to-even to integers. Non-numeric readings inside lists are
// dropped, except the Sentinel; non-numeric scalars stay text.
func (n *Normalizer) Coerce(rec *Record) []ValueCoercionWarning {
	var warns []ValueCoercionWarning
	for _, key := range rec.Keys() {
		if strings.Contains(key, "Exam_Date") {
			continue
		}
		v, _ := rec.Get(key)
		round := n.voc.RoundsToInt(key)
		expectNumeric := round || n.voc.IsVelocity(key) || v.unit != ""
		if v.IsList() {
			items := make([]Value, 0, len(v.list))
			for _, it := range v.list {
				if it.kind != KindText || it.text == Sentinel {
					items = append(items, it)
					continue
				}
				if f, ok := ParseReading(it.text); ok {
					items = append(items, number(f, round))
					continue
				}
				warns = append(warns, ValueCoercionWarning{Key: key, Value: it.text})
			}
			out := List(items...)
			out.unit = v.unit
			rec.Set(key, out)
			continue
		}
		s, isText := v.Str()
		if !isText {
			continue
		}
		if f, ok := ParseReading(s); ok {
			rec.Set(key, number(f, round).WithUnit(v.unit))
		} else if expectNumeric && s != "" {
			warns = append(warns, ValueCoercionWarning{Key: key, Value: s})
		}
	}
	return warns
}

// ConvertVelocities turns cm/s velocities into m/s with two decimals.
func (n *Normalizer) ConvertVelocities(rec *Record) {
	for _, key := range rec.Keys() {
		if !n.voc.IsVelocity(key) {
			continue
		}
		v, _ := rec.Get(key)
		if v.unit == UnitMetersPerSecond {
			continue
		}
		if v.IsList() {
			items := make([]Value, 0, len(v.list))
			for _, it := range v.list {
				if f, ok := it.Number(); ok {
					it = Float(round2(f / 100))
				}
				items = append(items, it)
			}
			rec.Set(key, List(items...).WithUnit(UnitMetersPerSecond))
			continue
		}
		if f, ok := v.Number(); ok {
			rec.Set(key, Float(round2(f/100)).WithUnit(UnitMetersPerSecond))
		}
	}
}

// Sanitize rewrites every key into an identifier-safe form. When two keys
// collide the later value wins and the earlier position is kept.
func Sanitize(rec *Record) {
	out := NewRecord()
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		out.Set(SanitizeKey(key), v)
	}
	*rec = *out
}

// SanitizeKey strips punctuation from a device field name: "E/Avg E'"
// becomes "E_Avg_E" and "AV Vmax  PG" becomes "AV_Vmax_PG".
func SanitizeKey(key string) string {
	for _, rep := range [][2]string{
		{"  ", " "}, {" ", "_"}, {"/", "_"}, {"(", "_"}, {")", ""},
		{"-", "_"}, {"%", ""}, {"'", ""}, {"*", ""},
	} {
		key = strings.ReplaceAll(key, rep[0], rep[1])
	}
	return key
}

// ExpandLists replaces every list value with one key per reading, key_0 to
// key_n, appended after the existing keys.
func ExpandLists(rec *Record) {
	type item struct {
		key string
		val Value
	}
	var added []item
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		if !v.IsList() {
			continue
		}
		for i, it := range v.list {
			added = append(added, item{key: fmt.Sprintf("%s_%d", key, i), val: it.WithUnit(v.unit)})
		}
		rec.Delete(key)
	}
	for _, it := range added {
		rec.Set(it.key, it.val)
	}
}

// ParseReading parses a device reading. A leading '-' flags an abnormal value
// on the device and is dropped.
func ParseReading(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimPrefix(s, "-"), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Abs(f), true
}

func number(f float64, round bool) Value {
	if round {
		return Int(int(math.RoundToEven(f)))
	}
	return Float(f)
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func allText(vs []Value) bool {
	for _, v := range vs {
		if v.kind != KindText {
			return false
		}
	}
	return true
}
