// Package grid reads measurement tables into raw field readings. Devices
// emit two layouts: a table whose cells wrap nested label/value tables, and a
// flattened table where labels and values sit side by side in one grid.
package grid

import (
	"io"
	"log/slog"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/vocab"
)

// Strategy names the table layout a parser understands.
type Strategy int

const (
	StrategyNested Strategy = iota + 1
	StrategyFlattened
)

func (s Strategy) String() string {
	switch s {
	case StrategyNested:
		return "nested"
	case StrategyFlattened:
		return "flattened"
	default:
		return "unknown"
	}
}

// Extractor turns a measurement table into raw readings.
type Extractor interface {
	Extract(t *docx.Table) *Raw
}

// Probe picks the strategy for t: any nested table selects the nested layout.
func Probe(t *docx.Table) Strategy {
	if t.HasNested() {
		return StrategyNested
	}
	return StrategyFlattened
}

// New returns the extractor for s.
func New(s Strategy, voc *vocab.Vocabulary, logger *slog.Logger) Extractor {
	if voc == nil {
		voc = vocab.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s == StrategyNested {
		return &Nested{voc: voc, logger: logger}
	}
	return &Flattened{voc: voc, logger: logger, patterns: voc.Patterns(), Radius: 2}
}

// Extract probes t, parses it with the matching strategy and lifts embedded
// calculation results out into their own fields.
func Extract(t *docx.Table, voc *vocab.Vocabulary, logger *slog.Logger) (*Raw, Strategy) {
	if voc == nil {
		voc = vocab.Default()
	}
	s := Probe(t)
	raw := New(s, voc, logger).Extract(t)
	LiftCalculations(raw, voc)
	return raw, s
}

// LiftCalculations turns a calculation marker found inside a field's readings,
// together with the reading that follows it, into a field of its own. A
// marker in last position has no reading and is skipped with a warning. The
// lifted field replaces an existing one of the same name.
func LiftCalculations(raw *Raw, voc *vocab.Vocabulary) {
	type lift struct{ key, val string }
	var lifts []lift
	for _, key := range raw.Keys() {
		vals := raw.Values(key)
		seen := make(map[string]bool)
		for i, v := range vals {
			if !voc.IsCalcMarker(v) || seen[v] {
				continue
			}
			seen[v] = true
			if i+1 >= len(vals) {
				raw.Warnf("calculation %q in %q has no value", v, key)
				continue
			}
			lifts = append(lifts, lift{key: v, val: vals[i+1]})
		}
	}
	for _, l := range lifts {
		raw.Set(l.key, []string{l.val}, "")
	}
}
