// Package report runs the extraction pipeline over device reports and writes
// the resulting template contexts.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/grid"
	"github.com/KaramelBytes/ecoreport/internal/interpret"
	"github.com/KaramelBytes/ecoreport/internal/locator"
	"github.com/KaramelBytes/ecoreport/internal/measure"
	"github.com/KaramelBytes/ecoreport/internal/patient"
	"github.com/KaramelBytes/ecoreport/internal/vocab"
	"github.com/KaramelBytes/ecoreport/internal/wallmotion"
)

// Result is everything extracted from one report.
type Result struct {
	Path         string
	Tipo         patient.Type
	Patient      *patient.Info
	Measurements *measure.Record
	Strategy     grid.Strategy
	Segments     []wallmotion.Segment
	Motility     *wallmotion.Report
	Rules        []interpret.Result
	Warnings     []string
}

// Template returns the file name of the template the result is meant for.
func (r *Result) Template() string { return r.Tipo.Template() }

// Processor extracts reports. It holds only read-only state and may be used
// from several goroutines.
type Processor struct {
	voc    *vocab.Vocabulary
	norm   *measure.Normalizer
	logger *slog.Logger
}

// NewProcessor returns a Processor; nil arguments select the built-in
// vocabulary and a discarding logger.
func NewProcessor(voc *vocab.Vocabulary, logger *slog.Logger) *Processor {
	if voc == nil {
		voc = vocab.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{voc: voc, norm: measure.NewNormalizer(voc, logger), logger: logger}
}

// Process opens the report at path and extracts it. An empty tipo is detected
// from the path and the document.
func (p *Processor) Process(ctx context.Context, path string, tipo patient.Type) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := docx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return p.ProcessDocument(ctx, path, doc, tipo)
}

// ProcessDocument extracts an already loaded document.
func (p *Processor) ProcessDocument(ctx context.Context, path string, doc *docx.Document, tipo patient.Type) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tipo == "" {
		tipo = patient.DetectType(path, doc)
	}
	log := p.logger.With("file", path, "tipo", string(tipo))

	info, ok := patient.Extract(doc)
	res := &Result{Path: path, Tipo: tipo, Patient: info}
	if !ok {
		res.Warnings = append(res.Warnings, "no patient table found")
		log.Warn("no patient table found")
	}
	if !tipo.HasMeasurements() {
		log.Debug("study has no measurement table")
		return res, nil
	}

	gender := info.Gender()
	if !info.Has(patient.FieldGender) {
		return nil, &MissingRequiredFieldError{Path: path, Field: patient.FieldGender, Info: info}
	}
	table, idx, ok := locator.Find(doc, locator.Measurement)
	if !ok {
		return nil, &MissingTableError{Path: path, Marker: locator.Measurement.Text, Tipo: tipo}
	}

	var wms *docx.Table
	if tipo == patient.Stress {
		if wms, _, ok = locator.Find(doc, locator.WallMotion); !ok {
			return nil, &MissingTableError{Path: path, Marker: locator.WallMotion.Text, Tipo: tipo}
		}
	}

	raw, strategy := grid.Extract(table, p.voc, log)
	res.Strategy = strategy
	res.Warnings = append(res.Warnings, raw.Warnings...)
	log.Debug("measurement table parsed", "table", idx, "strategy", strategy.String(), "fields", raw.Len())

	rec := raw.Record()
	warns := p.norm.Normalize(rec, func(r *measure.Record) {
		res.Rules = interpret.Apply(r, gender)
	})
	for _, w := range warns {
		res.Warnings = append(res.Warnings, w.String())
	}

	if tipo == patient.Stress {
		measure.ExpandLists(rec)
		res.Rules = append(res.Rules, interpret.StressRatios(rec))
		res.Segments = wallmotion.Extract(wms)
		mot := wallmotion.Synthesize(res.Segments)
		res.Motility = &mot
		if n := len(res.Segments); n != wallmotion.SegmentCount {
			res.Warnings = append(res.Warnings, fmt.Sprintf("wall motion table has %d segments, expected %d", n, wallmotion.SegmentCount))
		}
	}
	for _, r := range res.Rules {
		if r.Status == interpret.Skipped {
			log.Debug("interpretation skipped", "rule", r.Rule, "reason", r.Reason)
		}
	}
	res.Measurements = rec
	log.Info("report extracted", "fields", rec.Len(), "warnings", len(res.Warnings))
	return res, nil
}
