package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetReport   = "Informe"
	sheetMotility = "Motilidad"
	sheetSummary  = "Resumen"
)

// encodeXLSX lays the context out as a two-column field/value sheet, plus a
// segment score sheet for stress studies.
func encodeXLSX(res *Result, ctx *Context) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetReport); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	rows := [][]any{{"Campo", "Valor"}}
	for _, e := range ctx.Entries() {
		if _, isMot := e.Value.([]MotEntry); isMot {
			continue
		}
		rows = append(rows, []any{e.Key, cellValue(e.Value)})
	}
	if err := writeRows(f, sheetReport, rows, header); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetReport, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}

	if len(res.Segments) > 0 {
		if _, err := f.NewSheet(sheetMotility); err != nil {
			return nil, fmt.Errorf("xlsx: %w", err)
		}
		mrows := [][]any{{"Segmento", "Reposo", "Pico", "Recuperación"}}
		for _, s := range res.Segments {
			mrows = append(mrows, append([]any{s.Name}, s.Motilidad()...))
		}
		if err := writeRows(f, sheetMotility, mrows, header); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSummaryXLSX writes one row per batch item: file, type, status and the
// union of measurement fields in first-seen order.
func WriteSummaryXLSX(items []BatchItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	fixed := []any{"Archivo", "Tipo", "Estado", "Salida"}
	var fields []string
	seen := make(map[string]bool)
	for _, it := range items {
		if it.Result == nil || it.Result.Measurements == nil {
			continue
		}
		for _, k := range it.Result.Measurements.Keys() {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	head := append([]any(nil), fixed...)
	for _, k := range fields {
		head = append(head, k)
	}
	rows := [][]any{head}
	for _, it := range items {
		row := []any{it.Path, "", "ok", it.Output}
		if it.Err != nil {
			row[2] = it.Err.Error()
		}
		if it.Result != nil {
			row[1] = string(it.Result.Tipo)
		}
		for _, k := range fields {
			var cell any
			if it.Result != nil && it.Result.Measurements != nil {
				if v, ok := it.Result.Measurements.Get(k); ok {
					cell = cellValue(v.Interface())
				}
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, sheetSummary, rows, header); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx encode: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	return nil
}

// cellValue keeps numbers and text as they are and flattens lists to text.
func cellValue(v any) any {
	switch x := v.(type) {
	case []any:
		parts := make([]string, 0, len(x))
		for _, it := range x {
			parts = append(parts, fmt.Sprint(it))
		}
		return strings.Join(parts, ", ")
	default:
		return v
	}
}
