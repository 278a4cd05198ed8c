package docx_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/docx/docxtest"
)

func TestParseNestedTables(t *testing.T) {
	inner := docxtest.Table(
		docxtest.TextRow("Measure", "Value"),
		docxtest.TextRow("LVIDd", "48", "mm"),
	)
	body := docxtest.Table(docxtest.Row(docxtest.Cell("Title"), docxtest.NestedCell(inner)))
	doc, err := docx.Parse(strings.NewReader(docxtest.Document(body)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Tables) != 1 {
		t.Fatalf("expected 1 top-level table, got %d", len(doc.Tables))
	}
	tbl := doc.Tables[0]
	if !tbl.HasNested() {
		t.Fatalf("expected nested table to be detected")
	}
	nested := tbl.Rows[0].Cells[1].Tables[0]
	if got := nested.Rows[1].Cells[2].Text; got != "mm" {
		t.Fatalf("nested cell text = %q", got)
	}
	if !tbl.Contains("lvidd") {
		t.Fatalf("Contains should search nested cells case-insensitively")
	}
}

func TestParseSpansAndWhitespace(t *testing.T) {
	body := `<w:tbl><w:tr>` +
		`<w:tc><w:tcPr><w:gridSpan w:val="3"/></w:tcPr><w:p><w:r><w:t xml:space="preserve">    PG</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>` +
		`<w:tc><w:p><w:r><w:t>a` + "\u00a0" + `b</w:t></w:r></w:p><w:p><w:r><w:t>c</w:t></w:r></w:p></w:tc>` +
		`</w:tr></w:tbl>`
	doc, err := docx.Parse(strings.NewReader(docxtest.Document(body)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := doc.Tables[0].Rows[0]
	if row.Cells[0].Text != "    PG" {
		t.Fatalf("leading spaces must be preserved, got %q", row.Cells[0].Text)
	}
	if row.Cells[0].ColSpan != 3 {
		t.Fatalf("colspan = %d", row.Cells[0].ColSpan)
	}
	if !row.Cells[1].Continuation {
		t.Fatalf("expected vMerge continuation")
	}
	if row.Cells[2].Text != "a b\nc" {
		t.Fatalf("paragraph join / nbsp cleanup failed: %q", row.Cells[2].Text)
	}
	if n := len(row.GridCells()); n != 5 {
		t.Fatalf("grid cells = %d, want 5", n)
	}
}

func TestOpenDocxFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "study.docx")
	body := docxtest.Table(docxtest.TextRow("Name: Ana"), docxtest.TextRow("Gender: Female"))
	if err := docxtest.Write(p, body); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	doc, err := docx.Open(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(doc.Tables) != 1 || doc.Tables[0].Rows[1].Cells[0].Text != "Gender: Female" {
		t.Fatalf("unexpected document: %+v", doc.Tables)
	}
}

func TestOpenRejectsLegacyDoc(t *testing.T) {
	_, err := docx.Open(filepath.Join(t.TempDir(), "old.doc"))
	if !errors.Is(err, docx.ErrLegacyFormat) {
		t.Fatalf("expected ErrLegacyFormat, got %v", err)
	}
}
