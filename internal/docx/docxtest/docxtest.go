// Package docxtest writes minimal .docx archives for tests.
package docxtest

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// Write stores a .docx at path whose body is the given WordprocessingML
// fragment (tables and paragraphs, without the w:body wrapper).
func Write(path, body string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	zw := zip.NewWriter(f)
	parts := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/_rels/document.xml.rels", docRels},
		{"word/document.xml", Document(body)},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			_ = f.Close()
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("close zip: %w", err)
	}
	return f.Close()
}

// Document wraps a body fragment into a complete word/document.xml.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

// Table renders rows as a w:tbl element.
func Table(rows ...string) string {
	return "<w:tbl>" + strings.Join(rows, "") + "</w:tbl>"
}

// Row renders cells as a w:tr element.
func Row(cells ...string) string {
	return "<w:tr>" + strings.Join(cells, "") + "</w:tr>"
}

// Cell renders a w:tc holding one paragraph of text. Whitespace is preserved.
func Cell(text string) string {
	return `<w:tc><w:p><w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p></w:tc>`
}

// TextRow renders a row of text cells.
func TextRow(texts ...string) string {
	cells := make([]string, 0, len(texts))
	for _, t := range texts {
		cells = append(cells, Cell(t))
	}
	return Row(cells...)
}

// NestedCell renders a w:tc holding nested tables.
func NestedCell(tables ...string) string {
	return "<w:tc><w:p/>" + strings.Join(tables, "") + "</w:tc>"
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
