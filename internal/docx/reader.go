package docx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	docxfile "github.com/nguyenthenguyen/docx"
	"golang.org/x/text/unicode/norm"
)

// ErrLegacyFormat is returned for binary .doc input, which must be converted
// to .docx before extraction.
var ErrLegacyFormat = errors.New("legacy .doc format: convert to .docx first")

// documentXML mirrors the parts of word/document.xml the extractor needs.
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

type bodyXML struct {
	Tables []tableXML `xml:"tbl"`
}

type tableXML struct {
	Rows []rowXML `xml:"tr"`
}

type rowXML struct {
	Cells []cellXML `xml:"tc"`
}

type cellXML struct {
	Properties cellPropsXML   `xml:"tcPr"`
	Paragraphs []paragraphXML `xml:"p"`
	Tables     []tableXML     `xml:"tbl"`
}

type cellPropsXML struct {
	GridSpan valXML     `xml:"gridSpan"`
	VMerge   *vMergeXML `xml:"vMerge"`
}

type vMergeXML struct {
	Val string `xml:"val,attr"`
}

type valXML struct {
	Val string `xml:"val,attr"`
}

type paragraphXML struct {
	Runs       []runXML       `xml:"r"`
	Hyperlinks []hyperlinkXML `xml:"hyperlink"`
}

type hyperlinkXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []textXML  `xml:"t"`
	Tabs []struct{} `xml:"tab"`
}

type textXML struct {
	Value string `xml:",chardata"`
}

// Open loads a .docx file and returns its table structure.
func Open(path string) (*Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".doc") {
		return nil, ErrLegacyFormat
	}
	f, err := docxfile.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()
	doc, err := Parse(strings.NewReader(f.Editable().GetContent()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Parse reads word/document.xml content.
func Parse(r io.Reader) (*Document, error) {
	var dx documentXML
	if err := xml.NewDecoder(r).Decode(&dx); err != nil {
		return nil, fmt.Errorf("decode document.xml: %w", err)
	}
	doc := &Document{Tables: make([]*Table, 0, len(dx.Body.Tables))}
	for _, t := range dx.Body.Tables {
		doc.Tables = append(doc.Tables, convertTable(t))
	}
	return doc, nil
}

func convertTable(tx tableXML) *Table {
	t := &Table{Rows: make([]*Row, 0, len(tx.Rows))}
	for _, rx := range tx.Rows {
		row := &Row{Cells: make([]*Cell, 0, len(rx.Cells))}
		for _, cx := range rx.Cells {
			row.Cells = append(row.Cells, convertCell(cx))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func convertCell(cx cellXML) *Cell {
	c := &Cell{ColSpan: 1}
	if n, err := strconv.Atoi(cx.Properties.GridSpan.Val); err == nil && n > 0 {
		c.ColSpan = n
	}
	// an empty or "continue" vMerge continues the cell above
	if vm := cx.Properties.VMerge; vm != nil && vm.Val != "restart" {
		c.Continuation = true
	}
	parts := make([]string, 0, len(cx.Paragraphs))
	for _, p := range cx.Paragraphs {
		parts = append(parts, paragraphText(p))
	}
	c.Text = CleanText(strings.Join(parts, "\n"))
	for _, nt := range cx.Tables {
		c.Tables = append(c.Tables, convertTable(nt))
	}
	return c
}

func paragraphText(p paragraphXML) string {
	var sb strings.Builder
	write := func(runs []runXML) {
		for _, r := range runs {
			for range r.Tabs {
				sb.WriteByte('\t')
			}
			for _, t := range r.Text {
				sb.WriteString(t.Value)
			}
		}
	}
	write(p.Runs)
	for _, h := range p.Hyperlinks {
		write(h.Runs)
	}
	return sb.String()
}

// CleanText applies NFC normalisation and turns no-break spaces into plain
// spaces. Leading indentation is kept: it marks sub-labels.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\r", "").Replace(s)
}
