// Package pdf renders simple text documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Document is a titled list of text lines.
type Document struct {
	Title    string
	Subtitle string
	Lines    []string
}

// Render lays the document out on A4 pages and returns the PDF bytes.
func Render(doc Document) ([]byte, error) {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetTitle(doc.Title, true)
	p.SetMargins(20, 20, 20)
	p.SetAutoPageBreak(true, 20)
	p.AliasNbPages("")
	p.SetFooterFunc(func() {
		p.SetY(-15)
		p.SetFont("Helvetica", "I", 8)
		p.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", p.PageNo()), "", 0, "C", false, 0, "")
	})

	// Core fonts are cp1252; the translator maps what it can and drops the rest.
	tr := p.UnicodeTranslatorFromDescriptor("")

	p.AddPage()
	p.SetFont("Helvetica", "B", 16)
	p.MultiCell(0, 8, tr(doc.Title), "", "L", false)
	if doc.Subtitle != "" {
		p.SetFont("Helvetica", "", 10)
		p.SetTextColor(90, 90, 90)
		p.MultiCell(0, 6, tr(doc.Subtitle), "", "L", false)
		p.SetTextColor(0, 0, 0)
	}
	p.Ln(4)

	p.SetFont("Helvetica", "", 11)
	for _, line := range doc.Lines {
		if line == "" {
			p.Ln(4)
			continue
		}
		p.MultiCell(0, 6, tr(line), "", "L", false)
	}

	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("pdf: layout: %w", err)
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}
