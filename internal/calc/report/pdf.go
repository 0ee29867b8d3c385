package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"HeatExchange/internal/calc/exchanger"

	"github.com/phpdave11/gofpdf"
)

type Document struct {
	Title       string
	Description string
	CreatedAt   time.Time
	Input       exchanger.Input
	Result      exchanger.Result
	// FontPath points to a UTF-8 TrueType font. Without it the core
	// Helvetica font is used and non-Latin text is lost.
	FontPath string
}

func WritePDF(w io.Writer, doc Document) error {
	if doc.Title == "" {
		doc.Title = "Heat Exchanger Report"
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if doc.FontPath != "" {
		pdf.AddUTF8Font("body", "", doc.FontPath)
		pdf.AddUTF8Font("body", "B", doc.FontPath)
		family = "body"
		tr = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, tr(doc.Title))
	pdf.Ln(12)
	pdf.SetFont(family, "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", doc.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	if doc.Description != "" {
		pdf.MultiCell(0, 6, tr(doc.Description), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont(family, "", 10)
	for _, l := range SummaryLines(doc.Input, doc.Result) {
		pdf.CellFormat(110, 6, tr(l.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, formatValue(l.Value), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	var img bytes.Buffer
	if err := WritePlot(&img, doc.Title, doc.Result, "png"); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	pdf.RegisterImageOptionsReader("profile", gofpdf.ImageOptions{ImageType: "PNG"}, &img)
	pdf.ImageOptions("profile", 70, 0, 70, 0, true, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case float64:
		return fmt.Sprintf("%.3f", t)
	default:
		return fmt.Sprint(t)
	}
}
