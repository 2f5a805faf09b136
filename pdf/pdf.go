// Package pdf renders quotes and letters of agreement.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	agencyName   = "Virtec Digital"
	quoteFooter  = "This quote is valid for 30 days from the date of generation. All prices are in South African Rand (ZAR)."
	dateLayout   = "02 January 2006"
	pageWidth    = 190.0
	labelWidth   = 60.0
	defaultLineH = 7.0
)

// QuoteData is everything printed on a quote.
type QuoteData struct {
	QuoteID     uint
	Date        time.Time
	ClientName  string
	ClientEmail string
	CompanyName string
	ProjectType string
	Complexity  string
	Urgency     string

	EstimatedHours       float64
	HourlyRate           float64
	ComplexityMultiplier float64
	UrgencyMultiplier    float64
	HostingCost          float64
	MaintenanceCost      float64
	Total                float64

	Features []Feature
}

type Feature struct {
	Name        string
	Description string
}

// AgreementData is everything printed on a letter of agreement.
type AgreementData struct {
	ProjectID       uint
	Date            time.Time
	ClientName      string
	CompanyName     string
	ProjectType     string
	QuoteID         uint
	QuoteTotal      float64
	Requirements    string
	PaymentMethod   string
	PaymentDuration string
}

// Renderer produces PDF bytes. The zero value is ready to use.
type Renderer struct{}

func newDoc(title string, created time.Time) (*gofpdf.Fpdf, func(string) string) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetAuthor(agencyName, true)
	doc.SetCreationDate(created)
	doc.SetMargins(10, 15, 10)
	doc.SetAutoPageBreak(true, 25)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	return doc, tr
}

func output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func header(doc *gofpdf.Fpdf, tr func(string) string, heading, sub string) {
	doc.SetFont("Arial", "B", 22)
	doc.SetFillColor(240, 240, 240)
	doc.Rect(10, 10, pageWidth, 16, "F")
	doc.SetXY(12, 13)
	doc.Cell(pageWidth-4, 10, tr(heading))
	doc.Ln(14)
	doc.SetFont("Arial", "", 10)
	doc.SetTextColor(100, 100, 100)
	doc.Cell(pageWidth, 6, tr(sub))
	doc.SetTextColor(0, 0, 0)
	doc.Ln(10)
}

func section(doc *gofpdf.Fpdf, tr func(string) string, name string) {
	doc.SetFont("Arial", "B", 13)
	doc.SetFillColor(245, 245, 245)
	doc.CellFormat(pageWidth, 9, tr(name), "", 1, "L", true, 0, "")
	doc.Ln(2)
}

func row(doc *gofpdf.Fpdf, tr func(string) string, label, value string) {
	doc.SetFont("Arial", "", 11)
	doc.CellFormat(labelWidth, defaultLineH, tr(label), "", 0, "L", false, 0, "")
	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(pageWidth-labelWidth, defaultLineH, tr(value), "", 1, "L", false, 0, "")
}

func footer(doc *gofpdf.Fpdf, tr func(string) string, text string) {
	doc.SetFooterFunc(func() {
		doc.SetY(-20)
		doc.SetFont("Arial", "I", 8)
		doc.SetTextColor(110, 110, 110)
		doc.MultiCell(pageWidth, 4, tr(text), "", "C", false)
		doc.CellFormat(pageWidth, 4, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
}
