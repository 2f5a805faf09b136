package pdf

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Agreement renders a letter of agreement with signature blocks.
func (Renderer) Agreement(d AgreementData) ([]byte, error) {
	doc, tr := newDoc(fmt.Sprintf("Letter of Agreement - Project %d", d.ProjectID), d.Date)
	footer(doc, tr, agencyName+" - Letter of Agreement")
	doc.AddPage()

	header(doc, tr, "Letter of Agreement", "Date: "+d.Date.Format(dateLayout))

	client := d.ClientName
	if d.CompanyName != "" {
		client = d.ClientName + " (" + d.CompanyName + ")"
	}
	doc.SetFont("Arial", "", 11)
	doc.MultiCell(pageWidth, 6, tr("Dear "+client+","), "", "L", false)
	doc.Ln(2)
	doc.MultiCell(pageWidth, 6, tr(fmt.Sprintf(
		"This letter confirms our agreement for web development services (%s) as detailed in Quote #%d, for a total of %s.",
		d.ProjectType, d.QuoteID, Money(d.QuoteTotal))), "", "L", false)
	doc.Ln(4)

	section(doc, tr, "Project Requirements")
	req := strings.TrimSpace(d.Requirements)
	if req == "" {
		req = "As described in the referenced quote."
	}
	doc.SetFont("Arial", "", 11)
	doc.MultiCell(pageWidth, 6, tr(req), "", "L", false)
	doc.Ln(4)

	section(doc, tr, "Payment Terms")
	row(doc, tr, "Method:", Label(d.PaymentMethod))
	row(doc, tr, "Duration:", Label(d.PaymentDuration))
	row(doc, tr, "Amount:", Money(d.QuoteTotal))
	doc.Ln(12)

	signatureBlocks(doc, tr, agencyName, client)
	return output(doc)
}

func signatureBlocks(doc *gofpdf.Fpdf, tr func(string) string, left, right string) {
	y := doc.GetY()
	if _, pageH := doc.GetPageSize(); y+32 > pageH-25 {
		doc.AddPage()
		y = doc.GetY()
	}
	doc.SetFont("Arial", "", 10)
	for i, party := range []string{left, right} {
		x := 15.0 + float64(i)*95
		doc.Rect(x, y, 85, 32, "D")
		doc.SetXY(x+3, y+3)
		doc.Cell(79, 6, tr("Signed for "+party))
		doc.SetXY(x+3, y+16)
		doc.Cell(79, 6, tr("Signature: ____________________"))
		doc.SetXY(x+3, y+24)
		doc.Cell(79, 6, tr("Date: ____________"))
	}
}
