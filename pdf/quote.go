package pdf

import (
	"fmt"
	"strconv"
)

// Quote renders a development quote.
func (Renderer) Quote(d QuoteData) ([]byte, error) {
	doc, tr := newDoc(fmt.Sprintf("Quote %d", d.QuoteID), d.Date)
	footer(doc, tr, quoteFooter)
	doc.AddPage()

	header(doc, tr, "Development Quote", fmt.Sprintf("Quote #%d  |  Generated on %s", d.QuoteID, d.Date.Format(dateLayout)))

	section(doc, tr, "Client Information")
	row(doc, tr, "Client:", d.ClientName)
	if d.CompanyName != "" {
		row(doc, tr, "Company:", d.CompanyName)
	}
	if d.ClientEmail != "" {
		row(doc, tr, "Email:", d.ClientEmail)
	}
	doc.Ln(4)

	section(doc, tr, "Project Details")
	row(doc, tr, "Project Type:", d.ProjectType)
	row(doc, tr, "Complexity:", d.Complexity)
	row(doc, tr, "Urgency:", d.Urgency)
	doc.Ln(4)

	section(doc, tr, "Quote Calculation")
	row(doc, tr, "Estimated Hours:", strconv.FormatFloat(d.EstimatedHours, 'f', -1, 64))
	row(doc, tr, "Hourly Rate:", Money(d.HourlyRate))
	row(doc, tr, "Complexity Multiplier:", multiplier(d.ComplexityMultiplier))
	row(doc, tr, "Urgency Multiplier:", multiplier(d.UrgencyMultiplier))
	if d.HostingCost > 0 {
		row(doc, tr, "Hosting:", Money(d.HostingCost))
	}
	if d.MaintenanceCost > 0 {
		row(doc, tr, "Maintenance:", Money(d.MaintenanceCost))
	}
	doc.Ln(4)

	if len(d.Features) > 0 {
		section(doc, tr, "Included Features")
		for _, f := range d.Features {
			doc.SetFont("Arial", "B", 10)
			doc.CellFormat(labelWidth, 6, tr(f.Name), "", 0, "L", false, 0, "")
			doc.SetFont("Arial", "", 10)
			doc.MultiCell(pageWidth-labelWidth, 6, tr(f.Description), "", "L", false)
		}
		doc.Ln(4)
	}

	doc.SetFillColor(230, 230, 230)
	doc.SetFont("Arial", "B", 14)
	doc.CellFormat(labelWidth, 12, tr("Total Amount:"), "T", 0, "L", true, 0, "")
	doc.CellFormat(pageWidth-labelWidth, 12, tr(Money(d.Total)), "T", 1, "R", true, 0, "")

	return output(doc)
}
