package services

import (
	"time"

	"github.com/CodingDyl/virtec-crm/pdf"
)

// Renderer produces the PDF documents attached to quotes and projects.
type Renderer interface {
	Quote(pdf.QuoteData) ([]byte, error)
	Agreement(pdf.AgreementData) ([]byte, error)
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default size, caps it and floors the offset at zero.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

var now = time.Now
