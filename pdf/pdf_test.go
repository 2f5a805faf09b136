package pdf

import (
	"bytes"
	"testing"
	"time"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{9100, "R9,100.00"},
		{0, "R0.00"},
		{1234567.891, "R1,234,567.89"},
		{-45.5, "-R45.50"},
	}
	for _, tt := range tests {
		if got := Money(tt.in); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("bank_transfer"); got != "Bank Transfer" {
		t.Errorf("got %q", got)
	}
	if got := Label(""); got != "-" {
		t.Errorf("got %q", got)
	}
}

func TestQuoteRender(t *testing.T) {
	data := QuoteData{
		QuoteID:              12,
		Date:                 time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		ClientName:           "Sipho Dlamini",
		CompanyName:          "Dlamini Café",
		ProjectType:          "E-commerce Platform",
		Complexity:           "High",
		Urgency:              "Extreme Rush",
		EstimatedHours:       10,
		HourlyRate:           300,
		ComplexityMultiplier: 2,
		UrgencyMultiplier:    1.4,
		HostingCost:          500,
		MaintenanceCost:      200,
		Total:                9100,
		Features:             []Feature{{"CDN", "Your website will be served with a CDN."}},
	}
	out, err := Renderer{}.Quote(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestAgreementRender(t *testing.T) {
	out, err := Renderer{}.Agreement(AgreementData{
		ProjectID:       4,
		Date:            time.Now(),
		ClientName:      "Lerato",
		ProjectType:     "Website Redesign",
		QuoteID:         9,
		QuoteTotal:      4500,
		Requirements:    "Five pages, contact form,\nblog.",
		PaymentMethod:   "credit_card",
		PaymentDuration: "milestones",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}
