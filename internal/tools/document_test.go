package tools

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestGeneratePDF(t *testing.T) {
	k := newTestKit(t)

	out, err := k.GeneratePDF(testToolContext(t), PDFInput{
		Title:   "Quarterly Report",
		Content: "Revenue grew in all regions.\n\nCosts held steady.",
	})
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if out.Error != "" {
		t.Fatalf("GeneratePDF() unexpected error field %q", out.Error)
	}
	if out.FileName != "Quarterly Report.pdf" {
		t.Errorf("fileName = %q, want title-derived name", out.FileName)
	}
	assertPDFDataURI(t, out.Document)
}

func TestGeneratePDFRequiresContent(t *testing.T) {
	k := newTestKit(t)

	out, err := k.GeneratePDF(testToolContext(t), PDFInput{Title: "Empty"})
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if out.Error == "" {
		t.Error("expected error field for empty content")
	}
}

func TestGenerateInvoice(t *testing.T) {
	k := newTestKit(t)

	out, err := k.GenerateInvoice(testToolContext(t), InvoiceInput{
		InvoiceNumber: "INV-042",
		Date:          "2026-08-29",
		From:          "Acme Corp",
		To:            "Globex Inc",
		TaxRate:       20,
		Items: []InvoiceItem{
			{Description: "Design work", Quantity: 10, UnitPrice: 80},
			{Description: "Hosting", Quantity: 1, UnitPrice: 25.50},
		},
	})
	if err != nil {
		t.Fatalf("GenerateInvoice() error = %v", err)
	}
	if out.Error != "" {
		t.Fatalf("GenerateInvoice() unexpected error field %q", out.Error)
	}
	if out.FileName != "INV-042.pdf" {
		t.Errorf("fileName = %q, want INV-042.pdf", out.FileName)
	}
	assertPDFDataURI(t, out.Document)
}

func TestGenerateInvoiceValidation(t *testing.T) {
	tests := []struct {
		name  string
		input InvoiceInput
	}{
		{
			name:  "missing parties",
			input: InvoiceInput{Items: []InvoiceItem{{Description: "x", Quantity: 1, UnitPrice: 1}}},
		},
		{
			name:  "no items",
			input: InvoiceInput{From: "Acme", To: "Globex"},
		},
	}

	k := newTestKit(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := k.GenerateInvoice(testToolContext(t), tt.input)
			if err != nil {
				t.Fatalf("GenerateInvoice() error = %v", err)
			}
			if out.Error == "" {
				t.Error("expected error field")
			}
		})
	}
}

func assertPDFDataURI(t *testing.T, doc string) {
	t.Helper()

	const prefix = "data:application/pdf;base64,"
	if !strings.HasPrefix(doc, prefix) {
		t.Fatalf("document does not carry a PDF data URI prefix")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(doc, prefix))
	if err != nil {
		t.Fatalf("document payload is not valid base64: %v", err)
	}
	if !strings.HasPrefix(string(raw), "%PDF") {
		t.Errorf("decoded payload does not start with the PDF magic header")
	}
}
