package tools

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/firebase/genkit/go/ai"
)

// PDFInput is the pdfGenerator tool's parameters.
type PDFInput struct {
	Title   string `json:"title" jsonschema:"description=The document title"`
	Content string `json:"content" jsonschema:"description=The body text of the document. Paragraphs are separated by blank lines"`
}

// PDFOutput is shared by the document tools. Document carries the rendered
// PDF as a data URI.
type PDFOutput struct {
	FileName string `json:"fileName,omitempty"`
	Document string `json:"document,omitempty"`
	Error    string `json:"error,omitempty"`
}

// InvoiceItem is a single invoice line.
type InvoiceItem struct {
	Description string  `json:"description" jsonschema:"description=What the line item is for"`
	Quantity    float64 `json:"quantity" jsonschema:"description=Number of units"`
	UnitPrice   float64 `json:"unitPrice" jsonschema:"description=Price per unit"`
}

// InvoiceInput is the invoiceGenerator tool's parameters.
type InvoiceInput struct {
	InvoiceNumber string        `json:"invoiceNumber,omitempty" jsonschema:"description=Invoice number. Generated from the date when omitted"`
	Date          string        `json:"date,omitempty" jsonschema:"description=Invoice date (YYYY-MM-DD). Defaults to today"`
	From          string        `json:"from" jsonschema:"description=Name of the party issuing the invoice"`
	To            string        `json:"to" jsonschema:"description=Name of the party being billed"`
	Items         []InvoiceItem `json:"items" jsonschema:"description=The invoice line items"`
	Currency      string        `json:"currency,omitempty" jsonschema:"description=Currency symbol or code. Defaults to USD"`
	TaxRate       float64       `json:"taxRate,omitempty" jsonschema:"description=Tax rate as a percentage (e.g. 20 for 20%)"`
}

// GeneratePDF renders a simple titled text document as a PDF.
func (k *Kit) GeneratePDF(_ *ai.ToolContext, input PDFInput) (PDFOutput, error) {
	if input.Content == "" {
		return PDFOutput{Error: "Document content is required"}, nil
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	if input.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 10, input.Title, "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, input.Content, "", "L", false)

	doc, err := encodePDF(pdf)
	if err != nil {
		k.logger.Warn("pdf generation failed", "error", err)
		return PDFOutput{Error: "Failed to generate PDF"}, nil
	}

	name := "document.pdf"
	if input.Title != "" {
		name = input.Title + ".pdf"
	}
	return PDFOutput{FileName: name, Document: doc}, nil
}

// GenerateInvoice renders an itemized invoice as a PDF.
func (k *Kit) GenerateInvoice(_ *ai.ToolContext, input InvoiceInput) (PDFOutput, error) {
	if input.From == "" || input.To == "" {
		return PDFOutput{Error: "Both a sender and a recipient are required"}, nil
	}
	if len(input.Items) == 0 {
		return PDFOutput{Error: "At least one invoice item is required"}, nil
	}

	date := input.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	number := input.InvoiceNumber
	if number == "" {
		number = "INV-" + time.Now().Format("20060102")
	}
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 12, "INVOICE")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, "Invoice number: "+number)
	pdf.Ln(5)
	pdf.Cell(0, 5, "Date: "+date)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(95, 5, "From")
	pdf.Cell(95, 5, "Bill to")
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(95, 5, input.From)
	pdf.Cell(95, 5, input.To)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(90, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(27, 8, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(28, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	var subtotal float64
	for _, item := range input.Items {
		amount := item.Quantity * item.UnitPrice
		subtotal += amount
		pdf.CellFormat(90, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, formatQuantity(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(27, 8, formatAmount(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 8, formatAmount(amount), "1", 1, "R", false, 0, "")
	}

	tax := subtotal * input.TaxRate / 100
	total := subtotal + tax

	pdf.Ln(2)
	pdf.CellFormat(142, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(28, 6, formatAmount(subtotal), "", 1, "R", false, 0, "")
	if input.TaxRate > 0 {
		pdf.CellFormat(142, 6, fmt.Sprintf("Tax (%.1f%%)", input.TaxRate), "", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, formatAmount(tax), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(142, 8, "Total ("+currency+")", "", 0, "R", false, 0, "")
	pdf.CellFormat(28, 8, formatAmount(total), "", 1, "R", false, 0, "")

	doc, err := encodePDF(pdf)
	if err != nil {
		k.logger.Warn("invoice generation failed", "error", err)
		return PDFOutput{Error: "Failed to generate invoice"}, nil
	}

	return PDFOutput{FileName: number + ".pdf", Document: doc}, nil
}

func encodePDF(pdf *fpdf.Fpdf) (string, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", err
	}
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatQuantity(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
