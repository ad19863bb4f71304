package tools

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Descriptor describes one registered tool for the catalog endpoint.
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// descriptions mirrors the registration descriptions. Kept in sync with
// Register by TestNamesMatchesCatalog.
var descriptions = map[string]string{
	"calculate":             "A calculator tool that can perform basic arithmetic operations (add, subtract, multiply, divide). Supports parentheses and decimal numbers.",
	"weather":               "Get the current weather for a specific location.",
	"webSearch":             "Search the web for information.",
	"pdfGenerator":          "Generate a professional PDF document from text content. Use this to create documents, reports, or simple letters.",
	"invoiceGenerator":      "Generate a professional invoice PDF. Use this tool when the user wants to create an invoice. Be smart about extracting parameters even if the user provides vague or misspelled information.",
	"screenshot":            "Take a screenshot of a given URL.",
	"portfolio":             "Generate a portfolio URL from a GitHub username.",
	"staticSiteGenerator":   "Generate and deploy a STATIC landing page or site (HTML/CSS/JS). Use fullStackAppGenerator for apps with backend logic.",
	"fullStackAppGenerator": "Generate and deploy a Full Stack App (frontend HTML/JS + backend serverless functions). Use this for apps requiring server-side logic (APIs, secrets, databases).",
	"updateSiteDomain":      "Update the subdomain (name) of a deployed site. Use this to change the URL prefix (e.g., from \"fluffy-unicorn\" to \"my-brand\").",
	"deleteSite":            "Delete a deployed site using its site ID. WARNING: this action is irreversible.",
	"rollbackSite":          "Rollback a deployed site to the previous successful deploy.",
}

// Catalog returns a descriptor for every registered tool, with the input
// schema inferred from the handler's parameter struct.
func Catalog() ([]Descriptor, error) {
	schemas := map[string]func() (*jsonschema.Schema, error){
		"calculate":             schemaFor[CalculateInput],
		"weather":               schemaFor[WeatherInput],
		"webSearch":             schemaFor[SearchInput],
		"pdfGenerator":          schemaFor[PDFInput],
		"invoiceGenerator":      schemaFor[InvoiceInput],
		"screenshot":            schemaFor[ScreenshotInput],
		"portfolio":             schemaFor[PortfolioInput],
		"staticSiteGenerator":   schemaFor[StaticSiteInput],
		"fullStackAppGenerator": schemaFor[FullStackInput],
		"updateSiteDomain":      schemaFor[UpdateDomainInput],
		"deleteSite":            schemaFor[DeleteSiteInput],
		"rollbackSite":          schemaFor[RollbackSiteInput],
	}

	catalog := make([]Descriptor, 0, len(toolNames))
	for _, name := range toolNames {
		build, ok := schemas[name]
		if !ok {
			return nil, fmt.Errorf("no input schema registered for tool %q", name)
		}
		schema, err := build()
		if err != nil {
			return nil, fmt.Errorf("inferring schema for tool %q: %w", name, err)
		}
		catalog = append(catalog, Descriptor{
			Name:        name,
			Description: descriptions[name],
			InputSchema: schema,
		})
	}
	return catalog, nil
}

func schemaFor[T any]() (*jsonschema.Schema, error) {
	return jsonschema.For[T](nil)
}
