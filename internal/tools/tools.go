// Package tools provides the catalog of callable tools exposed to the model:
// the site deployment lifecycle (static, full-stack, rename, delete,
// rollback) and the stateless utilities (calculator, weather, web search,
// PDF and invoice generation, screenshot, portfolio).
//
// Tool-boundary contract: a tool handler never returns a Go error for an
// external-call failure. Failures are represented as an "error" field in the
// output so the model can read them and react; only input decoding problems
// surface as handler errors.
package tools

import (
	"fmt"
	"net/http"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/dropdawn/dropdawn/internal/log"
	"github.com/dropdawn/dropdawn/internal/site"
)

// toolNames lists every registered tool. Single source of truth: the
// registration calls in Register and the schema catalog both derive from it.
var toolNames = []string{
	"calculate",
	"weather",
	"webSearch",
	"pdfGenerator",
	"invoiceGenerator",
	"screenshot",
	"portfolio",
	"staticSiteGenerator",
	"fullStackAppGenerator",
	"updateSiteDomain",
	"deleteSite",
	"rollbackSite",
}

// Names returns all registered tool names.
func Names() []string {
	return toolNames
}

// KitConfig holds the dependencies for the tool kit.
type KitConfig struct {
	// Sites executes the deployment lifecycle operations. Required.
	Sites *site.Operations

	// SearchAPIKey authenticates the web-search provider. Empty means the
	// webSearch tool reports a configuration error at call time.
	SearchAPIKey string

	// Logger for tool diagnostics. Nil falls back to a no-op logger.
	Logger log.Logger
}

// Kit bundles all tool handlers and their shared dependencies.
// Kit is stateless after construction and safe for concurrent use.
type Kit struct {
	sites        *site.Operations
	searchAPIKey string
	logger       log.Logger

	httpClient    *http.Client
	weatherBase   string
	searchBase    string
	snapshotBase  string
	portfolioBase string
}

// Option configures optional Kit behavior. Tests use the base-URL options to
// point external calls at local servers.
type Option func(*Kit)

// WithHTTPClient overrides the HTTP client used by the utility tools.
func WithHTTPClient(c *http.Client) Option {
	return func(k *Kit) { k.httpClient = c }
}

// WithWeatherBaseURL overrides the weather service endpoint.
func WithWeatherBaseURL(u string) Option {
	return func(k *Kit) { k.weatherBase = u }
}

// WithSearchBaseURL overrides the web-search endpoint.
func WithSearchBaseURL(u string) Option {
	return func(k *Kit) { k.searchBase = u }
}

// WithScreenshotBaseURL overrides the screenshot service endpoint.
func WithScreenshotBaseURL(u string) Option {
	return func(k *Kit) { k.snapshotBase = u }
}

// NewKit creates a tool kit with all required dependencies.
func NewKit(cfg KitConfig, opts ...Option) (*Kit, error) {
	if cfg.Sites == nil {
		return nil, fmt.Errorf("KitConfig.Sites is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	k := &Kit{
		sites:         cfg.Sites,
		searchAPIKey:  cfg.SearchAPIKey,
		logger:        logger,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		weatherBase:   "https://wttr.in",
		searchBase:    "https://api.tavily.com",
		snapshotBase:  "https://www.stagee.art",
		portfolioBase: "https://www.foliox.site",
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Register registers every tool with Genkit. Each handler is wrapped with
// lifecycle event emission so streaming clients see tool-call and tool-result
// events as they happen.
func (k *Kit) Register(g *genkit.Genkit) error {
	if g == nil {
		return fmt.Errorf("genkit instance is required")
	}

	genkit.DefineTool(g, "calculate",
		"A calculator tool that can perform basic arithmetic operations (add, subtract, multiply, divide). "+
			"Supports parentheses and decimal numbers.",
		WithEvents("calculate", k.Calculate))

	genkit.DefineTool(g, "weather",
		"Get the current weather for a specific location.",
		WithEvents("weather", k.Weather))

	genkit.DefineTool(g, "webSearch",
		"Search the web for information.",
		WithEvents("webSearch", k.WebSearch))

	genkit.DefineTool(g, "pdfGenerator",
		"Generate a professional PDF document from text content. "+
			"Use this to create documents, reports, or simple letters.",
		WithEvents("pdfGenerator", k.GeneratePDF))

	genkit.DefineTool(g, "invoiceGenerator",
		"Generate a professional invoice PDF. Use this tool when the user wants to create an invoice. "+
			"Be smart about extracting parameters even if the user provides vague or misspelled information.",
		WithEvents("invoiceGenerator", k.GenerateInvoice))

	genkit.DefineTool(g, "screenshot",
		"Take a screenshot of a given URL.",
		WithEvents("screenshot", k.Screenshot))

	genkit.DefineTool(g, "portfolio",
		"Generate a portfolio URL from a GitHub username.",
		WithEvents("portfolio", k.Portfolio))

	genkit.DefineTool(g, "staticSiteGenerator",
		"Generate and deploy a STATIC landing page or site (HTML/CSS/JS). "+
			"Use fullStackAppGenerator for apps with backend logic.",
		WithEvents("staticSiteGenerator", k.DeployStatic))

	genkit.DefineTool(g, "fullStackAppGenerator",
		"Generate and deploy a Full Stack App (frontend HTML/JS + backend serverless functions). "+
			"Use this for apps requiring server-side logic (APIs, secrets, databases).",
		WithEvents("fullStackAppGenerator", k.DeployFullStack))

	genkit.DefineTool(g, "updateSiteDomain",
		"Update the subdomain (name) of a deployed site. "+
			"Use this to change the URL prefix (e.g., from \"fluffy-unicorn\" to \"my-brand\").",
		WithEvents("updateSiteDomain", k.UpdateSiteDomain))

	genkit.DefineTool(g, "deleteSite",
		"Delete a deployed site using its site ID. WARNING: this action is irreversible.",
		WithEvents("deleteSite", k.DeleteSite))

	genkit.DefineTool(g, "rollbackSite",
		"Rollback a deployed site to the previous successful deploy.",
		WithEvents("rollbackSite", k.RollbackSite))

	k.logger.Info("registered tools", "count", len(toolNames))
	return nil
}

// All returns references to every registered tool for generate calls.
func (k *Kit) All(g *genkit.Genkit) []ai.ToolRef {
	refs := make([]ai.ToolRef, 0, len(toolNames))
	for _, name := range toolNames {
		if tool := genkit.LookupTool(g, name); tool != nil {
			refs = append(refs, tool)
		}
	}
	return refs
}
