// Package site implements the site deployment lifecycle: create and update of
// static sites and full-stack apps, subdomain rename, deletion, and rollback.
//
// Every operation returns its outcome as data. Provider failures, resolution
// misses, and missing credentials all become a populated Error field on the
// result, never a Go error, so the model sees the failure text and can react
// in natural language.
package site

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dropdawn/dropdawn/internal/hosting"
	"github.com/dropdawn/dropdawn/internal/log"
)

// missingTokenError is returned when the hosting access token is absent.
// The operation is not attempted; no HTTP call is made.
const missingTokenError = "NETLIFY_ACCESS_TOKEN is missing from environment variables"

// DeployRequest carries the sources for a static or full-stack deployment.
// SiteID may be a canonical ID, a site name, or a pasted URL; it is resolved
// before use. Empty SiteID means "create a new site".
type DeployRequest struct {
	HTML        string            `json:"html"`
	CSS         string            `json:"css,omitempty"`
	JS          string            `json:"js,omitempty"`
	Functions   map[string]string `json:"functions,omitempty"`
	ProjectName string            `json:"projectName,omitempty"`
	SiteID      string            `json:"siteId,omitempty"`
}

// DeployResult reports a completed (or failed) deployment.
type DeployResult struct {
	Message      string   `json:"message,omitempty"`
	SiteURL      string   `json:"siteUrl,omitempty"`
	SiteName     string   `json:"siteName,omitempty"`
	AdminURL     string   `json:"adminUrl,omitempty"`
	SiteID       string   `json:"siteId,omitempty"`
	FunctionURLs []string `json:"functionUrls,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// RenameResult reports a subdomain rename.
type RenameResult struct {
	Message  string `json:"message,omitempty"`
	SiteURL  string `json:"siteUrl,omitempty"`
	AdminURL string `json:"adminUrl,omitempty"`
	NewName  string `json:"newName,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DeleteResult reports a site deletion.
type DeleteResult struct {
	Message string `json:"message,omitempty"`
	SiteID  string `json:"siteId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RollbackResult reports a rollback to the previous ready deploy.
type RollbackResult struct {
	Message  string `json:"message,omitempty"`
	DeployID string `json:"deployId,omitempty"`
	Context  string `json:"context,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Operations executes site lifecycle operations against the hosting provider.
// Operations is stateless and safe for concurrent use; the provider
// serializes writes per site, so conflicting concurrent deploys surface as
// ordinary deploy errors.
type Operations struct {
	token  string
	client *hosting.Client
	poller *hosting.Poller
	logger log.Logger
}

// New creates Operations bound to an access token. An empty token is
// permitted at construction; each operation reports it as a configuration
// error at call time.
func New(token string, client *hosting.Client, poller *hosting.Poller, logger log.Logger) *Operations {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Operations{token: token, client: client, poller: poller, logger: logger}
}

// DeployStatic creates or updates a static site from HTML/CSS/JS sources.
// With a SiteID the deploy targets the existing site and the result reports
// the site's stable primary URL, re-fetched after the deploy so a
// deploy-preview URL is never surfaced. Without one, a new site is created.
func (o *Operations) DeployStatic(ctx context.Context, req DeployRequest) DeployResult {
	return o.deploy(ctx, req, false)
}

// DeployFullStack is DeployStatic plus serverless function bundling: the
// archive gains the provider config file and one source file per function,
// and the result lists each function's public invocation URL.
func (o *Operations) DeployFullStack(ctx context.Context, req DeployRequest) DeployResult {
	return o.deploy(ctx, req, true)
}

func (o *Operations) deploy(ctx context.Context, req DeployRequest, fullStack bool) DeployResult {
	if o.token == "" {
		return DeployResult{Error: "Deploy failed: " + missingTokenError}
	}

	// Resolve a loosely specified site reference to the canonical ID. On a
	// miss we keep the original identifier and let the provider's 404 drive
	// the error path below.
	target := req.SiteID
	if target != "" {
		if resolved, ok := o.client.ResolveSiteID(ctx, target); ok {
			target = resolved
		}
	}

	bundle := hosting.Bundle{
		HTML:      req.HTML,
		CSS:       req.CSS,
		JS:        req.JS,
		Functions: req.Functions,
		FullStack: fullStack,
	}
	archive, err := bundle.Archive()
	if err != nil {
		return DeployResult{Error: fmt.Sprintf("Failed to package site: %v", err)}
	}

	var (
		siteID   string
		deployID string
		siteURL  string
		siteName string
		adminURL string
	)

	if target == "" {
		created, err := o.client.CreateSite(ctx, archive)
		if err != nil {
			return DeployResult{Error: fmt.Sprintf("Deploy failed: %v", err)}
		}
		siteID = created.ID
		deployID = created.DeployID
		siteURL = created.PrimaryURL()
		siteName = created.Name
		adminURL = created.AdminURL
	} else {
		deployed, err := o.client.CreateDeploy(ctx, target, archive)
		if errors.Is(err, hosting.ErrSiteNotFound) {
			return DeployResult{Error: fmt.Sprintf(
				"Could not find a site with the ID or URL provided (%q). Please verify the site ID or create a new site.",
				req.SiteID)}
		}
		if err != nil {
			return DeployResult{Error: fmt.Sprintf("Deploy failed: %v", err)}
		}
		siteID = target
		deployID = deployed.ID
		siteURL = firstNonEmpty(deployed.SSLURL, deployed.URL)
		adminURL = deployed.AdminURL
	}

	if deployID != "" {
		if err := o.poller.AwaitReady(ctx, deployID); err != nil {
			return DeployResult{Error: fmt.Sprintf("Deploy failed: %v", err), SiteID: siteID}
		}
	}

	if target != "" {
		// The deploy object carries a preview URL; re-fetch the site so the
		// result reports the stable primary URL.
		if site, err := o.client.GetSite(ctx, siteID); err == nil {
			siteURL = site.PrimaryURL()
			siteName = site.Name
			adminURL = site.AdminURL
		} else {
			o.logger.Warn("fetching site after deploy", "site_id", siteID, "error", err)
		}
	}

	result := DeployResult{
		SiteURL:  siteURL,
		SiteName: siteName,
		AdminURL: adminURL,
		SiteID:   siteID,
	}

	switch {
	case fullStack:
		result.Message = "Full stack app deployed successfully!"
		names := make([]string, 0, len(req.Functions))
		for name := range req.Functions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			result.FunctionURLs = append(result.FunctionURLs, hosting.FunctionEndpoint(siteURL, name))
		}
	case target != "":
		result.Message = "Static site updated successfully!"
	default:
		result.Message = "Static site deployed successfully!"
	}

	return result
}

// Rename changes the subdomain portion of the site URL. The site ID is
// unchanged; the primary URL and admin URL reported reflect the new name.
func (o *Operations) Rename(ctx context.Context, siteID, newDomain string) RenameResult {
	if o.token == "" {
		return RenameResult{Error: missingTokenError}
	}

	site, err := o.client.RenameSite(ctx, siteID, newDomain)
	if err != nil {
		return RenameResult{Error: fmt.Sprintf("Failed to update site domain: %v", err)}
	}

	return RenameResult{
		Message:  "Site domain updated successfully.",
		SiteURL:  site.PrimaryURL(),
		AdminURL: site.AdminURL,
		NewName:  site.Name,
	}
}

// Delete permanently removes a site. Irreversible.
func (o *Operations) Delete(ctx context.Context, siteID string) DeleteResult {
	if o.token == "" {
		return DeleteResult{Error: "Deletion failed: " + missingTokenError}
	}

	if err := o.client.DeleteSite(ctx, siteID); err != nil {
		return DeleteResult{Error: fmt.Sprintf("Failed to delete site: %v", err)}
	}

	return DeleteResult{
		Message: "Site deleted successfully!",
		SiteID:  siteID,
	}
}

// Rollback restores the site's second-most-recent ready deploy. At least two
// ready deploys must exist; with fewer, no restore call is issued.
//
// The provider lists deploys reverse-chronologically with the current deploy
// at the head; the ordering is the provider's documented behavior and is not
// verified here.
func (o *Operations) Rollback(ctx context.Context, siteID string) RollbackResult {
	if o.token == "" {
		return RollbackResult{Error: missingTokenError}
	}

	deploys, err := o.client.ListReadyDeploys(ctx, siteID)
	if err != nil {
		return RollbackResult{Error: fmt.Sprintf("Rollback failed: %v", err)}
	}

	if len(deploys) < 2 {
		return RollbackResult{Error: "Not enough deploy history to rollback (need at least 2 ready deploys)."}
	}

	previous := deploys[1]
	if err := o.client.RestoreDeploy(ctx, siteID, previous.ID); err != nil {
		return RollbackResult{Error: fmt.Sprintf("Rollback failed: %v", err)}
	}

	return RollbackResult{
		Message:  fmt.Sprintf("Successfully triggered rollback to deploy from %s", previous.CreatedAt.Format("2006-01-02 15:04:05 MST")),
		DeployID: previous.ID,
		Context:  previous.Context,
		Branch:   previous.Branch,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
