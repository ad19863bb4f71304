package tools

import (
	"github.com/firebase/genkit/go/ai"

	"github.com/dropdawn/dropdawn/internal/site"
)

// StaticSiteInput is the staticSiteGenerator tool's parameters.
type StaticSiteInput struct {
	HTML        string `json:"html" jsonschema:"description=The complete HTML content for index.html"`
	CSS         string `json:"css,omitempty" jsonschema:"description=The CSS content for style.css"`
	JS          string `json:"js,omitempty" jsonschema:"description=The JavaScript content for script.js"`
	ProjectName string `json:"projectName,omitempty" jsonschema:"description=A short descriptive name for the site"`
	SiteID      string `json:"siteId,omitempty" jsonschema:"description=Existing site ID or URL to update instead of creating a new site"`
}

// FullStackInput is the fullStackAppGenerator tool's parameters.
type FullStackInput struct {
	HTML        string            `json:"html" jsonschema:"description=The complete HTML content for index.html"`
	CSS         string            `json:"css,omitempty" jsonschema:"description=The CSS content for style.css"`
	JS          string            `json:"js,omitempty" jsonschema:"description=The frontend JavaScript content for script.js"`
	Functions   map[string]string `json:"functions" jsonschema:"description=Serverless function sources keyed by file name (e.g. \"api.js\")"`
	ProjectName string            `json:"projectName,omitempty" jsonschema:"description=A short descriptive name for the app"`
	SiteID      string            `json:"siteId,omitempty" jsonschema:"description=Existing site ID or URL to update instead of creating a new site"`
}

// UpdateDomainInput is the updateSiteDomain tool's parameters.
type UpdateDomainInput struct {
	SiteID    string `json:"siteId" jsonschema:"description=The site ID or current URL of the site to rename"`
	NewDomain string `json:"newDomain" jsonschema:"description=The new subdomain name (without .netlify.app)"`
}

// DeleteSiteInput is the deleteSite tool's parameters.
type DeleteSiteInput struct {
	SiteID string `json:"siteId" jsonschema:"description=The site ID or URL of the site to delete"`
}

// RollbackSiteInput is the rollbackSite tool's parameters.
type RollbackSiteInput struct {
	SiteID string `json:"siteId" jsonschema:"description=The site ID or URL of the site to roll back"`
}

// DeployStatic deploys a static site bundle.
func (k *Kit) DeployStatic(ctx *ai.ToolContext, input StaticSiteInput) (site.DeployResult, error) {
	return k.sites.DeployStatic(ctx.Context, site.DeployRequest{
		HTML:        input.HTML,
		CSS:         input.CSS,
		JS:          input.JS,
		ProjectName: input.ProjectName,
		SiteID:      input.SiteID,
	}), nil
}

// DeployFullStack deploys a site bundle with serverless functions.
func (k *Kit) DeployFullStack(ctx *ai.ToolContext, input FullStackInput) (site.DeployResult, error) {
	return k.sites.DeployFullStack(ctx.Context, site.DeployRequest{
		HTML:        input.HTML,
		CSS:         input.CSS,
		JS:          input.JS,
		Functions:   input.Functions,
		ProjectName: input.ProjectName,
		SiteID:      input.SiteID,
	}), nil
}

// UpdateSiteDomain renames a deployed site's subdomain.
func (k *Kit) UpdateSiteDomain(ctx *ai.ToolContext, input UpdateDomainInput) (site.RenameResult, error) {
	return k.sites.Rename(ctx.Context, input.SiteID, input.NewDomain), nil
}

// DeleteSite permanently deletes a deployed site.
func (k *Kit) DeleteSite(ctx *ai.ToolContext, input DeleteSiteInput) (site.DeleteResult, error) {
	return k.sites.Delete(ctx.Context, input.SiteID), nil
}

// RollbackSite restores a site's previous successful deploy.
func (k *Kit) RollbackSite(ctx *ai.ToolContext, input RollbackSiteInput) (site.RollbackResult, error) {
	return k.sites.Rollback(ctx.Context, input.SiteID), nil
}
