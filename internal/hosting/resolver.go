package hosting

import (
	"context"
	"regexp"
	"strings"
)

// uuidPattern matches the RFC 4122 textual form, versions 1 through 5.
// An identifier of this shape is already the provider's canonical site ID.
var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// platformSuffix is the hosted-subdomain suffix stripped during normalization,
// so "my-site.netlify.app" matches a site named "my-site".
const platformSuffix = ".netlify.app"

// ResolveSiteID maps a loosely specified site reference (a raw ID, a site
// name, or a pasted URL) to the provider's canonical site ID.
//
// Identifiers already in UUID form are returned unchanged without any network
// call. Anything else is matched against the full site listing: by ID, name,
// normalized name (scheme, trailing slash, and platform suffix stripped),
// site URL, secure URL, or custom domain; a pasted link containing a site's
// secure URL also matches. The first match wins.
//
// Resolution is read-only. A listing failure or a miss both return ok=false;
// the caller decides how to proceed with the unresolved identifier.
func (c *Client) ResolveSiteID(ctx context.Context, identifier string) (siteID string, ok bool) {
	if uuidPattern.MatchString(strings.ToLower(identifier)) {
		return identifier, true
	}

	sites, err := c.ListSites(ctx)
	if err != nil {
		c.logger.Warn("listing sites for resolution", "identifier", identifier, "error", err)
		return "", false
	}

	cleaned := normalizeIdentifier(identifier)
	for _, site := range sites {
		switch {
		case site.ID == identifier,
			site.Name == identifier,
			site.Name == cleaned,
			site.URL == identifier,
			site.SSLURL == identifier,
			site.CustomDomain != "" && site.CustomDomain == identifier,
			site.SSLURL != "" && strings.Contains(identifier, site.SSLURL):
			c.logger.Debug("resolved site identifier", "identifier", identifier, "site_id", site.ID)
			return site.ID, true
		}
	}

	return "", false
}

// normalizeIdentifier strips a leading scheme, a trailing slash, and the
// platform suffix: "https://my-site.netlify.app/" becomes "my-site".
func normalizeIdentifier(identifier string) string {
	s := identifier
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, platformSuffix)
	return s
}
