package hosting

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// File names used inside deployable archives.
const (
	indexFile  = "index.html"
	styleFile  = "style.css"
	scriptFile = "script.js"
	configFile = "netlify.toml"

	// functionsDir is where serverless function sources live inside the
	// archive; it matches the directory declared in the provider config file.
	functionsDir = "netlify/functions"
)

// providerConfig declares the backend functions directory to the provider.
const providerConfig = "[build]\n  functions = \"" + functionsDir + "\"\n"

// Bundle is an ephemeral set of site sources assembled into one deployable
// archive. CSS and JS are optional; Functions maps logical function names to
// source code and is only meaningful for full-stack deploys.
type Bundle struct {
	HTML      string
	CSS       string
	JS        string
	Functions map[string]string

	// FullStack adds the provider config file and the functions directory
	// even when Functions is empty.
	FullStack bool
}

// Archive builds the zip archive for the bundle.
//
// The HTML is patched to reference style.css and script.js when they are
// supplied but not already linked: the stylesheet link is injected before
// </head> (or prepended when no </head> exists), the script tag before
// </body> (or appended). Output is deterministic for identical inputs,
// with fixed file order and zeroed timestamps, so repeat deploys of the
// same sources produce byte-identical archives.
func (b *Bundle) Archive() ([]byte, error) {
	entries := map[string]string{
		indexFile: b.injectedHTML(),
	}
	if b.CSS != "" {
		entries[styleFile] = b.CSS
	}
	if b.JS != "" {
		entries[scriptFile] = b.JS
	}
	if b.FullStack {
		entries[configFile] = providerConfig
		for name, code := range b.Functions {
			entries[functionsDir+"/"+functionFileName(name)] = code
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		// CreateHeader with the zero time keeps archives reproducible;
		// zw.Create would stamp the current time into each entry.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	return buf.Bytes(), nil
}

// injectedHTML returns the HTML with asset links added for any supplied
// assets the document does not already reference.
func (b *Bundle) injectedHTML() string {
	html := b.HTML

	if b.CSS != "" && !strings.Contains(html, styleFile) {
		link := `<link rel="stylesheet" href="style.css">`
		if strings.Contains(html, "</head>") {
			html = strings.Replace(html, "</head>", "    "+link+"\n</head>", 1)
		} else {
			html = link + "\n" + html
		}
	}

	if b.JS != "" && !strings.Contains(html, scriptFile) {
		script := `<script src="script.js"></script>`
		if strings.Contains(html, "</body>") {
			html = strings.Replace(html, "</body>", "    "+script+"\n</body>", 1)
		} else {
			html = html + "\n" + script
		}
	}

	return html
}

// functionFileName appends the .js extension unless already present.
func functionFileName(name string) string {
	if strings.HasSuffix(name, ".js") {
		return name
	}
	return name + ".js"
}

// FunctionEndpoint builds the public invocation URL for a named function.
// The .js extension is not part of the route and is stripped.
func FunctionEndpoint(siteURL, name string) string {
	return siteURL + "/.netlify/functions/" + strings.TrimSuffix(name, ".js")
}
