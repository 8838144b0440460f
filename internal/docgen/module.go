package docgen

import (
	"fmt"
	"strings"
)

// resolveModule fills the info block from the application's root package and
// synthesizes the canonical server and external-docs URLs.
func (g *Generator) resolveModule() {
	g.log.Debug("resolving module info", "module", g.app.Name)
	info := g.doc.Info
	info["title"] = capitalise(g.app.Name)

	version := g.app.Version
	if version == "" {
		g.fail("Version for module is missing", "module", g.app.Name)
		return
	}
	if !isThreePartVersion(version) {
		g.fail("Version for module does not appear to follow SemVer", "module", g.app.Name, "version", version)
		return
	}
	info["version"] = version
	info["description"] = strings.TrimSpace(g.ensureDoc(g.app.Name, g.app.Doc))

	g.doc.Servers = []map[string]any{
		{"url": fmt.Sprintf("https://%s.api.cloudcix.com/", g.app.Name)},
	}
	g.doc.ExternalDocs = map[string]any{
		"description": "View Docs in JSON format",
		"url":         fmt.Sprintf("https://%s.api.cloudcix.com/documentation/", g.app.Name),
	}
}

// isThreePartVersion reports whether v has exactly three dot-separated
// numeric components.
func isThreePartVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
