package docgen

import (
	"regexp"
	"strings"

	"github.com/docforge/docforge/internal/registry"
)

var (
	frameworkParamPattern = regexp.MustCompile(`<[a-z]+:([a-z_]+)>`)
	docParamPattern       = regexp.MustCompile(`\{([a-z_]+)\}`)
)

// collectTags adds one tag per view file, in lexicographic file order, before
// any route is walked.
func (g *Generator) collectTags() {
	for _, name := range g.app.ViewNames {
		vf := g.app.Views[name]
		g.log.Debug("collecting tag", "view", name)
		description := strings.TrimSpace(g.ensureDoc("views/"+name, vf.Doc))
		g.doc.Tags = append(g.doc.Tags, Tag{Name: displayName(name), Description: description})
	}
}

// walkRoutes processes the route table in declaration order.
func (g *Generator) walkRoutes() {
	for _, route := range g.app.Routes {
		g.walkRoute(route)
	}
}

func (g *Generator) walkRoute(route registry.Route) {
	url := rewriteURL(route.Pattern)
	g.log.Debug("walking route", "url", url, "view", route.View)
	g.doc.Paths[url] = map[string]Operation{}

	viewName, handlerName, ok := splitViewRef(route.View)
	if !ok {
		g.fail("route view reference is malformed", "url", url, "view", route.View)
		return
	}
	vf, ok := g.app.Views[viewName]
	if !ok {
		g.fail("route references an unknown view file", "url", url, "view", route.View)
		return
	}
	handler, ok := g.app.Handlers[handlerName]
	if !ok {
		g.fail("route references an unknown handler", "url", url, "view", route.View)
		return
	}
	g.analyzeHandler(url, displayName(vf.Name), handler)
}

// splitViewRef splits a "<view file>.<handler>" reference.
func splitViewRef(ref string) (view, handler string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

// rewriteURL converts a framework path pattern into the document's
// `{name}` placeholder syntax, guaranteeing a leading slash. An empty
// pattern normalizes to the root path.
func rewriteURL(pattern string) string {
	if pattern == "" {
		return "/"
	}
	if pattern[0] != '/' {
		pattern = "/" + pattern
	}
	return frameworkParamPattern.ReplaceAllString(pattern, "{$1}")
}
