// Package docgen assembles an OpenAPI document from the typed declaration
// registries of a target application.
//
// Generation is a single synchronous top-down walk: module info first, then
// one tag per view file, then the route table in order, descending into each
// route's handler and from there into its controllers, permissions and
// serializer. Every inconsistency between independently written declarations
// is reported and the surrounding unit is skipped; the walk itself always
// continues so one run surfaces every problem.
package docgen

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/docforge/docforge/internal/registry"
)

// ErrReported is returned by Run when at least one reportable error was
// logged. The document is still returned for inspection, but callers must
// not persist it and must exit non-zero.
var ErrReported = errors.New("docgen: errors found when parsing documentation")

// Generator runs one generation pass over a loaded application.
type Generator struct {
	app *registry.Application
	doc *Document
	log *slog.Logger

	// failed latches once any reportable error is logged.
	failed bool
	// resolving tracks serializers currently being reconciled, so mutually
	// referencing field maps terminate.
	resolving map[string]bool
}

// New prepares a generator for the given application. A nil logger discards
// debug output but reportable errors still fail the run.
func New(app *registry.Application, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{
		app:       app,
		doc:       newDocument(),
		log:       logger,
		resolving: map[string]bool{},
	}
}

// Run performs the full traversal and returns the assembled document. When
// any reportable error occurred the returned error is ErrReported.
func (g *Generator) Run() (*Document, error) {
	g.resolveModule()
	g.collectTags()
	g.walkRoutes()
	if g.failed {
		return g.doc, ErrReported
	}
	return g.doc, nil
}

// fail logs a reportable error with its locating context and latches the
// run-wide error flag. Traversal of sibling units continues.
func (g *Generator) fail(msg string, attrs ...any) {
	g.log.Error(msg, attrs...)
	g.failed = true
}

// ensureDoc returns the normalized metadata block for a declaration,
// reporting an error when the declaration carries none.
func (g *Generator) ensureDoc(owner, text string) string {
	if strings.TrimSpace(text) == "" {
		g.fail("expected a documentation block but found none", "declaration", owner)
		return ""
	}
	return docTrim(text)
}

// methodContext carries the traversal state for one operation. It is passed
// explicitly so recursive stages never share mutable generator fields.
type methodContext struct {
	url     string
	tag     string
	entity  string
	handler string
	verb    string
	isList  bool
	op      Operation
}
