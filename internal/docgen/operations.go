package docgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docforge/docforge/internal/registry"
)

// patchDescriptionSuffix is appended to the cloned PUT description when a
// handler declares a PATCH method.
const patchDescriptionSuffix = "\n\nThe difference between `PUT` and `PATCH` is that you do not have to send all of the " +
	"record's data in order to update it. Therefore, treat all of the Update schema as optional."

// analyzeHandler resolves the handler's output schema, then builds one
// operation per declared HTTP method in fixed verb order.
func (g *Generator) analyzeHandler(url, tag string, handler registry.Handler) {
	g.log.Debug("analyzing handler", "handler", handler.Name)
	entity := strings.ReplaceAll(strings.ReplaceAll(handler.Name, "Collection", ""), "Resource", "")
	isList := strings.Contains(handler.Name, "Collection")

	g.reconcileSerializer(entity)

	for _, verb := range registry.HTTPMethodNames {
		raw, ok := handler.Methods[verb]
		if !ok {
			continue
		}
		mc := &methodContext{
			url:     url,
			tag:     tag,
			entity:  entity,
			handler: handler.Name,
			verb:    verb,
			isList:  isList,
		}
		g.analyzeMethod(mc, raw)
	}
}

func (g *Generator) analyzeMethod(mc *methodContext, raw string) {
	g.log.Debug("analyzing method", "handler", mc.handler, "method", mc.verb)
	op := Operation{"tags": []string{mc.tag}}
	g.doc.Paths[mc.url][mc.verb] = op
	mc.op = op

	// PATCH never carries its own metadata; it derives from PUT.
	if mc.verb == "patch" {
		g.clonePutForPatch(mc)
		return
	}

	meta, err := decodeMetaMap(g.ensureDoc(mc.handler+"."+mc.verb, raw))
	if err != nil {
		g.fail("could not load metadata block", "entity", mc.entity, "method", mc.verb, "error", err)
		return
	}
	var missing []string
	for _, key := range []string{"summary", "description", "responses"} {
		if _, ok := meta[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		g.fail("necessary keys missing from metadata block",
			"entity", mc.entity, "method", mc.verb, "missing", "["+strings.Join(missing, ", ")+"]")
		return
	}
	for k, v := range meta {
		op[k] = v
	}

	pathParams := map[string]any{}
	if raw, ok := op["path_params"]; ok {
		delete(op, "path_params")
		if m, ok := raw.(map[string]any); ok {
			pathParams = m
		} else {
			g.fail("path_params must be a mapping", "entity", mc.entity, "method", mc.verb)
		}
	}
	g.parsePathParams(mc, pathParams)

	controllerName, _ := op["controller"].(string)
	delete(op, "controller")
	g.applyController(mc, controllerName)

	g.parsePermissions(mc)
	g.installDefaultResponses(mc)
}

// clonePutForPatch copies the already-built PUT operation verbatim and
// extends its description. The route table orders PATCH after PUT, so a
// missing PUT operation here is a declaration error.
func (g *Generator) clonePutForPatch(mc *methodContext) {
	pathItem := g.doc.Paths[mc.url]
	put, ok := pathItem["put"]
	if !ok {
		g.fail("no PUT data found to derive PATCH from", "url", mc.url)
		return
	}
	clone := copyValue(map[string]any(put)).(map[string]any)
	pathItem["patch"] = clone
	description, ok := clone["description"].(string)
	if !ok {
		g.fail("no PUT description found to extend for PATCH", "url", mc.url)
		return
	}
	clone["description"] = description + patchDescriptionSuffix
}

// parsePathParams reconciles the placeholders present in the rewritten path
// against the operation's declared path_params block. The match is strictly
// bidirectional: undeclared placeholders and unused declarations are both
// reportable errors.
func (g *Generator) parsePathParams(mc *methodContext, declared map[string]any) {
	g.log.Debug("parsing path parameters", "url", mc.url, "method", mc.verb)
	params, _ := mc.op["parameters"].([]any)
	if params == nil {
		params = []any{}
	}
	for _, match := range docParamPattern.FindAllStringSubmatch(mc.url, -1) {
		name := match[1]
		raw, ok := declared[name]
		if !ok {
			g.fail("path parameter was not declared", "param", name, "url", mc.url, "method", mc.verb)
			continue
		}
		delete(declared, name)
		details, ok := raw.(map[string]any)
		if !ok {
			g.fail("path parameter declaration must be a mapping", "param", name, "url", mc.url, "method", mc.verb)
			continue
		}
		paramType, ok := details["type"]
		if !ok {
			g.fail("path parameter has no type data", "param", name, "url", mc.url, "method", mc.verb)
			continue
		}
		delete(details, "type")
		param := map[string]any{
			"in":       "path",
			"required": true,
			"name":     name,
			"schema":   map[string]any{"type": paramType},
		}
		for k, v := range details {
			param[k] = v
		}
		params = append(params, param)
	}
	if len(declared) > 0 {
		extra := make([]string, 0, len(declared))
		for name := range declared {
			extra = append(extra, name)
		}
		sort.Strings(extra)
		g.fail("extra path parameters declared", "params", strings.Join(extra, ", "), "url", mc.url, "method", mc.verb)
	}
	mc.op["parameters"] = params
}

// parsePermissions appends a Permissions section from the entity's
// convention-named permission declaration. Absence of the declaration or of
// the mapped method is expected and not an error.
func (g *Generator) parsePermissions(mc *methodContext) {
	key := strings.ToLower(mc.entity)
	g.log.Debug("looking up permissions", "entity", key, "method", mc.verb)
	ps, ok := g.app.Permissions[key]
	if !ok {
		return
	}
	var permName string
	if mc.verb == "get" {
		permName = "read"
		if mc.isList {
			permName = "list"
		}
	} else {
		permName = permissionMethodNames[mc.verb]
	}
	raw, ok := ps.Methods[permName]
	if !ok {
		return
	}
	permDoc := g.ensureDoc(fmt.Sprintf("permissions.%s.%s", key, permName), raw)
	if strings.Contains(permDoc, " -") {
		g.fail("permission doc block contains an indented list; list markers must be flush with the first line to render",
			"entity", key, "method", permName)
		return
	}
	description, _ := mc.op["description"].(string)
	mc.op["description"] = description + "\n\n## Permissions\n" + permDoc
}

// installDefaultResponses normalizes every declared response: bare 4xx codes
// become shared response references, descriptions and content references are
// defaulted, "none" placeholders are stripped, and the shared 401 reference
// is force-set last.
func (g *Generator) installDefaultResponses(mc *methodContext) {
	g.log.Debug("installing default response data", "url", mc.url, "method", mc.verb)
	responses, ok := mc.op["responses"].(map[string]any)
	if !ok {
		responses = map[string]any{}
		mc.op["responses"] = responses
	}

	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		details, ok := responses[code].(map[string]any)
		if !ok {
			if responses[code] != nil {
				g.fail("response declaration must be a mapping", "code", code, "url", mc.url, "method", mc.verb)
				continue
			}
			details = map[string]any{}
			responses[code] = details
		}

		// Bare 4xx declarations reuse the shared response components.
		if strings.HasPrefix(code, "4") && len(details) == 0 {
			responses[code] = map[string]any{"$ref": "#/components/responses/" + code}
			continue
		}

		if _, ok := details["description"]; !ok {
			description, ok := defaultResponseDescriptions[code]
			if !ok {
				description = "none"
			}
			details["description"] = description
		}

		if _, ok := details["content"]; !ok {
			var ref string
			switch {
			case code == "201", code == "200" && !(mc.verb == "get" && mc.isList):
				ref = "#/components/schemas/" + mc.entity + "Response"
			case code == "200" && mc.verb == "get" && mc.isList:
				ref = "#/components/schemas/" + mc.entity + "List"
			}
			if ref != "" {
				details["content"] = map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"$ref": ref},
					},
				}
			}
		}

		// A literal "none" suppresses whatever was auto-filled above.
		for k, v := range details {
			if s, ok := v.(string); ok && s == "none" {
				delete(details, k)
			}
		}
	}

	responses["401"] = map[string]any{"$ref": "#/components/responses/401"}
}
