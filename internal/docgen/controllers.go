package docgen

import (
	"fmt"
	"strings"

	"github.com/docforge/docforge/internal/registry"
)

// applyController merges controller-derived content into the operation. For
// collection fetches that is the filtering/ordering description plus the
// standard list query parameters; for create/replace it is the request-body
// input schema. A missing controller is a no-op, an explicit override name
// replaces the `{Entity}{List|Create|Update}Controller` convention.
func (g *Generator) applyController(mc *methodContext, explicit string) {
	g.log.Debug("resolving controller", "entity", mc.entity, "method", mc.verb)
	switch {
	case mc.verb == "get" && mc.isList:
		name := explicit
		if name == "" {
			name = mc.entity + "ListController"
		}
		if ctrl, ok := g.app.Controllers[name]; ok {
			details, err := g.listDetails(ctrl)
			if err != nil {
				g.fail("could not derive list details", "controller", ctrl.Name, "error", err)
			} else {
				description, ok := mc.op["description"].(string)
				if !ok {
					g.fail("no list description found", "url", mc.url)
					return
				}
				mc.op["description"] = description + "\n\n" + details
			}
		}
		// The standard list parameters apply whether or not a list
		// controller exists.
		params, _ := mc.op["parameters"].([]any)
		mc.op["parameters"] = append(params, defaultListParameters()...)

	case mc.verb == "post" || mc.verb == "put":
		name := explicit
		if name == "" {
			kind := "Update"
			if mc.verb == "post" {
				kind = "Create"
			}
			name = mc.entity + kind + "Controller"
		}
		if ctrl, ok := g.app.Controllers[name]; ok {
			g.buildInputSchema(mc, ctrl)
		}
	}
}

// listDetails renders the Filtering and Ordering description sections from a
// list controller's declared search fields and allowed ordering.
func (g *Generator) listDetails(ctrl registry.Controller) (string, error) {
	node, err := parseMetaNode(ctrl.Doc)
	if err != nil {
		return "", err
	}
	searchFields := mappingValue(node, "search_fields")
	allowedOrdering := mappingValue(node, "allowed_ordering")
	if searchFields == nil || allowedOrdering == nil {
		return "", fmt.Errorf("list controller must declare search_fields and allowed_ordering")
	}

	var filters []string
	for i := 0; i+1 < len(searchFields.Content); i += 2 {
		field := searchFields.Content[i].Value
		modifiers, err := nodeToStrings(searchFields.Content[i+1])
		if err != nil {
			return "", fmt.Errorf("search field %s: %w", field, err)
		}
		if len(modifiers) > 0 {
			filters = append(filters, fmt.Sprintf("- %s (%s)", field, strings.Join(modifiers, ", ")))
		} else {
			filters = append(filters, "- "+field)
		}
	}

	ordering, err := nodeToStrings(allowedOrdering)
	if err != nil {
		return "", fmt.Errorf("allowed_ordering: %w", err)
	}
	orders := make([]string, len(ordering))
	for i, field := range ordering {
		if i == 0 {
			orders[i] = fmt.Sprintf("- %s (default)", field)
		} else {
			orders[i] = "- " + field
		}
	}

	return fmt.Sprintf(`## Filtering
The following fields and modifiers can be used to filter records from the list;

%s

To search, simply add `+"`?search[field]=value`"+` to include records that match the request, or `+"`?exclude[field]=value`"+` to
exclude them. To use modifiers, simply add `+"`?search[field__modifier]`"+` and `+"`?exclude[field__modifier]`"+`

## Ordering
The following fields can be used to order the results of the list;

%s

To reverse the ordering, simply prepend a `+"`-`"+` character to the request. So `+"`?order=field`"+` orders by `+"`field`"+` in ascending
order, while `+"`?order=-field`"+` orders in descending order instead.`,
		strings.Join(filters, "\n"), strings.Join(orders, "\n")), nil
}

// buildInputSchema walks the controller's validation order, assembling the
// request-body schema from each field validator's metadata block, and
// registers it under `{Entity}{Create|Update}`.
func (g *Generator) buildInputSchema(mc *methodContext, ctrl registry.Controller) {
	g.log.Debug("generating input schema", "entity", mc.entity, "controller", ctrl.Name)
	schemaName := strings.ReplaceAll(ctrl.Name, "Controller", "")
	operation := "update"
	if strings.Contains(schemaName, "Create") {
		operation = "create"
	}
	mc.op["requestBody"] = map[string]any{
		"description": fmt.Sprintf("Data required to %s a record", operation),
		"required":    true,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/" + schemaName},
			},
		},
	}

	order, err := validationOrder(ctrl.Doc)
	if err != nil {
		g.fail("could not read validation order", "controller", ctrl.Name, "error", err)
		return
	}

	var required []string
	properties := map[string]any{}
	for _, field := range order {
		raw, ok := ctrl.Validators[field]
		if !ok {
			g.fail("could not find validator", "controller", ctrl.Name, "field", field)
			continue
		}
		value, err := decodeMeta(g.ensureDoc(ctrl.Name+".Validate:"+field, raw))
		if err != nil {
			g.fail("could not load metadata block for validator", "controller", ctrl.Name, "field", field, "error", err)
			continue
		}
		fieldData, ok := value.(map[string]any)
		if !ok {
			g.fail("expected validator metadata to be a mapping",
				"controller", ctrl.Name, "field", field, "got", fmt.Sprintf("%T", value))
			return
		}

		// Server-derived fields are excluded from the input schema.
		if generative, _ := fieldData["generative"].(bool); generative {
			continue
		}

		isRequired := true
		if v, ok := fieldData["required"]; ok {
			delete(fieldData, "required")
			if b, ok := v.(bool); ok && !b {
				isRequired = false
			}
		}
		if isRequired {
			required = append(required, field)
		}

		if _, hasRef := fieldData["$ref"]; !hasRef {
			var missing []string
			for _, key := range []string{"description", "type"} {
				if _, ok := fieldData[key]; !ok {
					missing = append(missing, key)
				}
			}
			if len(missing) > 0 {
				g.fail("validator metadata is missing required fields",
					"controller", ctrl.Name, "field", field, "missing", strings.Join(missing, ", "))
				return
			}
		}
		properties[field] = fieldData
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	g.doc.Components.Schemas[schemaName] = schema
}

// validationOrder reads the ordered field list from a controller's metadata
// block.
func validationOrder(doc string) ([]string, error) {
	node, err := parseMetaNode(doc)
	if err != nil {
		return nil, err
	}
	value := mappingValue(node, "validation_order")
	if value == nil {
		return nil, fmt.Errorf("controller must declare validation_order")
	}
	return nodeToStrings(value)
}
