package docgen

import (
	"fmt"
	"sort"
	"strings"
)

// reconcileSerializer cross-checks an entity's implemented field set against
// its documented field set and, when both agree exactly, registers the three
// derived schema shapes: the bare entity, `{Entity}Response` and
// `{Entity}List`. An entity already present in the schema registry is
// skipped, which also terminates recursive self-references.
func (g *Generator) reconcileSerializer(entity string) {
	ser, ok := g.app.Serializers[entity+"Serializer"]
	if !ok {
		return
	}
	schemas := g.doc.Components.Schemas
	if _, done := schemas[entity]; done {
		g.log.Debug("serializer already parsed, skipping", "serializer", ser.Name)
		return
	}
	if g.resolving[entity] {
		return
	}
	g.resolving[entity] = true
	defer delete(g.resolving, entity)
	g.log.Debug("parsing serializer", "serializer", ser.Name)

	node, err := parseMetaNode(g.ensureDoc(ser.Name, ser.Doc))
	if err != nil {
		g.fail("could not load documented fields", "serializer", ser.Name, "error", err)
		return
	}
	value, err := nodeToValue(node)
	if err != nil {
		g.fail("could not load documented fields", "serializer", ser.Name, "error", err)
		return
	}
	items := value.(map[string]any)

	// All documented keys are output fields, so all of them are required.
	// Declaration order is preserved for the required list.
	documentedOrder := mappingKeys(node)
	documented := make(map[string]bool, len(documentedOrder))
	for _, key := range documentedOrder {
		documented[key] = true
	}

	mismatched := false
	for _, field := range ser.Fields {
		// Fields kept for backwards compatibility are never documented.
		if strings.Contains(field, "old_") {
			continue
		}
		if !documented[field] {
			g.fail("field is implemented but missing from the documented fields", "serializer", ser.Name, "field", field)
			mismatched = true
			continue
		}
		delete(documented, field)

		fieldItems, ok := items[field].(map[string]any)
		if !ok {
			g.fail("documented field must be a mapping", "serializer", ser.Name, "field", field)
			continue
		}
		ref, hasRef := fieldItems["$ref"].(string)
		if !hasRef {
			_, hasDescription := fieldItems["description"]
			_, hasType := fieldItems["type"]
			if !hasDescription || !hasType {
				g.fail(`documented field is missing required keys; it needs either "$ref" or "description" and "type"`,
					"serializer", ser.Name, "field", field)
				continue
			}
			if t, _ := fieldItems["type"].(string); t == "array" {
				arrayItems, ok := fieldItems["items"].(map[string]any)
				if !ok {
					g.fail(`documented field has type "array" but no items key`, "serializer", ser.Name, "field", field)
					continue
				}
				if itemRef, ok := arrayItems["$ref"].(string); ok {
					g.reconcileReference(entity, itemRef)
				}
			}
		} else {
			g.reconcileReference(entity, ref)
		}
	}

	if len(documented) > 0 {
		leftover := make([]string, 0, len(documented))
		for field := range documented {
			leftover = append(leftover, field)
		}
		sort.Strings(leftover)
		g.fail("fields are documented but not implemented by the serializer",
			"serializer", ser.Name, "fields", strings.Join(leftover, ", "))
		return
	}
	if mismatched {
		return
	}

	schemas[entity] = map[string]any{
		"type":       "object",
		"required":   documentedOrder,
		"properties": items,
	}
	schemas[entity+"Response"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{"$ref": "#/components/schemas/" + entity},
		},
	}
	schemas[entity+"List"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":  "array",
				"items": map[string]any{"$ref": "#/components/schemas/" + entity},
			},
			"_metadata": map[string]any{"$ref": "#/components/schemas/ListMetadata"},
		},
	}
}

// reconcileReference resolves a `$ref` found inside a serializer doc block by
// reconciling the referenced serializer first. Self-references are skipped;
// deeper cycles terminate via the generator's in-progress set.
func (g *Generator) reconcileReference(current, ref string) {
	parts := strings.Split(ref, "/")
	sub := parts[len(parts)-1]
	if sub == current || sub == "" {
		return
	}
	g.log.Debug("ensuring referenced serializer is parsed", "entity", sub)
	if _, ok := g.app.Serializers[sub+"Serializer"]; !ok {
		// The reference may target a registered input schema or a default
		// component instead of a serializer.
		if _, ok := g.doc.Components.Schemas[sub]; !ok {
			g.fail(fmt.Sprintf("reference %s does not resolve to a serializer or registered schema", ref),
				"entity", current)
		}
		return
	}
	g.reconcileSerializer(sub)
}
