package docgen

import (
	"testing"

	"github.com/docforge/docforge/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serializerApp(sers ...registry.Serializer) *registry.Application {
	app := &registry.Application{
		Name:        "widgets",
		Version:     "1.0.0",
		Doc:         "Widget management service.\n",
		Serializers: map[string]registry.Serializer{},
	}
	for _, s := range sers {
		app.Serializers[s.Name] = s
	}
	return app
}

func TestReconcileSerializer_RegistersThreeShapes(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"name", "id", "old_name"},
		Doc:    widgetSerializerDoc,
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")
	require.False(t, g.failed)

	schemas := g.doc.Components.Schemas
	widget := schemas["Widget"].(map[string]any)
	assert.Equal(t, "object", widget["type"])
	// The required list preserves the documented declaration order.
	assert.Equal(t, []string{"id", "name"}, widget["required"])
	properties := widget["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"description": "The widget ID", "type": "integer"}, properties["id"])

	response := schemas["WidgetResponse"].(map[string]any)
	content := response["properties"].(map[string]any)["content"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Widget", content["$ref"])

	list := schemas["WidgetList"].(map[string]any)
	listProps := list["properties"].(map[string]any)
	items := listProps["content"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Widget", items["$ref"])
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/ListMetadata"}, listProps["_metadata"])
}

func TestReconcileSerializer_UndocumentedFieldFails(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"id", "name", "extra"},
		Doc:    widgetSerializerDoc,
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")

	assert.True(t, g.failed)
	assert.NotContains(t, g.doc.Components.Schemas, "Widget")
	assert.NotContains(t, g.doc.Components.Schemas, "WidgetResponse")
	assert.NotContains(t, g.doc.Components.Schemas, "WidgetList")
}

func TestReconcileSerializer_UnimplementedFieldFails(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"id"},
		Doc:    widgetSerializerDoc, // documents both id and name
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")

	assert.True(t, g.failed)
	assert.NotContains(t, g.doc.Components.Schemas, "Widget")
}

func TestReconcileSerializer_MissingTypeAndRefFails(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"id"},
		Doc:    "id:\n  description: The widget ID\n",
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")
	assert.True(t, g.failed)
}

func TestReconcileSerializer_ArrayWithoutItemsFails(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"parts"},
		Doc:    "parts:\n  description: Component parts\n  type: array\n",
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")
	assert.True(t, g.failed)
}

func TestReconcileSerializer_FollowsReferences(t *testing.T) {
	t.Parallel()
	app := serializerApp(
		registry.Serializer{
			Name:   "WidgetSerializer",
			Fields: []string{"id", "gadget"},
			Doc: `id:
  description: The widget ID
  type: integer
gadget:
  $ref: '#/components/schemas/Gadget'
`,
		},
		registry.Serializer{
			Name:   "GadgetSerializer",
			Fields: []string{"id"},
			Doc:    "id:\n  description: The gadget ID\n  type: integer\n",
		},
	)
	g := New(app, nil)
	g.reconcileSerializer("Widget")

	require.False(t, g.failed)
	assert.Contains(t, g.doc.Components.Schemas, "Widget")
	assert.Contains(t, g.doc.Components.Schemas, "Gadget")
	assert.Contains(t, g.doc.Components.Schemas, "GadgetList")
}

func TestReconcileSerializer_SelfReferenceTerminates(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"id", "parent"},
		Doc: `id:
  description: The widget ID
  type: integer
parent:
  $ref: '#/components/schemas/Widget'
`,
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")

	require.False(t, g.failed)
	assert.Contains(t, g.doc.Components.Schemas, "Widget")
}

func TestReconcileSerializer_MutualReferencesTerminate(t *testing.T) {
	t.Parallel()
	app := serializerApp(
		registry.Serializer{
			Name:   "WidgetSerializer",
			Fields: []string{"gadget"},
			Doc:    "gadget:\n  $ref: '#/components/schemas/Gadget'\n",
		},
		registry.Serializer{
			Name:   "GadgetSerializer",
			Fields: []string{"widget"},
			Doc:    "widget:\n  $ref: '#/components/schemas/Widget'\n",
		},
	)
	g := New(app, nil)
	g.reconcileSerializer("Widget")

	require.False(t, g.failed)
	assert.Contains(t, g.doc.Components.Schemas, "Widget")
	assert.Contains(t, g.doc.Components.Schemas, "Gadget")
}

func TestReconcileSerializer_UnresolvableReferenceFails(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"gadget"},
		Doc:    "gadget:\n  $ref: '#/components/schemas/Gadget'\n",
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")
	assert.True(t, g.failed)
}

func TestReconcileSerializer_ArrayItemReference(t *testing.T) {
	t.Parallel()
	app := serializerApp(
		registry.Serializer{
			Name:   "WidgetSerializer",
			Fields: []string{"gadgets"},
			Doc: `gadgets:
  description: Attached gadgets
  type: array
  items:
    $ref: '#/components/schemas/Gadget'
`,
		},
		registry.Serializer{
			Name:   "GadgetSerializer",
			Fields: []string{"id"},
			Doc:    "id:\n  description: The gadget ID\n  type: integer\n",
		},
	)
	g := New(app, nil)
	g.reconcileSerializer("Widget")

	require.False(t, g.failed)
	assert.Contains(t, g.doc.Components.Schemas, "Gadget")
}

func TestReconcileSerializer_Idempotent(t *testing.T) {
	t.Parallel()
	app := serializerApp(registry.Serializer{
		Name:   "WidgetSerializer",
		Fields: []string{"id", "name"},
		Doc:    widgetSerializerDoc,
	})
	g := New(app, nil)
	g.reconcileSerializer("Widget")
	require.False(t, g.failed)

	before := g.doc.Components.Schemas["Widget"]
	g.reconcileSerializer("Widget")
	require.False(t, g.failed)
	assert.Equal(t, before, g.doc.Components.Schemas["Widget"])
}
