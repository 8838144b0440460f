package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixtureApp lays out a minimal application source tree and returns the
// module directory.
func writeFixtureApp(t *testing.T, withPermissions bool) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "widgets")

	files := map[string]string{
		"widgets.go": `// Widgets service API.
//
// Manage widget records for the platform.
package widgets

const Version = "1.2.3"
`,
		"urls/urls.go": `package urls

type Pattern struct {
	Pattern string
	View    string
}

var Patterns = []Pattern{
	{Pattern: "widget/", View: "widget.WidgetCollection"},
	{"widget/<int:id>", "widget.WidgetResource"},
}
`,
		"views/widget.go": `// Services for managing widgets
package views

type WidgetCollection struct{}

// summary: List widgets
// description: Retrieve a list of widgets
// responses:
//   200: {}
func (v WidgetCollection) Get() {}

// summary: Create a widget
// description: Create a new widget
// responses:
//   201: {}
func (v WidgetCollection) Post() {}

type WidgetResource struct{}

// summary: Read a widget
// description: Retrieve a single widget
// path_params:
//   id:
//     type: integer
// responses:
//   200: {}
func (v *WidgetResource) Get() {}

func (v *WidgetResource) Helper() {}
`,
		"serializers/widget.go": "package serializers\n\n" +
			"// id:\n" +
			"//   description: The widget ID\n" +
			"//   type: integer\n" +
			"// name:\n" +
			"//   description: The widget name\n" +
			"//   type: string\n" +
			"type WidgetSerializer struct {\n" +
			"\tID       int    `json:\"id\"`\n" +
			"\tName     string `json:\"name\"`\n" +
			"\tOldName  string\n" +
			"\tInternal string `json:\"-\"`\n" +
			"}\n",
		"controllers/widget.go": `package controllers

// validation_order:
//   - name
type WidgetCreateController struct{}

// description: The name of the widget
// type: string
func (c WidgetCreateController) ValidateName() {}

// search_fields:
//   name:
//     - in
// allowed_ordering:
//   - name
type WidgetListController struct{}
`,
	}
	if withPermissions {
		files["permissions/widget.go"] = `package permissions

type WidgetPermissions struct{}

// The user must be an administrator.
func (p WidgetPermissions) Create() {}
`
	}

	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestLoad_Root(t *testing.T) {
	t.Parallel()
	app, err := Load(writeFixtureApp(t, true))
	require.NoError(t, err)

	assert.Equal(t, "widgets", app.Name)
	assert.Equal(t, "1.2.3", app.Version)
	assert.Contains(t, app.Doc, "Widgets service API.")
	assert.Contains(t, app.Doc, "Manage widget records for the platform.")
}

func TestLoad_Routes(t *testing.T) {
	t.Parallel()
	app, err := Load(writeFixtureApp(t, true))
	require.NoError(t, err)

	// Both keyed and positional entries decode, in declaration order.
	require.Len(t, app.Routes, 2)
	assert.Equal(t, Route{Pattern: "widget/", View: "widget.WidgetCollection"}, app.Routes[0])
	assert.Equal(t, Route{Pattern: "widget/<int:id>", View: "widget.WidgetResource"}, app.Routes[1])
}

func TestLoad_Views(t *testing.T) {
	t.Parallel()
	app, err := Load(writeFixtureApp(t, true))
	require.NoError(t, err)

	require.Contains(t, app.Views, "widget")
	assert.Equal(t, "Services for managing widgets\n", app.Views["widget"].Doc)
	assert.Equal(t, []string{"widget"}, app.ViewNames)

	collection := app.Handlers["WidgetCollection"]
	assert.Equal(t, "widget", collection.View)
	require.Contains(t, collection.Methods, "get")
	require.Contains(t, collection.Methods, "post")
	assert.Contains(t, collection.Methods["get"], "summary: List widgets")
	assert.Contains(t, collection.Methods["get"], "  200: {}")

	// Pointer receivers resolve to the same handler, non-verb methods are
	// ignored.
	resource := app.Handlers["WidgetResource"]
	require.Contains(t, resource.Methods, "get")
	assert.NotContains(t, resource.Methods, "helper")
	assert.Contains(t, resource.Methods["get"], "path_params:")
}

func TestLoad_Serializers(t *testing.T) {
	t.Parallel()
	app, err := Load(writeFixtureApp(t, true))
	require.NoError(t, err)

	ser, ok := app.Serializers["WidgetSerializer"]
	require.True(t, ok)
	// json tags win, untagged fields snake_case, "-" drops the field.
	assert.Equal(t, []string{"id", "name", "old_name"}, ser.Fields)
	assert.Contains(t, ser.Doc, "description: The widget ID")
}

func TestLoad_Controllers(t *testing.T) {
	t.Parallel()
	app, err := Load(writeFixtureApp(t, true))
	require.NoError(t, err)

	create, ok := app.Controllers["WidgetCreateController"]
	require.True(t, ok)
	assert.Contains(t, create.Doc, "validation_order:")
	require.Contains(t, create.Validators, "name")
	assert.Contains(t, create.Validators["name"], "description: The name of the widget")

	list, ok := app.Controllers["WidgetListController"]
	require.True(t, ok)
	assert.Contains(t, list.Doc, "search_fields:")
	assert.Empty(t, list.Validators)
}

func TestLoad_Permissions(t *testing.T) {
	t.Parallel()
	app, err := Load(writeFixtureApp(t, true))
	require.NoError(t, err)

	ps, ok := app.Permissions["widget"]
	require.True(t, ok)
	assert.Equal(t, "Widget", ps.Entity)
	assert.Equal(t, "The user must be an administrator.\n", ps.Methods["create"])
}

func TestLoad_PermissionsAreOptional(t *testing.T) {
	t.Parallel()
	app, err := Load(writeFixtureApp(t, false))
	require.NoError(t, err)
	assert.Empty(t, app.Permissions)
}

func TestLoad_MissingModule(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoad_MissingRequiredPackage(t *testing.T) {
	t.Parallel()
	root := writeFixtureApp(t, false)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "serializers")))
	_, err := Load(root)
	assert.Error(t, err)
}

func TestLoad_MissingRouteTable(t *testing.T) {
	t.Parallel()
	root := writeFixtureApp(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(root, "urls", "urls.go"), []byte("package urls\n"), 0o644))
	_, err := Load(root)
	assert.ErrorContains(t, err, "Patterns")
}

func TestCamelToSnake(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Name":        "name",
		"OldName":     "old_name",
		"ID":          "id",
		"CustomerID":  "customer_id",
		"HTTPTimeout": "http_timeout",
		"name":        "name",
	}
	for in, want := range tests {
		assert.Equal(t, want, camelToSnake(in), "input %q", in)
	}
}
