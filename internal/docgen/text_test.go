package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalise(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Widgets", capitalise("widgets"))
	assert.Equal(t, "Asset Transaction", capitalise("asset transaction"))
	assert.Equal(t, "", capitalise(""))
	assert.Equal(t, "Already Title", capitalise("Already Title"))
}

func TestDisplayName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Widget", displayName("widget"))
	assert.Equal(t, "Asset Transaction", displayName("asset_transaction"))
}

func TestDocTrim(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single line", "List widgets\n", "List widgets"},
		{
			"indented block",
			"summary: List widgets\n    description: Retrieve a list\n    responses:\n      200: {}\n",
			"summary: List widgets\ndescription: Retrieve a list\nresponses:\n  200: {}",
		},
		{
			"leading and trailing blanks",
			"\n\nFirst line\nSecond line\n\n\n",
			"First line\nSecond line",
		},
		{
			"tab counts as eight columns of indent",
			"key:\n\tvalue: 1\n",
			"key:\nvalue: 1",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, docTrim(tc.in))
		})
	}
}

func TestRewriteURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"widget/", "/widget/"},
		{"widget/<int:id>", "/widget/{id}"},
		{"widget/<int:widget_id>/part/<str:part_name>", "/widget/{widget_id}/part/{part_name}"},
		{"/already/rooted", "/already/rooted"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, rewriteURL(tc.in), "pattern %q", tc.in)
	}
}

func TestSplitViewRef(t *testing.T) {
	t.Parallel()
	view, handler, ok := splitViewRef("widget.WidgetCollection")
	assert.True(t, ok)
	assert.Equal(t, "widget", view)
	assert.Equal(t, "WidgetCollection", handler)

	for _, bad := range []string{"", "widget", ".Widget", "widget."} {
		_, _, ok := splitViewRef(bad)
		assert.False(t, ok, "ref %q", bad)
	}
}
