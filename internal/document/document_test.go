package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glbind/glbind/internal/errors"
)

func TestParse_Root(t *testing.T) {
	// Test: The root element and its attributes are exposed
	root, err := Parse([]byte(`<?xml version="1.0"?><registry kind="gl"><types/></registry>`))
	require.NoError(t, err)

	assert.Equal(t, "registry", root.Tag())
	assert.Equal(t, "gl", root.Attr("kind"))
	assert.Equal(t, "", root.Attr("missing"))
	require.Len(t, root.Elements(), 1)
	assert.Equal(t, "types", root.Elements()[0].Tag())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "only a comment", input: "<!-- nothing here -->"},
		{name: "missing attribute value", input: "<registry api=></registry>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrParse))
		})
	}
}

func TestNode_ChildrenKeepTextInOrder(t *testing.T) {
	// Test: Text runs and elements come back in document order, comments dropped
	root, err := Parse([]byte(`<type>typedef <!-- c -->unsigned int <name>GLenum</name>;</type>`))
	require.NoError(t, err)

	children := root.Children()
	require.Len(t, children, 4)

	assert.True(t, children[0].IsText())
	assert.Equal(t, "typedef ", children[0].Text)
	assert.True(t, children[1].IsText())
	assert.Equal(t, "unsigned int ", children[1].Text)
	assert.False(t, children[2].IsText())
	assert.Equal(t, "name", children[2].Element.Tag())
	assert.Equal(t, "GLenum", children[2].Element.Text())
	assert.Equal(t, ";", children[3].Text)
}

func TestNode_EntitiesAreDecoded(t *testing.T) {
	root, err := Parse([]byte(`<enum name="GL_X" value="1&lt;&lt;2"/>`))
	require.NoError(t, err)

	assert.Equal(t, "1<<2", root.Attr("value"))
}
