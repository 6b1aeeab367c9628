package templates

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DefinesAllPages(t *testing.T) {
	tmpl, err := Parse()
	require.NoError(t, err)

	for _, name := range []string{Books, BookForm, Login, Register, NotFound} {
		assert.NotNil(t, tmpl.Lookup(name), "missing template %q", name)
	}
}

func TestBookForm_RendersCreateAndEdit(t *testing.T) {
	tmpl := MustParse()

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, BookForm, map[string]any{
		"Title": "New book",
		"Book":  map[string]any{"ID": 0, "Title": "", "Author": "", "Description": ""},
	}))
	assert.Contains(t, buf.String(), `action="/create/"`)
	assert.NotContains(t, buf.String(), "gorilla.csrf.Token")

	buf.Reset()
	require.NoError(t, tmpl.ExecuteTemplate(&buf, BookForm, map[string]any{
		"Title":     "Edit book",
		"CSRFToken": "tok",
		"Book":      map[string]any{"ID": 7, "Title": "Dune", "Author": "Frank Herbert", "Description": "Spice"},
	}))
	assert.Contains(t, buf.String(), `action="/update/7/"`)
	assert.Contains(t, buf.String(), `value="Dune"`)
	assert.Contains(t, buf.String(), `name="gorilla.csrf.Token" value="tok"`)
}
