// Package templates holds the server-rendered HTML pages, embedded into the
// binary.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Page template names.
const (
	Books    = "books"
	BookForm = "book_form"
	Login    = "login"
	Register = "register"
	NotFound = "not_found"
)

// Parse parses every embedded page. The result is meant for
// gin.Engine.SetHTMLTemplate.
func Parse() (*template.Template, error) {
	return template.New("").ParseFS(files, "*.html")
}

// MustParse is like Parse but panics on error.
func MustParse() *template.Template {
	return template.Must(Parse())
}
