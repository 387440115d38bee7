// Package web embeds the dashboard's HTML templates and stylesheet.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*.css
var staticFS embed.FS

// Templates holds the parsed page templates.
var Templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Static returns the stylesheet tree rooted so that "app.css" is at the top.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
