// Package web holds the embedded dashboard templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "templates/*.html"))

// Templates returns the parsed page set. The dashboard is named "dashboard".
func Templates() *template.Template { return templates }
