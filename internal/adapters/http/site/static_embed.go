package site

import (
	"embed"
	"html/template"
)

//go:embed static/index.html
var staticFS embed.FS

// page is parsed once; a broken template fails at init.
var page = template.Must(template.ParseFS(staticFS, "static/index.html"))
