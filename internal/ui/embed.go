// Package ui embeds the sample front-end and the API docs served next to the
// issue API.
package ui

import (
	"embed"
	"io/fs"
)

//go:embed views/*.html public static
var assets embed.FS

// PublicFS returns the stylesheet and scripts served under /public.
func PublicFS() (fs.FS, error) {
	return fs.Sub(assets, "public")
}

// StaticFS returns the OpenAPI documents served under /static.
func StaticFS() (fs.FS, error) {
	return fs.Sub(assets, "static")
}

// View returns the named page from views/, e.g. "index.html".
func View(name string) ([]byte, error) {
	return fs.ReadFile(assets, "views/"+name)
}
