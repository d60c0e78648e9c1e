// Package web embeds the HTML templates so the pages binary is self-contained.
package web

import "embed"

// Templates holds templates/base.html and templates/users.html.
//
//go:embed templates/*.html
var Templates embed.FS
