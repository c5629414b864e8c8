// Package web embeds the page templates and browser assets.
package web

import "embed"

// Templates holds templates/*.html.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds the map script and stylesheet served under /static.
//
//go:embed static
var Static embed.FS
