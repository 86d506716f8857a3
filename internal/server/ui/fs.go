// Package ui embeds the read-only browser view of the graph.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var content embed.FS

// GetHandler returns an http.Handler that serves the static UI files.
// The "static" prefix of the embedded filesystem is stripped.
func GetHandler() http.Handler {
	fsys, err := fs.Sub(content, "static")
	if err != nil {
		panic(err) // Should never happen with embed
	}
	return http.FileServer(http.FS(fsys))
}
