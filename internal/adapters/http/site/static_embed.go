package site

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html static/*
var siteFS embed.FS

// FS returns an http.FileSystem for the embedded static assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(siteFS, "static")
	if err != nil {
		// Only possible if the embed pattern above changes.
		return http.FS(siteFS)
	}
	return http.FS(sub)
}
