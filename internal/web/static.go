package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// StaticFileServer serves the embedded stylesheet and scripts. Assets change
// only with a new binary, so clients may cache them for an hour.
func StaticFileServer() http.Handler {
	fsys, _ := fs.Sub(staticFiles, "static")
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
