// Package swagger serves the OpenAPI document and a Swagger UI page for it.
package swagger

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
)

// specFile is also the input of the pkg/api code generator.
const specFile = "openapi.yaml"

//go:embed swagger-ui/*
var content embed.FS

// GetHandler serves the UI and the document from the embedded directory. It
// expects to be mounted behind http.StripPrefix; a request for the bare
// prefix is redirected to the prefix with a trailing slash so the page's
// relative link to the document resolves.
func GetHandler() (http.Handler, error) {
	subFS, err := fs.Sub(content, "swagger-ui")
	if err != nil {
		return nil, err
	}

	files := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" {
			http.Redirect(w, r, "swagger/", http.StatusMovedPermanently)
			return
		}

		if path.Base(r.URL.Path) == specFile {
			w.Header().Set("Content-Type", "application/yaml")
			w.Header().Set("Cache-Control", "no-cache")
		}

		files.ServeHTTP(w, r)
	}), nil
}
