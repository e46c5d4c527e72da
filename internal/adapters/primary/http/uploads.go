package http

import (
	"net/http"
	"strings"
)

// NewUploadsHandler serves stored attachments from dir under /uploads/.
// Directory paths are refused so the stored filenames cannot be enumerated.
func NewUploadsHandler(dir string) http.Handler {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
