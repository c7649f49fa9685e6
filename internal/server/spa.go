package server

import (
	"net/http"
	"os"
	"path/filepath"
)

// handleSPA serves the player web client from dir. Anything that isn't a
// real file (the map view, team routes like /join/{token}) falls back to
// index.html for client-side routing.
func handleSPA(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))

	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}
