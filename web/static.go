// Package web embeds the single-page planner UI.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFiles embed.FS

func assets() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Handler serves /static/* assets and /robots.txt from the embedded tree and
// answers every other GET with index.html so client-side routes such as
// /events/{id} survive a reload.
func Handler() http.Handler {
	files := assets()
	fileServer := http.StripPrefix("/static/", http.FileServerFS(files))

	index, err := fs.ReadFile(files, "index.html")
	if err != nil {
		panic(err)
	}
	robots, err := fs.ReadFile(files, "robots.txt")
	if err != nil {
		panic(err)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		switch {
		case r.URL.Path == "/robots.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "public, max-age=86400")
			_, _ = w.Write(robots)
		case strings.HasPrefix(r.URL.Path, "/static/"):
			if _, err := fs.Stat(files, strings.TrimPrefix(path.Clean(r.URL.Path), "/static/")); err != nil {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			fileServer.ServeHTTP(w, r)
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			_, _ = w.Write(index)
		}
	})
}
