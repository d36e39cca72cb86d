package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/redmonkez12/authflow/internal/httputil"
)

// spaHandler serves a built single-page app. Unknown paths fall back to
// index.html so client-side routes such as /reset-password/{token} resolve.
type spaHandler struct {
	root       fs.FS
	fileServer http.Handler
}

func newSPAHandler(dir string) *spaHandler {
	root := os.DirFS(dir)
	return &spaHandler{root: root, fileServer: http.FileServerFS(root)}
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if (r.Method != http.MethodGet && r.Method != http.MethodHead) || strings.HasPrefix(r.URL.Path, "/api/") {
		httputil.RespondError(w, "Not found", http.StatusNotFound)
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name != "" {
		if info, err := fs.Stat(h.root, name); err == nil && !info.IsDir() {
			h.fileServer.ServeHTTP(w, r)
			return
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			httputil.RespondError(w, "Server error", http.StatusInternalServerError)
			return
		}
	}

	index, err := fs.ReadFile(h.root, "index.html")
	if err != nil {
		httputil.RespondError(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(index)
}
