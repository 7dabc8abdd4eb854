package handler

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const indexDocument = "index.html"

// StaticHandler serves files from fsys. "/" maps to index.html; anything
// missing, a directory, a dotfile or listed as hidden is a plain-text 404.
type StaticHandler struct {
	fsys   fs.FS
	hidden map[string]bool
}

// NewStaticHandler creates a StaticHandler. hidden lists slash-separated
// paths relative to the root (for example the contact store file) that must
// never be served.
func NewStaticHandler(fsys fs.FS, hidden ...string) *StaticHandler {
	h := &StaticHandler{fsys: fsys, hidden: make(map[string]bool)}
	for _, name := range hidden {
		h.hidden[path.Clean(strings.TrimPrefix(name, "./"))] = true
	}
	return h
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = indexDocument
	}
	if !h.servable(name) {
		fileNotFound(w)
		return
	}

	f, err := h.fsys.Open(name)
	if err != nil {
		fileNotFound(w)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		fileNotFound(w)
		return
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		content = bytes.NewReader(data)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
}

func (h *StaticHandler) servable(name string) bool {
	if !fs.ValidPath(name) || h.hidden[name] {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

func fileNotFound(w http.ResponseWriter) {
	http.Error(w, "File not found", http.StatusNotFound)
}
