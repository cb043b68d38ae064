package controller

import (
	"io"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/sirupsen/logrus"
)

const maxPreviewSize = 1 << 20

// Misc provides miscellaneous handlers
type Misc struct {
	Markdown MarkdownRenderer
	Log      logrus.FieldLogger
}

// Register registers the misc routes
func (m *Misc) Register(r chi.Router) {
	r.Post("/preview", m.preview)
}

// preview renders the raw request body as Markdown without storing it.
func (m *Misc) preview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPreviewSize))
	if err != nil {
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	html, err := m.Markdown.Render(string(body))
	if err != nil {
		m.Log.WithError(err).Error("preview failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}
