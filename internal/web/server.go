package web

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"gowiki/internal/web/controller"
	"gowiki/internal/web/middleware"
	"gowiki/internal/web/renderer"
	"gowiki/internal/web/view"
)

// Server holds the dependencies of one HTTP worker.
type Server struct {
	pages    controller.PageService
	views    controller.Views
	markdown controller.MarkdownRenderer
	flashes  *middleware.Flashes
	log      logrus.FieldLogger
	handler  http.Handler
}

// NewServer creates a new server that serves pages through the given service.
func NewServer(pages controller.PageService, sessionKey string, log logrus.FieldLogger) *Server {
	s := &Server{
		pages:    pages,
		views:    view.New(),
		markdown: renderer.NewMarkdown(),
		flashes:  &middleware.Flashes{Store: middleware.NewCookieStore(sessionKey)},
		log:      log,
	}
	s.handler = s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
