package web

import (
	"net/http"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"

	"gowiki/internal/web/controller"
	"gowiki/internal/web/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(s.log))
	r.Use(chimiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", StaticFileServer()))

	pageController := controller.Page{
		Pages:    s.pages,
		Views:    s.views,
		Markdown: s.markdown,
		Flashes:  s.flashes,
		Log:      s.log,
	}
	pageController.Register(r)

	miscController := controller.Misc{Markdown: s.markdown, Log: s.log}
	miscController.Register(r)

	return r
}
