package controller

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/sirupsen/logrus"

	"gowiki/internal/models"
	"gowiki/internal/web/middleware"
	"gowiki/internal/web/viewmodels"
)

// EmptyPageMarkdown is shown for pages that have not been created yet.
const EmptyPageMarkdown = "# A new page\n\nFeel free to write in Markdown!\n"

// PageService is the page store as seen by the controller.
type PageService interface {
	FetchAllPages(ctx context.Context) ([]string, error)
	FetchPage(ctx context.Context, name string) (models.PageLookup, error)
	CreatePage(ctx context.Context, title, markdown string) error
	SavePage(ctx context.Context, id int64, markdown string) error
	DeletePage(ctx context.Context, id int64) error
}

// Views renders a named template with a name/value context.
type Views interface {
	Render(name string, ctx pongo2.Context) (string, error)
}

// MarkdownRenderer turns raw Markdown into HTML.
type MarkdownRenderer interface {
	Render(source string) (string, error)
}

// Page provides page handlers
type Page struct {
	Pages    PageService
	Views    Views
	Markdown MarkdownRenderer
	Flashes  *middleware.Flashes
	Log      logrus.FieldLogger
	Now      func() time.Time
}

// Register registers the page routes
func (p *Page) Register(r chi.Router) {
	r.Get("/", p.index)
	r.Get("/wiki/{page}", p.view)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ParseForm)
		r.Post("/create", p.create)
		r.Post("/save", p.save)
		r.Post("/delete", p.delete)
	})
}

func (p *Page) index(w http.ResponseWriter, r *http.Request) {
	names, err := p.Pages.FetchAllPages(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	links := make([]viewmodels.PageLink, 0, len(names))
	for _, name := range names {
		links = append(links, viewmodels.NewPageLink(name))
	}

	p.render(w, r, "index.html", pongo2.Context{
		"title": "Wiki home",
		"pages": links,
	})
}

func (p *Page) view(w http.ResponseWriter, r *http.Request) {
	// chi matches against RawPath when the request carries one, leaving the
	// segment escaped; otherwise the segment is already decoded.
	name := chi.URLParam(r, "page")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			http.Error(w, "Invalid page name", http.StatusBadRequest)
			return
		}
		name = unescaped
	}

	lookup, err := p.Pages.FetchPage(r.Context(), name)
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	page := viewmodels.PageView{
		Title:      name,
		ID:         viewmodels.NewPageID,
		NewPage:    true,
		RawContent: EmptyPageMarkdown,
		Timestamp:  p.now().Format(time.RFC1123),
	}
	if lookup.Found {
		page.ID = lookup.ID
		page.NewPage = false
		page.RawContent = lookup.RawContent
	}

	page.Content, err = p.Markdown.Render(page.RawContent)
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	p.render(w, r, "page.html", pongo2.Context{
		"title": name,
		"page":  page,
	})
}

func (p *Page) create(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostForm.Get("name"))
	if name == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, viewmodels.WikiPath(name), http.StatusSeeOther)
}

type saveForm struct {
	ID       string
	Title    string
	Markdown string
	NewPage  bool
}

func (f saveForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.ID, validation.When(!f.NewPage, validation.Required, is.Int)),
	)
}

func (p *Page) save(w http.ResponseWriter, r *http.Request) {
	form := saveForm{
		ID:       r.PostForm.Get("id"),
		Title:    r.PostForm.Get("title"),
		Markdown: r.PostForm.Get("markdown"),
		NewPage:  isTruthy(r.PostForm.Get("newPage")),
	}
	if err := form.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	if form.NewPage {
		err = p.Pages.CreatePage(r.Context(), form.Title, form.Markdown)
	} else {
		id, parseErr := strconv.ParseInt(form.ID, 10, 64)
		if parseErr != nil {
			http.Error(w, "Invalid page id", http.StatusBadRequest)
			return
		}
		err = p.Pages.SavePage(r.Context(), id, form.Markdown)
	}
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	p.flash(w, r, "Page saved")
	http.Redirect(w, r, viewmodels.WikiPath(form.Title), http.StatusSeeOther)
}

func (p *Page) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid page id", http.StatusBadRequest)
		return
	}

	if err := p.Pages.DeletePage(r.Context(), id); err != nil {
		p.serverError(w, r, err)
		return
	}

	p.flash(w, r, "Page deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render executes the template fully before anything is written. Pending
// notices are only cleared once the view rendered.
func (p *Page) render(w http.ResponseWriter, r *http.Request, name string, ctx pongo2.Context) {
	var flashes []string
	if p.Flashes != nil {
		flashes = p.Flashes.Peek(r)
		ctx["flashes"] = flashes
	}

	out, err := p.Views.Render(name, ctx)
	if err != nil {
		p.serverError(w, r, err)
		return
	}

	if len(flashes) > 0 {
		if err := p.Flashes.Clear(w, r); err != nil {
			p.Log.WithError(err).Warn("could not clear flash messages")
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, out)
}

func (p *Page) flash(w http.ResponseWriter, r *http.Request, message string) {
	if p.Flashes == nil {
		return
	}
	if err := p.Flashes.Add(w, r, message); err != nil {
		p.Log.WithError(err).Warn("could not store flash message")
	}
}

func (p *Page) serverError(w http.ResponseWriter, r *http.Request, err error) {
	p.Log.WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"request_id": chimiddleware.GetReqID(r.Context()),
	}).WithError(err).Error("request failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (p *Page) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1", "on":
		return true
	}
	return false
}
