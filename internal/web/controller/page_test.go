package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"gowiki/internal/models"
	"gowiki/internal/web/middleware"
	"gowiki/internal/web/viewmodels"
)

type call struct {
	op       string
	name     string
	id       int64
	markdown string
}

type fakePages struct {
	mu    sync.Mutex
	calls []call
	names []string
	pages map[string]models.PageLookup
	err   error
}

func (f *fakePages) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakePages) FetchAllPages(ctx context.Context) ([]string, error) {
	if err := f.record(call{op: "fetchAllPages"}); err != nil {
		return nil, err
	}
	return f.names, nil
}

func (f *fakePages) FetchPage(ctx context.Context, name string) (models.PageLookup, error) {
	if err := f.record(call{op: "fetchPage", name: name}); err != nil {
		return models.PageLookup{}, err
	}
	return f.pages[name], nil
}

func (f *fakePages) CreatePage(ctx context.Context, title, markdown string) error {
	return f.record(call{op: "createPage", name: title, markdown: markdown})
}

func (f *fakePages) SavePage(ctx context.Context, id int64, markdown string) error {
	return f.record(call{op: "savePage", id: id, markdown: markdown})
}

func (f *fakePages) DeletePage(ctx context.Context, id int64) error {
	return f.record(call{op: "deletePage", id: id})
}

type fakeViews struct {
	name string
	ctx  pongo2.Context
	err  error
}

func (v *fakeViews) Render(name string, ctx pongo2.Context) (string, error) {
	v.name = name
	v.ctx = ctx
	if v.err != nil {
		return "", v.err
	}
	return "<html>" + name + "</html>", nil
}

type upperMarkdown struct{}

func (upperMarkdown) Render(source string) (string, error) {
	return "<p>" + strings.ToUpper(source) + "</p>", nil
}

func newTestRouter(pages *fakePages, views *fakeViews) http.Handler {
	logger, _ := test.NewNullLogger()
	controller := &Page{
		Pages:    pages,
		Views:    views,
		Markdown: upperMarkdown{},
		Flashes:  &middleware.Flashes{Store: middleware.NewCookieStore("0123456789abcdef0123456789abcdef")},
		Log:      logger,
		Now:      func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) },
	}
	r := chi.NewRouter()
	controller.Register(r)
	return r
}

func postForm(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersSortedNames(t *testing.T) {
	pages := &fakePages{names: []string{"Alpha", "Beta"}}
	views := &fakeViews{}
	rec := httptest.NewRecorder()

	newTestRouter(pages, views).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "index.html", views.name)
	require.Equal(t, []viewmodels.PageLink{
		{Name: "Alpha", Path: "/wiki/Alpha"},
		{Name: "Beta", Path: "/wiki/Beta"},
	}, views.ctx["pages"])
}

func TestIndexFailure(t *testing.T) {
	pages := &fakePages{err: errors.New("store unreachable")}
	views := &fakeViews{}
	rec := httptest.NewRecorder()

	newTestRouter(pages, views).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, views.name)
}

func TestViewUnknownPageShowsPlaceholder(t *testing.T) {
	pages := &fakePages{}
	views := &fakeViews{}
	rec := httptest.NewRecorder()

	newTestRouter(pages, views).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wiki/NoSuchPage", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "page.html", views.name)

	page := views.ctx["page"].(viewmodels.PageView)
	require.True(t, page.NewPage)
	require.Equal(t, viewmodels.NewPageID, page.ID)
	require.Equal(t, EmptyPageMarkdown, page.RawContent)
	require.Equal(t, "<p>"+strings.ToUpper(EmptyPageMarkdown)+"</p>", page.Content)
	require.Equal(t, "NoSuchPage", page.Title)
}

func TestViewExistingPage(t *testing.T) {
	pages := &fakePages{pages: map[string]models.PageLookup{
		"Go Notes": {Found: true, ID: 3, RawContent: "channels"},
	}}
	views := &fakeViews{}
	rec := httptest.NewRecorder()

	newTestRouter(pages, views).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wiki/Go%20Notes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	page := views.ctx["page"].(viewmodels.PageView)
	require.False(t, page.NewPage)
	require.Equal(t, int64(3), page.ID)
	require.Equal(t, "Go Notes", page.Title)
	require.Equal(t, "channels", page.RawContent)
	require.Equal(t, "<p>CHANNELS</p>", page.Content)
	require.Equal(t, "Mon, 19 Oct 2026 12:00:00 UTC", page.Timestamp)
}

func TestViewDecodesPageNameOnce(t *testing.T) {
	for target, want := range map[string]string{
		"/wiki/a%2541":     "a%41",
		"/wiki/100%25":     "100%",
		"/wiki/a%2Fb":      "a/b",
		"/wiki/Go%20Notes": "Go Notes",
	} {
		pages := &fakePages{}
		views := &fakeViews{}
		rec := httptest.NewRecorder()

		newTestRouter(pages, views).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, http.StatusOK, rec.Code, target)
		require.Equal(t, []call{{op: "fetchPage", name: want}}, pages.calls, target)
		require.Equal(t, want, views.ctx["page"].(viewmodels.PageView).Title, target)
	}
}

func TestViewFailure(t *testing.T) {
	pages := &fakePages{err: errors.New("query failed")}
	views := &fakeViews{}
	rec := httptest.NewRecorder()

	newTestRouter(pages, views).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wiki/Home", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, views.name)
}

func TestViewTemplateFailure(t *testing.T) {
	views := &fakeViews{err: errors.New("bad template")}
	rec := httptest.NewRecorder()

	newTestRouter(&fakePages{}, views).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wiki/Home", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "<html>")
}

func TestViewTemplateFailureKeepsFlashes(t *testing.T) {
	flashes := &middleware.Flashes{Store: middleware.NewCookieStore("0123456789abcdef0123456789abcdef")}
	saved := httptest.NewRecorder()
	require.NoError(t, flashes.Add(saved, httptest.NewRequest(http.MethodPost, "/save", nil), "Page saved"))

	req := httptest.NewRequest(http.MethodGet, "/wiki/Home", nil)
	for _, c := range saved.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	newTestRouter(&fakePages{}, &fakeViews{err: errors.New("bad template")}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Result().Cookies())
}

func TestViewClearsShownFlashes(t *testing.T) {
	flashes := &middleware.Flashes{Store: middleware.NewCookieStore("0123456789abcdef0123456789abcdef")}
	saved := httptest.NewRecorder()
	require.NoError(t, flashes.Add(saved, httptest.NewRequest(http.MethodPost, "/save", nil), "Page saved"))

	req := httptest.NewRequest(http.MethodGet, "/wiki/Home", nil)
	for _, c := range saved.Result().Cookies() {
		req.AddCookie(c)
	}

	views := &fakeViews{}
	rec := httptest.NewRecorder()
	newTestRouter(&fakePages{}, views).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Page saved"}, views.ctx["flashes"])
	require.NotEmpty(t, rec.Result().Cookies())
}

func TestCreateRedirects(t *testing.T) {
	pages := &fakePages{}
	router := newTestRouter(pages, &fakeViews{})

	rec := postForm(router, "/create", url.Values{"name": {"Go Notes"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/wiki/Go%20Notes", rec.Header().Get("Location"))

	rec = postForm(router, "/create", url.Values{"name": {"   "}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	require.Empty(t, pages.calls)
}

func TestSaveNewPageCreates(t *testing.T) {
	pages := &fakePages{}
	rec := postForm(newTestRouter(pages, &fakeViews{}), "/save", url.Values{
		"id":       {"-1"},
		"title":    {"Home"},
		"markdown": {"# Home"},
		"newPage":  {"yes"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/wiki/Home", rec.Header().Get("Location"))
	require.Equal(t, []call{{op: "createPage", name: "Home", markdown: "# Home"}}, pages.calls)
	require.NotEmpty(t, rec.Result().Cookies())
}

func TestSaveExistingPageUpdates(t *testing.T) {
	pages := &fakePages{}
	rec := postForm(newTestRouter(pages, &fakeViews{}), "/save", url.Values{
		"id":       {"12"},
		"title":    {"Home"},
		"markdown": {"Yo!"},
		"newPage":  {"no"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/wiki/Home", rec.Header().Get("Location"))
	require.Equal(t, []call{{op: "savePage", id: 12, markdown: "Yo!"}}, pages.calls)
}

func TestSaveFailureIsServerError(t *testing.T) {
	pages := &fakePages{err: errors.New("constraint violation")}
	rec := postForm(newTestRouter(pages, &fakeViews{}), "/save", url.Values{
		"title":    {"Home"},
		"markdown": {"dup"},
		"newPage":  {"yes"},
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("Location"))
}

func TestSaveRejectsInvalidForm(t *testing.T) {
	pages := &fakePages{}
	router := newTestRouter(pages, &fakeViews{})

	rec := postForm(router, "/save", url.Values{"id": {"abc"}, "title": {"Home"}, "newPage": {"no"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(router, "/save", url.Values{"newPage": {"yes"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(router, "/save", url.Values{"id": {"99999999999999999999"}, "title": {"Home"}, "newPage": {"no"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("Location"))

	require.Empty(t, pages.calls)
}

func TestDelete(t *testing.T) {
	pages := &fakePages{}
	rec := postForm(newTestRouter(pages, &fakeViews{}), "/delete", url.Values{"id": {"5"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Equal(t, []call{{op: "deletePage", id: 5}}, pages.calls)
}

func TestDeleteFailure(t *testing.T) {
	pages := &fakePages{err: errors.New("store unreachable")}
	rec := postForm(newTestRouter(pages, &fakeViews{}), "/delete", url.Values{"id": {"5"}})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("Location"))
}

func TestDeleteInvalidID(t *testing.T) {
	pages := &fakePages{}
	rec := postForm(newTestRouter(pages, &fakeViews{}), "/delete", url.Values{"id": {"five"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, pages.calls)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"yes", "YES", "true", "1", "on"} {
		require.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "no", "false", "0", "maybe"} {
		require.False(t, isTruthy(v), v)
	}
}

func TestPreview(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := chi.NewRouter()
	(&Misc{Markdown: upperMarkdown{}, Log: logger}).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/preview", strings.NewReader("draft")))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "<p>DRAFT</p>", rec.Body.String())
}
