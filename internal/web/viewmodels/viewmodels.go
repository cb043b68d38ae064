package viewmodels

import "net/url"

// NewPageID marks a page view whose page has not been stored yet.
const NewPageID int64 = -1

// PageLink is one entry of the page index.
type PageLink struct {
	Name string
	Path string
}

// NewPageLink links to the wiki page called name.
func NewPageLink(name string) PageLink {
	return PageLink{Name: name, Path: WikiPath(name)}
}

// WikiPath is the URL path of the wiki page called name.
func WikiPath(name string) string {
	return "/wiki/" + url.PathEscape(name)
}

// PageView holds everything the page template shows for a single page.
type PageView struct {
	Title      string
	ID         int64
	NewPage    bool
	RawContent string
	Content    string // rendered HTML
	Timestamp  string
}
