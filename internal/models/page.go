package models

// Page represents a single wiki page. Content is raw Markdown.
type Page struct {
	ID      int64
	Name    string
	Content string
}

// PageLookup is the result of fetching a page by name. Found is false when
// no page with that name exists yet.
type PageLookup struct {
	Found      bool
	ID         int64
	RawContent string
}

// PageData is a name and content pair as returned by a full export.
type PageData struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}
