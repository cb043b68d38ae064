package view

import (
	"embed"
	"io/fs"

	"github.com/flosch/pongo2/v6"
	"github.com/pkg/errors"
)

//go:embed templates
var templateFiles embed.FS

// Engine renders the embedded pongo2 templates.
type Engine struct {
	set *pongo2.TemplateSet
}

// New creates an engine over the embedded templates.
func New() *Engine {
	fsys, _ := fs.Sub(templateFiles, "templates")
	return &Engine{set: pongo2.NewSet("gowiki", pongo2.NewFSLoader(fsys))}
}

// Render executes the named template with ctx and returns the whole
// document, so nothing is written when rendering fails halfway.
func (e *Engine) Render(name string, ctx pongo2.Context) (string, error) {
	tpl, err := e.set.FromCache(name)
	if err != nil {
		return "", errors.Wrapf(err, "load template %s", name)
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "execute template %s", name)
	}
	return out, nil
}
