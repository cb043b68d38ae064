package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownHeading(t *testing.T) {
	out, err := NewMarkdown().Render("# A new page\n\nFeel free to write in Markdown!\n")
	require.NoError(t, err)
	require.Contains(t, out, `<h1 id="a-new-page">A new page</h1>`)
	require.Contains(t, out, "<p>Feel free to write in Markdown!</p>")
}

func TestMarkdownStripsScripts(t *testing.T) {
	out, err := NewMarkdown().Render("hello <script>alert('x')</script>\n")
	require.NoError(t, err)
	require.NotContains(t, out, "<script")
	require.Contains(t, out, "hello")
}

func TestMarkdownHighlightsCode(t *testing.T) {
	out, err := NewMarkdown().Render("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)
	require.Contains(t, out, `class="chroma"`)
	require.Contains(t, out, "main")
}

func TestMarkdownUnknownLanguage(t *testing.T) {
	out, err := NewMarkdown().Render("```nosuchlang\n<b>x</b>\n```\n")
	require.NoError(t, err)
	require.Contains(t, out, "&lt;b&gt;x&lt;/b&gt;")
}

func TestMarkdownTables(t *testing.T) {
	out, err := NewMarkdown().Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<td>1</td>")
}
