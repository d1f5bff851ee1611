package extract

import (
	"testing"

	"github.com/gaurav-prasanna/pagemark/core/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallbackText = "Hello world, this is a test of extraction fallback logic with more than fifty characters total to pass the main-content threshold."

func parse(t *testing.T, src string) *page.Document {
	t.Helper()
	doc, err := page.ParseString(src, "https://example.com/guide")
	require.NoError(t, err)
	return doc
}

func TestContentRoot_PriorityAndThreshold(t *testing.T) {
	doc := parse(t, `<html><body>
		<article>too short</article>
		<main><p>`+fallbackText+`</p></main>
		<div id="content"><p>`+fallbackText+`</p></div>
	</body></html>`)

	root := ContentRoot(doc.Document)
	require.Equal(t, 1, root.Length())
	assert.Equal(t, "main", root.Nodes[0].Data)
}

func TestContentRoot_RoleMainBeforeClassContent(t *testing.T) {
	doc := parse(t, `<html><body>
		<div class="content"><p>`+fallbackText+`</p></div>
		<section role="main"><p>`+fallbackText+`</p></section>
	</body></html>`)

	root := ContentRoot(doc.Document)
	assert.Equal(t, "section", root.Nodes[0].Data)
}

func TestContentRoot_OnlyFirstMatchOfSelectorIsConsidered(t *testing.T) {
	doc := parse(t, `<html><body>
		<article>short</article>
		<article><p>`+fallbackText+`</p></article>
		<p>body text</p>
	</body></html>`)

	root := ContentRoot(doc.Document)
	assert.Equal(t, "body", root.Nodes[0].Data)
}

func TestContentRoot_FallsBackToBody(t *testing.T) {
	doc := parse(t, `<html><body><p>x</p></body></html>`)
	assert.Equal(t, "body", ContentRoot(doc.Document).Nodes[0].Data)
}

func TestExtract_FallbackChunk(t *testing.T) {
	doc := parse(t, `<html><head><title> Guide
		Page </title></head><body><div id="content">
		`+fallbackText+`
	</div></body></html>`)

	content, err := Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, "Guide Page", content.Title)
	assert.Equal(t, "https://example.com/guide", content.URL)
	require.Len(t, content.Chunks, 1)
	assert.Equal(t, "", content.Chunks[0].Heading)
	assert.Equal(t, fallbackText, content.Chunks[0].Text)
}

func TestExtract_ChunksInHeadingOrder(t *testing.T) {
	doc := parse(t, `<html><body><main>
		<h1>Overview</h1><p>`+fallbackText+`</p>
		<h2>Assessment</h2><p>Check the pulse.</p>
		<h2>Management</h2><p>Refer urgently.</p>
		<h3></h3>
	</main></body></html>`)

	content, err := Extract(doc)
	require.NoError(t, err)

	// The empty h3 produces no chunk.
	require.Len(t, content.Chunks, 3)
	assert.Equal(t, []string{"Overview", "Assessment", "Management"},
		[]string{content.Chunks[0].Heading, content.Chunks[1].Heading, content.Chunks[2].Heading})
	assert.Equal(t, "Assessment Check the pulse.", content.Chunks[1].Text)
	for _, c := range content.Chunks {
		assert.NotEmpty(t, c.Text)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	doc := parse(t, `<html><body><article>
		<h2>One</h2><p>`+fallbackText+`</p><h2>Two</h2><ul><li>a</li><li>b</li></ul>
	</article></body></html>`)

	first, err := Extract(doc)
	require.NoError(t, err)
	second, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_NilDocument(t *testing.T) {
	_, err := Extract(nil)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestExtract_EmptyPageHasNoChunks(t *testing.T) {
	content, err := Extract(parse(t, `<html><body>  </body></html>`))
	require.NoError(t, err)
	assert.NotNil(t, content.Chunks)
	assert.Empty(t, content.Chunks)
}
