package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T, pageCount int) *Document {
	t.Helper()
	data := buildTestPDF(pageCount, "1.4", false)
	doc, err := OpenDocumentReader(bytes.NewReader(data), int64(len(data)), Default())
	require.NoError(t, err, "OpenDocumentReader")
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestOpenDocumentReaderAppliesDefaultErrorConfig(t *testing.T) {
	data := buildTestPDF(1, "1.4", false)
	doc, err := OpenDocumentReader(bytes.NewReader(data), int64(len(data)), ErrorConfig{})
	require.NoError(t, err, "OpenDocumentReader")
	defer doc.Close()
	assert.Equal(t, Default().MaxErrors, doc.cfg.MaxErrors, "zero ErrorConfig should fall back to Default()")
}

func TestOpenDocumentReaderRejectsBadHeader(t *testing.T) {
	data := []byte("not a pdf at all")
	_, err := OpenDocumentReader(bytes.NewReader(data), int64(len(data)), Default())
	assert.Error(t, err, "expected an error for a malformed header")
}

func TestDocumentPageCount(t *testing.T) {
	doc := newTestDocument(t, 3)
	assert.Equal(t, 3, doc.PageCount())
}

func TestDocumentPageInfo(t *testing.T) {
	doc := newTestDocument(t, 1)
	info, err := doc.PageInfo(1)
	require.NoError(t, err, "PageInfo(1)")
	assert.Equal(t, PageInfo{Page: 1, Width: 612, Height: 792, Rotation: 0}, info)
}

func TestDocumentPageInfoOutOfRange(t *testing.T) {
	doc := newTestDocument(t, 1)
	_, err := doc.PageInfo(2)
	assert.Error(t, err, "expected an error for a page index beyond PageCount()")
}

func TestDocumentExtractPageText(t *testing.T) {
	doc := newTestDocument(t, 2)
	text, err := doc.ExtractPageText(1)
	require.NoError(t, err, "ExtractPageText(1)")
	assert.Contains(t, text, "Hello page 1")
}

func TestDocumentExtractAllText(t *testing.T) {
	doc := newTestDocument(t, 2)
	text, err := doc.ExtractAllText()
	require.NoError(t, err, "ExtractAllText")
	assert.Contains(t, text, "Hello page 1")
	assert.Contains(t, text, "Hello page 2")

	page1, err := doc.ExtractPageText(1)
	require.NoError(t, err, "ExtractPageText(1)")
	page2, err := doc.ExtractPageText(2)
	require.NoError(t, err, "ExtractPageText(2)")

	want := page1 + "\x0C" + page2
	assert.Equal(t, want, text, "ExtractAllText() must join pages with a literal form-feed")
}

func TestDocumentExtractPageSpans(t *testing.T) {
	doc := newTestDocument(t, 1)
	spans, err := doc.ExtractPageSpans(1)
	require.NoError(t, err, "ExtractPageSpans(1)")
	require.NotEmpty(t, spans, "ExtractPageSpans(1) returned no spans")
	for _, s := range spans {
		assert.Equal(t, 1, s.Page)
	}
}

func TestDocumentAnalyzeLayout(t *testing.T) {
	doc := newTestDocument(t, 1)
	result, err := doc.AnalyzeLayout(1)
	require.NoError(t, err, "AnalyzeLayout(1)")
	assert.NotEmpty(t, result.Text, "AnalyzeLayout(1).Text should hold the page's rendered text")
}

func TestDocumentExtractPageReadingOrderFallsBackToLayout(t *testing.T) {
	doc := newTestDocument(t, 1)
	text, err := doc.ExtractPageReadingOrder(1)
	require.NoError(t, err, "ExtractPageReadingOrder(1)")
	assert.NotEmpty(t, text, "ExtractPageReadingOrder(1) should fall back to geometric reading order")
}

func TestDocumentExtractPageMarkdown(t *testing.T) {
	doc := newTestDocument(t, 1)
	md, err := doc.ExtractPageMarkdown(1)
	require.NoError(t, err, "ExtractPageMarkdown(1)")
	assert.NotEmpty(t, md)
}

func TestDocumentExtractAllMarkdownSeparatesPagesWithRule(t *testing.T) {
	doc := newTestDocument(t, 2)
	md, err := doc.ExtractAllMarkdown()
	require.NoError(t, err, "ExtractAllMarkdown")
	assert.Contains(t, md, "\n\n---\n\n", "want a horizontal rule between pages")
}
