package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// defaultLogger is the façade-and-CLI-only logger (spec §4.13 and §6):
// core parsing, filter, and font code never logs directly, matching the
// teacher's convention of confining observability to the API boundary.
var defaultLogger = zap.NewNop().Sugar()

// SetLogger overrides the package-level logger used by Document.
// Passing nil is a no-op.
func SetLogger(l *zap.Logger) {
	if l != nil {
		defaultLogger = l.Sugar()
	}
}

// PageInfo is the per-page metadata spec §4.13's page_info(i) returns:
// a page's dimensions in points (post-rotation, via Page.Dimensions)
// and its rotation in degrees.
type PageInfo struct {
	Page     int
	Width    float64
	Height   float64
	Rotation int
}

// Document is the façade spec §4.13 describes: it owns the Reader, the
// underlying file handle, the error log accumulated under its
// ErrorConfig, and orchestrates the extraction, layout, structure-tree,
// and Markdown packages behind one cohesive API. It is grounded on
// extractor.go's Extractor builder, widened to cover the whole of the
// spec's operation surface rather than just text extraction.
type Document struct {
	reader *Reader
	file   *os.File
	cfg    ErrorConfig
	errors *errorLog
}

// OpenDocument opens path under cfg's error tolerance (spec §4.13's
// open(byte-source, error-config) -> Document | Error). The zero
// ErrorConfig behaves like Default(). A structural failure (bad header,
// unreadable xref, cyclic page tree encountered while counting pages)
// is always fatal regardless of cfg, since there is no Document left to
// return partial results from.
func OpenDocument(path string, cfg ErrorConfig) (*Document, error) {
	if cfg == (ErrorConfig{}) {
		cfg = Default()
	}
	f, reader, err := Open(path)
	if err != nil {
		return nil, newExtractError(InvalidHeader, 0, 0, "failed to open PDF", err)
	}
	doc := &Document{
		reader: reader,
		file:   f,
		cfg:    cfg,
		errors: newErrorLog(cfg),
	}
	defaultLogger.Debugw("opened document", "path", path, "pages", reader.NumPage())
	return doc, nil
}

// OpenDocumentReader is like OpenDocument but wraps an already-open
// ReaderAt (spec §4.13's byte-source may be an in-memory buffer rather
// than a path), such as bytes.NewReader(buf) for embedding callers.
func OpenDocumentReader(f io.ReaderAt, size int64, cfg ErrorConfig) (*Document, error) {
	if cfg == (ErrorConfig{}) {
		cfg = Default()
	}
	reader, err := NewReader(f, size)
	if err != nil {
		return nil, newExtractError(InvalidHeader, 0, 0, "failed to open PDF", err)
	}
	return &Document{reader: reader, cfg: cfg, errors: newErrorLog(cfg)}, nil
}

// Close releases the Document's underlying Reader and file handle.
func (d *Document) Close() error {
	err := d.reader.Close()
	if d.file != nil {
		if cerr := d.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Errors returns the errors accumulated while tolerant extraction
// operations recovered from page- or object-level failures, oldest
// first (spec §4.13 / §7).
func (d *Document) Errors() []*ExtractError {
	return d.errors.Errors()
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// PageInfo returns page num's (1-indexed) dimensions and rotation.
func (d *Document) PageInfo(num int) (PageInfo, error) {
	page, err := d.reader.PageErr(num)
	if err != nil {
		return PageInfo{}, err
	}
	if page.V.IsNull() {
		return PageInfo{}, newExtractError(MissingObject, 0, num, fmt.Sprintf("page %d does not exist", num), nil)
	}
	w, h := page.Dimensions()
	return PageInfo{Page: num, Width: w, Height: h, Rotation: page.Rotate()}, nil
}

// recoverPageErr folds err into the Document's error log and reports
// whether the caller should treat it as recovered (return zero value,
// keep going) or fatal (propagate err up).
func (d *Document) recoverPageErr(num int, kind Kind, message string, err error) error {
	xerr := newExtractError(kind, 0, num, message, err)
	if d.errors.add(xerr) {
		return nil
	}
	return xerr
}

// ExtractPageText returns page num's text in raster (glyph-emission)
// order, per spec §4.3/§4.13. A page-level failure is recovered under
// d.cfg (returning "", nil) unless the error kind is intolerable or
// MaxErrors has been exceeded.
func (d *Document) ExtractPageText(num int) (string, error) {
	page, err := d.reader.PageErr(num)
	if err != nil {
		return "", err
	}
	if page.V.IsNull() {
		return "", newExtractError(MissingObject, 0, num, fmt.Sprintf("page %d does not exist", num), nil)
	}
	defer page.Cleanup()
	text, err := page.GetPlainText(context.Background(), nil)
	if err != nil {
		if rerr := d.recoverPageErr(num, EncodingError, "failed to extract page text", err); rerr != nil {
			return "", rerr
		}
		return "", nil
	}
	return text, nil
}

// ExtractPageSpans returns page num's positioned glyph runs as the
// Layout Analyzer's TextSpan input (spec §4.11's bridge from C3's Text
// to the layout package, via layout.go's spansFromText).
func (d *Document) ExtractPageSpans(num int) ([]TextSpan, error) {
	page, err := d.reader.PageErr(num)
	if err != nil {
		return nil, err
	}
	if page.V.IsNull() {
		return nil, newExtractError(MissingObject, 0, num, fmt.Sprintf("page %d does not exist", num), nil)
	}
	defer page.Cleanup()
	content := page.Content()
	return spansFromText(content.Text, num), nil
}

// AnalyzeLayout runs the spec §4.11 layout algorithm over page num's
// spans, using the page's own MediaBox width for column detection.
func (d *Document) AnalyzeLayout(num int) (LayoutResult, error) {
	page, err := d.reader.PageErr(num)
	if err != nil {
		return LayoutResult{}, err
	}
	if page.V.IsNull() {
		return LayoutResult{}, newExtractError(MissingObject, 0, num, fmt.Sprintf("page %d does not exist", num), nil)
	}
	defer page.Cleanup()
	content := page.Content()
	width, _ := page.Dimensions()
	spans := spansFromText(content.Text, num)
	return AnalyzeLayout(spans, width), nil
}

// ExtractPageReadingOrder returns page num's text in reading order (spec
// §4.13): the structure tree's StructTreeRoot when the document carries
// one (spec §4.10), falling back to the geometric Layout Analyzer (spec
// §4.11) otherwise.
func (d *Document) ExtractPageReadingOrder(num int) (string, error) {
	if d.reader.HasStructTree() {
		if text, ok := d.reader.ReadingOrderFromStructTree(num); ok {
			return text, nil
		}
	}
	layout, err := d.AnalyzeLayout(num)
	if err != nil {
		return "", err
	}
	return layout.Text, nil
}

// ExtractPageMarkdown renders page num as heuristic Markdown (spec
// §4.12).
func (d *Document) ExtractPageMarkdown(num int) (string, error) {
	page, err := d.reader.PageErr(num)
	if err != nil {
		return "", err
	}
	if page.V.IsNull() {
		return "", newExtractError(MissingObject, 0, num, fmt.Sprintf("page %d does not exist", num), nil)
	}
	defer page.Cleanup()
	content := page.Content()
	return RenderMarkdown(content.Text), nil
}

// ExtractAllText concatenates ExtractPageText across every page,
// separated by a form feed, matching C3's existing GetPlainText page
// join convention.
func (d *Document) ExtractAllText() (string, error) {
	var b strings.Builder
	n := d.PageCount()
	for i := 1; i <= n; i++ {
		text, err := d.ExtractPageText(i)
		if err != nil {
			return "", err
		}
		if i > 1 {
			b.WriteByte('\f')
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// ExtractAllReadingOrder joins ExtractPageReadingOrder across every
// page with a blank line between pages.
func (d *Document) ExtractAllReadingOrder() (string, error) {
	var parts []string
	n := d.PageCount()
	for i := 1; i <= n; i++ {
		text, err := d.ExtractPageReadingOrder(i)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// ExtractAllMarkdown joins ExtractPageMarkdown across every page,
// separated by a horizontal rule (spec §4.12), so a reader can tell
// where one page's content ended and the next began.
func (d *Document) ExtractAllMarkdown() (string, error) {
	var parts []string
	n := d.PageCount()
	for i := 1; i <= n; i++ {
		md, err := d.ExtractPageMarkdown(i)
		if err != nil {
			return "", err
		}
		parts = append(parts, md)
	}
	return strings.Join(parts, "\n\n---\n\n"), nil
}
