// Package ffi exposes the Document façade over a flat, numeric handle
// table, shaped for spec §6's foreign-function surface (a future cgo
// //export boundary): flat integer handles in place of pointers,
// (data, error) returns in place of (ptr, len, status) out-params, and
// explicit Free* functions paired to each allocating call. It requires
// no cgo build tag to compile or test in pure Go — a cgo wrapper can
// export these functions directly once one is needed.
package ffi

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"

	pdf "github.com/dcarden/pdftext"
)

// Handle identifies an open Document across the FFI boundary.
type Handle int32

var (
	handlesMu sync.RWMutex
	handles   = make(map[Handle]*pdf.Document)
	nextID    int32

	errInvalidHandle = errors.New("ffi: invalid handle")
)

func store(doc *pdf.Document) Handle {
	id := Handle(atomic.AddInt32(&nextID, 1))
	handlesMu.Lock()
	handles[id] = doc
	handlesMu.Unlock()
	return id
}

func lookup(h Handle) (*pdf.Document, bool) {
	handlesMu.RLock()
	doc, ok := handles[h]
	handlesMu.RUnlock()
	return doc, ok
}

// Open opens the PDF at path (spec's open(path) -> handle).
func Open(path string) (Handle, error) {
	doc, err := pdf.OpenDocument(path, pdf.Default())
	if err != nil {
		return 0, err
	}
	return store(doc), nil
}

// OpenMemory opens a PDF already resident in memory (spec's
// open_memory(ptr, len) -> handle); Go callers pass the buffer
// directly rather than a raw pointer and length.
func OpenMemory(data []byte) (Handle, error) {
	doc, err := pdf.OpenDocumentReader(bytes.NewReader(data), int64(len(data)), pdf.Default())
	if err != nil {
		return 0, err
	}
	return store(doc), nil
}

// Close releases the Document behind h (spec's close(handle)). Closing
// an unknown or already-closed handle is a no-op, so a caller that lost
// track of whether it already freed a handle can call this safely.
func Close(h Handle) error {
	handlesMu.Lock()
	doc, ok := handles[h]
	delete(handles, h)
	handlesMu.Unlock()
	if !ok {
		return nil
	}
	return doc.Close()
}

// PageCount returns h's page count, or -1 if h is unknown (spec's
// page_count(handle) -> i32).
func PageCount(h Handle) int32 {
	doc, ok := lookup(h)
	if !ok {
		return -1
	}
	return int32(doc.PageCount())
}

// Buffer is a caller-owned byte buffer standing in for spec's (ptr, len)
// return pair.
type Buffer struct {
	Data []byte
}

// FreeBuffer releases b (spec's free_buffer). A no-op in Go, since the
// runtime GC owns the backing array once Data is cleared; kept so a cgo
// wrapper's free_buffer export has a concrete body to call.
func FreeBuffer(b *Buffer) {
	if b != nil {
		b.Data = nil
	}
}

// ExtractPage returns page num's raster-order text (spec's
// extract_page(handle, page_num) -> (ptr, len)).
func ExtractPage(h Handle, num int) (Buffer, error) {
	doc, ok := lookup(h)
	if !ok {
		return Buffer{}, errInvalidHandle
	}
	text, err := doc.ExtractPageText(num)
	if err != nil {
		return Buffer{}, err
	}
	return Buffer{Data: []byte(text)}, nil
}

// ExtractAll returns every page's raster-order text concatenated (spec's
// extract_all(handle) -> (ptr, len)).
func ExtractAll(h Handle) (Buffer, error) {
	doc, ok := lookup(h)
	if !ok {
		return Buffer{}, errInvalidHandle
	}
	text, err := doc.ExtractAllText()
	if err != nil {
		return Buffer{}, err
	}
	return Buffer{Data: []byte(text)}, nil
}

// ExtractPageMarkdown returns page num's rendered Markdown (spec's
// extract_page_markdown).
func ExtractPageMarkdown(h Handle, num int) (Buffer, error) {
	doc, ok := lookup(h)
	if !ok {
		return Buffer{}, errInvalidHandle
	}
	md, err := doc.ExtractPageMarkdown(num)
	if err != nil {
		return Buffer{}, err
	}
	return Buffer{Data: []byte(md)}, nil
}

// ExtractAllMarkdown returns every page's rendered Markdown joined by a
// horizontal rule (spec's extract_all_markdown).
func ExtractAllMarkdown(h Handle) (Buffer, error) {
	doc, ok := lookup(h)
	if !ok {
		return Buffer{}, errInvalidHandle
	}
	md, err := doc.ExtractAllMarkdown()
	if err != nil {
		return Buffer{}, err
	}
	return Buffer{Data: []byte(md)}, nil
}

// Bound is one entry of spec's extract_bounds array: a positioned glyph
// run's bounding box, text, and font size.
type Bound struct {
	X0, Y0, X1, Y1 float64
	Text           string
	FontSize       float64
}

// Bounds is the caller-owned array spec's extract_bounds returns,
// paired with FreeBounds.
type Bounds struct {
	Items []Bound
}

// FreeBounds releases b (spec's free_bounds), mirroring FreeBuffer.
func FreeBounds(b *Bounds) {
	if b != nil {
		b.Items = nil
	}
}

// ExtractBounds returns page num's positioned glyph runs (spec's
// extract_bounds(handle, page_num) -> (array of {...}, count)).
func ExtractBounds(h Handle, num int) (Bounds, error) {
	doc, ok := lookup(h)
	if !ok {
		return Bounds{}, errInvalidHandle
	}
	spans, err := doc.ExtractPageSpans(num)
	if err != nil {
		return Bounds{}, err
	}
	items := make([]Bound, len(spans))
	for i, s := range spans {
		items[i] = Bound{X0: s.X0, Y0: s.Y0, X1: s.X1, Y1: s.Y1, Text: s.Text, FontSize: s.FontSize}
	}
	return Bounds{Items: items}, nil
}

// PageInfo mirrors pdf.PageInfo across the FFI boundary (spec's
// page_info(handle, page_num) -> {width, height, rotation}).
type PageInfo struct {
	Width    float64
	Height   float64
	Rotation int32
}

// GetPageInfo returns page num's dimensions and rotation, or ok=false on
// an invalid handle or page — spec's "-1 on error" expressed as Go's
// idiomatic ok-boolean rather than a sentinel value.
func GetPageInfo(h Handle, num int) (info PageInfo, ok bool) {
	doc, found := lookup(h)
	if !found {
		return PageInfo{}, false
	}
	pi, err := doc.PageInfo(num)
	if err != nil {
		return PageInfo{}, false
	}
	return PageInfo{Width: pi.Width, Height: pi.Height, Rotation: int32(pi.Rotation)}, true
}
