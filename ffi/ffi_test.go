package ffi

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// buildMinimalPDF assembles a tiny one-page, valid PDF with a single text
// run, enough to exercise Open/OpenMemory and the extraction calls without
// needing a fixture file on disk.
func buildMinimalPDF() []byte {
	var b strings.Builder
	var offsets []int
	record := func() { offsets = append(offsets, b.Len()) }

	b.WriteString("%PDF-1.4\n")

	record()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	record()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	record()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Contents 4 0 R /Resources << /Font << /F1 << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> >> >> >>\nendobj\n")

	content := "BT /F1 12 Tf 50 700 Td (Hello FFI) Tj ET"
	record()
	fmt.Fprintf(&b, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content)

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(offsets)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xrefOffset)

	return []byte(b.String())
}

func TestOpenMemoryAndExtractPage(t *testing.T) {
	h, err := OpenMemory(buildMinimalPDF())
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer Close(h)

	if got := PageCount(h); got != 1 {
		t.Fatalf("PageCount(h) = %d, want 1", got)
	}

	buf, err := ExtractPage(h, 1)
	if err != nil {
		t.Fatalf("ExtractPage(h, 1) failed: %v", err)
	}
	if !strings.Contains(string(buf.Data), "Hello FFI") {
		t.Errorf("ExtractPage(h, 1) = %q, want it to contain %q", buf.Data, "Hello FFI")
	}
	FreeBuffer(&buf)
	if buf.Data != nil {
		t.Error("FreeBuffer did not clear Data")
	}
}

func TestExtractAllAndMarkdown(t *testing.T) {
	h, err := OpenMemory(buildMinimalPDF())
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer Close(h)

	all, err := ExtractAll(h)
	if err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	if !strings.Contains(string(all.Data), "Hello FFI") {
		t.Errorf("ExtractAll() = %q, want it to contain %q", all.Data, "Hello FFI")
	}

	md, err := ExtractPageMarkdown(h, 1)
	if err != nil {
		t.Fatalf("ExtractPageMarkdown failed: %v", err)
	}
	if len(md.Data) == 0 {
		t.Error("ExtractPageMarkdown returned an empty buffer")
	}

	allMd, err := ExtractAllMarkdown(h)
	if err != nil {
		t.Fatalf("ExtractAllMarkdown failed: %v", err)
	}
	if len(allMd.Data) == 0 {
		t.Error("ExtractAllMarkdown returned an empty buffer")
	}
}

func TestExtractBounds(t *testing.T) {
	h, err := OpenMemory(buildMinimalPDF())
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer Close(h)

	bounds, err := ExtractBounds(h, 1)
	if err != nil {
		t.Fatalf("ExtractBounds failed: %v", err)
	}
	if len(bounds.Items) == 0 {
		t.Fatal("ExtractBounds returned no items")
	}
	if bounds.Items[0].Text != "Hello FFI" {
		t.Errorf("bounds.Items[0].Text = %q, want %q", bounds.Items[0].Text, "Hello FFI")
	}
	FreeBounds(&bounds)
	if bounds.Items != nil {
		t.Error("FreeBounds did not clear Items")
	}
}

func TestGetPageInfo(t *testing.T) {
	h, err := OpenMemory(buildMinimalPDF())
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer Close(h)

	info, ok := GetPageInfo(h, 1)
	if !ok {
		t.Fatal("GetPageInfo(h, 1) ok = false, want true")
	}
	if info.Width != 612 || info.Height != 792 {
		t.Errorf("GetPageInfo(h, 1) = %+v, want {Width:612 Height:792 ...}", info)
	}

	if _, ok := GetPageInfo(h, 2); ok {
		t.Error("GetPageInfo(h, 2) ok = true for an out-of-range page, want false")
	}
}

func TestInvalidHandleOperations(t *testing.T) {
	const bogus Handle = 99999
	if got := PageCount(bogus); got != -1 {
		t.Errorf("PageCount(bogus) = %d, want -1", got)
	}
	if _, err := ExtractPage(bogus, 1); err == nil {
		t.Error("ExtractPage(bogus, 1) expected an error")
	}
	if _, ok := GetPageInfo(bogus, 1); ok {
		t.Error("GetPageInfo(bogus, 1) ok = true, want false")
	}
	if err := Close(bogus); err != nil {
		t.Errorf("Close(bogus) = %v, want nil (closing an unknown handle is a no-op)", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	path := "/nonexistent/path/to/a/file/that/does/not/exist.pdf"
	if _, err := os.Stat(path); err == nil {
		t.Skip("unexpectedly exists")
	}
	if _, err := Open(path); err == nil {
		t.Error("Open(missing file) expected an error")
	}
}
