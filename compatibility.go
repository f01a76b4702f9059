// compatibility.go - PDF format compatibility handling
package pdf

import (
	"io"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version string
func (v PDFVersion) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// SupportedVersions defines the supported PDF versions
var SupportedVersions = []PDFVersion{
	{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5}, {1, 6}, {1, 7},
	{2, 0},
}

// IsSupported checks if a version is supported
func (v PDFVersion) IsSupported() bool {
	for _, sv := range SupportedVersions {
		if sv.Major == v.Major && sv.Minor == v.Minor {
			return true
		}
	}
	return false
}

// PDFCompatibilityInfo holds compatibility information
type PDFCompatibilityInfo struct {
	Version             PDFVersion
	IsLinearized        bool
	LinearizationParams map[string]interface{}
	SubFormat           string // "PDF/A", "PDF/X", or ""
	Encryption          string
	HasTransparency     bool
	HasLayers           bool
	HasForms            bool
	HasJavaScript       bool
	Warnings            []string
	Errors              []string
}

// featureMarker pairs a byte-string marker known to appear in a PDF's raw
// bytes with the PDFCompatibilityInfo flag it signals and the warning to
// surface when the flag is set. Scanning the file once against this table
// replaces what was a string of near-identical hasX(data) helpers, each
// re-scanning the whole byte slice on its own.
type featureMarker struct {
	markers []string
	warning string
	set     func(info *PDFCompatibilityInfo)
}

var featureMarkers = []featureMarker{
	{
		markers: []string{"/SMask", "/BM", "/GS"},
		warning: "PDF contains transparency features (may not be fully supported)",
		set:     func(info *PDFCompatibilityInfo) { info.HasTransparency = true },
	},
	{
		// "/OCG" (Optional Content Group) is the unambiguous layers marker;
		// the teacher's original check also matched bare "/D", which hits
		// the Decode, Dest, and every dict's generic "D" abbreviations and
		// so flagged nearly every PDF as layered.
		markers: []string{"/OCG", "/OCProperties"},
		warning: "PDF contains layers/OCG (may not be fully supported)",
		set:     func(info *PDFCompatibilityInfo) { info.HasLayers = true },
	},
	{
		markers: []string{"/AcroForm", "/FT"},
		warning: "PDF contains interactive forms (may not be fully supported)",
		set:     func(info *PDFCompatibilityInfo) { info.HasForms = true },
	},
	{
		markers: []string{"/JS", "/JavaScript"},
		warning: "PDF contains JavaScript (may not be fully supported)",
		set:     func(info *PDFCompatibilityInfo) { info.HasJavaScript = true },
	},
}

// CheckPDFCompatibility analyzes a PDF file for compatibility
func CheckPDFCompatibility(data []byte) (*PDFCompatibilityInfo, error) {
	version, err := parsePDFVersion(data)
	if err != nil {
		return nil, err
	}
	if !version.IsSupported() {
		return nil, pkgerrors.Errorf("PDF version %s is not supported", version.String())
	}

	info := &PDFCompatibilityInfo{
		Version:      version,
		IsLinearized: isLinearizedPDF(data),
		SubFormat:    detectSubFormat(data),
	}

	dataStr := string(data)
	for _, fm := range featureMarkers {
		for _, m := range fm.markers {
			if strings.Contains(dataStr, m) {
				fm.set(info)
				info.Warnings = append(info.Warnings, fm.warning)
				break
			}
		}
	}

	return info, nil
}

// NewReaderLinearized opens a PDF the same way NewReader does, additionally
// running CheckPDFCompatibility up front so callers of a linearized PDF (one
// whose first object carries a /Linearized dictionary, laid out so a viewer
// can render page 1 before the rest of the file arrives) can inspect
// GetCompatibilityInfo without a second pass over the data. size bytes are
// read from f to run the compatibility scan; opts is accepted for parity
// with the other recovery-aware constructors but only consulted if standard
// parsing fails, in which case RecoverPDF is attempted before giving up.
func NewReaderLinearized(f io.ReaderAt, size int64, opts *RecoveryOptions) (*Reader, error) {
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, pkgerrors.Wrap(err, "pdf: reading for linearization check")
	}
	compat, err := CheckPDFCompatibility(data)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, size)
	if err != nil {
		r, err = RecoverPDF(f, size, opts)
		if err != nil {
			return nil, err
		}
	}
	r.compatibility = compat
	return r, nil
}

// GetCompatibilityInfo returns the compatibility report computed when r was
// opened via NewReaderLinearized, or nil if r was opened any other way.
func (r *Reader) GetCompatibilityInfo() *PDFCompatibilityInfo {
	return r.compatibility
}

// parsePDFVersion extracts PDF version from header
func parsePDFVersion(data []byte) (PDFVersion, error) {
	if len(data) < 8 {
		return PDFVersion{}, pkgerrors.New("data too short for PDF header")
	}

	// Find %PDF- header
	sig := "%PDF-"
	sigIdx := -1
	for i := 0; i <= len(data)-len(sig); i++ {
		if string(data[i:i+len(sig)]) == sig {
			sigIdx = i
			break
		}
	}
	if sigIdx == -1 {
		return PDFVersion{}, pkgerrors.New("not a PDF file: missing %PDF- header")
	}

	// sigIdx+7 points to the last character of version (e.g., '7' in '%PDF-1.7')
	// We need at least sigIdx+8 bytes to have the complete version string
	if sigIdx+8 > len(data) {
		return PDFVersion{}, pkgerrors.New("not a PDF file: invalid header")
	}

	major := int(data[sigIdx+5] - '0')
	minor := int(data[sigIdx+7] - '0')

	return PDFVersion{Major: major, Minor: minor}, nil
}

// isLinearizedPDF checks if PDF is linearized
func isLinearizedPDF(data []byte) bool {
	// Linearized PDFs have a linearization dictionary as the first object
	// Look for "/Linearized" anywhere in the data
	return strings.Contains(string(data), "/Linearized")
}

// detectSubFormat detects PDF/A or PDF/X format
func detectSubFormat(data []byte) string {
	dataStr := string(data)

	switch {
	case strings.Contains(dataStr, "pdfaid:part") && strings.Contains(dataStr, "pdfaid:conformance"):
		return "PDF/A"
	case strings.Contains(dataStr, "pdfx:") || strings.Contains(dataStr, "PDF/X"):
		return "PDF/X"
	case strings.Contains(dataStr, "/GTS_PDFA"):
		return "PDF/A"
	case strings.Contains(dataStr, "/GTS_PDFX"):
		return "PDF/X"
	}
	return ""
}

// ValidatePDFA validates PDF/A compliance
func ValidatePDFA(data []byte) ([]string, error) {
	var warnings []string
	dataStr := string(data)

	if !strings.Contains(dataStr, "pdfaid:part") {
		warnings = append(warnings, "Missing PDF/A identification metadata")
	}
	if !strings.Contains(dataStr, "/Font") {
		warnings = append(warnings, "No fonts found - PDF/A requires all fonts to be embedded")
	}
	if strings.Contains(dataStr, "/SMask") || strings.Contains(dataStr, "/BM") {
		warnings = append(warnings, "Transparency found - not allowed in PDF/A-1")
	}
	if strings.Contains(dataStr, "/JS") || strings.Contains(dataStr, "/JavaScript") {
		warnings = append(warnings, "JavaScript found - not allowed in PDF/A")
	}

	return warnings, nil
}

// ValidatePDFX validates PDF/X compliance
func ValidatePDFX(data []byte) ([]string, error) {
	var warnings []string
	dataStr := string(data)

	if !strings.Contains(dataStr, "pdfx:") && !strings.Contains(dataStr, "/GTS_PDFX") {
		warnings = append(warnings, "Missing PDF/X identification metadata")
	}
	if !strings.Contains(dataStr, "/OutputIntents") {
		warnings = append(warnings, "Missing output intents - required for PDF/X")
	}
	if !strings.Contains(dataStr, "/ColorSpace") {
		warnings = append(warnings, "No color space definitions found")
	}

	return warnings, nil
}
