package pdf

import "golang.org/x/text/encoding/charmap"

// charmapDecoder decodes single-byte PDF text against a golang.org/x/text
// charmap codepage, with a small table of PDF-specific overrides layered
// on top for the handful of codepoints where WinAnsiEncoding or
// PDFDocEncoding (PDF32000 Annex D) diverge from the nearest stdlib
// charmap — the same "base table plus Differences" layering the font
// encoder already applies for /Differences dictionaries.
type charmapDecoder struct {
	cm        *charmap.Charmap
	overrides map[byte]rune
}

func (e *charmapDecoder) Decode(raw string) string {
	r := make([]rune, len(raw))
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if ch, ok := e.overrides[b]; ok {
			r[i] = ch
			continue
		}
		r[i] = e.cm.DecodeByte(b)
	}
	return string(r)
}

// winAnsiOverrides maps 0x18-0x1F to the spacing accent glyphs and 0x7F
// to bullet; every other byte, including the 0x80-0x9F block, decodes
// through the Windows-1252 table.
var winAnsiOverrides = map[byte]rune{
	0x18: 0x02D8, // breve
	0x19: 0x02C7, // caron
	0x1A: 0x02C6, // modifier letter circumflex accent
	0x1B: 0x02D9, // dot above
	0x1C: 0x02DD, // double acute accent
	0x1D: 0x02DB, // ogonek
	0x1E: 0x02DA, // ring above
	0x1F: 0x02DC, // small tilde
	0x7F: 0x2022, // bullet (undefined in WinAnsi, Adobe fallback)
}

// pdfDocOverrides covers the codepoints where PDFDocEncoding diverges
// from WinAnsiEncoding's CP1252 base: the 0x18-0x1F breathing-mark block
// (shared with WinAnsi above) plus PDFDocEncoding's own bullet/dagger
// punctuation run at 0x80-0x8F, which CP1252 assigns to different glyphs.
var pdfDocOverrides = map[byte]rune{
	0x18: 0x02D8,
	0x19: 0x02C7,
	0x1A: 0x02C6,
	0x1B: 0x02D9,
	0x1C: 0x02DD,
	0x1D: 0x02DB,
	0x1E: 0x02DA,
	0x1F: 0x02DC,
	0x80: 0x2022, // bullet
	0x81: 0x2020, // dagger
	0x82: 0x2021, // double dagger
	0x83: 0x2026, // horizontal ellipsis
	0x84: 0x2014, // em dash
	0x85: 0x2013, // en dash
	0x86: 0x0192, // florin
	0x87: 0x2044, // fraction slash
	0x88: 0x2039, // single left angle quote
	0x89: 0x203A, // single right angle quote
	0x8A: 0x2212, // minus sign
	0x8B: 0x2030, // per mille
	0x8C: 0x201E, // double low quote
	0x8D: 0x201C, // left double quote
	0x8E: 0x201D, // right double quote
	0x8F: 0x2018, // left single quote
}

func newWinAnsiDecoder() TextEncoding {
	return &charmapDecoder{cm: charmap.Windows1252, overrides: winAnsiOverrides}
}

func newMacRomanDecoder() TextEncoding {
	return &charmapDecoder{cm: charmap.Macintosh}
}

func newPDFDocDecoder() TextEncoding {
	return &charmapDecoder{cm: charmap.Windows1252, overrides: pdfDocOverrides}
}
