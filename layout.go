package pdf

import (
	"math"
	"sort"
	"strings"
)

// TextSpan is one positioned run of text in page space (origin bottom-left,
// per spec): the bounding box a glyph run occupies, its text, the font
// size it was drawn at, and the 1-indexed page it belongs to.
type TextSpan struct {
	X0, Y0, X1, Y1 float64
	Text           string
	FontSize       float64
	Page           int
}

// spansFromText converts the content interpreter's positioned glyph runs
// (Text, grounded on page.go's hot-path output type) into the Layout
// Analyzer's TextSpan input, estimating each span's vertical extent as one
// font-size above its baseline since Text carries no ascent/descent.
func spansFromText(texts []Text, page int) []TextSpan {
	spans := make([]TextSpan, len(texts))
	for i, t := range texts {
		spans[i] = TextSpan{
			X0:       t.X,
			Y0:       t.Y,
			X1:       t.X + t.W,
			Y1:       t.Y + t.FontSize,
			Text:     t.S,
			FontSize: t.FontSize,
			Page:     page,
		}
	}
	return spans
}

// Layout analysis constants (spec §4.11): listed explicitly so two
// implementations reproduce identical output.
const (
	layoutRowQuantum       = 10.0
	layoutColumnMargin     = 0.05
	layoutTwoColumnTrigger = 1.0 / 3.0
	layoutLineGroupTol     = 10.0
	layoutWordGapTol       = 5.0
	layoutParagraphGapMul  = 1.5
	layoutParagraphIndent  = 15.0
	layoutReadingGapPct    = 0.15
)

// Line is a group of spans sharing a baseline within layoutLineGroupTol,
// split into Words wherever the horizontal gap between adjacent spans
// exceeds layoutWordGapTol.
type Line struct {
	Spans    []TextSpan
	Words    [][]TextSpan
	Bounds   Rect
	Baseline float64
}

// Paragraph is a run of consecutive Lines within one column, broken
// wherever the vertical gap or left-indent exceeds the column's norms.
type Paragraph struct {
	Lines  []Line
	Bounds Rect
}

// LayoutResult is a page's analyzed layout: one or two columns of Lines,
// their Paragraphs, and the flattened reading-order text.
type LayoutResult struct {
	TwoColumn  bool
	Columns    [][]Line
	Paragraphs []Paragraph
	Text       string
}

// AnalyzeLayout runs the seven-step layout algorithm of spec §4.11 over a
// page's spans: row-major sort, column detection, column emission, line
// grouping, word splitting, paragraph breaks, and reading-order text.
func AnalyzeLayout(spans []TextSpan, pageWidth float64) LayoutResult {
	if len(spans) == 0 {
		return LayoutResult{}
	}

	sorted := make([]TextSpan, len(spans))
	copy(sorted, spans)
	sortSpansRowMajor(sorted)

	twoColumn, left, right := detectLayoutColumns(sorted, pageWidth)

	var groups [][]TextSpan
	if twoColumn {
		groups = [][]TextSpan{left, right}
	} else {
		groups = [][]TextSpan{sorted}
	}

	result := LayoutResult{TwoColumn: twoColumn}
	var textParts []string
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		lines := groupLines(group)
		for i := range lines {
			lines[i].Words = splitWords(lines[i].Spans)
		}
		result.Columns = append(result.Columns, lines)
		result.Paragraphs = append(result.Paragraphs, groupParagraphs(lines)...)
		textParts = append(textParts, renderReadingOrder(lines))
	}
	result.Text = strings.Join(textParts, "\n\n")
	return result
}

// sortSpansRowMajor sorts in place: primary key floor(y0/10) descending
// (rows of similar y, tolerant of jitter), secondary key x0 ascending.
func sortSpansRowMajor(spans []TextSpan) {
	sort.SliceStable(spans, func(i, j int) bool {
		ri := math.Floor(spans[i].Y0 / layoutRowQuantum)
		rj := math.Floor(spans[j].Y0 / layoutRowQuantum)
		if ri != rj {
			return ri > rj
		}
		return spans[i].X0 < spans[j].X0
	})
}

// groupByRow buckets an already row-major-sorted slice by its sort row
// key, for column-detection's row-level left/right classification (a
// coarser grouping than groupLines' final per-line tolerance).
func groupByRow(sorted []TextSpan) [][]TextSpan {
	var rows [][]TextSpan
	var cur []TextSpan
	var key float64
	for i, s := range sorted {
		k := math.Floor(s.Y0 / layoutRowQuantum)
		if i == 0 || k != key {
			if len(cur) > 0 {
				rows = append(rows, cur)
			}
			cur = nil
			key = k
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}
	return rows
}

// detectLayoutColumns classifies each row as left-only/right-only/both at
// the page midline with a 5% margin; if more than one-third of rows have
// content in both halves the page is two-column.
func detectLayoutColumns(sorted []TextSpan, pageWidth float64) (twoColumn bool, left, right []TextSpan) {
	if pageWidth <= 0 {
		return false, sorted, nil
	}
	mid := pageWidth / 2
	margin := pageWidth * layoutColumnMargin

	rows := groupByRow(sorted)
	both := 0
	for _, row := range rows {
		hasLeft, hasRight := false, false
		for _, s := range row {
			center := (s.X0 + s.X1) / 2
			switch {
			case center < mid-margin:
				hasLeft = true
			case center > mid+margin:
				hasRight = true
			case center < mid:
				hasLeft = true
			default:
				hasRight = true
			}
		}
		if hasLeft && hasRight {
			both++
		}
	}
	if len(rows) == 0 || float64(both)/float64(len(rows)) <= layoutTwoColumnTrigger {
		return false, sorted, nil
	}

	for _, s := range sorted {
		center := (s.X0 + s.X1) / 2
		if center < mid {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return true, left, right
}

// groupLines groups consecutive spans (in emission order) whose y0
// differs from the running line's baseline by no more than
// layoutLineGroupTol; bounds is the union rectangle, baseline the
// minimum y0 in the group.
func groupLines(spans []TextSpan) []Line {
	var lines []Line
	var cur []TextSpan
	for _, s := range spans {
		if len(cur) > 0 && math.Abs(s.Y0-lineBaseline(cur)) > layoutLineGroupTol {
			lines = append(lines, makeLine(cur))
			cur = nil
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		lines = append(lines, makeLine(cur))
	}
	return lines
}

func lineBaseline(spans []TextSpan) float64 {
	min := spans[0].Y0
	for _, s := range spans[1:] {
		if s.Y0 < min {
			min = s.Y0
		}
	}
	return min
}

func makeLine(spans []TextSpan) Line {
	return Line{Spans: spans, Bounds: spansBounds(spans), Baseline: lineBaseline(spans)}
}

func spansBounds(spans []TextSpan) Rect {
	r := Rect{Min: Point{X: spans[0].X0, Y: spans[0].Y0}, Max: Point{X: spans[0].X1, Y: spans[0].Y1}}
	for _, s := range spans[1:] {
		if s.X0 < r.Min.X {
			r.Min.X = s.X0
		}
		if s.Y0 < r.Min.Y {
			r.Min.Y = s.Y0
		}
		if s.X1 > r.Max.X {
			r.Max.X = s.X1
		}
		if s.Y1 > r.Max.Y {
			r.Max.Y = s.Y1
		}
	}
	return r
}

func linesBounds(lines []Line) Rect {
	r := lines[0].Bounds
	for _, l := range lines[1:] {
		if l.Bounds.Min.X < r.Min.X {
			r.Min.X = l.Bounds.Min.X
		}
		if l.Bounds.Min.Y < r.Min.Y {
			r.Min.Y = l.Bounds.Min.Y
		}
		if l.Bounds.Max.X > r.Max.X {
			r.Max.X = l.Bounds.Max.X
		}
		if l.Bounds.Max.Y > r.Max.Y {
			r.Max.Y = l.Bounds.Max.Y
		}
	}
	return r
}

// splitWords splits a line's spans into words wherever the horizontal
// gap between adjacent spans exceeds layoutWordGapTol.
func splitWords(spans []TextSpan) [][]TextSpan {
	var words [][]TextSpan
	var cur []TextSpan
	for i, s := range spans {
		if i > 0 && s.X0-spans[i-1].X1 > layoutWordGapTol {
			words = append(words, cur)
			cur = nil
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

// groupParagraphs breaks a column's lines wherever the vertical gap
// between consecutive baselines exceeds 1.5x the column's average line
// spacing, or a line's left edge sits more than 15 units right of the
// column's average left margin (a first-line indent).
func groupParagraphs(lines []Line) []Paragraph {
	if len(lines) == 0 {
		return nil
	}
	avgSpacing := averageLineSpacing(lines)
	avgLeftMargin := averageLeftMargin(lines)

	var paragraphs []Paragraph
	var cur []Line
	for i, line := range lines {
		if i > 0 {
			prev := lines[i-1]
			gap := prev.Baseline - line.Baseline
			indent := line.Bounds.Min.X - avgLeftMargin
			if gap > layoutParagraphGapMul*avgSpacing || indent > layoutParagraphIndent {
				paragraphs = append(paragraphs, Paragraph{Lines: cur, Bounds: linesBounds(cur)})
				cur = nil
			}
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		paragraphs = append(paragraphs, Paragraph{Lines: cur, Bounds: linesBounds(cur)})
	}
	return paragraphs
}

func averageLineSpacing(lines []Line) float64 {
	if len(lines) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(lines); i++ {
		sum += math.Abs(lines[i-1].Baseline - lines[i].Baseline)
	}
	return sum / float64(len(lines)-1)
}

func averageLeftMargin(lines []Line) float64 {
	sum := 0.0
	for _, l := range lines {
		sum += l.Bounds.Min.X
	}
	return sum / float64(len(lines))
}

// renderReadingOrder flattens a column's lines into text: a newline
// between lines, a space between adjacent spans on the same line when
// their horizontal gap exceeds 15% of the emitting span's font size.
func renderReadingOrder(lines []Line) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		for j, s := range line.Spans {
			if j > 0 {
				prev := line.Spans[j-1]
				if s.X0-prev.X1 > prev.FontSize*layoutReadingGapPct {
					b.WriteString(" ")
				}
			}
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
