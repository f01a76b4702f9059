package pdf

import (
	"math"
	"sort"
	"strings"
)

// mdHeadingH1Ratio / mdHeadingH2Ratio are spec §4.12's size thresholds,
// relative to a page's modal body font size, for promoting a line to a
// level-1 or level-2 Markdown heading.
const (
	mdHeadingH1Ratio = 1.4
	mdHeadingH2Ratio = 1.2
)

// mdLine is one Markdown-renderer line: unlike layout.go's Line (built
// from the spec's TextSpan, which carries no style information), mdLine
// keeps the original Text so bold/italic substring detection
// (parseFontStyles, already run by the content interpreter) survives
// into the rendered output.
type mdLine struct {
	Texts    []Text
	Baseline float64
	MinX     float64
}

// RenderMarkdown renders a page's positioned glyph runs as heuristic
// Markdown (spec §4.12): lines at >= 1.4x the page's modal font size
// become `# `, >= 1.2x become `## `; consecutive lines are grouped into
// paragraphs with the same break rule as the layout analyzer's
// paragraphs (spec §4.11), separated by a blank line. Bold/italic
// wrapping is applied only when every run on a line was already flagged
// bold/italic by parseFontStyles — never inferred from heading level.
func RenderMarkdown(texts []Text) string {
	if len(texts) == 0 {
		return ""
	}
	modal := modalFontSize(texts)
	lines := groupMarkdownLines(texts)
	paragraphs := groupMarkdownParagraphs(lines)

	var out []string
	for _, para := range paragraphs {
		var paraLines []string
		for _, line := range para {
			text := renderMdLineText(line)
			if strings.TrimSpace(text) == "" {
				continue
			}
			paraLines = append(paraLines, headingPrefix(mdLineFontSize(line), modal)+text)
		}
		if len(paraLines) > 0 {
			out = append(out, strings.Join(paraLines, "\n"))
		}
	}
	return strings.Join(out, "\n\n")
}

// modalFontSize buckets font sizes to the nearest half point and returns
// the most frequent bucket, spec §4.12's stand-in for "body text" size.
func modalFontSize(texts []Text) float64 {
	counts := make(map[float64]int)
	best, bestCount := 0.0, 0
	for _, t := range texts {
		key := math.Round(t.FontSize*2) / 2
		counts[key]++
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best
}

// headingPrefix returns the Markdown heading prefix for a line's font
// size relative to the page's modal size, or "" for body text.
func headingPrefix(fontSize, modal float64) string {
	if modal <= 0 {
		return ""
	}
	switch ratio := fontSize / modal; {
	case ratio >= mdHeadingH1Ratio:
		return "# "
	case ratio >= mdHeadingH2Ratio:
		return "## "
	default:
		return ""
	}
}

// groupMarkdownLines sorts texts row-major (as layout.go's
// sortSpansRowMajor does for TextSpan) and groups consecutive runs into
// lines using the same layoutLineGroupTol tolerance.
func groupMarkdownLines(texts []Text) []mdLine {
	sorted := make([]Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri := math.Floor(sorted[i].Y / layoutRowQuantum)
		rj := math.Floor(sorted[j].Y / layoutRowQuantum)
		if ri != rj {
			return ri > rj
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []mdLine
	var cur []Text
	for _, t := range sorted {
		if len(cur) > 0 && math.Abs(t.Y-mdBaseline(cur)) > layoutLineGroupTol {
			lines = append(lines, makeMdLine(cur))
			cur = nil
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		lines = append(lines, makeMdLine(cur))
	}
	return lines
}

func mdBaseline(texts []Text) float64 {
	min := texts[0].Y
	for _, t := range texts[1:] {
		if t.Y < min {
			min = t.Y
		}
	}
	return min
}

func makeMdLine(texts []Text) mdLine {
	minX := texts[0].X
	for _, t := range texts[1:] {
		if t.X < minX {
			minX = t.X
		}
	}
	return mdLine{Texts: texts, Baseline: mdBaseline(texts), MinX: minX}
}

// mdLineFontSize is the largest font size on a line, the size most
// likely to represent a heading glyph run sharing the line with smaller
// trailing punctuation or a page number.
func mdLineFontSize(line mdLine) float64 {
	max := line.Texts[0].FontSize
	for _, t := range line.Texts[1:] {
		if t.FontSize > max {
			max = t.FontSize
		}
	}
	return max
}

// groupMarkdownParagraphs applies spec §4.11's paragraph-break rule
// (vertical gap > 1.5x average line spacing, or left-indent > 15 units
// above the page's average left margin) to mdLines.
func groupMarkdownParagraphs(lines []mdLine) [][]mdLine {
	if len(lines) == 0 {
		return nil
	}
	avgSpacing := mdAverageSpacing(lines)
	avgLeftMargin := mdAverageLeftMargin(lines)

	var paragraphs [][]mdLine
	var cur []mdLine
	for i, line := range lines {
		if i > 0 {
			prev := lines[i-1]
			gap := prev.Baseline - line.Baseline
			indent := line.MinX - avgLeftMargin
			if gap > layoutParagraphGapMul*avgSpacing || indent > layoutParagraphIndent {
				paragraphs = append(paragraphs, cur)
				cur = nil
			}
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		paragraphs = append(paragraphs, cur)
	}
	return paragraphs
}

func mdAverageSpacing(lines []mdLine) float64 {
	if len(lines) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(lines); i++ {
		sum += math.Abs(lines[i-1].Baseline - lines[i].Baseline)
	}
	return sum / float64(len(lines)-1)
}

func mdAverageLeftMargin(lines []mdLine) float64 {
	sum := 0.0
	for _, l := range lines {
		sum += l.MinX
	}
	return sum / float64(len(lines))
}

// renderMdLineText flattens one line's runs into text, inserting a space
// where the horizontal gap exceeds 15% of the preceding run's font size
// (spec §4.11's reading-order gap rule), and wraps the whole line in
// `**`/`*`/`***` only when every run on it was already flagged
// bold/italic by parseFontStyles.
func renderMdLineText(line mdLine) string {
	var b strings.Builder
	allBold, allItalic := true, true
	for i, t := range line.Texts {
		if i > 0 {
			prev := line.Texts[i-1]
			if t.X-(prev.X+prev.W) > prev.FontSize*layoutReadingGapPct {
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		allBold = allBold && t.Bold
		allItalic = allItalic && t.Italic
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return text
	}
	switch {
	case allBold && allItalic:
		return "***" + text + "***"
	case allBold:
		return "**" + text + "**"
	case allItalic:
		return "*" + text + "*"
	default:
		return text
	}
}
