package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownHeadingLevels(t *testing.T) {
	texts := []Text{
		{FontSize: 20, X: 10, Y: 700, W: 60, S: "Title"},
		{FontSize: 13, X: 10, Y: 670, W: 80, S: "Subtitle"},
		{FontSize: 10, X: 10, Y: 640, W: 100, S: "Body text."},
		{FontSize: 10, X: 10, Y: 625, W: 100, S: "More body."},
		{FontSize: 10, X: 10, Y: 610, W: 100, S: "Even more."},
	}
	md := RenderMarkdown(texts)

	assert.Contains(t, md, "# Title", "expected level-1 heading for 20pt (modal 10pt, ratio 2.0)")
	assert.Contains(t, md, "## Subtitle", "expected level-2 heading for 13pt (ratio 1.3)")
	assert.NotContains(t, md, "# Body text", "body text at modal size should not get a heading prefix")
	assert.NotContains(t, md, "## Body text")
}

func TestRenderMarkdownBoldItalicWrapping(t *testing.T) {
	texts := []Text{
		{FontSize: 10, X: 10, Y: 700, W: 30, S: "plain", Bold: false, Italic: false},
		{FontSize: 10, X: 10, Y: 680, W: 30, S: "strong", Bold: true},
		{FontSize: 10, X: 10, Y: 660, W: 30, S: "emph", Italic: true},
	}
	md := RenderMarkdown(texts)
	assert.Contains(t, md, "**strong**", "expected bold run wrapped in **")
	assert.Contains(t, md, "*emph*", "expected italic run wrapped in single *")
	assert.NotContains(t, md, "**emph**")
	assert.NotContains(t, md, "*plain*", "plain run should not be wrapped")
}

func TestRenderMarkdownParagraphBlankLineSeparation(t *testing.T) {
	texts := []Text{
		{FontSize: 10, X: 10, Y: 700, W: 30, S: "First"},
		{FontSize: 10, X: 10, Y: 688, W: 30, S: "paragraph."},
		{FontSize: 10, X: 10, Y: 640, W: 30, S: "Second"}, // big gap -> new paragraph
		{FontSize: 10, X: 10, Y: 628, W: 30, S: "paragraph."},
	}
	md := RenderMarkdown(texts)
	assert.Contains(t, md, "\n\n", "expected a blank line between paragraphs")
}

func TestRenderMarkdownEmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(nil))
}
