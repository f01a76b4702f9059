package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageDimensionsFromMediaBox(t *testing.T) {
	page := Page{V: Value{data: dict{
		name("Type"):     name("Page"),
		name("MediaBox"): array{float64(0), float64(0), float64(612), float64(792)},
	}}}
	w, h := page.Dimensions()
	assert.Equal(t, 612.0, w)
	assert.Equal(t, 792.0, h)
}

func TestPageDimensionsDefaultWhenMediaBoxAbsent(t *testing.T) {
	page := Page{V: Value{data: dict{name("Type"): name("Page")}}}
	w, h := page.Dimensions()
	assert.Equal(t, 612.0, w, "want US-Letter default width")
	assert.Equal(t, 792.0, h, "want US-Letter default height")
}

func TestPageDimensionsSwappedForRotation(t *testing.T) {
	page := Page{V: Value{data: dict{
		name("Type"):     name("Page"),
		name("MediaBox"): array{float64(0), float64(0), float64(612), float64(792)},
		name("Rotate"):   int64(90),
	}}}
	w, h := page.Dimensions()
	assert.Equal(t, 792.0, w)
	assert.Equal(t, 612.0, h)
}

func TestPageRotateNormalizesNegative(t *testing.T) {
	page := Page{V: Value{data: dict{name("Rotate"): int64(-90)}}}
	assert.Equal(t, 270, page.Rotate())
}

func TestPageRotateDefaultZero(t *testing.T) {
	page := Page{V: Value{data: dict{}}}
	assert.Equal(t, 0, page.Rotate())
}
