package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasStructTreeFalseWhenAbsent(t *testing.T) {
	r := &Reader{trailer: dict{name("Root"): dict{}}}
	assert.False(t, r.HasStructTree())
}

func TestHasStructTreeTrueWhenPresent(t *testing.T) {
	r := &Reader{trailer: dict{
		name("Root"): dict{
			name("StructTreeRoot"): dict{},
		},
	}}
	assert.True(t, r.HasStructTree())
}

// newStructTreeFixture builds a one-page document with a structure tree:
// a top StructElem whose /K is an array mixing a direct MCID (inheriting
// the element's own /Pg) and an MCR dict pointing at the same page.
func newStructTreeFixture() *Reader {
	r := &Reader{}
	pagePtr := objptr{id: 1, gen: 0}
	r.storeCachedObject(pagePtr, dict{
		name("Type"): name("Page"),
	})

	mcr := dict{
		name("Type"): name("MCR"),
		name("Pg"):   pagePtr,
		name("MCID"): int64(1),
	}
	structElem := dict{
		name("Type"): name("StructElem"),
		name("S"):    name("P"),
		name("Pg"):   pagePtr,
		name("K"):    array{int64(0), mcr},
	}
	r.trailer = dict{
		name("Root"): dict{
			name("Pages"): dict{
				name("Type"):  name("Pages"),
				name("Count"): int64(1),
				name("Kids"):  array{pagePtr},
			},
			name("StructTreeRoot"): dict{
				name("K"): structElem,
			},
		},
	}
	return r
}

func TestStructTreeFlattensDirectMCIDAndMCR(t *testing.T) {
	r := newStructTreeFixture()
	tree := r.StructTree()

	refs := tree.Refs()
	require.Len(t, refs, 2)
	assert.Equal(t, 0, refs[0].MCID)
	assert.Equal(t, 1, refs[0].Page)
	assert.Equal(t, 1, refs[1].MCID)
	assert.Equal(t, 1, refs[1].Page)

	page1 := tree.Page(1)
	assert.Len(t, page1, 2)
}

func TestStructTreeNestedStructElem(t *testing.T) {
	r := &Reader{}
	pagePtr := objptr{id: 1, gen: 0}
	r.storeCachedObject(pagePtr, dict{name("Type"): name("Page")})

	leaf := dict{
		name("Type"): name("StructElem"),
		name("S"):    name("Span"),
		name("K"):    int64(3),
	}
	mid := dict{
		name("Type"): name("StructElem"),
		name("S"):    name("P"),
		name("Pg"):   pagePtr,
		name("K"):    leaf,
	}
	r.trailer = dict{
		name("Root"): dict{
			name("Pages"): dict{
				name("Type"):  name("Pages"),
				name("Count"): int64(1),
				name("Kids"):  array{pagePtr},
			},
			name("StructTreeRoot"): dict{
				name("K"): mid,
			},
		},
	}

	refs := r.StructTree().Refs()
	require.Len(t, refs, 1, "page inherited from ancestor")
	assert.Equal(t, 3, refs[0].MCID)
	assert.Equal(t, 1, refs[0].Page)
}

func TestStructTreeEmptyWhenNoStructTreeRoot(t *testing.T) {
	r := &Reader{trailer: dict{name("Root"): dict{}}}
	tree := r.StructTree()
	assert.Empty(t, tree.Refs())
}

func TestBuildPageObjptrIndexMultiplePages(t *testing.T) {
	r := &Reader{}
	p1, p2 := objptr{id: 1}, objptr{id: 2}
	r.storeCachedObject(p1, dict{name("Type"): name("Page")})
	r.storeCachedObject(p2, dict{name("Type"): name("Page")})
	r.trailer = dict{
		name("Root"): dict{
			name("Pages"): dict{
				name("Type"):  name("Pages"),
				name("Count"): int64(2),
				name("Kids"):  array{p1, p2},
			},
		},
	}

	idx := r.buildPageObjptrIndex()
	assert.Equal(t, 1, idx[p1])
	assert.Equal(t, 2, idx[p2])
}
