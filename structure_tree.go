package pdf

import "strings"

// MarkedContentRef identifies one marked-content sequence located by the
// structure tree: the MCID within a page's content stream, and the
// (1-indexed) page that content stream belongs to.
type MarkedContentRef struct {
	MCID int
	Page int
}

// maxStructTreeDepth bounds structure-tree recursion the same way
// maxFormXObjectDepth bounds Form XObject recursion: a malformed or
// cyclic /K chain would otherwise recurse until the stack overflows.
const maxStructTreeDepth = 64

// StructTree is a document's structure tree flattened into document
// reading order, per spec §4.10: depth-first traversal of
// /Root/StructTreeRoot, producing a per-page ordered MarkedContentRef list.
type StructTree struct {
	refs   []MarkedContentRef
	byPage map[int][]MarkedContentRef
}

// Refs returns every MarkedContentRef in the tree, in document reading
// order.
func (t StructTree) Refs() []MarkedContentRef {
	return t.refs
}

// Page returns the MarkedContentRefs belonging to the given (1-indexed)
// page, in structure order.
func (t StructTree) Page(num int) []MarkedContentRef {
	return t.byPage[num]
}

// HasStructTree reports whether the document catalog declares a
// /StructTreeRoot. The Document façade uses this to decide whether
// ExtractPageReadingOrder can use the structure tree or must fall back to
// the geometric layout analyzer (spec §4.13).
func (r *Reader) HasStructTree() bool {
	return r.Trailer().Key("Root").Key("StructTreeRoot").Kind() == Dict
}

// StructTree walks /Root/StructTreeRoot depth-first and flattens it into
// document reading order (spec §4.10). A document with no structure tree
// returns a zero-value StructTree (Refs() == nil).
func (r *Reader) StructTree() StructTree {
	tree := StructTree{byPage: make(map[int][]MarkedContentRef)}
	root := r.Trailer().Key("Root").Key("StructTreeRoot")
	if root.Kind() != Dict {
		return tree
	}

	pageIndex := r.buildPageObjptrIndex()
	var refs []MarkedContentRef
	walkStructKids(root, 0, pageIndex, 0, &refs)

	tree.refs = refs
	for _, ref := range refs {
		tree.byPage[ref.Page] = append(tree.byPage[ref.Page], ref)
	}
	return tree
}

// walkStructKids descends a structure element's /K entry(ies), which may
// be a bare MCID integer, a single MCR/OBJR/StructElem dict, or an array
// mixing any of those (PDF32000 14.7.4). pageHint carries the nearest
// ancestor's resolved /Pg forward, since a direct-MCID /K commonly omits
// its own /Pg and inherits the enclosing element's page.
func walkStructKids(elem Value, pageHint int, pageIndex map[objptr]int, depth int, out *[]MarkedContentRef) {
	if depth > maxStructTreeDepth {
		return
	}
	if pg := rawPageRef(elem, pageIndex); pg != 0 {
		pageHint = pg
	}
	k := elem.Key("K")
	if k.Kind() == Array {
		for i := 0; i < k.Len(); i++ {
			walkStructKidEntry(k.Index(i), pageHint, pageIndex, depth+1, out)
		}
		return
	}
	walkStructKidEntry(k, pageHint, pageIndex, depth+1, out)
}

// walkStructKidEntry handles one /K entry, whether reached directly or
// as an element of a /K array: a bare integer is a direct MCID against
// pageHint; a dict is dispatched to walkStructNode.
func walkStructKidEntry(entry Value, pageHint int, pageIndex map[objptr]int, depth int, out *[]MarkedContentRef) {
	switch entry.Kind() {
	case Integer:
		if pageHint != 0 {
			*out = append(*out, MarkedContentRef{MCID: int(entry.Int64()), Page: pageHint})
		}
	case Dict:
		walkStructNode(entry, pageHint, pageIndex, depth, out)
	}
}

// walkStructNode dispatches a single dict-valued /K entry: an MCR dict
// yields one MarkedContentRef, an OBJR dict is an object reference (not
// marked content) and contributes nothing, anything else is treated as a
// nested structure element and descended into via walkStructKids.
func walkStructNode(node Value, pageHint int, pageIndex map[objptr]int, depth int, out *[]MarkedContentRef) {
	if depth > maxStructTreeDepth {
		return
	}
	switch node.Key("Type").Name() {
	case "MCR":
		pg := pageHint
		if p := rawPageRef(node, pageIndex); p != 0 {
			pg = p
		}
		if mcid := node.Key("MCID"); mcid.Kind() == Integer && pg != 0 {
			*out = append(*out, MarkedContentRef{MCID: int(mcid.Int64()), Page: pg})
		}
	case "OBJR":
		// References a non-text object (an annotation, an image); not
		// marked content, so it contributes no text.
	default:
		walkStructKids(node, pageHint, pageIndex, depth+1, out)
	}
}

// rawPageRef extracts the page number a /Pg entry refers to, resolving
// it through pageIndex rather than Value.Key("Pg") so the lookup keys on
// the Page object's own identity rather than the resolving context's.
func rawPageRef(v Value, pageIndex map[objptr]int) int {
	raw, ok := rawDictEntry(v, "Pg")
	if !ok {
		return 0
	}
	ptr, ok := raw.(objptr)
	if !ok {
		return 0
	}
	return pageIndex[ptr]
}

// rawDictEntry returns the unresolved value stored under key in v's
// backing dict (or a stream's header dict), without triggering
// Reader.resolve. Needed because Value.ptr records the resolving
// context, not the resolved object's own identity, so comparing two
// Values' ptr fields cannot tell whether they name the same indirect
// object.
func rawDictEntry(v Value, key string) (object, bool) {
	d, ok := v.data.(dict)
	if !ok {
		s, ok := v.data.(stream)
		if !ok {
			return nil, false
		}
		d = s.hdr
	}
	x, present := d[name(key)]
	return x, present
}

// rawArrayEntry returns the unresolved value stored at index i of v's
// backing array, for the same reason as rawDictEntry.
func rawArrayEntry(v Value, i int) (object, bool) {
	a, ok := v.data.(array)
	if !ok || i < 0 || i >= len(a) {
		return nil, false
	}
	return a[i], true
}

// buildPageObjptrIndex walks the page tree and maps each Page object's
// own objptr to its 1-indexed page number, so a structure element's /Pg
// reference can be resolved to a page number regardless of which
// dictionary it was reached through.
func (r *Reader) buildPageObjptrIndex() map[objptr]int {
	idx := make(map[objptr]int)
	n := 0
	var walk func(node Value, visited map[objptr]bool)
	walk = func(node Value, visited map[objptr]bool) {
		kids := node.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			kid := kids.Index(i)
			var kidPtr objptr
			if raw, ok := rawArrayEntry(kids, i); ok {
				if p, ok := raw.(objptr); ok {
					kidPtr = p
				}
			}
			switch kid.Key("Type").Name() {
			case "Pages":
				if kidPtr != (objptr{}) {
					if visited[kidPtr] {
						continue
					}
					visited[kidPtr] = true
					defer delete(visited, kidPtr)
				}
				walk(kid, visited)
			case "Page":
				n++
				if kidPtr != (objptr{}) {
					idx[kidPtr] = n
				}
			}
		}
	}
	walk(r.Trailer().Key("Root").Key("Pages"), make(map[objptr]bool))
	return idx
}

// ReadingOrderFromStructTree builds page num's text in structure order
// (spec §4.10): each MarkedContentRef's MCID is matched against the
// glyphs the content interpreter recorded for that MCID (Content.MCIDs),
// and the per-MCID text is concatenated in structure order, with a space
// inserted between chunks where the first doesn't already end in
// whitespace. ok is false when the document has no structure tree or the
// page has no structure entries, telling the caller to fall back to the
// geometric layout analyzer.
func (r *Reader) ReadingOrderFromStructTree(num int) (text string, ok bool) {
	if !r.HasStructTree() {
		return "", false
	}
	refs := r.StructTree().Page(num)
	if len(refs) == 0 {
		return "", false
	}

	page, err := r.PageErr(num)
	if err != nil || page.V.IsNull() {
		return "", false
	}
	content, err := page.contentWithFonts(nil)
	if err != nil {
		return "", false
	}

	byMCID := make(map[int]*strings.Builder)
	for i, mcid := range content.MCIDs {
		if mcid < 0 {
			continue
		}
		b, found := byMCID[mcid]
		if !found {
			b = &strings.Builder{}
			byMCID[mcid] = b
		}
		b.WriteString(content.Text[i].S)
	}

	var out strings.Builder
	for _, ref := range refs {
		b, found := byMCID[ref.MCID]
		if !found || b.Len() == 0 {
			continue
		}
		if out.Len() > 0 {
			last := out.String()[out.Len()-1]
			if last != ' ' && last != '\n' && last != '\t' {
				out.WriteByte(' ')
			}
		}
		out.WriteString(b.String())
	}
	return out.String(), out.Len() > 0
}
