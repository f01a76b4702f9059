// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Interpretation of PDF content streams and PostScript-like CMap programs.
//
// A content stream is itself a tiny stack-based language: a run of operands
// (numbers, strings, names, arrays, dicts) followed by an operator keyword
// that consumes them. Interpret tokenizes a stream the same way the object
// lexer does, but instead of building one composite object it feeds operands
// onto a Stack and invokes a callback once per operator, leaving the
// callback to pop however many operands that operator takes. ToUnicode CMaps
// embedded in Type0 fonts are written in the same PostScript-derived
// operand/operator shape, so InterpretWithContext also drives the CMap
// parser in page.go.

package pdf

import (
	"context"
	"io"
	"strings"
)

// A Stack is the operand stack passed to an Interpret callback. Operators
// push their operands in the order they were read, so the most recently
// pushed operand is the last one written before the operator keyword.
type Stack struct {
	stack []Value
}

// Push pushes v onto the stack.
func (stk *Stack) Push(v Value) {
	stk.stack = append(stk.stack, v)
}

// Pop removes and returns the top of the stack.
// Popping an empty stack returns the null Value.
func (stk *Stack) Pop() Value {
	n := len(stk.stack)
	if n == 0 {
		return Value{}
	}
	v := stk.stack[n-1]
	stk.stack = stk.stack[:n-1]
	return v
}

// Len returns the number of operands currently on the stack.
func (stk *Stack) Len() int {
	return len(stk.stack)
}

func (stk *Stack) reset() {
	stk.stack = stk.stack[:0]
}

// newDict returns a Value holding a fresh, empty dictionary, detached from
// any Reader. CMap programs build dictionaries with findresource/begincmap
// and never need those dictionaries resolved against the underlying file,
// so a nil Reader is fine here.
func newDict() Value {
	return Value{nil, objptr{}, make(dict)}
}

// contentReader returns a reader over the bytes of a content stream value,
// which per PDF 32000-1:2008 §7.8.2 may be a single Stream or an Array of
// Streams to be processed as if they were concatenated (with a separating
// space so tokens spanning two streams' boundary never fuse together).
func contentReader(v Value) io.Reader {
	switch v.Kind() {
	case Stream:
		return v.Reader()
	case Array:
		n := v.Len()
		readers := make([]io.Reader, 0, 2*n)
		for i := 0; i < n; i++ {
			if i > 0 {
				readers = append(readers, strings.NewReader(" "))
			}
			readers = append(readers, v.Index(i).Reader())
		}
		return io.MultiReader(readers...)
	default:
		return io.MultiReader()
	}
}

// Interpret interprets the content stream (or array of content streams) in
// strm, calling do once for each operator with the Stack holding that
// operator's operands. It is equivalent to InterpretWithContext with a
// background context.
func Interpret(strm Value, do func(stk *Stack, op string)) {
	InterpretWithContext(context.Background(), strm, do)
}

// InterpretWithContext is Interpret with a context whose cancellation stops
// the walk early; callers processing very large or adversarial content
// streams can bound the work with a deadline.
func InterpretWithContext(ctx context.Context, strm Value, do func(stk *Stack, op string)) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strm.Kind() != Stream && strm.Kind() != Array {
		return
	}

	var stk Stack
	b := newBuffer(contentReader(strm), 0)
	defer PutPDFBuffer(b)
	b.allowEOF = true
	// Content streams don't carry indirect object references ("id gen R"),
	// so two adjacent integers followed by a keyword must not be mistaken
	// for one: disable the object-reference lookahead readObject() does.
	b.allowObjptr = false

	for {
		if ctx.Err() != nil {
			return
		}
		tok := b.readToken()
		if tok == nil || tok == io.EOF {
			return
		}
		kw, isKeyword := tok.(keyword)
		if !isKeyword {
			stk.Push(Value{strm.r, objptr{}, tok})
			continue
		}
		switch kw {
		case "[":
			stk.Push(Value{strm.r, objptr{}, readContentArray(b)})
		case "<<":
			// Most inline dicts accompany inline images and carry nothing
			// text extraction needs, but BDC's property-list operand (the
			// dict carrying /MCID, used by the structure-tree reader) is a
			// real exception: build it like any other composite operand
			// rather than skipping, since BDC's handler inspects it.
			b.unreadToken(tok)
			stk.Push(Value{strm.r, objptr{}, b.readObject()})
		case "]", ">>", "{", "}":
			// Stray closing delimiter; tolerate and drop it.
		case "BI":
			skipInlineImage(b)
		default:
			do(&stk, string(kw))
			stk.reset()
		}
	}
}

// maxContentArrayElements bounds inline arrays within a content stream
// (e.g. a TJ operand) per level, per spec. This is intentionally much
// smaller than the object lexer's maxArrayElements: a content-stream array
// is operand data for a single operator, never a document-scale structure.
const maxContentArrayElements = 256

// readContentArray reads the elements of an inline content-stream array up
// to the closing "]", used for operands like TJ's string/number array.
// Nested arrays recurse with their own 256-element cap; nested "<<...>>"
// dicts (inline-image related, out of scope for text) are skipped. Once an
// array hits the cap, further elements at that level are parsed and
// discarded rather than appended, so the token stream stays in sync.
func readContentArray(b *buffer) array {
	var x array
	for {
		tok := b.readToken()
		if tok == nil || tok == io.EOF {
			return x
		}
		if kw, isKeyword := tok.(keyword); isKeyword {
			switch kw {
			case "]":
				return x
			case "[":
				nested := readContentArray(b)
				if len(x) < maxContentArrayElements {
					x = append(x, nested)
				}
				continue
			case "<<":
				skipContentDict(b)
				continue
			}
			if len(x) < maxContentArrayElements {
				x = append(x, kw)
			}
			continue
		}
		if len(x) < maxContentArrayElements {
			x = append(x, tok)
		}
	}
}

// skipContentDict discards the tokens of an inline "<<...>>" dictionary,
// tracking nesting depth so an embedded dict or array inside it doesn't
// trip an early ">>" match.
func skipContentDict(b *buffer) {
	depth := 1
	for depth > 0 {
		tok := b.readToken()
		if tok == nil || tok == io.EOF {
			return
		}
		switch tok {
		case keyword("<<"):
			depth++
		case keyword(">>"):
			depth--
		}
	}
}

// skipInlineImage consumes a BI...ID...EI inline image so the binary image
// data between ID and EI, which is not PDF token syntax, doesn't desync the
// operator stream that follows. The image dictionary's keys and values
// (ordinary tokens between BI and ID) are simply discarded; no operator
// fires for them.
func skipInlineImage(b *buffer) {
	for {
		tok := b.readToken()
		if tok == nil || tok == io.EOF {
			return
		}
		if tok == keyword("ID") {
			break
		}
	}
	// Skip exactly one whitespace byte separating ID from the binary data,
	// then scan for "EI" bounded by whitespace or end of stream.
	b.readByte()
	var prev [2]byte
	for {
		c := b.readByte()
		if b.eof {
			return
		}
		if prev[0] == 'E' && prev[1] == 'I' && isSpace(c) {
			return
		}
		prev[0], prev[1] = prev[1], c
	}
}
