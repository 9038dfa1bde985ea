package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// ErrMalformedMarkup is returned by ParseDocument when the markup cannot be
// turned into a balanced element list.
var ErrMalformedMarkup = errors.New("malformed markup")

// Element is one start (or self-closing) tag of a parsed document.
type Element struct {
	Name   string            // lower-cased tag name
	Attrs  map[string]string // lower-cased keys, unescaped values
	Start  int               // byte offset of '<'
	End    int               // byte offset just past '>'
	Line   int               // 0-based line of Start
	Parent int               // index of the enclosing element, -1 for roots
	Depth  int
}

// Document is the element view of a markup file, in source order.
type Document struct {
	Source   []byte
	Elements []Element
	lines    lineIndex
}

// voidElements never carry an end tag, even when written without "/>".
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// ParseDocument tokenizes src and records every element with its raw offsets.
// The returned document keeps a reference to src.
func ParseDocument(src []byte) (*Document, error) {
	doc := &Document{Source: src, lines: newLineIndex(src)}
	z := html.NewTokenizer(bytes.NewReader(src))

	var open []int // indexes into doc.Elements
	offset := 0
	for {
		tt := z.Next()
		rawLen := len(z.Raw())
		start := offset
		offset += rawLen

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
			}
			if len(open) > 0 {
				el := doc.Elements[open[len(open)-1]]
				return nil, fmt.Errorf("%w: <%s> at line %d is never closed", ErrMalformedMarkup, el.Name, el.Line+1)
			}
			return doc, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el := Element{
				Name:   tok.Data,
				Attrs:  make(map[string]string, len(tok.Attr)),
				Start:  start,
				End:    offset,
				Line:   doc.lines.position(start).Line,
				Parent: -1,
				Depth:  len(open),
			}
			if len(open) > 0 {
				el.Parent = open[len(open)-1]
			}
			for _, a := range tok.Attr {
				el.Attrs[a.Key] = a.Val
			}
			doc.Elements = append(doc.Elements, el)
			if tt == html.SelfClosingTagToken {
				// <script/>, <style/>, <title/> and <textarea/> have no content to read as raw text
				z.NextIsNotRawText()
			}
			if tt == html.StartTagToken && !voidElements[el.Name] {
				open = append(open, len(doc.Elements)-1)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if voidElements[string(name)] {
				continue
			}
			if len(open) == 0 || doc.Elements[open[len(open)-1]].Name != string(name) {
				line := doc.lines.position(start).Line
				return nil, fmt.Errorf("%w: unexpected </%s> at line %d", ErrMalformedMarkup, name, line+1)
			}
			open = open[:len(open)-1]
		}
	}
}

// Root returns the first top-level element, or nil for an empty document.
func (d *Document) Root() *Element {
	for i := range d.Elements {
		if d.Elements[i].Parent == -1 {
			return &d.Elements[i]
		}
	}
	return nil
}

// Raw returns the unmodified text of an element's start tag.
func (d *Document) Raw(el *Element) []byte {
	return d.Source[el.Start:el.End]
}

// Position converts a byte offset into a 0-based line/character position.
func (d *Document) Position(offset int) Position {
	return d.lines.position(offset)
}

// ParentOf returns the element enclosing el, or nil.
func (d *Document) ParentOf(el *Element) *Element {
	if el.Parent < 0 {
		return nil
	}
	return &d.Elements[el.Parent]
}
