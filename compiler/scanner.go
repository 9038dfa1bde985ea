package compiler

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// structuralElements are never scanned for bindings.
var structuralElements = map[string]bool{
	"interface": true,
	"function":  true,
	"script":    true,
	"children":  true,
}

// rawAttr is one attribute as written in the tag text.
type rawAttr struct {
	Name       string
	Value      string
	NameStart  int // offsets within the tag text
	ValueStart int
	ValueEnd   int
}

// Scan walks the component's elements, registers their ids and extracts every
// binding. Tags without bindings are not returned. Call ResetBindings before
// scanning a component again.
func Scan(c *Component, sink Sink) []*XMLTag {
	c.mustBeMarkup("Scan")

	if c.Document == nil {
		msg := "could not parse markup"
		if c.ParseErr != nil {
			msg = fmt.Sprintf("could not parse markup: %v", c.ParseErr)
		}
		c.report(sink, CouldNotParseMarkup, Range{}, msg)
		return nil
	}

	doc := c.Document
	var tags []*XMLTag
	for i := range doc.Elements {
		el := &doc.Elements[i]
		if structuralElements[el.Name] || (el.Parent == -1 && el.Name == "component") {
			continue
		}
		tag := scanTag(c, el, sink)
		if len(tag.Bindings) > 0 {
			tags = append(tags, tag)
			c.Bindings = append(c.Bindings, tag.Bindings...)
		}
	}
	c.Tags = tags
	return tags
}

// scanTag registers the element's id and extracts its bindings, blanking each
// extracted binding in the tag text.
func scanTag(c *Component, el *Element, sink Sink) *XMLTag {
	tag := &XMLTag{
		Name:     el.Name,
		ID:       el.Attrs["id"],
		Text:     c.Document.Raw(el),
		Start:    el.Start,
		Line:     el.Line,
		TopLevel: isInterfaceField(c.Document, el),
	}

	attrs := lexAttributes(tag.Text)
	for _, a := range attrs {
		if strings.EqualFold(a.Name, "id") {
			registerID(c, tag, a, sink)
		}
	}

	for _, a := range attrs {
		if strings.EqualFold(a.Name, "id") {
			continue
		}
		// expressions are read from the decoded value; offsets map back to the raw text
		value, offsets := unescapeAttr(a.Value)
		span, found, serr := findExpression(value)
		if !found {
			continue
		}
		if serr != nil {
			r := c.span(el.Start+a.ValueStart, el.Start+a.ValueEnd)
			c.report(sink, serr.Code, r, fmt.Sprintf("%s in attribute '%s'", serr.Msg, a.Name))
			continue
		}

		rawStart, rawEnd := a.ValueStart+offsets[span.start], a.ValueStart+offsets[span.end]
		r := c.span(el.Start+rawStart, el.Start+rawEnd)
		b, errs := parseExpression(span)
		if len(errs) > 0 {
			for _, e := range errs {
				c.report(sink, e.Code, r, e.Msg)
			}
			continue
		}

		if tag.TopLevel {
			b.setTarget(TopID, tag.ID)
		} else {
			b.setTarget(tag.ID, a.Name)
		}
		b.setRange(r)
		blank(tag.Text, rawStart, rawEnd)
		tag.Bindings = append(tag.Bindings, b)
	}
	return tag
}

// isInterfaceField reports whether el is a field tag directly inside <interface>.
func isInterfaceField(doc *Document, el *Element) bool {
	parent := doc.ParentOf(el)
	return el.Name == "field" && parent != nil && parent.Name == "interface"
}

// registerID adds the tag's id to the component's tag or field id set.
// A colliding id is reported once and left as first registered.
func registerID(c *Component, tag *XMLTag, a rawAttr, sink Sink) {
	id := html.UnescapeString(a.Value)
	if id == "" {
		return
	}
	set, code, kind := c.TagIDs, DuplicateTagID, "tag"
	if tag.TopLevel {
		set, code, kind = c.FieldIDs, DuplicateFieldID, "field"
	}
	if !set[id] {
		set[id] = true
		return
	}
	key := kind + ":" + id
	if c.reportedIDs[key] {
		return
	}
	c.reportedIDs[key] = true
	r := c.span(tag.Start+a.ValueStart, tag.Start+a.ValueEnd)
	c.report(sink, code, r, fmt.Sprintf("duplicate %s id '%s'", kind, id))
}

// lexAttributes reads the attributes of a raw start tag, keeping their original
// case and their offsets. Values keep their entities unexpanded.
func lexAttributes(text []byte) []rawAttr {
	var attrs []rawAttr
	i, n := 1, len(text) // skip '<'
	for i < n && !isTagSpace(text[i]) && text[i] != '>' && text[i] != '/' {
		i++
	}
	for i < n {
		for i < n && (isTagSpace(text[i]) || text[i] == '/') {
			i++
		}
		if i >= n || text[i] == '>' {
			break
		}
		nameStart := i
		for i < n && !isTagSpace(text[i]) && text[i] != '=' && text[i] != '>' && text[i] != '/' {
			i++
		}
		a := rawAttr{Name: string(text[nameStart:i]), NameStart: nameStart}
		for i < n && isTagSpace(text[i]) {
			i++
		}
		if i < n && text[i] == '=' {
			i++
			for i < n && isTagSpace(text[i]) {
				i++
			}
			if i < n && (text[i] == '"' || text[i] == '\'') {
				quote := text[i]
				i++
				a.ValueStart = i
				for i < n && text[i] != quote {
					i++
				}
				a.ValueEnd = i
				if i < n {
					i++
				}
			} else {
				a.ValueStart = i
				for i < n && !isTagSpace(text[i]) && text[i] != '>' {
					i++
				}
				a.ValueEnd = i
			}
			a.Value = string(text[a.ValueStart:a.ValueEnd])
		} else {
			a.ValueStart, a.ValueEnd = i, i
		}
		if a.Name != "" {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

func isTagSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
