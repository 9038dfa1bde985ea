package compiler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownComponent is returned when a component name is not registered.
var ErrUnknownComponent = errors.New("unknown component")

// DefaultMarkupExtension is the file suffix of component markup.
const DefaultMarkupExtension = ".gt.html"

// Component is one markup-described node tree with its VM declaration.
// It persists across compile passes; its bindings and ids do not.
type Component struct {
	Name       string // registry key; the root's name attribute or the file stem
	Path       string // markup file path, used as the diagnostics key
	VMType     string // declared view-model type name (vm attribute)
	Extends    string // declared parent component name (extends attribute)
	CodeBehind CodeBehind

	// MarkupExtension is the suffix Path must carry; empty means DefaultMarkupExtension.
	MarkupExtension string

	// Source is the working copy of the markup. Scanning blanks bindings in it.
	Source []byte
	// Document is the element view of Source, nil when the markup did not parse.
	Document *Document
	// ParseErr is the reason Document is nil.
	ParseErr error

	TagIDs   map[string]bool
	FieldIDs map[string]bool
	Tags     []*XMLTag
	Bindings []*Binding
	Valid    bool

	pristine    []byte
	lines       lineIndex
	reportedIDs map[string]bool // duplicate ids already reported, by kind:id
}

// NewComponent parses markup and reads the component's declaration from its
// root element. A markup parse failure is kept on the component and reported
// by the scanner. codeBehind may be nil.
func NewComponent(path string, markup []byte, codeBehind CodeBehind) *Component {
	c := &Component{
		Path:       path,
		CodeBehind: codeBehind,
		pristine:   append([]byte(nil), markup...),
	}
	c.ResetBindings()
	c.Name = componentNameFromPath(path)
	if c.Document != nil {
		if root := c.Document.Root(); root != nil {
			if n := root.Attrs["name"]; n != "" {
				c.Name = n
			}
			c.VMType = root.Attrs["vm"]
			c.Extends = root.Attrs["extends"]
		}
	}
	return c
}

// ResetBindings clears every transient collection and restores the pristine
// source so the next scan starts from scratch.
func (c *Component) ResetBindings() {
	c.Source = append(c.Source[:0], c.pristine...)
	c.lines = newLineIndex(c.Source)
	c.TagIDs = make(map[string]bool)
	c.FieldIDs = make(map[string]bool)
	c.reportedIDs = make(map[string]bool)
	c.Tags = nil
	c.Bindings = nil
	c.Valid = true
	c.Document, c.ParseErr = ParseDocument(c.Source)
}

// Pristine returns the markup as it was read, before any blanking.
func (c *Component) Pristine() []byte {
	return c.pristine
}

// IsMarkup reports whether the component's path names a markup file.
func (c *Component) IsMarkup() bool {
	ext := c.MarkupExtension
	if ext == "" {
		ext = DefaultMarkupExtension
	}
	return strings.HasSuffix(c.Path, ext)
}

func (c *Component) mustBeMarkup(op string) {
	if !c.IsMarkup() {
		panic(fmt.Sprintf("compiler: %s called for non-markup file %q", op, c.Path))
	}
}

// span converts byte offsets in Source into a diagnostic range.
func (c *Component) span(start, end int) Range {
	return c.lines.span(start, end)
}

// report sends a diagnostic for this component and marks it invalid.
func (c *Component) report(sink Sink, code Code, r Range, msg string) {
	c.Valid = false
	sink.Report(c.Path, Diagnostic{Code: code, Message: msg, Range: r})
}

// componentNameFromPath turns "pages/UserCard.gt.html" into "UserCard".
func componentNameFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
