package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
)

// CodeBehind is the companion code artifact that receives generated initializers.
type CodeBehind interface {
	// AppendBlock adds a generated statement block to the artifact.
	AppendBlock(block string)
	// MarkDirty flags the artifact as changed since it was last written.
	MarkDirty()
}

// GoCodeBehind is a generated Go file that sits next to a component's
// hand-written .go file and shares its package.
type GoCodeBehind struct {
	Path        string // output path of the generated file
	PackageName string
	Imports     []string

	blocks []string
	dirty  bool
}

// NewGoCodeBehind returns an empty artifact for the given package.
func NewGoCodeBehind(path, packageName string, imports ...string) *GoCodeBehind {
	return &GoCodeBehind{Path: path, PackageName: packageName, Imports: imports}
}

// AppendBlock implements CodeBehind.
func (g *GoCodeBehind) AppendBlock(block string) {
	g.blocks = append(g.blocks, block)
}

// MarkDirty implements CodeBehind.
func (g *GoCodeBehind) MarkDirty() {
	g.dirty = true
}

// Dirty reports whether blocks were appended since the last Reset.
func (g *GoCodeBehind) Dirty() bool {
	return g.dirty
}

// Blocks returns the appended blocks in order.
func (g *GoCodeBehind) Blocks() []string {
	return g.blocks
}

// Reset drops every block and clears the dirty marker.
func (g *GoCodeBehind) Reset() {
	g.blocks = nil
	g.dirty = false
}

// Bytes renders the complete Go file, gofmt-ed when it parses.
func (g *GoCodeBehind) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by nojs-binder. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n", g.PackageName)
	if len(g.Imports) > 0 {
		buf.WriteString("\nimport (\n")
		for _, imp := range g.Imports {
			fmt.Fprintf(&buf, "\t%q\n", imp)
		}
		buf.WriteString(")\n")
	}
	for _, block := range g.blocks {
		buf.WriteString("\n")
		buf.WriteString(strings.TrimRight(block, "\n"))
		buf.WriteString("\n")
	}
	if formatted, err := format.Source(buf.Bytes()); err == nil {
		return formatted
	}
	return buf.Bytes()
}
