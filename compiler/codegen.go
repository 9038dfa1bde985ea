package compiler

import (
	"errors"
	"fmt"
	"go/format"
	"strconv"
	"strings"
)

// ErrNoCodeBehind is returned by Generate for a component that has bindings
// but no code-behind artifact to receive them.
var ErrNoCodeBehind = errors.New("no code behind")

// GenerateOptions names the identifiers the generated initializers use.
type GenerateOptions struct {
	Receiver       string // method receiver, e.g. "c"
	VMAccessor     string // receiver field holding the view-model, e.g. "VM"
	Runtime        string // package qualifier of the binding runtime, e.g. "bind"
	TopID          string // node id that resolves to the component itself
	DynamicMethod  string
	StaticMethod   string
	NodeRefsOnce   string // sync.Once field guarding NodeRefsInit
	NodeRefsInit   string // method materializing node references
	ConfiguredHook string // VM method called once dynamic bindings are wired
}

// DefaultGenerateOptions returns the identifiers used by the nojs runtime.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Receiver:       "c",
		VMAccessor:     "VM",
		Runtime:        "bind",
		TopID:          TopID,
		DynamicMethod:  "initDynamicBindings",
		StaticMethod:   "initStaticBindings",
		NodeRefsOnce:   "nodeRefsOnce",
		NodeRefsInit:   "initNodeRefs",
		ConfiguredHook: "OnBindingsConfigured",
	}
}

// Generated holds the two initializer fragments of one component.
type Generated struct {
	Component *Component
	Dynamic   string
	Static    string
	// Bindings are the valid bindings the fragments were built from, in order.
	Bindings []*Binding
}

// Generate builds the dynamic and static initializers for c from its
// ancestors' bindings followed by its own. Invalid bindings are skipped. It
// returns nil when there is nothing to generate and ErrNoCodeBehind when c has
// bindings but no code-behind.
func Generate(c *Component, reg *Registry, opts GenerateOptions) (*Generated, error) {
	all := reg.AllBindings(c)
	if len(all) == 0 {
		return nil, nil
	}
	if c.CodeBehind == nil {
		return nil, fmt.Errorf("%w: component %s", ErrNoCodeBehind, c.Name)
	}

	g := &generator{opts: opts}
	var valid []*Binding
	for _, b := range all {
		if b.Valid {
			valid = append(valid, b)
		}
	}
	return &Generated{
		Component: c,
		Dynamic:   g.method(c.Name, opts.DynamicMethod, g.dynamicBody(valid)),
		Static:    g.method(c.Name, opts.StaticMethod, g.staticBody(valid)),
		Bindings:  valid,
	}, nil
}

type generator struct {
	opts GenerateOptions
}

func (g *generator) vm() string {
	return g.opts.Receiver + "." + g.opts.VMAccessor
}

func (g *generator) rt(name string) string {
	return g.opts.Runtime + "." + name
}

// node returns the expression that refers to the node with the given id.
func (g *generator) node(id string) string {
	if id == g.opts.TopID {
		return g.opts.Receiver
	}
	return fmt.Sprintf("%s.Ref(%s)", g.opts.Receiver, strconv.Quote(id))
}

func (g *generator) method(typeName, name string, body []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "func (%s *%s) %s() {\n", g.opts.Receiver, typeName, name)
	for _, stmt := range body {
		for _, line := range strings.Split(stmt, "\n") {
			b.WriteString("\t" + line + "\n")
		}
	}
	b.WriteString("}\n")
	src := b.String()
	if formatted, err := format.Source([]byte(src)); err == nil {
		return string(formatted)
	}
	return src
}

func (g *generator) dynamicBody(bindings []*Binding) []string {
	var stmts []string
	needRefs := false
	for _, b := range bindings {
		if isStaticKind(b.Type) {
			continue
		}
		if b.NodeID != g.opts.TopID {
			needRefs = true
		}
		switch b.Type {
		case OneWaySource:
			stmts = append(stmts, g.sourceStatement(b))
		case OneWayTarget:
			stmts = append(stmts, g.targetStatement(b))
		case TwoWay:
			stmts = append(stmts, g.sourceStatement(b.Get), g.targetStatement(b.Set))
		}
	}
	if needRefs {
		stmts = append([]string{fmt.Sprintf("%s.%s.Do(%s.%s)",
			g.opts.Receiver, g.opts.NodeRefsOnce, g.opts.Receiver, g.opts.NodeRefsInit)}, stmts...)
	}
	return append(stmts, fmt.Sprintf("%s.%s()", g.vm(), g.opts.ConfiguredHook))
}

func (g *generator) staticBody(bindings []*Binding) []string {
	var stmts []string
	for _, b := range bindings {
		switch b.Type {
		case Static:
			stmts = append(stmts, g.staticStatement(b))
		case CodeBinding:
			stmts = append(stmts, g.codeStatement(b))
		}
	}
	return stmts
}

func isStaticKind(t BindingType) bool {
	return t == Static || t == CodeBinding
}

// callArgs renders the argument list for a call-arity reference.
func callArgs(a CallArity, value, node string) string {
	switch a {
	case ArityValue:
		return value
	case ArityNode:
		return node
	case ArityBoth:
		return value + ", " + node
	}
	return ""
}

func (g *generator) withTransform(b *Binding, expr string) string {
	if b.Props.Transform == "" {
		return expr
	}
	return fmt.Sprintf("%s.%s(%s)", g.vm(), b.Props.Transform, expr)
}

// sourceStatement registers an observer that pushes a VM value into the node.
func (g *generator) sourceStatement(b *Binding) string {
	node := g.node(b.NodeID)
	value := "v"
	if b.Arity.IsCall() {
		value = fmt.Sprintf("%s.%s(%s)", g.vm(), b.ObserverField, callArgs(b.Arity, "v", node))
	}
	return fmt.Sprintf("%s(%s, %s, func(v any) {\n\t%s(%s, %s, %s)\n}, %s{FireOnSet: %t, Once: %t})",
		g.rt("Observe"), g.vm(), strconv.Quote(b.ObserverField),
		g.rt("SetNodeField"), node, strconv.Quote(b.NodeField), g.withTransform(b, value),
		g.rt("Options"), b.Props.FireOnSet, b.Props.Once)
}

// targetStatement subscribes to the node field and forwards changes to the VM.
func (g *generator) targetStatement(b *Binding) string {
	var forward string
	if b.Arity.IsCall() {
		forward = fmt.Sprintf("%s.%s(%s)", g.vm(), b.ObserverField, callArgs(b.Arity, "v", "n"))
	} else {
		forward = fmt.Sprintf("%s(%s, %s, v)", g.rt("SetVMField"), g.vm(), strconv.Quote(b.ObserverField))
	}
	return fmt.Sprintf("%s(%s, %s, func(v any, n %s) {\n\t%s\n}, %s{Once: %t})",
		g.rt("Subscribe"), g.node(b.NodeID), strconv.Quote(b.NodeField), g.rt("Node"),
		forward, g.rt("Options"), b.Props.Once)
}

// staticStatement copies a VM value into the node once.
func (g *generator) staticStatement(b *Binding) string {
	var expr string
	switch {
	case len(b.Path) > 1:
		expr = fmt.Sprintf("%s(%s, %s)", g.rt("Lookup"), g.vm(), strconv.Quote(strings.Join(b.Path, ".")))
	case b.Arity == ArityNone:
		expr = fmt.Sprintf("%s.%s()", g.vm(), b.ObserverField)
	default:
		expr = fmt.Sprintf("%s.%s", g.vm(), b.ObserverField)
	}
	return fmt.Sprintf("%s(%s, %s, %s)", g.rt("SetNodeField"), g.node(b.NodeID), strconv.Quote(b.NodeField), g.withTransform(b, expr))
}

// codeStatement assigns the raw inline expression to the node once.
func (g *generator) codeStatement(b *Binding) string {
	return fmt.Sprintf("%s(%s, %s, %s)", g.rt("SetNodeField"), g.node(b.NodeID), strconv.Quote(b.NodeField), b.Raw)
}

// Apply appends both fragments to the component's code-behind and marks it dirty.
func (gen *Generated) Apply() {
	cb := gen.Component.CodeBehind
	cb.AppendBlock(gen.Dynamic)
	cb.AppendBlock(gen.Static)
	cb.MarkDirty()
}
