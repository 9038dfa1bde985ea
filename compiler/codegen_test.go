package compiler

import (
	"errors"
	"strings"
	"testing"
)

func boundTo(t *testing.T, expr, nodeID, nodeField string) *Binding {
	t.Helper()
	b := mustParse(t, expr)
	b.setTarget(nodeID, nodeField)
	return b
}

// TestGenerator_Statements pins the exact text emitted for each binding form.
func TestGenerator_Statements(t *testing.T) {
	g := &generator{opts: DefaultGenerateOptions()}

	tests := []struct {
		name string
		got  func() string
		want string
	}{
		{
			"source field",
			func() string { return g.sourceStatement(boundTo(t, "{{title}}", "label", "text")) },
			"bind.Observe(c.VM, \"title\", func(v any) {\n\tbind.SetNodeField(c.Ref(\"label\"), \"text\", v)\n}, bind.Options{FireOnSet: true, Once: false})",
		},
		{
			"source on top with transform and once",
			func() string { return g.sourceStatement(boundTo(t, "{{title;transform=Upper;once}}", TopID, "caption")) },
			"bind.Observe(c.VM, \"title\", func(v any) {\n\tbind.SetNodeField(c, \"caption\", c.VM.Upper(v))\n}, bind.Options{FireOnSet: true, Once: true})",
		},
		{
			"source call with node",
			func() string { return g.sourceStatement(boundTo(t, "{{Label(node)}}", "l", "text")) },
			"bind.Observe(c.VM, \"Label\", func(v any) {\n\tbind.SetNodeField(c.Ref(\"l\"), \"text\", c.VM.Label(c.Ref(\"l\")))\n}, bind.Options{FireOnSet: true, Once: false})",
		},
		{
			"target method with value and node",
			func() string { return g.targetStatement(boundTo(t, "{(OnTap(value,node))}", "b", "click")) },
			"bind.Subscribe(c.Ref(\"b\"), \"click\", func(v any, n bind.Node) {\n\tc.VM.OnTap(v, n)\n}, bind.Options{Once: false})",
		},
		{
			"target method without args",
			func() string { return g.targetStatement(boundTo(t, "{(Reset();once)}", "b", "click")) },
			"bind.Subscribe(c.Ref(\"b\"), \"click\", func(v any, n bind.Node) {\n\tc.VM.Reset()\n}, bind.Options{Once: true})",
		},
		{
			"target field",
			func() string { return g.targetStatement(boundTo(t, "{(Title)}", "input", "value")) },
			"bind.Subscribe(c.Ref(\"input\"), \"value\", func(v any, n bind.Node) {\n\tbind.SetVMField(c.VM, \"Title\", v)\n}, bind.Options{Once: false})",
		},
		{
			"static dot path",
			func() string { return g.staticStatement(boundTo(t, "{{:user.name}}", "l", "text")) },
			"bind.SetNodeField(c.Ref(\"l\"), \"text\", bind.Lookup(c.VM, \"user.name\"))",
		},
		{
			"static field with transform",
			func() string { return g.staticStatement(boundTo(t, "{{:Title;transform=Upper}}", "l", "text")) },
			"bind.SetNodeField(c.Ref(\"l\"), \"text\", c.VM.Upper(c.VM.Title))",
		},
		{
			"static call",
			func() string { return g.staticStatement(boundTo(t, "{{:Now()}}", TopID, "stamp")) },
			"bind.SetNodeField(c, \"stamp\", c.VM.Now())",
		},
		{
			"code",
			func() string { return g.codeStatement(boundTo(t, "{{= len(c.VM.Items) + 1 }}", "l", "text")) },
			"bind.SetNodeField(c.Ref(\"l\"), \"text\", len(c.VM.Items) + 1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.got(); got != tt.want {
				t.Errorf("Statement mismatch:\nwant %s\ngot  %s", tt.want, got)
			}
		})
	}
}

func TestGenerator_CustomOptions(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.Receiver, opts.VMAccessor, opts.Runtime = "p", "Model", "rt"
	g := &generator{opts: opts}

	got := g.staticStatement(boundTo(t, "{{:Title}}", "l", "text"))

	want := `rt.SetNodeField(p.Ref("l"), "text", p.Model.Title)`
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

// TestGenerate_Fragments verifies ordering within the generated initializers.
func TestGenerate_Fragments(t *testing.T) {
	// Arrange
	src := `<component vm="MyVM">` +
		`<interface><field id="caption" value="{{Title}}"/></interface>` +
		`<input id="name" value="{[Title|OnTap(value)]}" placeholder="{{:Title}}" size="{{=3}}"/>` +
		`</component>`
	c := newTestComponent(t, "Form", src)
	reg := NewRegistry(c)
	Scan(c, NewDiagnostics())

	// Act
	gen, err := Generate(c, reg, DefaultGenerateOptions())

	// Assert
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(gen.Dynamic, "func (c *Form) initDynamicBindings() {") {
		t.Errorf("Unexpected dynamic header:\n%s", gen.Dynamic)
	}
	if !strings.HasPrefix(gen.Static, "func (c *Form) initStaticBindings() {") {
		t.Errorf("Unexpected static header:\n%s", gen.Static)
	}

	order := []string{
		"c.nodeRefsOnce.Do(c.initNodeRefs)",
		`bind.SetNodeField(c, "caption", v)`,
		`bind.Observe(c.VM, "Title", func(v any) {` + "\n\t\tbind.SetNodeField(c.Ref(\"name\"), \"value\", v)",
		`bind.Subscribe(c.Ref("name"), "value", func(v any, n bind.Node) {`,
		"c.VM.OnBindingsConfigured()",
	}
	last := -1
	for _, s := range order {
		i := strings.Index(gen.Dynamic, s)
		if i < 0 {
			t.Fatalf("Expected %q in dynamic initializer:\n%s", s, gen.Dynamic)
		}
		if i < last {
			t.Errorf("Expected %q after the previous statement:\n%s", s, gen.Dynamic)
		}
		last = i
	}

	if !strings.Contains(gen.Static, `bind.SetNodeField(c.Ref("name"), "placeholder", c.VM.Title)`) ||
		!strings.Contains(gen.Static, `bind.SetNodeField(c.Ref("name"), "size", 3)`) {
		t.Errorf("Unexpected static initializer:\n%s", gen.Static)
	}
	if strings.Contains(gen.Static, "Observe") || strings.Contains(gen.Dynamic, "placeholder") {
		t.Errorf("Expected one-shot bindings only in the static initializer")
	}
}

// TestGenerate_TopOnlySkipsNodeRefs verifies the node reference guard is only
// emitted when a child node is bound.
func TestGenerate_TopOnlySkipsNodeRefs(t *testing.T) {
	c := newTestComponent(t, "Card", `<component vm="MyVM"><interface><field id="text" value="{{title}}"/></interface></component>`)
	Scan(c, NewDiagnostics())

	gen, err := Generate(c, NewRegistry(c), DefaultGenerateOptions())

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(gen.Dynamic, "nodeRefsOnce") {
		t.Errorf("Expected no node reference guard:\n%s", gen.Dynamic)
	}
}

// TestGenerate_SkipsInvalidBindings verifies that invalid bindings are left out.
func TestGenerate_SkipsInvalidBindings(t *testing.T) {
	c := newTestComponent(t, "Card", `<component vm="MyVM"><label id="a" text="{{Good}}" title="{{Bad}}"/></component>`)
	Scan(c, NewDiagnostics())
	c.Bindings[1].invalidate("field 'Bad' not found")

	gen, _ := Generate(c, NewRegistry(c), DefaultGenerateOptions())

	if len(gen.Bindings) != 1 || strings.Contains(gen.Dynamic, "Bad") {
		t.Errorf("Expected only the valid binding, got:\n%s", gen.Dynamic)
	}
}

// TestGenerate_AncestorsFirst verifies inherited bindings precede the component's own.
func TestGenerate_AncestorsFirst(t *testing.T) {
	parent := newTestComponent(t, "Base", `<component vm="MyVM"><label id="p" text="{{FromParent}}"/></component>`)
	child := newTestComponent(t, "Page", `<component vm="MyVM" extends="Base"><label id="k" text="{{FromChild}}"/></component>`)
	reg := NewRegistry(child, parent)
	Scan(child, NewDiagnostics())
	Scan(parent, NewDiagnostics())

	gen, err := Generate(child, reg, DefaultGenerateOptions())

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	p, k := strings.Index(gen.Dynamic, `"FromParent"`), strings.Index(gen.Dynamic, `"FromChild"`)
	if p < 0 || k < 0 || p > k {
		t.Errorf("Expected the parent's binding before the child's:\n%s", gen.Dynamic)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	src := `<component vm="MyVM"><label id="a" text="{{A}}" title="{(B(value))}"/><label id="b" text="{{:C}}"/></component>`
	c := newTestComponent(t, "Det", src)
	Scan(c, NewDiagnostics())
	first, _ := Generate(c, NewRegistry(c), DefaultGenerateOptions())

	c.ResetBindings()
	Scan(c, NewDiagnostics())
	second, _ := Generate(c, NewRegistry(c), DefaultGenerateOptions())

	if first.Dynamic != second.Dynamic || first.Static != second.Static {
		t.Errorf("Expected identical output across runs")
	}
}

func TestGenerate_NothingToGenerate(t *testing.T) {
	c := newTestComponent(t, "Plain", `<component><label id="a" text="hi"/></component>`)
	Scan(c, NewDiagnostics())

	gen, err := Generate(c, NewRegistry(c), DefaultGenerateOptions())

	if gen != nil || err != nil {
		t.Errorf("Expected nil result and nil error, got %v, %v", gen, err)
	}
}

func TestGenerate_NoCodeBehind(t *testing.T) {
	c := NewComponent("Lonely.gt.html", []byte(`<component vm="MyVM"><label id="a" text="{{A}}"/></component>`), nil)
	Scan(c, NewDiagnostics())

	_, err := Generate(c, NewRegistry(c), DefaultGenerateOptions())

	if !errors.Is(err, ErrNoCodeBehind) {
		t.Errorf("Expected ErrNoCodeBehind, got %v", err)
	}
}

func TestGoCodeBehind_Bytes(t *testing.T) {
	cb := NewGoCodeBehind("card.bindings.generated.go", "pages", "github.com/vcrobe/nojs/bind")
	gen := &Generated{
		Component: &Component{CodeBehind: cb},
		Dynamic:   "func (c *Card) initDynamicBindings() {\n\tc.VM.OnBindingsConfigured()\n}\n",
		Static:    "func (c *Card) initStaticBindings() {\n}\n",
	}

	gen.Apply()
	out := string(cb.Bytes())

	if !cb.Dirty() || len(cb.Blocks()) != 2 {
		t.Fatalf("Expected 2 blocks and a dirty marker, got %d blocks dirty=%v", len(cb.Blocks()), cb.Dirty())
	}
	for _, want := range []string{
		"// Code generated by nojs-binder. DO NOT EDIT.",
		"package pages",
		`import (` + "\n\t\"github.com/vcrobe/nojs/bind\"\n)",
		"func (c *Card) initDynamicBindings() {",
		"func (c *Card) initStaticBindings() {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	cb.Reset()
	if cb.Dirty() || len(cb.Blocks()) != 0 {
		t.Errorf("Expected Reset to clear the artifact")
	}
}
