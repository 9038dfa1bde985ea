package compiler

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func checkPackage(t *testing.T, src string) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "vm.go", src, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pkg, err := (&types.Config{}).Check("example.com/pages", fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatalf("type-check: %v", err)
	}
	return pkg
}

// TestClassesFromPackage verifies that struct types become classes, embedded
// structs become parents and methods keep their parameter counts.
func TestClassesFromPackage(t *testing.T) {
	// Arrange
	pkg := checkPackage(t, `package pages

type Base struct {
	Title string
}

func (b *Base) OnTap(v any) {}

type CardVM struct {
	*Base
	Count int
	items []string
}

func (c CardVM) Save(v, n any) {}
func (c *CardVM) Reset()      {}

type Label string
`)

	// Act
	table := NewClassTable(classesFromPackage(pkg)...)

	// Assert
	if _, ok := table.Class("Label"); ok {
		t.Errorf("Expected non-struct types to be ignored")
	}
	card, ok := table.Class("CardVM")
	if !ok {
		t.Fatalf("Expected class CardVM")
	}
	if card.Parent != "Base" {
		t.Errorf("Expected parent Base, got %q", card.Parent)
	}
	if diff := cmp.Diff([]string{"Count", "Reset", "Save", "items"}, card.MemberNames()); diff != "" {
		t.Errorf("Members mismatch (-want +got):\n%s", diff)
	}
	if m := card.Members["Save"]; m.Kind != MethodMember || m.Params != 2 {
		t.Errorf("Expected Save to be a 2-parameter method, got %+v", m)
	}
	if m := card.Members["Count"]; m.Kind != FieldMember || m.Type != "int" {
		t.Errorf("Expected Count to be an int field, got %+v", m)
	}

	m, owner, ok := resolveMember(table, card, "OnTap")
	if !ok || owner.Name != "Base" || m.Params != 1 {
		t.Errorf("Expected OnTap to resolve on Base with 1 parameter, got %+v on %v", m, owner)
	}
}

func TestSuggestMember(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"titel", []string{"Title", "Count"}, "Title"},
		{"cnt", []string{"Count", "Title"}, "Count"},
		{"zzzzzz", []string{"Count", "Title"}, ""},
		{"x", nil, ""},
	}

	for _, tt := range tests {
		if got := suggestMember(tt.name, tt.candidates); got != tt.want {
			t.Errorf("suggestMember(%q) = %q, expected %q", tt.name, got, tt.want)
		}
	}
}

func TestUnescapeAttr(t *testing.T) {
	raw := "a &amp;&amp; b &bogus; c"

	value, offsets := unescapeAttr(raw)

	if value != "a && b &bogus; c" {
		t.Errorf("Unexpected decoded value %q", value)
	}
	if len(offsets) != len(value)+1 || offsets[len(value)] != len(raw) {
		t.Fatalf("Expected one offset per decoded byte plus the end, got %d", len(offsets))
	}
	for i, want := range map[int]int{0: 0, 2: 2, 3: 7, 5: 13, 7: 15} {
		if offsets[i] != want {
			t.Errorf("offsets[%d] = %d, expected %d", i, offsets[i], want)
		}
	}
}
