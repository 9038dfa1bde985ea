package compiler

import (
	"fmt"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"
)

// MemberKind tells fields and methods apart.
type MemberKind int

const (
	FieldMember MemberKind = iota
	MethodMember
)

func (k MemberKind) String() string {
	if k == MethodMember {
		return "method"
	}
	return "field"
}

// Member is one field or method of a view-model class.
type Member struct {
	Name   string
	Kind   MemberKind
	Type   string // field type or method signature, for messages
	Params int    // declared parameter count, methods only
}

// Class is the member table of one view-model type.
type Class struct {
	Name    string
	Parent  string // name of the single inherited class, empty for roots
	Members map[string]Member
}

// NewClass returns an empty class with the given parent.
func NewClass(name, parent string) *Class {
	return &Class{Name: name, Parent: parent, Members: make(map[string]Member)}
}

// Field adds a field member and returns the class for chaining.
func (c *Class) Field(name, typ string) *Class {
	c.Members[name] = Member{Name: name, Kind: FieldMember, Type: typ}
	return c
}

// Method adds a method member with the given parameter count.
func (c *Class) Method(name string, params int) *Class {
	c.Members[name] = Member{Name: name, Kind: MethodMember, Params: params}
	return c
}

// MemberNames returns every member name, sorted.
func (c *Class) MemberNames() []string {
	names := make([]string, 0, len(c.Members))
	for n := range c.Members {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ClassTable looks view-model classes up by declared type name.
type ClassTable interface {
	Class(name string) (*Class, bool)
}

// Classes is an in-memory ClassTable.
type Classes map[string]*Class

// NewClassTable indexes classes by name.
func NewClassTable(classes ...*Class) Classes {
	t := make(Classes, len(classes))
	for _, c := range classes {
		t[c.Name] = c
	}
	return t
}

// Class implements ClassTable.
func (t Classes) Class(name string) (*Class, bool) {
	c, ok := t[name]
	return c, ok
}

// resolveMember finds name on class or, failing that, on its ancestors. The
// walk stops at an unknown parent or a class already visited.
func resolveMember(table ClassTable, class *Class, name string) (Member, *Class, bool) {
	seen := make(map[string]bool)
	for c := class; c != nil && !seen[c.Name]; {
		seen[c.Name] = true
		if m, ok := c.Members[name]; ok {
			return m, c, true
		}
		if c.Parent == "" {
			break
		}
		parent, ok := table.Class(c.Parent)
		if !ok {
			break
		}
		c = parent
	}
	return Member{}, nil, false
}

// allMemberNames collects member names along the ancestor chain, for suggestions.
func allMemberNames(table ClassTable, class *Class, kind MemberKind) []string {
	var names []string
	seen := make(map[string]bool)
	for c := class; c != nil && !seen[c.Name]; {
		seen[c.Name] = true
		for _, m := range c.Members {
			if m.Kind == kind {
				names = append(names, m.Name)
			}
		}
		parent, ok := table.Class(c.Parent)
		if !ok {
			break
		}
		c = parent
	}
	return names
}

// LoadClasses loads the Go packages matching patterns under dir and returns a
// class for every named struct type they declare. Types are registered under
// both their bare name and "pkg.Name".
func LoadClasses(dir string, patterns ...string) (Classes, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	table := make(Classes)
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("failed to load package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
		if pkg.Types == nil {
			continue
		}
		for _, c := range classesFromPackage(pkg.Types) {
			if _, taken := table[c.Name]; !taken {
				table[c.Name] = c
			}
			table[pkg.Types.Name()+"."+c.Name] = c
		}
	}
	return table, nil
}

// classesFromPackage builds a class for each named struct type in pkg. The
// first embedded struct field is the class's parent.
func classesFromPackage(pkg *types.Package) []*Class {
	var classes []*Class
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}

		class := NewClass(name, "")
		qualifier := types.RelativeTo(pkg)
		for i := 0; i < st.NumFields(); i++ {
			f := st.Field(i)
			if f.Embedded() {
				if class.Parent == "" {
					class.Parent = embeddedParentName(f.Type(), pkg)
				}
				continue
			}
			class.Field(f.Name(), types.TypeString(f.Type(), qualifier))
		}
		for i := 0; i < named.NumMethods(); i++ {
			m := named.Method(i)
			sig := m.Type().(*types.Signature)
			class.Members[m.Name()] = Member{
				Name:   m.Name(),
				Kind:   MethodMember,
				Type:   types.TypeString(sig, qualifier),
				Params: sig.Params().Len(),
			}
		}
		classes = append(classes, class)
	}
	return classes
}

// embeddedParentName names the class an embedded field inherits from, or ""
// when the embedded type is not a named struct.
func embeddedParentName(t types.Type, from *types.Package) string {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return ""
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return ""
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg() == from {
		return obj.Name()
	}
	return obj.Pkg().Name() + "." + obj.Name()
}
