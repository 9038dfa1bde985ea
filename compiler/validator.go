package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// ValidateAgainstClass checks a binding's observer reference against the VM
// class and its ancestors. Every applicable rule runs; each failure
// invalidates the binding and yields one BindingError.
func ValidateAgainstClass(b *Binding, class *Class, table ClassTable) []BindingError {
	switch b.Type {
	case TwoWay:
		return b.validateHalves(func(h *Binding) []BindingError {
			return ValidateAgainstClass(h, class, table)
		})
	case CodeBinding:
		return nil
	}
	if b.ObserverField == "" {
		// already reported by Validate
		return nil
	}

	var errs []BindingError
	fail := func(code Code, msg string) {
		b.invalidate(msg)
		errs = append(errs, BindingError{Code: code, Message: msg, Binding: b})
	}

	if b.Arity.IsCall() {
		if b.Type == Static && b.Arity != ArityNone {
			fail(StaticCallArgs, fmt.Sprintf("static binding '%s' cannot pass %s arguments; only '%s()' is allowed", b.ObserverField, b.Arity, b.ObserverField))
		}
		m, _, ok := resolveMember(table, class, b.ObserverField)
		if !ok || m.Kind != MethodMember {
			fail(VMFunctionNotFound, fmt.Sprintf("function '%s' not found on '%s'%s",
				b.ObserverField, class.Name, didYouMean(b.ObserverField, allMemberNames(table, class, MethodMember))))
			return errs
		}
		if want := b.Arity.ExpectedParams(); m.Params != want {
			fail(WrongArgCount, fmt.Sprintf("wrong arg count for '%s': expected %d, got %d", b.ObserverField, want, m.Params))
		}
		return errs
	}

	name := b.ObserverField
	if len(b.Path) > 0 {
		name = b.Path[0]
	}
	m, _, ok := resolveMember(table, class, name)
	if !ok {
		fail(VMFieldNotFound, fmt.Sprintf("field '%s' not found on '%s'%s",
			name, class.Name, didYouMean(name, allMemberNames(table, class, FieldMember))))
		return errs
	}
	if m.Kind == MethodMember {
		switch {
		case b.Type.readsValue():
			fail(FieldRequired, fmt.Sprintf("'%s' on '%s' is a method; a field is required for %s binding", name, class.Name, b.Type))
		case b.Type == OneWayTarget && m.Params != ArityValue.ExpectedParams():
			// a plain reference to a method is a one-value setter
			fail(WrongArgCount, fmt.Sprintf("wrong arg count for '%s': expected %d, got %d", name, ArityValue.ExpectedParams(), m.Params))
		}
	}
	return errs
}

// CheckHierarchy reports own tag and field ids that an ancestor already
// declares (one diagnostic per colliding id) and a circular extends chain.
func CheckHierarchy(c *Component, reg *Registry, sink Sink) {
	if _, cyclic := reg.Ancestors(c); cyclic {
		c.report(sink, CircularExtends, Range{}, fmt.Sprintf("component '%s' extends itself through '%s'", c.Name, c.Extends))
	}
	reportParentDuplicates(c, c.TagIDs, reg.ParentTagIDs(c), ParentDuplicateTagID, "tag", sink)
	reportParentDuplicates(c, c.FieldIDs, reg.ParentFieldIDs(c), ParentDuplicateFieldID, "field", sink)
}

func reportParentDuplicates(c *Component, own, inherited map[string]bool, code Code, kind string, sink Sink) {
	var dups []string
	for id := range own {
		if inherited[id] {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	for _, id := range dups {
		c.report(sink, code, idRange(c, id, kind == "field"), fmt.Sprintf("parent has duplicate %s id '%s'", kind, id))
	}
}

// idRange locates the id attribute that declared id, looking only at interface
// field tags when field is set and only at other tags otherwise. It falls back
// to the file start.
func idRange(c *Component, id string, field bool) Range {
	if c.Document == nil {
		return Range{}
	}
	for i := range c.Document.Elements {
		el := &c.Document.Elements[i]
		if el.Attrs["id"] != id || structuralElements[el.Name] || isInterfaceField(c.Document, el) != field {
			continue
		}
		for _, a := range lexAttributes(c.Document.Raw(el)) {
			if strings.EqualFold(a.Name, "id") {
				return c.span(el.Start+a.ValueStart, el.Start+a.ValueEnd)
			}
		}
	}
	return Range{}
}

// ValidationResult is the output of the validation phase for one component.
type ValidationResult struct {
	Component *Component
	Class     *Class
	// Generate is false when a structural error rules out code generation.
	Generate bool
}

// Validate checks every binding of c, its ids against its ancestors and its
// VM declaration. Diagnostics follow attribute-encounter order.
func Validate(c *Component, table ClassTable, reg *Registry, sink Sink) ValidationResult {
	c.mustBeMarkup("Validate")
	res := ValidationResult{Component: c, Generate: c.Document != nil}

	CheckHierarchy(c, reg, sink)

	// inherited bindings are generated against this component's VM too
	if len(reg.AllBindings(c)) > 0 {
		switch class, ok := table.Class(c.VMType); {
		case c.VMType == "":
			c.report(sink, VMNotDeclared, rootRange(c), fmt.Sprintf("component '%s' has bindings but declares no vm", c.Name))
			res.Generate = false
		case !ok:
			c.report(sink, VMClassNotFound, rootRange(c), fmt.Sprintf("VM class '%s' not found", c.VMType))
			res.Generate = false
		default:
			res.Class = class
		}
	}

	for _, b := range c.Bindings {
		errs := b.Validate()
		if res.Class != nil {
			errs = append(errs, ValidateAgainstClass(b, res.Class, table)...)
		}
		for _, e := range errs {
			c.report(sink, e.Code, e.Binding.Range, e.Message)
		}
	}
	return res
}

// rootRange spans the component's root start tag.
func rootRange(c *Component) Range {
	if c.Document == nil {
		return Range{}
	}
	if root := c.Document.Root(); root != nil {
		return c.span(root.Start, root.End)
	}
	return Range{}
}
