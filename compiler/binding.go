package compiler

import (
	"fmt"
	"go/parser"
	"strings"
)

// BindingError is one failed rule for a binding.
type BindingError struct {
	Code    Code
	Message string
	Binding *Binding
}

// Validate runs the structural checks that do not need a VM class. Every rule
// runs; each failure invalidates the binding and yields one BindingError.
func (b *Binding) Validate() []BindingError {
	if b.Type == TwoWay {
		return b.validateHalves(func(h *Binding) []BindingError { return h.Validate() })
	}

	var errs []BindingError
	fail := func(code Code, msg string) {
		b.invalidate(msg)
		errs = append(errs, BindingError{Code: code, Message: msg, Binding: b})
	}

	if b.NodeID == "" {
		fail(NodeIDNotDefined, "node id is not defined")
	}
	if b.NodeField == "" {
		fail(NodeFieldNotDefined, "node field is not defined")
	}
	if b.Type != CodeBinding && b.ObserverField == "" {
		fail(ObserverFieldNotDefined, "observer field is not defined")
	}
	if b.Props.Transform != "" && !b.Type.readsValue() {
		fail(IllegalTransform, fmt.Sprintf("illegal transform function '%s' on %s binding", b.Props.Transform, b.Type))
	}
	if b.Type == CodeBinding {
		if msg := checkInlineCode(b.Raw); msg != "" {
			fail(InlineCodeParse, "could not parse inline code: "+msg)
		}
	}
	return errs
}

// validateHalves runs check on both halves of a two-way binding and folds their
// validity into b.
func (b *Binding) validateHalves(check func(*Binding) []BindingError) []BindingError {
	errs := check(b.Get)
	errs = append(errs, check(b.Set)...)
	b.Valid = b.Get.Valid && b.Set.Valid
	var msgs []string
	for _, h := range []*Binding{b.Get, b.Set} {
		if h.Err != "" {
			msgs = append(msgs, h.Err)
		}
	}
	b.Err = strings.Join(msgs, "; ")
	return errs
}

// checkInlineCode is the minimal syntax check applied to code bindings: the text
// must be a single Go expression.
func checkInlineCode(code string) string {
	if strings.TrimSpace(code) == "" {
		return "empty expression"
	}
	if _, err := parser.ParseExpr(code); err != nil {
		return err.Error()
	}
	return ""
}

// setTarget fills the node id and field on b and its halves.
func (b *Binding) setTarget(nodeID, nodeField string) {
	b.NodeID, b.NodeField = nodeID, nodeField
	if b.Type == TwoWay {
		b.Get.setTarget(nodeID, nodeField)
		b.Set.setTarget(nodeID, nodeField)
	}
}

// setRange records the source span on b and its halves.
func (b *Binding) setRange(r Range) {
	b.Range = r
	if b.Type == TwoWay {
		b.Get.Range = r
		b.Set.Range = r
	}
}
