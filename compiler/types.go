package compiler

import "fmt"

// TopID is the synthetic node id used by bindings on interface field tags.
// Generated code resolves it to the component itself.
const TopID = "top"

// BindingType is the direction (or one-shot kind) of a binding.
type BindingType int

const (
	OneWaySource BindingType = iota // {{expr}}: VM value pushed into the node
	OneWayTarget                    // {(expr)}: node change forwarded to the VM
	TwoWay                          // {[get|set]}: both of the above
	Static                          // {{:expr}}: copied once at construction
	CodeBinding                     // {{=code}}: raw inline expression assigned once
)

var bindingTypeNames = [...]string{
	OneWaySource: "oneWaySource",
	OneWayTarget: "oneWayTarget",
	TwoWay:       "twoWay",
	Static:       "static",
	CodeBinding:  "code",
}

func (t BindingType) String() string {
	if int(t) < 0 || int(t) >= len(bindingTypeNames) {
		return fmt.Sprintf("BindingType(%d)", int(t))
	}
	return bindingTypeNames[t]
}

// readsValue reports whether the view reads a VM value through this kind of
// binding. Only these kinds may carry a transform function.
func (t BindingType) readsValue() bool {
	return t == OneWaySource || t == Static
}

// CallArity describes how the observer member is referenced: as a plain field
// or as a method taking some combination of the node's value and the node.
type CallArity int

const (
	ArityField CallArity = iota // name
	ArityNone                   // name()
	ArityValue                  // name(value)
	ArityNode                   // name(node)
	ArityBoth                   // name(value,node)
)

var arityNames = [...]string{
	ArityField: "field",
	ArityNone:  "none",
	ArityValue: "value",
	ArityNode:  "node",
	ArityBoth:  "both",
}

func (a CallArity) String() string {
	if int(a) < 0 || int(a) >= len(arityNames) {
		return fmt.Sprintf("CallArity(%d)", int(a))
	}
	return arityNames[a]
}

// IsCall reports whether the binding references a method rather than a field.
func (a CallArity) IsCall() bool {
	return a > ArityField
}

// expectedParams maps a call arity to the parameter count the VM method must declare.
var expectedParams = [...]int{
	ArityField: 0,
	ArityNone:  0,
	ArityValue: 1,
	ArityNode:  1,
	ArityBoth:  2,
}

// ExpectedParams returns the number of parameters a method bound with this arity must take.
func (a CallArity) ExpectedParams() int {
	return expectedParams[a]
}

// Properties holds the optional modifiers that follow the first ';' of a binding body.
type Properties struct {
	FireOnSet bool   // push the current value when the observer is registered
	Transform string // VM method applied to the value on its way into the view
	Once      bool   // unregister after the first notification
}

// defaultProperties returns the modifiers a binding starts with.
func defaultProperties() Properties {
	return Properties{FireOnSet: true}
}

// Position is a 0-based line/character location in a markup file.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line+1, r.Start.Character+1, r.End.Line+1, r.End.Character+1)
}

// Binding is a single declarative link between a node field and a VM member.
type Binding struct {
	NodeID        string // target element id, or TopID for interface fields
	NodeField     string // attribute name or interface field id
	ObserverField string // VM member name (empty for CodeBinding)
	Type          BindingType
	Arity         CallArity
	Props         Properties

	// Path holds the dotted segments of a static dot-path reference (a.b.c).
	Path []string
	// Raw is the binding body as written; for CodeBinding it is the inline expression.
	Raw string
	// Range is the span of the whole binding, brackets included.
	Range Range

	Valid bool
	Err   string

	// Get and Set are the synthesized halves of a TwoWay binding.
	Get *Binding
	Set *Binding
}

// invalidate marks the binding invalid and records msg.
func (b *Binding) invalidate(msg string) {
	b.Valid = false
	if b.Err == "" {
		b.Err = msg
		return
	}
	b.Err += "; " + msg
}

// XMLTag is one markup element that carries at least one binding.
type XMLTag struct {
	Name     string
	ID       string
	Text     []byte // raw tag text; aliases the owning component's source buffer
	Start    int    // byte offset of Text within the source
	Line     int    // 0-based line of the tag's first byte
	TopLevel bool   // field tag directly inside <interface>
	Bindings []*Binding
}
