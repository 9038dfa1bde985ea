package compiler

import (
	"fmt"
	"strings"
)

// syntaxError is a problem found while reading a binding expression.
type syntaxError struct {
	Code Code
	Msg  string
}

// bindingForm describes one bracket pair recognized in attribute values.
type bindingForm struct {
	open, close string
	typ         BindingType
}

var bindingForms = []bindingForm{
	{"{{", "}}", OneWaySource}, // refined to Static/CodeBinding by the body prefix
	{"{(", ")}", OneWayTarget},
	{"{[", "]}", TwoWay},
}

// exprSpan locates a binding inside an attribute value.
type exprSpan struct {
	typ        BindingType
	body       string
	start, end int // byte offsets within the value, brackets included
}

// findExpression discriminates the outer bracket kind of the first binding in
// value. found is false when value holds no binding opener at all.
func findExpression(value string) (span exprSpan, found bool, serr *syntaxError) {
	start := -1
	var form bindingForm
	for i := 0; i+1 < len(value); i++ {
		if value[i] != '{' {
			continue
		}
		for _, f := range bindingForms {
			if strings.HasPrefix(value[i:], f.open) {
				start, form = i, f
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return exprSpan{}, false, nil
	}

	inner := value[start+len(form.open):]
	typ := form.typ
	if typ == OneWaySource {
		switch {
		case strings.HasPrefix(inner, ":"):
			typ = Static
		case strings.HasPrefix(inner, "="):
			typ = CodeBinding
		}
	}

	var closeAt int
	if typ == CodeBinding {
		// inline code may itself contain "}}"; the binding ends at the last closer
		closeAt = strings.LastIndex(inner, form.close)
	} else {
		closeAt = strings.Index(inner, form.close)
	}
	if closeAt < 0 {
		return exprSpan{}, true, &syntaxError{
			Code: MissingEndBrackets,
			Msg:  fmt.Sprintf("missing end brackets '%s' for binding starting with '%s'", form.close, form.open),
		}
	}

	body := inner[:closeAt]
	if typ == Static || typ == CodeBinding {
		body = body[1:]
	}
	return exprSpan{
		typ:   typ,
		body:  body,
		start: start,
		end:   start + len(form.open) + closeAt + len(form.close),
	}, true, nil
}

// parseExpression turns the body of a binding into a Binding. NodeID and
// NodeField are left for the scanner to fill in.
func parseExpression(span exprSpan) (*Binding, []syntaxError) {
	switch span.typ {
	case CodeBinding:
		return &Binding{
			Type:  CodeBinding,
			Arity: ArityField,
			Props: defaultProperties(),
			Raw:   strings.TrimSpace(span.body),
			Valid: true,
		}, nil

	case TwoWay:
		getText, setText, split := splitTwoWay(span.body)
		get, errs := parseDirectional(getText, OneWaySource)
		if !split {
			// the setter reuses the getter's reference; its settings stay on the getter
			setText = strings.SplitN(getText, ";", 2)[0]
		}
		set, setErrs := parseDirectional(setText, OneWayTarget)
		if split {
			errs = append(errs, setErrs...)
		}
		if len(errs) > 0 {
			return nil, errs
		}
		if !split {
			set.Props.Once = get.Props.Once
		}
		return &Binding{
			Type:          TwoWay,
			ObserverField: get.ObserverField,
			Arity:         get.Arity,
			Props:         get.Props,
			Raw:           span.body,
			Valid:         true,
			Get:           get,
			Set:           set,
		}, nil
	}
	return parseDirectional(span.body, span.typ)
}

// splitTwoWay splits a two-way body on its first top-level '|'. Without a
// separator the same text serves both directions.
func splitTwoWay(body string) (get, set string, split bool) {
	depth := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				return body[:i], body[i+1:], true
			}
		}
	}
	return body, body, false
}

// parseDirectional reads "reference;setting;setting..." for every form except CodeBinding.
func parseDirectional(body string, typ BindingType) (*Binding, []syntaxError) {
	parts := strings.Split(body, ";")
	b := &Binding{
		Type:  typ,
		Props: defaultProperties(),
		Raw:   strings.TrimSpace(body),
		Valid: true,
	}

	var errs []syntaxError
	name, arity, err := parseReference(parts[0])
	if err != nil {
		errs = append(errs, *err)
	}
	b.ObserverField, b.Arity = name, arity
	if typ == Static && arity == ArityField && strings.Contains(name, ".") {
		b.Path = strings.Split(name, ".")
	}

	for _, part := range parts[1:] {
		if serr := applySetting(&b.Props, part); serr != nil {
			errs = append(errs, *serr)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return b, nil
}

// parseReference reads "name" or "name(args)".
func parseReference(part string) (string, CallArity, *syntaxError) {
	part = strings.TrimSpace(part)
	open := strings.IndexByte(part, '(')
	if open < 0 {
		return part, ArityField, nil
	}
	name := strings.TrimSpace(part[:open])
	rest := part[open+1:]
	if !strings.HasSuffix(rest, ")") {
		return name, ArityField, &syntaxError{
			Code: UnknownFunctionArgs,
			Msg:  fmt.Sprintf("unknown function args '%s' for '%s'", rest, name),
		}
	}
	args := strings.ToLower(strings.Join(strings.Fields(rest[:len(rest)-1]), ""))
	switch args {
	case "":
		return name, ArityNone, nil
	case "value":
		return name, ArityValue, nil
	case "node":
		return name, ArityNode, nil
	case "value,node":
		return name, ArityBoth, nil
	}
	return name, ArityField, &syntaxError{
		Code: UnknownFunctionArgs,
		Msg:  fmt.Sprintf("unknown function args '%s' for '%s'", rest[:len(rest)-1], name),
	}
}

// applySetting handles one ';'-separated modifier.
func applySetting(props *Properties, part string) *syntaxError {
	compact := strings.Join(strings.Fields(part), "")
	if compact == "" {
		return nil
	}
	lower := strings.ToLower(compact)
	switch {
	case strings.HasPrefix(lower, "transform="):
		fn := compact[len("transform="):]
		if fn == "" {
			return &syntaxError{Code: EmptyTransform, Msg: "transform function name is empty"}
		}
		props.Transform = fn
	case lower == "fireonset":
		props.FireOnSet = true
	case lower == "once":
		props.Once = true
	default:
		return &syntaxError{
			Code: UnrecognizedSetting,
			Msg:  fmt.Sprintf("unrecognized binding setting '%s'", strings.TrimSpace(part)),
		}
	}
	return nil
}
