package compiler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Session holds the components of one compile session and runs the binding
// pass over them. Components persist between runs; bindings do not.
type Session struct {
	Registry *Registry
	Classes  ClassTable
	Options  GenerateOptions
	Logger   *slog.Logger
}

// NewSession returns a session validating against classes. A nil logger discards output.
func NewSession(classes ClassTable, opts GenerateOptions, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{Registry: NewRegistry(), Classes: classes, Options: opts, Logger: logger}
}

// Add registers a component with the session.
func (s *Session) Add(c *Component) {
	s.Registry.Add(c)
}

// ScanResult is the output of the scan phase for one component.
type ScanResult struct {
	Component *Component
	Tags      []*XMLTag
}

// Result carries every phase's output of one Run.
type Result struct {
	Scans       []ScanResult
	Validations []ValidationResult
	Generated   []*Generated
}

// Run resets, scans, validates and generates every component, in name order.
// Each phase finishes for all components before the next starts, so inherited
// ids and bindings are complete whichever order components were added in.
// Run can be repeated after edits; it starts from a clean state each time.
func (s *Session) Run(sink Sink) *Result {
	res := &Result{}
	components := s.Registry.Components()

	for _, c := range components {
		c.ResetBindings()
		tags := Scan(c, sink)
		s.Logger.Debug("scanned component", "component", c.Name, "tags", len(tags), "bindings", len(c.Bindings))
		res.Scans = append(res.Scans, ScanResult{Component: c, Tags: tags})
	}

	for _, c := range components {
		v := Validate(c, s.Classes, s.Registry, sink)
		s.Logger.Debug("validated component", "component", c.Name, "valid", c.Valid)
		res.Validations = append(res.Validations, v)
	}

	for _, v := range res.Validations {
		if !v.Generate {
			s.Logger.Debug("skipping code generation", "component", v.Component.Name)
			continue
		}
		gen, err := Generate(v.Component, s.Registry, s.Options)
		if errors.Is(err, ErrNoCodeBehind) {
			v.Component.report(sink, NoCodeBehind, rootRange(v.Component),
				fmt.Sprintf("component '%s' has bindings but no code behind", v.Component.Name))
			continue
		}
		if gen == nil {
			continue
		}
		s.Logger.Debug("generated initializers", "component", v.Component.Name, "bindings", len(gen.Bindings))
		res.Generated = append(res.Generated, gen)
	}
	return res
}

// Apply writes every generated fragment into its component's code-behind.
// Artifacts that can be reset are cleared first so repeated runs do not
// accumulate blocks.
func (r *Result) Apply() {
	for _, gen := range r.Generated {
		if cb, ok := gen.Component.CodeBehind.(interface{ Reset() }); ok {
			cb.Reset()
		}
		gen.Apply()
	}
}
