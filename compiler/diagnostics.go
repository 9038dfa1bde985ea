package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Code identifies a class of diagnostic. Every code has a distinct number so the
// host can filter or suppress them.
type Code int

const (
	CouldNotParseMarkup Code = 1001
	MissingEndBrackets  Code = 1002
	UnknownFunctionArgs Code = 1003
	UnrecognizedSetting Code = 1004
	EmptyTransform      Code = 1005

	NodeIDNotDefined        Code = 1101
	NodeFieldNotDefined     Code = 1102
	ObserverFieldNotDefined Code = 1103
	IllegalTransform        Code = 1104
	InlineCodeParse         Code = 1105

	VMNotDeclared      Code = 1201
	VMClassNotFound    Code = 1202
	VMFieldNotFound    Code = 1203
	VMFunctionNotFound Code = 1204
	WrongArgCount      Code = 1205
	FieldRequired      Code = 1206
	StaticCallArgs     Code = 1207

	DuplicateTagID         Code = 1301
	DuplicateFieldID       Code = 1302
	ParentDuplicateTagID   Code = 1303
	ParentDuplicateFieldID Code = 1304
	CircularExtends        Code = 1305

	NoCodeBehind Code = 1401
)

var codeNames = map[Code]string{
	CouldNotParseMarkup:     "could-not-parse-markup",
	MissingEndBrackets:      "missing-end-brackets",
	UnknownFunctionArgs:     "unknown-function-args",
	UnrecognizedSetting:     "unrecognized-binding-setting",
	EmptyTransform:          "empty-transform",
	NodeIDNotDefined:        "node-id-not-defined",
	NodeFieldNotDefined:     "node-field-not-defined",
	ObserverFieldNotDefined: "observer-field-not-defined",
	IllegalTransform:        "illegal-transform",
	InlineCodeParse:         "inline-code-parse",
	VMNotDeclared:           "vm-not-declared",
	VMClassNotFound:         "vm-class-not-found",
	VMFieldNotFound:         "vm-field-not-found",
	VMFunctionNotFound:      "vm-function-not-found",
	WrongArgCount:           "wrong-arg-count",
	FieldRequired:           "field-required",
	StaticCallArgs:          "static-call-args",
	DuplicateTagID:          "duplicate-tag-id",
	DuplicateFieldID:        "duplicate-field-id",
	ParentDuplicateTagID:    "parent-duplicate-tag-id",
	ParentDuplicateFieldID:  "parent-duplicate-field-id",
	CircularExtends:         "circular-extends",
	NoCodeBehind:            "no-code-behind",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code-%d", int(c))
}

// Diagnostic is a single user-facing problem found in a markup file.
type Diagnostic struct {
	Code    Code
	Message string
	Range   Range
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: [%d] %s", d.Range, int(d.Code), d.Message)
}

// Sink receives diagnostics keyed by file path.
type Sink interface {
	Report(file string, d Diagnostic)
}

// Diagnostics is a Sink that keeps every report in arrival order, per file.
type Diagnostics struct {
	byFile map[string][]Diagnostic
	files  []string
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{byFile: make(map[string][]Diagnostic)}
}

// Report implements Sink.
func (ds *Diagnostics) Report(file string, d Diagnostic) {
	if _, seen := ds.byFile[file]; !seen {
		ds.files = append(ds.files, file)
	}
	ds.byFile[file] = append(ds.byFile[file], d)
}

// For returns the diagnostics reported for file, in arrival order.
func (ds *Diagnostics) For(file string) []Diagnostic {
	return ds.byFile[file]
}

// Files returns every file that received at least one diagnostic, sorted.
func (ds *Diagnostics) Files() []string {
	files := append([]string(nil), ds.files...)
	sort.Strings(files)
	return files
}

// Len returns the total number of diagnostics collected.
func (ds *Diagnostics) Len() int {
	n := 0
	for _, list := range ds.byFile {
		n += len(list)
	}
	return n
}

// Count returns how many diagnostics with the given code were reported for file.
func (ds *Diagnostics) Count(file string, code Code) int {
	n := 0
	for _, d := range ds.byFile[file] {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Reset drops everything collected for file.
func (ds *Diagnostics) Reset(file string) {
	delete(ds.byFile, file)
	for i, f := range ds.files {
		if f == file {
			ds.files = append(ds.files[:i], ds.files[i+1:]...)
			break
		}
	}
}

// Format renders the diagnostics of one file with surrounding source lines.
func (ds *Diagnostics) Format(file string, source []byte) string {
	var b strings.Builder
	for _, d := range ds.byFile[file] {
		fmt.Fprintf(&b, "Compilation Error in %s:%d:%d: [%d] %s\n",
			file, d.Range.Start.Line+1, d.Range.Start.Character+1, int(d.Code), d.Message)
		if source != nil {
			b.WriteString(getContextLines(string(source), d.Range.Start.Line+1, 2))
		}
	}
	return b.String()
}
