package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/vcrobe/nojs-binder/compiler"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleError  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleOK     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	styleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// printDiagnostics renders every collected diagnostic with its source context.
func printDiagnostics(w io.Writer, sink *compiler.Diagnostics, components []*compiler.Component) {
	sources := make(map[string][]byte, len(components))
	for _, c := range components {
		sources[c.Path] = c.Pristine()
	}
	for _, file := range sink.Files() {
		fmt.Fprintln(w, styleHeader.Render(file))
		if src := sources[file]; src != nil {
			fmt.Fprint(w, sink.Format(file, src))
			continue
		}
		for _, d := range sink.For(file) {
			fmt.Fprintf(w, "%s %s %s\n",
				styleError.Render(fmt.Sprintf("[%d]", int(d.Code))),
				styleMuted.Render(d.Range.String()),
				d.Message)
		}
	}
}

func printSummary(w io.Writer, components, generated, diagnostics int) {
	line := fmt.Sprintf("%d components, %d generated, %d diagnostics", components, generated, diagnostics)
	if diagnostics > 0 {
		fmt.Fprintln(w, styleError.Render(line))
		return
	}
	fmt.Fprintln(w, styleOK.Render(line))
}
