package compiler

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultGeneratedSuffix is appended to the lower-cased component name to form
// the generated code-behind file name.
const DefaultGeneratedSuffix = ".bindings.generated.go"

// Options configures a directory compile.
type Options struct {
	MarkupExtension string
	GeneratedSuffix string
	Packages        []string // go/packages patterns holding the VM types
	RuntimeImport   string   // import path of the binding runtime, added to generated files
	Generate        GenerateOptions
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		MarkupExtension: DefaultMarkupExtension,
		GeneratedSuffix: DefaultGeneratedSuffix,
		Packages:        []string{"./..."},
		RuntimeImport:   "github.com/vcrobe/nojs/bind",
		Generate:        DefaultGenerateOptions(),
	}
}

// Discover finds every markup file under rootDir and builds its component.
// A component's code-behind exists when a Go file named after the lower-cased
// component sits next to the markup (UserCard.gt.html -> usercard.go).
func Discover(rootDir string, opts Options) ([]*Component, error) {
	var components []*Component
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != rootDir && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), opts.MarkupExtension) {
			return nil
		}

		markup, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		c := NewComponent(path, markup, nil)
		c.MarkupExtension = opts.MarkupExtension
		c.CodeBehind = findCodeBehind(path, opts)
		components = append(components, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return components, nil
}

// findCodeBehind returns the generated artifact for the markup at path, or nil
// when the companion Go file is missing or has no readable package clause.
func findCodeBehind(path string, opts Options) CodeBehind {
	dir := filepath.Dir(path)
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), opts.MarkupExtension))
	goFile := filepath.Join(dir, stem+".go")

	f, err := parser.ParseFile(token.NewFileSet(), goFile, nil, parser.PackageClauseOnly)
	if err != nil {
		return nil
	}
	var imports []string
	if opts.RuntimeImport != "" {
		imports = append(imports, opts.RuntimeImport)
	}
	return NewGoCodeBehind(filepath.Join(dir, stem+opts.GeneratedSuffix), f.Name.Name, imports...)
}

// Compile discovers the components under rootDir, loads their VM classes and
// runs one binding pass. Generated fragments are applied to the code-behind
// artifacts but nothing is written to disk.
func Compile(rootDir string, opts Options, sink Sink, logger *slog.Logger) (*Result, []*Component, error) {
	absDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve absolute path for %s: %w", rootDir, err)
	}

	components, err := Discover(absDir, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover components: %w", err)
	}
	classes, err := LoadClasses(absDir, opts.Packages...)
	if err != nil {
		return nil, nil, err
	}

	s := NewSession(classes, opts.Generate, logger)
	for _, c := range components {
		s.Add(c)
	}
	s.Logger.Info("discovered components", "count", len(components), "classes", len(classes))

	res := s.Run(sink)
	res.Apply()
	return res, components, nil
}
