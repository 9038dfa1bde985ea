package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vcrobe/nojs-binder/compiler"
	"github.com/vcrobe/nojs-binder/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Compile declarative data bindings in *.gt.html components",
	Long: appName + " scans component markup for binding expressions, validates them\n" +
		"against the component's view-model type and generates the Go initializers\n" +
		"that wire them at runtime.\n\n" +
		"Binding forms:\n" +
		"  {{field}}      view reads a VM field\n" +
		"  {(method(v))}  node changes call a VM method\n" +
		"  {[get|set]}    both directions\n" +
		"  {{:a.b}}       copy once at construction\n" +
		"  {{=expr}}      assign a Go expression once",
}

var compileCmd = &cobra.Command{
	Use:   "compile [dir]",
	Short: "Validate bindings and write the generated initializers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(dirArg(args), true)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate bindings without writing anything",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(dirArg(args), false)
	},
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default " + config.FileName,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path := filepath.Join(dirArg(args), config.FileName)
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Write(path, config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Println(styleOK.Render("created " + path))
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(dir string) (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	cfg, _, err := config.LoadOrDefault(dir)
	return cfg, err
}

// errDiagnostics is returned when the pass reported problems and the
// configuration asks for a failing exit.
var errDiagnostics = errors.New("binding diagnostics reported")

func run(dir string, write bool) error {
	logger := newLogger()
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	sink := compiler.NewDiagnostics()
	res, components, err := compiler.Compile(dir, cfg.Options(), sink, logger)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	printDiagnostics(os.Stderr, sink, components)

	if write {
		if err := writeGenerated(res, flagDryRun, logger); err != nil {
			return err
		}
	}
	printSummary(os.Stdout, len(components), len(res.Generated), sink.Len())

	if sink.Len() > 0 && cfg.ShouldFail() {
		return errDiagnostics
	}
	return nil
}

func writeGenerated(res *compiler.Result, dryRun bool, logger *slog.Logger) error {
	for _, gen := range res.Generated {
		cb, ok := gen.Component.CodeBehind.(*compiler.GoCodeBehind)
		if !ok || !cb.Dirty() {
			continue
		}
		if dryRun {
			fmt.Printf("%s\n%s\n", styleHeader.Render("// "+cb.Path), cb.Bytes())
			continue
		}
		if err := os.WriteFile(cb.Path, cb.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cb.Path, err)
		}
		logger.Debug("wrote generated file", "path", cb.Path)
	}
	return nil
}
