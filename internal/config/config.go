package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vcrobe/nojs-binder/compiler"
)

// appName is the single source of truth for config file and env var names.
const appName = "nojs-binder"

// FileName is the project-local configuration file.
const FileName = appName + ".yaml"

var envConfigDir = strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG_DIR"

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("config file not found")

// Config is the top-level configuration for nojs-binder.
type Config struct {
	// MarkupExtension is the suffix of component markup files.
	MarkupExtension string `yaml:"markupExtension,omitempty"`

	// GeneratedSuffix is appended to the lower-cased component name for the generated file.
	GeneratedSuffix string `yaml:"generatedSuffix,omitempty"`

	// Packages are go/packages patterns that hold the view-model types.
	Packages []string `yaml:"packages,omitempty"`

	// Codegen names the identifiers used by the generated initializers.
	Codegen CodegenConfig `yaml:"codegen,omitempty"`

	// FailOnDiagnostics makes compile exit non-zero when any diagnostic is reported.
	FailOnDiagnostics *bool `yaml:"failOnDiagnostics,omitempty"`
}

// CodegenConfig mirrors compiler.GenerateOptions.
type CodegenConfig struct {
	Receiver       string `yaml:"receiver,omitempty"`
	VMAccessor     string `yaml:"vmAccessor,omitempty"`
	RuntimePackage string `yaml:"runtimePackage,omitempty"`
	RuntimeImport  string `yaml:"runtimeImport,omitempty"`
	DynamicMethod  string `yaml:"dynamicMethod,omitempty"`
	StaticMethod   string `yaml:"staticMethod,omitempty"`
	ConfiguredHook string `yaml:"configuredHook,omitempty"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	opts := compiler.DefaultOptions()
	g := opts.Generate
	return &Config{
		MarkupExtension: opts.MarkupExtension,
		GeneratedSuffix: opts.GeneratedSuffix,
		Packages:        opts.Packages,
		Codegen: CodegenConfig{
			Receiver:       g.Receiver,
			VMAccessor:     g.VMAccessor,
			RuntimePackage: g.Runtime,
			RuntimeImport:  opts.RuntimeImport,
			DynamicMethod:  g.DynamicMethod,
			StaticMethod:   g.StaticMethod,
			ConfiguredHook: g.ConfiguredHook,
		},
		FailOnDiagnostics: boolPtr(true),
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load reads the file at path and fills every unset key from DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults(DefaultConfig())
	return cfg, nil
}

// Find looks for a configuration file. Search order:
//  1. <dir>/nojs-binder.yaml
//  2. <dir>/.nojs-binder.yaml
//  3. $NOJS_BINDER_CONFIG_DIR/config.yaml
//  4. $XDG_CONFIG_HOME/nojs-binder/config.yaml
//  5. ~/.config/nojs-binder/config.yaml
func Find(dir string) (string, error) {
	candidates := []string{
		filepath.Join(dir, FileName),
		filepath.Join(dir, "."+FileName),
	}
	if v := os.Getenv(envConfigDir); v != "" {
		candidates = append(candidates, filepath.Join(v, "config.yaml"))
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		candidates = append(candidates, filepath.Join(v, appName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", appName, "config.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", ErrNotFound
}

// LoadOrDefault loads the file Find returns for dir, or DefaultConfig when none exists.
func LoadOrDefault(dir string) (*Config, string, error) {
	path, err := Find(dir)
	if errors.Is(err, ErrNotFound) {
		return DefaultConfig(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Write stores cfg as YAML at path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// ShouldFail reports whether diagnostics make the compile fail.
func (c *Config) ShouldFail() bool {
	return c.FailOnDiagnostics == nil || *c.FailOnDiagnostics
}

// Options converts the configuration into compiler options.
func (c *Config) Options() compiler.Options {
	return compiler.Options{
		MarkupExtension: c.MarkupExtension,
		GeneratedSuffix: c.GeneratedSuffix,
		Packages:        c.Packages,
		RuntimeImport:   c.Codegen.RuntimeImport,
		Generate: compiler.GenerateOptions{
			Receiver:       c.Codegen.Receiver,
			VMAccessor:     c.Codegen.VMAccessor,
			Runtime:        c.Codegen.RuntimePackage,
			TopID:          compiler.TopID,
			DynamicMethod:  c.Codegen.DynamicMethod,
			StaticMethod:   c.Codegen.StaticMethod,
			NodeRefsOnce:   compiler.DefaultGenerateOptions().NodeRefsOnce,
			NodeRefsInit:   compiler.DefaultGenerateOptions().NodeRefsInit,
			ConfiguredHook: c.Codegen.ConfiguredHook,
		},
	}
}

func (c *Config) applyDefaults(d *Config) {
	setString(&c.MarkupExtension, d.MarkupExtension)
	setString(&c.GeneratedSuffix, d.GeneratedSuffix)
	if len(c.Packages) == 0 {
		c.Packages = d.Packages
	}
	setString(&c.Codegen.Receiver, d.Codegen.Receiver)
	setString(&c.Codegen.VMAccessor, d.Codegen.VMAccessor)
	setString(&c.Codegen.RuntimePackage, d.Codegen.RuntimePackage)
	setString(&c.Codegen.RuntimeImport, d.Codegen.RuntimeImport)
	setString(&c.Codegen.DynamicMethod, d.Codegen.DynamicMethod)
	setString(&c.Codegen.StaticMethod, d.Codegen.StaticMethod)
	setString(&c.Codegen.ConfiguredHook, d.Codegen.ConfiguredHook)
	if c.FailOnDiagnostics == nil {
		c.FailOnDiagnostics = d.FailOnDiagnostics
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
