package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vcrobe/nojs-binder/compiler"
)

// isolate points every user-level search location at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	empty := t.TempDir()
	t.Setenv("HOME", empty)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv(envConfigDir, "")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_FillsDefaults(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "markupExtension: .view.html\ncodegen:\n  receiver: p\nfailOnDiagnostics: false\n")

	// Act
	cfg, err := Load(path)

	// Assert
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.MarkupExtension != ".view.html" || cfg.Codegen.Receiver != "p" {
		t.Errorf("Expected file values to win, got %+v", cfg)
	}
	if cfg.GeneratedSuffix != def.GeneratedSuffix || cfg.Codegen.VMAccessor != def.Codegen.VMAccessor {
		t.Errorf("Expected unset keys to take defaults, got %+v", cfg)
	}
	if diff := cmp.Diff(def.Packages, cfg.Packages); diff != "" {
		t.Errorf("Packages mismatch (-want +got):\n%s", diff)
	}
	if cfg.ShouldFail() {
		t.Errorf("Expected failOnDiagnostics: false to be honored")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "packages: [unterminated\n")

	if _, err := Load(path); err == nil {
		t.Errorf("Expected a parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected a read error")
	}
}

// TestFind_SearchOrder verifies project files win over user-level ones.
func TestFind_SearchOrder(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	userDir := t.TempDir()
	t.Setenv(envConfigDir, userDir)

	if _, err := Find(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	writeFile(t, filepath.Join(userDir, "config.yaml"), "{}\n")
	if got, _ := Find(dir); got != filepath.Join(userDir, "config.yaml") {
		t.Errorf("Expected the env directory, got %q", got)
	}

	writeFile(t, filepath.Join(dir, "."+FileName), "{}\n")
	if got, _ := Find(dir); got != filepath.Join(dir, "."+FileName) {
		t.Errorf("Expected the hidden project file, got %q", got)
	}

	writeFile(t, filepath.Join(dir, FileName), "{}\n")
	if got, _ := Find(dir); got != filepath.Join(dir, FileName) {
		t.Errorf("Expected the project file, got %q", got)
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	isolate(t)

	cfg, path, err := LoadOrDefault(t.TempDir())

	if err != nil || path != "" {
		t.Fatalf("Expected defaults without a path, got %q, %v", path, err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Packages = []string{"./pages/..."}

	if err := Write(path, cfg); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_MapsCodegen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Codegen.RuntimePackage = "rt"
	cfg.Codegen.VMAccessor = "Model"

	opts := cfg.Options()

	want := compiler.DefaultGenerateOptions()
	want.Runtime, want.VMAccessor = "rt", "Model"
	if diff := cmp.Diff(want, opts.Generate); diff != "" {
		t.Errorf("Generate options mismatch (-want +got):\n%s", diff)
	}
	if opts.RuntimeImport != compiler.DefaultOptions().RuntimeImport {
		t.Errorf("Expected the default runtime import, got %q", opts.RuntimeImport)
	}
}
