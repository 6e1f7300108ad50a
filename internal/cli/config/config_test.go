package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dphaener/golisp/internal/environment"
)

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Scoping.Mode != "lexical" {
		t.Errorf("expected default scoping mode 'lexical', got %s", cfg.Scoping.Mode)
	}
	if cfg.Numeric.Precision != 11 {
		t.Errorf("expected default precision 11, got %d", cfg.Numeric.Precision)
	}
	if len(cfg.Watch.Patterns) == 0 {
		t.Error("expected default watch patterns to be non-empty")
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	configContent := `
scoping:
  mode: dynamic
numeric:
  precision: 20
repl:
  stdin: fixtures/lines.txt
watch:
  patterns:
    - "*.lisp"
  debounce_ms: 500
`
	os.WriteFile("golisp.yml", []byte(configContent), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Scoping.Mode != "dynamic" {
		t.Errorf("expected scoping mode 'dynamic', got %s", cfg.Scoping.Mode)
	}
	if cfg.Numeric.Precision != 20 {
		t.Errorf("expected precision 20, got %d", cfg.Numeric.Precision)
	}
	if cfg.Repl.Stdin != "fixtures/lines.txt" {
		t.Errorf("expected repl.stdin override, got %s", cfg.Repl.Stdin)
	}
	if cfg.Watch.DebounceMs != 500 {
		t.Errorf("expected debounce_ms 500, got %d", cfg.Watch.DebounceMs)
	}
}

func TestScopingModeTranslation(t *testing.T) {
	cfg := &Config{Scoping: ScopingConfig{Mode: "dynamic"}}
	mode, err := cfg.ScopingMode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != environment.Dynamic {
		t.Errorf("expected Dynamic, got %v", mode)
	}

	cfg = &Config{Scoping: ScopingConfig{Mode: "bogus"}}
	if _, err := cfg.ScopingMode(); err == nil {
		t.Error("expected an error for an unrecognized scoping mode")
	}
}

func TestInProject(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if InProject() {
		t.Error("expected InProject to return false in an empty directory")
	}

	os.WriteFile("golisp.yml", []byte(""), 0644)
	if !InProject() {
		t.Error("expected InProject to return true once golisp.yml exists")
	}
}

func TestGetProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	os.WriteFile(filepath.Join(tmpDir, "golisp.yml"), []byte(""), 0644)

	subDir := filepath.Join(tmpDir, "src", "deep", "nested")
	os.MkdirAll(subDir, 0755)
	os.Chdir(subDir)

	root, err := GetProjectRoot()
	if err != nil {
		t.Fatalf("expected to find project root, got error: %v", err)
	}

	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedTmpDir, _ := filepath.EvalSymlinks(tmpDir)
	if resolvedRoot != resolvedTmpDir {
		t.Errorf("expected project root to be %s, got %s", resolvedTmpDir, resolvedRoot)
	}
}

func TestGetProjectRootNotInProject(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if _, err := GetProjectRoot(); err == nil {
		t.Error("expected error when not in a project, got nil")
	}
}
