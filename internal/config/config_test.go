package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidFull(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
prefix: "@@"
comparison: all
recursive: true
report:
  max_width: 0
  precision: 5
languages:
  ruby:
    extensions: [".rb"]
    engine: process
    run: "ruby {file}"
logging:
  level: debug
  format: json
storage:
  endpoint: "localhost:9000"
  bucket: grades
  use_ssl: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Prefix != "@@" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "@@")
	}
	if cfg.Comparison != ComparisonAll {
		t.Errorf("Comparison = %q, want %q", cfg.Comparison, ComparisonAll)
	}
	if !cfg.Recursive {
		t.Error("Recursive = false, want true")
	}
	if cfg.Report.MaxWidth == nil || *cfg.Report.MaxWidth != 0 {
		t.Errorf("Report.MaxWidth = %v, want 0", cfg.Report.MaxWidth)
	}
	if got := cfg.Languages["ruby"].Run; got != "ruby {file}" {
		t.Errorf("Languages[ruby].Run = %q, want %q", got, "ruby {file}")
	}
	if cfg.Storage.UseSSL == nil || *cfg.Storage.UseSSL {
		t.Errorf("Storage.UseSSL = %v, want false", cfg.Storage.UseSSL)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := Load("/nonexistent/path/automark.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "prefix: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
}

func TestLoadWithDefaults_AppliesDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}

	if cfg.Prefix != DefaultPrefix {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, DefaultPrefix)
	}
	if cfg.Comparison != DefaultComparison {
		t.Errorf("Comparison = %q, want %q", cfg.Comparison, DefaultComparison)
	}
	if *cfg.Report.MaxWidth != DefaultMaxWidth {
		t.Errorf("Report.MaxWidth = %d, want %d", *cfg.Report.MaxWidth, DefaultMaxWidth)
	}
	if *cfg.Report.Precision != DefaultPrecision {
		t.Errorf("Report.Precision = %d, want %d", *cfg.Report.Precision, DefaultPrecision)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging = %+v, want level %q format %q", cfg.Logging, DefaultLogLevel, DefaultLogFormat)
	}
	if cfg.Storage != nil {
		t.Errorf("Storage = %+v, want nil", cfg.Storage)
	}
	if len(cfg.Languages) != 2 {
		t.Fatalf("len(Languages) = %d, want 2", len(cfg.Languages))
	}
	if cfg.Languages["lua"].Engine != EngineEmbedded {
		t.Errorf("Languages[lua].Engine = %q, want %q", cfg.Languages["lua"].Engine, EngineEmbedded)
	}
	if cfg.Languages["python"].Run != DefaultPythonRun {
		t.Errorf("Languages[python].Run = %q, want default template", cfg.Languages["python"].Run)
	}
}

func TestLoadWithDefaults_ConfiguredLanguagesReplaceDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "languages:\n  ruby:\n    extensions: [.rb]\n    run: \"ruby {file}\"\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if len(cfg.Languages) != 1 {
		t.Errorf("len(Languages) = %d, want 1", len(cfg.Languages))
	}
	if got := cfg.Languages["ruby"].Engine; got != EngineProcess {
		t.Errorf("Languages[ruby].Engine = %q, want %q", got, EngineProcess)
	}
}

func TestLoadWithDefaults_StorageDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "storage:\n  endpoint: s3.local\n  bucket: b\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if cfg.Storage.UseSSL == nil || !*cfg.Storage.UseSSL {
		t.Errorf("Storage.UseSSL = %v, want true", cfg.Storage.UseSSL)
	}
	if cfg.Storage.Prefix != DefaultKeyPrefix {
		t.Errorf("Storage.Prefix = %q, want %q", cfg.Storage.Prefix, DefaultKeyPrefix)
	}
}

func TestLoadAndValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		wantErr     string
		wantWarning string
	}{
		{"empty file", "", "", ""},
		{"schema rejects comparison", "comparison: exact\n", "config validation failed", ""},
		{"schema rejects empty prefix", "prefix: \"\"\n", "config validation failed", ""},
		{"decode rejects sequence for bool", "recursive: [1]\n", "failed to parse", ""},
		{"decode rejects scalar for section", "report: 5\n", "failed to parse", ""},
		{"schema rejects quoted bool", "recursive: \"yes\"\n", "config validation failed", ""},
		{"semantic error", "languages:\n  a: {extensions: [.x], engine: embedded}\n  b: {extensions: [.X], engine: embedded}\n", "already used", ""},
		{"unknown field warns", "colour: red\n", "", `unknown field "colour"`},
		{"ignored run warns", "languages:\n  lua: {extensions: [.lua], engine: embedded, run: \"lua {file}\"}\n", "", "ignored by the embedded engine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tt.content)
			cfg, warnings, err := LoadAndValidate(path)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadAndValidate() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadAndValidate() error = %v", err)
			}
			if cfg == nil {
				t.Fatal("LoadAndValidate() returned nil config")
			}
			if tt.wantWarning == "" {
				if len(warnings) != 0 {
					t.Errorf("warnings = %v, want none", warnings)
				}
				return
			}
			found := false
			for _, w := range warnings {
				if strings.Contains(w, tt.wantWarning) {
					found = true
				}
			}
			if !found {
				t.Errorf("warnings = %v, want one containing %q", warnings, tt.wantWarning)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()
	warnings, err := Validate(cfg)
	if err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Validate(Default()) warnings = %v", warnings)
	}
}

func TestStorageConfig_Credentials(t *testing.T) {
	t.Setenv("AUTOMARK_TEST_SECRET", "s3cr3t")
	s := &StorageConfig{AccessKey: "plain", SecretKey: "${AUTOMARK_TEST_SECRET}"}
	ak, sk := s.Credentials()
	if ak != "plain" || sk != "s3cr3t" {
		t.Errorf("Credentials() = (%q, %q), want (%q, %q)", ak, sk, "plain", "s3cr3t")
	}

	var nilStorage *StorageConfig
	if nilStorage.Enabled() {
		t.Error("nil storage Enabled() = true")
	}
}
