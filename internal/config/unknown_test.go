package config

import (
	"reflect"
	"testing"
)

func TestLoadWithWarnings_UnknownFields(t *testing.T) {
	t.Parallel()
	data := []byte(`
prefix: "###"
colour: red
report:
  max_width: 60
  border: false
languages:
  lua:
    extensions: [.lua]
    sandbox: true
storage:
  bucket: b
  region: eu
`)

	cfg, warnings, err := LoadWithWarnings("automark.yaml", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if cfg.Prefix != "###" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "###")
	}

	want := []string{
		`unknown field "colour" at root level (ignored)`,
		`unknown field "border" in report (ignored)`,
		`unknown field "region" in storage (ignored)`,
		`unknown field "sandbox" in language "lua" (ignored)`,
	}
	if !reflect.DeepEqual(warnings, want) {
		t.Errorf("warnings = %q, want %q", warnings, want)
	}
}

func TestLoadWithWarnings_KnownFieldsOnly(t *testing.T) {
	t.Parallel()
	data := []byte("prefix: \"###\"\nrecursive: true\nlogging: {level: info, format: json}\n")

	_, warnings, err := LoadWithWarnings("automark.yaml", data)
	if err != nil {
		t.Fatalf("LoadWithWarnings() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

func TestLoadWithWarnings_InvalidYAML(t *testing.T) {
	t.Parallel()
	if _, _, err := LoadWithWarnings("automark.yaml", []byte("prefix: [")); err == nil {
		t.Error("LoadWithWarnings() expected error")
	}
}

func TestGetYAMLFields(t *testing.T) {
	t.Parallel()
	got := getYAMLFields(reflect.TypeOf(LanguageConfig{}))
	want := map[string]bool{"extensions": true, "engine": true, "run": true, "compile": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("getYAMLFields(LanguageConfig) = %v, want %v", got, want)
	}
}
