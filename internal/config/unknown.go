package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	warnings := detectUnknownFields(data)

	return &cfg, warnings, nil
}

// detectUnknownFields compares the raw YAML mapping with known struct fields.
func detectUnknownFields(data []byte) []string {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	var warnings []string
	known := getYAMLFields(reflect.TypeOf(Config{}))
	for _, key := range sortedKeys(raw) {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	nested := []struct {
		key string
		typ reflect.Type
	}{
		{"report", reflect.TypeOf(ReportConfig{})},
		{"logging", reflect.TypeOf(LoggingConfig{})},
		{"storage", reflect.TypeOf(StorageConfig{})},
	}
	for _, n := range nested {
		if node, ok := raw[n.key]; ok {
			warnings = append(warnings, checkSectionUnknownFields(n.key, node, n.typ)...)
		}
	}

	if node, ok := raw["languages"]; ok {
		warnings = append(warnings, checkLanguagesUnknownFields(node)...)
	}

	return warnings
}

func checkSectionUnknownFields(section string, node yaml.Node, t reflect.Type) []string {
	var fields map[string]yaml.Node
	if err := node.Decode(&fields); err != nil {
		return nil
	}
	var warnings []string
	known := getYAMLFields(t)
	for _, key := range sortedKeys(fields) {
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, section))
		}
	}
	return warnings
}

func checkLanguagesUnknownFields(node yaml.Node) []string {
	var languages map[string]yaml.Node
	if err := node.Decode(&languages); err != nil {
		return []string{"internal: failed to re-parse languages for unknown field detection"}
	}

	var warnings []string
	known := getYAMLFields(reflect.TypeOf(LanguageConfig{}))
	for _, name := range sortedKeys(languages) {
		lang := languages[name]
		var fields map[string]yaml.Node
		if err := lang.Decode(&fields); err != nil {
			continue
		}
		for _, key := range sortedKeys(fields) {
			if !known[key] {
				warnings = append(warnings, fmt.Sprintf("unknown field %q in language %q (ignored)", key, name))
			}
		}
	}
	return warnings
}

// getYAMLFields returns a map of known YAML field names for a struct type.
func getYAMLFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
