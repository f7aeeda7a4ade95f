package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Language name: lowercase letters, digits, and hyphens.
var languageNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration with defaults applied for errors and
// returns warnings for settings that have no effect.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := validateGrading(cfg); err != nil {
		return nil, err
	}
	if err := validateReport(cfg.Report); err != nil {
		return nil, err
	}

	warnings, err = validateLanguages(cfg.Languages)
	if err != nil {
		return nil, err
	}

	if err := validateLogging(cfg.Logging); err != nil {
		return nil, err
	}
	if err := validateStorage(cfg.Storage); err != nil {
		return nil, err
	}
	return warnings, nil
}

func validateGrading(cfg *Config) error {
	if err := ValidatePrefix(cfg.Prefix); err != nil {
		return err
	}
	if cfg.Comparison != ComparisonTrailing && cfg.Comparison != ComparisonAll {
		return &ValidationError{
			Field:   "comparison",
			Message: fmt.Sprintf("must be %q or %q", ComparisonTrailing, ComparisonAll),
		}
	}
	return nil
}

// ValidatePrefix checks a test case delimiter prefix.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return &ValidationError{Field: "prefix", Message: "is required"}
	}
	if strings.ContainsAny(prefix, "\r\n") {
		return &ValidationError{Field: "prefix", Message: "must not contain line breaks"}
	}
	return nil
}

func validateReport(r *ReportConfig) error {
	if r == nil {
		return nil
	}
	if r.MaxWidth != nil && *r.MaxWidth < 0 {
		return &ValidationError{Field: "report.max_width", Message: "must be 0 (unlimited) or positive"}
	}
	if r.Precision != nil && (*r.Precision < 0 || *r.Precision > 17) {
		return &ValidationError{Field: "report.precision", Message: "must be between 0 and 17"}
	}
	return nil
}

func validateLanguages(languages map[string]LanguageConfig) ([]string, error) {
	var warnings []string
	owners := make(map[string]string)

	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lang := languages[name]
		field := fmt.Sprintf("languages.%s", name)
		if !languageNamePattern.MatchString(name) {
			return nil, &ValidationError{
				Field:   field,
				Message: "language name must match pattern ^[a-z][a-z0-9-]*$ (lowercase letters, digits, hyphens)",
			}
		}
		if len(lang.Extensions) == 0 {
			return nil, &ValidationError{Field: field + ".extensions", Message: "is required"}
		}
		for _, ext := range lang.Extensions {
			key := strings.ToLower(strings.TrimPrefix(ext, "."))
			if key == "" {
				return nil, &ValidationError{Field: field + ".extensions", Message: "must not contain empty extensions"}
			}
			if owner, taken := owners[key]; taken {
				return nil, &ValidationError{
					Field:   field + ".extensions",
					Message: fmt.Sprintf("extension %q is already used by language %q", ext, owner),
				}
			}
			owners[key] = name
		}

		switch lang.Engine {
		case EngineEmbedded:
			if lang.Run != "" || lang.Compile != "" {
				warnings = append(warnings, fmt.Sprintf("%s: run and compile are ignored by the embedded engine", field))
			}
		case EngineProcess:
			if lang.Run == "" {
				return nil, &ValidationError{Field: field + ".run", Message: "is required for the process engine"}
			}
			if !strings.Contains(lang.Run, "{file}") && !strings.Contains(lang.Run, "{bin}") {
				warnings = append(warnings, fmt.Sprintf("%s.run: template references neither {file} nor {bin}", field))
			}
		default:
			return nil, &ValidationError{
				Field:   field + ".engine",
				Message: fmt.Sprintf("must be %q or %q", EngineEmbedded, EngineProcess),
			}
		}
	}
	return warnings, nil
}

func validateLogging(l *LoggingConfig) error {
	if l == nil {
		return nil
	}
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of debug, info, warn, error"}
	}
	if l.Format != "console" && l.Format != "json" {
		return &ValidationError{Field: "logging.format", Message: `must be "console" or "json"`}
	}
	return nil
}

func validateStorage(s *StorageConfig) error {
	if !s.Enabled() {
		return nil
	}
	if s.Endpoint == "" {
		return &ValidationError{Field: "storage.endpoint", Message: "is required when a bucket is set"}
	}
	if strings.Contains(s.Endpoint, "://") {
		return &ValidationError{Field: "storage.endpoint", Message: "must be host[:port] without a scheme"}
	}
	return nil
}
