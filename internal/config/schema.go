// Package config provides configuration loading and validation for automark.yaml.
package config

import "os"

// Config represents the complete automark.yaml configuration.
type Config struct {
	Prefix     string                    `yaml:"prefix,omitempty"`
	Comparison string                    `yaml:"comparison,omitempty"`
	Recursive  bool                      `yaml:"recursive,omitempty"`
	Report     *ReportConfig             `yaml:"report,omitempty"`
	Languages  map[string]LanguageConfig `yaml:"languages,omitempty"`
	Logging    *LoggingConfig            `yaml:"logging,omitempty"`
	Storage    *StorageConfig            `yaml:"storage,omitempty"`
}

// ReportConfig configures report tables. Nil values take the defaults;
// a max width of 0 disables wrapping.
type ReportConfig struct {
	MaxWidth  *int `yaml:"max_width,omitempty"`
	Precision *int `yaml:"precision,omitempty"`
}

// LanguageConfig binds file extensions to an engine.
type LanguageConfig struct {
	Extensions []string `yaml:"extensions"`
	Engine     string   `yaml:"engine,omitempty"`  // "embedded" or "process"
	Run        string   `yaml:"run,omitempty"`     // process engine command template
	Compile    string   `yaml:"compile,omitempty"` // optional process engine build step
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "console" or "json"
}

// StorageConfig configures uploading reports to an S3-compatible bucket.
// Credentials may reference environment variables as $VAR or ${VAR}.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	UseSSL    *bool  `yaml:"use_ssl,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// Enabled reports whether a bucket is configured.
func (s *StorageConfig) Enabled() bool {
	return s != nil && s.Bucket != ""
}

// Credentials returns the access and secret keys with environment
// references expanded.
func (s *StorageConfig) Credentials() (accessKey, secretKey string) {
	return os.ExpandEnv(s.AccessKey), os.ExpandEnv(s.SecretKey)
}

// Engine names.
const (
	EngineEmbedded = "embedded"
	EngineProcess  = "process"
)

// Comparison policy names.
const (
	ComparisonTrailing = "trailing"
	ComparisonAll      = "all"
)
