package config

// Default configuration values.
const (
	DefaultFileName   = "automark.yaml"
	DefaultPrefix     = "###"
	DefaultComparison = ComparisonTrailing
	DefaultMaxWidth   = 80
	DefaultPrecision  = 3
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "console"
	DefaultKeyPrefix  = "reports/"

	// DefaultPythonRun runs a script with input() prompts suppressed so
	// that only what the program prints is compared.
	DefaultPythonRun = `python3 -c "import builtins, runpy, sys; read = builtins.input; builtins.input = lambda prompt=None: read(); runpy.run_path(sys.argv[1], run_name='__main__')" {file}`
)

// Default returns a configuration with every default applied, used when no
// automark.yaml is found.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// DefaultLanguages returns the languages available without configuration.
func DefaultLanguages() map[string]LanguageConfig {
	return map[string]LanguageConfig{
		"lua": {
			Extensions: []string{".lua"},
			Engine:     EngineEmbedded,
		},
		"python": {
			Extensions: []string{".py"},
			Engine:     EngineProcess,
			Run:        DefaultPythonRun,
		},
	}
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	applyGradingDefaults(cfg)
	applyReportDefaults(cfg)
	applyLanguageDefaults(cfg)
	applyLoggingDefaults(cfg)
	applyStorageDefaults(cfg)
}

func applyGradingDefaults(cfg *Config) {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Comparison == "" {
		cfg.Comparison = DefaultComparison
	}
}

func applyReportDefaults(cfg *Config) {
	if cfg.Report == nil {
		cfg.Report = &ReportConfig{}
	}
	if cfg.Report.MaxWidth == nil {
		width := DefaultMaxWidth
		cfg.Report.MaxWidth = &width
	}
	if cfg.Report.Precision == nil {
		precision := DefaultPrecision
		cfg.Report.Precision = &precision
	}
}

// applyLanguageDefaults installs the built-in languages when none are
// configured. A configured languages map replaces them entirely.
func applyLanguageDefaults(cfg *Config) {
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages()
		return
	}
	for name, lang := range cfg.Languages {
		if lang.Engine == "" {
			lang.Engine = EngineProcess
		}
		cfg.Languages[name] = lang
	}
}

func applyLoggingDefaults(cfg *Config) {
	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

func applyStorageDefaults(cfg *Config) {
	if cfg.Storage == nil {
		return // Storage is optional
	}
	if cfg.Storage.UseSSL == nil {
		useSSL := true
		cfg.Storage.UseSSL = &useSSL
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = DefaultKeyPrefix
	}
}
