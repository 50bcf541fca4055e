package vizquery

import "time"

// ExecutionConfig consolidates every knob the execution pipeline, its
// adapters, and its logging read at runtime.
type ExecutionConfig struct {
	Query   QueryConfig   `json:"query"`
	Logging LoggingConfig `json:"logging"`
	Locale  LocaleConfig  `json:"locale"`
}

// QueryConfig bounds how much work a single Execute call can do.
type QueryConfig struct {
	DefaultTimeout  time.Duration `json:"defaultTimeout"`
	MaxRows         int           `json:"maxRows"`
	DefaultPageSize int           `json:"defaultPageSize"`
	MaxPageSize     int           `json:"maxPageSize"`
	MaxGroupDepth   int           `json:"maxGroupDepth"`
}

// LoggingConfig controls the zap logger wired into Execute.
type LoggingConfig struct {
	Level              string `json:"level"`
	Format             string `json:"format"`
	EnableQueryLogging bool   `json:"enableQueryLogging"`
	LogSlowQueries     bool   `json:"logSlowQueries"`
	SlowQueryThreshold time.Duration `json:"slowQueryThreshold"`
}

// LocaleConfig picks the default collation locale for tables that don't
// specify their own (§4.1's locale-aware TEXT comparator).
type LocaleConfig struct {
	DefaultLocale string `json:"defaultLocale"`
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string { return e.Field + ": " + e.Message }

// DefaultConfig returns the configuration used when no override is
// supplied: a 30s timeout, 10k row ceiling, 50/100 page size
// default/max, four levels of nested GROUP BY/PIVOT, info logging, and
// the "und" (root) collation locale.
func DefaultConfig() *ExecutionConfig {
	return &ExecutionConfig{
		Query: QueryConfig{
			DefaultTimeout:  30 * time.Second,
			MaxRows:         10000,
			DefaultPageSize: 50,
			MaxPageSize:     100,
			MaxGroupDepth:   4,
		},
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			EnableQueryLogging: true,
			LogSlowQueries:     true,
			SlowQueryThreshold: 500 * time.Millisecond,
		},
		Locale: LocaleConfig{
			DefaultLocale: "und",
		},
	}
}

// Validate checks the configuration is internally consistent.
func (c *ExecutionConfig) Validate() error {
	if c.Query.DefaultPageSize <= 0 {
		return &ConfigError{Field: "query.defaultPageSize", Message: "must be greater than 0"}
	}
	if c.Query.MaxPageSize < c.Query.DefaultPageSize {
		return &ConfigError{Field: "query.maxPageSize", Message: "must be greater than or equal to defaultPageSize"}
	}
	if c.Query.MaxRows <= 0 {
		return &ConfigError{Field: "query.maxRows", Message: "must be greater than 0"}
	}
	if c.Query.MaxGroupDepth <= 0 {
		return &ConfigError{Field: "query.maxGroupDepth", Message: "must be greater than 0"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be one of debug, info, warn, error"}
	}
	return nil
}
