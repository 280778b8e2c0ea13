package velocity

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config contains all configuration options for the Velocity engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// LogFormat selects the log encoding, "text" or "json"
	LogFormat string
	// MaxRenderDepth bounds how deeply #if/#foreach bodies may nest while rendering
	MaxRenderDepth int
	// DisableCache turns off memoisation of compiled templates
	DisableCache bool
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		MaxRenderDepth: 100,
		DisableCache:   false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// VELOCITY_LOG_LEVEL
	if val := os.Getenv("VELOCITY_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	// VELOCITY_LOG_FORMAT
	if val := os.Getenv("VELOCITY_LOG_FORMAT"); val != "" {
		config.LogFormat = strings.ToLower(val)
	}

	// VELOCITY_MAX_RENDER_DEPTH
	if val := os.Getenv("VELOCITY_MAX_RENDER_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxRenderDepth = depth
		}
	}

	// VELOCITY_CACHE
	if val := os.Getenv("VELOCITY_CACHE"); val != "" {
		config.DisableCache = !parseBool(val)
	}

	return config
}

// fileConfig mirrors Config for HCL decoding; nil fields were not set in the file.
type fileConfig struct {
	LogLevel       *string `hcl:"log_level,optional"`
	LogFormat      *string `hcl:"log_format,optional"`
	MaxRenderDepth *int    `hcl:"max_render_depth,optional"`
	Cache          *bool   `hcl:"cache,optional"`
}

// LoadConfigFile reads an HCL configuration file. Attributes missing from
// the file keep their values from base, or from DefaultConfig when base is nil.
//
//	log_level        = "debug"
//	log_format       = "json"
//	max_render_depth = 64
//	cache            = true
func LoadConfigFile(path string, base *Config) (*Config, error) {
	config := DefaultConfig()
	if base != nil {
		c := *base
		config = &c
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	if fc.LogLevel != nil {
		config.LogLevel = strings.ToLower(*fc.LogLevel)
	}
	if fc.LogFormat != nil {
		config.LogFormat = strings.ToLower(*fc.LogFormat)
	}
	if fc.MaxRenderDepth != nil {
		config.MaxRenderDepth = *fc.MaxRenderDepth
	}
	if fc.Cache != nil {
		config.DisableCache = !*fc.Cache
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}

	if config.MaxRenderDepth == 0 {
		config.MaxRenderDepth = defaults.MaxRenderDepth
	}

	return &config
}

// Validate checks if the configuration is valid. Every invalid field is
// reported.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	errs := NewMultiError()
	if !validLogLevels[c.LogLevel] {
		errs.Add(errors.New("invalid log level: " + c.LogLevel))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs.Add(errors.New("invalid log format: " + c.LogFormat))
	}

	if c.MaxRenderDepth <= 0 {
		errs.Add(errors.New("max render depth must be positive"))
	}

	return errs.Err()
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Outside the lock: the logger reads the config back.
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
