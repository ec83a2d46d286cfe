package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAggregationPrefix is stripped from top-level aggregation names.
const DefaultAggregationPrefix = "agg_"

// Config holds the hitmap configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Result        ResultConfig        `yaml:"result"`
	Mapping       MappingConfig       `yaml:"mapping"`
	Auth          AuthConfig          `yaml:"auth"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // empty = auth disabled
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// ElasticsearchConfig holds search backend connection settings.
type ElasticsearchConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ResultConfig holds result mapping settings.
type ResultConfig struct {
	AggregationPrefix *string `yaml:"aggregation_prefix"` // nil = default, "" = keep names verbatim
}

// MappingConfig maps search types to classes.
type MappingConfig struct {
	Types map[string]TypeConfig `yaml:"types"`
}

// TypeConfig describes the class a search type is converted to.
type TypeConfig struct {
	Class   string                 `yaml:"class"`
	Aliases map[string]AliasConfig `yaml:"aliases"`
}

// AliasConfig maps one source field to a class property.
type AliasConfig struct {
	Property string                 `yaml:"property"`
	Type     string                 `yaml:"type"`
	Multiple bool                   `yaml:"multiple"`
	Aliases  map[string]AliasConfig `yaml:"aliases"` // object and nested types
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates raw YAML.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if len(c.Elasticsearch.Addrs) == 0 {
		c.Elasticsearch.Addrs = []string{"http://localhost:9200"}
	}
	if c.Elasticsearch.ReadinessTimeout <= 0 {
		c.Elasticsearch.ReadinessTimeout = 10
	}
	if c.Result.AggregationPrefix == nil {
		prefix := DefaultAggregationPrefix
		c.Result.AggregationPrefix = &prefix
	}
}

// AggregationPrefix returns the effective aggregation name prefix.
func (c *Config) AggregationPrefix() string {
	if c.Result.AggregationPrefix == nil {
		return DefaultAggregationPrefix
	}
	return *c.Result.AggregationPrefix
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	for _, addr := range c.Elasticsearch.Addrs {
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			return fmt.Errorf("elasticsearch.addrs: %q must start with http:// or https://", addr)
		}
	}
	for name, tc := range c.Mapping.Types {
		if tc.Class == "" {
			return fmt.Errorf("mapping.types.%s.class is required", name)
		}
		if err := validateAliases("mapping.types."+name+".aliases", tc.Aliases); err != nil {
			return err
		}
	}
	return nil
}

func validateAliases(path string, aliases map[string]AliasConfig) error {
	for field, a := range aliases {
		if a.Property == "" {
			return fmt.Errorf("%s.%s.property is required", path, field)
		}
		if err := validateAliases(path+"."+field+".aliases", a.Aliases); err != nil {
			return err
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
