package nextver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPaths defines the search order for configuration files,
// relative to the working directory.
var DefaultConfigPaths = []string{
	".nextver.yaml",
	".nextver.yml",
}

// Config is the file-backed configuration surface.
type Config struct {
	// TagPattern extracts version tokens from tag names. Exactly one
	// capture group.
	TagPattern string `yaml:"tag_pattern"`

	// FirstVersion is used verbatim for a repository with no prior
	// releases.
	FirstVersion string `yaml:"first_version"`

	// VersionByBranch restricts resolution to tags reachable from
	// HEAD.
	VersionByBranch bool `yaml:"version_by_branch"`

	// OverrideEnv names the environment variable holding a verbatim
	// version override.
	OverrideEnv string `yaml:"override_env"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no config file
// exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig reads and parses a configuration file from the given
// path. If path is empty, the NEXTVER_CONFIG environment variable and
// then DefaultConfigPaths are consulted; a repository without any
// config file gets defaults, not an error.
func LoadConfig(path string) (*Config, error) {
	configPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return cfg, nil
}

// resolveConfigPath determines which config file to use.
// Priority: explicit path > NEXTVER_CONFIG env > default paths.
// An empty result means no config file exists.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return path, nil
	}

	if envPath := os.Getenv("NEXTVER_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file from NEXTVER_CONFIG not found: %s", envPath)
		}
		return envPath, nil
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// ApplyDefaults fills in defaults for missing values.
func ApplyDefaults(cfg *Config) {
	if cfg.TagPattern == "" {
		cfg.TagPattern = DefaultTagPattern
	}
	if cfg.FirstVersion == "" {
		cfg.FirstVersion = DefaultFirstVersion
	}
	if cfg.OverrideEnv == "" {
		cfg.OverrideEnv = DefaultOverrideEnv
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	if _, err := NewPattern(cfg.TagPattern); err != nil {
		return err
	}

	if _, err := ParseVersion(cfg.FirstVersion); err != nil {
		return fmt.Errorf("invalid first_version: %w", err)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (must be debug, info, warn or error)", cfg.LogLevel)
	}

	return nil
}
