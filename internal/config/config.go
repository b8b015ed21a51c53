package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Output formats supported by the renderer.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// Config represents the complete configuration for fieldlens
type Config struct {
	Output OutputConfig `yaml:"output"`
	Naming NamingConfig `yaml:"naming"`
}

// OutputConfig controls how flattened fields and documents are rendered
type OutputConfig struct {
	Format string `yaml:"format"`
	Indent int    `yaml:"indent"`
	Labels bool   `yaml:"labels"`
}

// NamingConfig controls the display labels derived from field keys
type NamingConfig struct {
	LabelOverrides map[string]string `yaml:"label_overrides"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatJSON,
			Indent: 2,
			Labels: true,
		},
		Naming: NamingConfig{
			LabelOverrides: make(map[string]string),
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatJSON, FormatTable:
	default:
		return fmt.Errorf("unsupported output format %q (expected %q or %q)",
			c.Output.Format, FormatJSON, FormatTable)
	}
	if c.Output.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", c.Output.Indent)
	}
	return nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".fieldlens.yml", ".fieldlens.yaml", "fieldlens.yml", "fieldlens.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// LabelFor returns the display label for a field key, applying overrides
// first and falling back to a humanized form of the key. Array item keys
// like "[3]" become "Item 3".
func (c *Config) LabelFor(key string) string {
	if mapped, exists := c.Naming.LabelOverrides[key]; exists {
		return mapped
	}
	if strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]") {
		return "Item " + strings.Trim(key, "[]")
	}

	words := strcase.ToDelimited(key, ' ')
	if words == "" {
		return key
	}
	runes := []rune(words)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
