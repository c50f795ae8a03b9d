package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/dialect"
	"github.com/spf13/viper"
)

const FileName = "factorygen.config.json"

type Config struct {
	Version              string              `json:"version" mapstructure:"version" yaml:"version"`
	ModelsDir            string              `json:"models_dir" mapstructure:"models_dir" yaml:"models_dir"`
	FactoriesDir         string              `json:"factories_dir" mapstructure:"factories_dir" yaml:"factories_dir"`
	FollowSubdirectories bool                `json:"follow_subdirectories" mapstructure:"follow_subdirectories" yaml:"follow_subdirectories"`
	ModelNamespace       string              `json:"model_namespace" mapstructure:"model_namespace" yaml:"model_namespace"`
	TypeOverrides        map[string]string   `json:"type_overrides" mapstructure:"type_overrides" yaml:"type_overrides"`
	Prefix               string              `json:"prefix" mapstructure:"prefix" yaml:"prefix"`
	Suffix               string              `json:"suffix" mapstructure:"suffix" yaml:"suffix"`
	SkipColumns          []string            `json:"skip_columns" mapstructure:"skip_columns" yaml:"skip_columns"`
	SkipModels           []string            `json:"skip_models" mapstructure:"skip_models" yaml:"skip_models"`
	SkipModelColumns     map[string][]string `json:"skip_model_columns" mapstructure:"skip_model_columns" yaml:"skip_model_columns"`
	AlignArrayKeys       bool                `json:"align_array_keys" mapstructure:"align_array_keys" yaml:"align_array_keys"`
	RecordTypes          []string            `json:"record_types" mapstructure:"record_types" yaml:"record_types"`
	PivotTypes           []string            `json:"pivot_types" mapstructure:"pivot_types" yaml:"pivot_types"`
	ColumnHints          bool                `json:"column_hints" mapstructure:"column_hints" yaml:"column_hints"`
	Strict               bool                `json:"strict" mapstructure:"strict" yaml:"strict"`
	Naming               Naming              `json:"naming" mapstructure:"naming" yaml:"naming"`
	Output               Output              `json:"output" mapstructure:"output" yaml:"output"`
	Database             Database            `json:"database" mapstructure:"database" yaml:"database"`
}

type Naming struct {
	TablePrefix    string `json:"table_prefix,omitempty" mapstructure:"table_prefix" yaml:"table_prefix"`
	SingularTables bool   `json:"singular_tables,omitempty" mapstructure:"singular_tables" yaml:"singular_tables"`
}

type Output struct {
	Dialect  string `json:"dialect" mapstructure:"dialect" yaml:"dialect"`
	Template string `json:"template,omitempty" mapstructure:"template" yaml:"template"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider" yaml:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env" yaml:"url_env"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{Suffix: "Factory"}
	cfg.applyDefaults()
	return cfg
}

// Model names used as keys in skip_model_columns contain dots, so the shared
// instance splits nested keys on "::" instead.
var v = NewViper()

func NewViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter("::"))
}

// Viper returns the instance Load reads from.
func Viper() *viper.Viper {
	return v
}

func Load() (*Config, error) {
	return LoadFrom(v)
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Suffix may be set to "" on purpose, so only default it when absent.
	if !v.IsSet("suffix") {
		cfg.Suffix = "Factory"
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "internal/models"
	}
	if c.FactoriesDir == "" {
		c.FactoriesDir = "internal/factories"
	}
	if c.ModelNamespace == "" {
		c.ModelNamespace = filepath.Base(filepath.Clean(c.ModelsDir))
	}
	c.ModelNamespace = strings.Trim(filepath.ToSlash(c.ModelNamespace), "/")
	if c.TypeOverrides == nil {
		c.TypeOverrides = map[string]string{}
	}
	if c.SkipColumns == nil {
		c.SkipColumns = []string{}
	}
	if c.SkipModels == nil {
		c.SkipModels = []string{}
	}
	if c.SkipModelColumns == nil {
		c.SkipModelColumns = map[string][]string{}
	}
	if len(c.RecordTypes) == 0 {
		c.RecordTypes = []string{"Model"}
	}
	if len(c.PivotTypes) == 0 {
		c.PivotTypes = []string{"Pivot"}
	}
	if c.Output.Dialect == "" {
		c.Output.Dialect = "go"
	}
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.ModelsDir == "" {
		return fmt.Errorf("models_dir cannot be empty")
	}

	if c.FactoriesDir == "" {
		return fmt.Errorf("factories_dir cannot be empty")
	}

	if dialect.Get(c.Output.Dialect) == nil {
		return fmt.Errorf("unsupported output dialect: %s. Supported dialects: %v", c.Output.Dialect, dialect.List())
	}

	return nil
}
