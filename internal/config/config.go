package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/limaJavier/fjsp/internal/logger"
)

// EnvPrefix marks the environment variables overriding file settings. Nested keys are separated by a
// double underscore: FJSP_SOLVER__TIME_LIMIT overrides solver.time_limit
const EnvPrefix = "FJSP_"

type Config struct {
	Solver  SolverConfig   `json:"solver"`
	Model   ModelConfig    `json:"model"`
	Batch   BatchConfig    `json:"batch"`
	Report  ReportConfig   `json:"report"`
	Metrics MetricsConfig  `json:"metrics"`
	Log     logger.Options `json:"log"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the YAML or JSON file at path (skipped when path is empty), applies environment overrides,
// fills defaults and validates every section
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("cannot load config %v: %w", path, err)
		}
	}

	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.Solver.SetDefaults()
	c.Model.SetDefaults()
	c.Batch.SetDefaults()
}

func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Batch.Validate(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return nil
}

// ReportConfig holds the output paths of a batch run; an empty path disables the report
type ReportConfig struct {
	CSV      string `json:"csv"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	SQLite   string `json:"sqlite"`
}

type MetricsConfig struct {
	// Textfile receives the Prometheus text exposition after a batch.
	Textfile string `json:"textfile"`
}
