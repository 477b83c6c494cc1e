// Package config loads the YAML configuration shared by the scansion
// commands. File values are merged over Defaults and environment variables
// override both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cours-de-latin/scansion"
	"github.com/cours-de-latin/scansion/internal/log"
)

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type RenderConfig struct {
	FootWidth      float64 `yaml:"foot_width"`
	SyllableHeight float64 `yaml:"syllable_height"`
	FontFamily     string  `yaml:"font_family"`
	// OutDir receives index.html and the svg/ directory.
	OutDir string `yaml:"out_dir"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// MaxLines caps the lines accepted by one scan request.
	MaxLines int `yaml:"max_lines"`
}

type StoreConfig struct {
	// Path of the SQLite database; empty disables persistence.
	Path string `yaml:"path"`
}

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Render  RenderConfig  `yaml:"render"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	g := scansion.DefaultGeometry()
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Render: RenderConfig{
			FootWidth:      g.FootWidth,
			SyllableHeight: g.SyllableHeight,
			FontFamily:     g.FontFamily,
			OutDir:         ".",
		},
		Server: ServerConfig{Addr: ":8080", AllowedOrigins: []string{"*"}, MaxLines: 500},
	}
}

// Environment overrides.
const (
	EnvRenderOutDir = "SCANSION_OUT_DIR"
	EnvServerAddr   = "SCANSION_ADDR"
	EnvStorePath    = "SCANSION_DB"
)

// Load returns Defaults merged with the YAML file at path (skipped when path
// is empty) and the environment. A missing file is an error only when path
// was given explicitly.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func mergeInto(dst, src *Config) {
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}

	if src.Render.FootWidth > 0 {
		dst.Render.FootWidth = src.Render.FootWidth
	}
	if src.Render.SyllableHeight > 0 {
		dst.Render.SyllableHeight = src.Render.SyllableHeight
	}
	if v := strings.TrimSpace(src.Render.FontFamily); v != "" {
		dst.Render.FontFamily = v
	}
	if v := strings.TrimSpace(src.Render.OutDir); v != "" {
		dst.Render.OutDir = v
	}

	if v := strings.TrimSpace(src.Server.Addr); v != "" {
		dst.Server.Addr = v
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	if src.Server.MaxLines > 0 {
		dst.Server.MaxLines = src.Server.MaxLines
	}

	if v := strings.TrimSpace(src.Store.Path); v != "" {
		dst.Store.Path = v
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(log.EnvLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(log.EnvFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(log.EnvSource)); v != "" {
		cfg.Logging.Source = log.ParseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(log.EnvFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderOutDir)); v != "" {
		cfg.Render.OutDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvServerAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		cfg.Store.Path = v
	}
}

// LogOptions converts the logging section for log.Init.
func (c Config) LogOptions() log.Options {
	return log.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// Geometry returns the diagram geometry with the render overrides applied.
func (c Config) Geometry() scansion.Geometry {
	g := scansion.DefaultGeometry()
	g.FootWidth = c.Render.FootWidth
	g.SyllableHeight = c.Render.SyllableHeight
	g.FontFamily = c.Render.FontFamily
	return g
}

// Validate reports settings no command can run with.
func (c Config) Validate() error {
	if c.Render.FootWidth <= 0 || c.Render.SyllableHeight <= 0 {
		return fmt.Errorf("config: render sizes must be positive, got foot_width=%s syllable_height=%s",
			strconv.FormatFloat(c.Render.FootWidth, 'g', -1, 64),
			strconv.FormatFloat(c.Render.SyllableHeight, 'g', -1, 64))
	}
	if c.Server.MaxLines <= 0 {
		return fmt.Errorf("config: server.max_lines must be positive, got %d", c.Server.MaxLines)
	}
	return nil
}
