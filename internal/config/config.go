// ABOUTME: Build configuration loaded through viper
// ABOUTME: Defaults, optional refgraph.{yaml,json,toml}, REFGRAPH_* and SITE_* env overrides

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nainya/refgraph/pkg/status"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "REFGRAPH"

// Config is the complete refgraph configuration
type Config struct {
	Paths PathsConfig `json:"paths" yaml:"paths" mapstructure:"paths"`
	Site  SiteConfig  `json:"site" yaml:"site" mapstructure:"site"`
	Build BuildConfig `json:"build" yaml:"build" mapstructure:"build"`
	Log   LogConfig   `json:"log" yaml:"log" mapstructure:"log"`
	Watch WatchConfig `json:"watch" yaml:"watch" mapstructure:"watch"`
}

// PathsConfig locates build inputs and outputs
type PathsConfig struct {
	Registry string `json:"registry" yaml:"registry" mapstructure:"registry" validate:"required"`
	MSI      string `json:"msi" yaml:"msi" mapstructure:"msi"`
	Output   string `json:"output" yaml:"output" mapstructure:"output"`
	Stats    string `json:"stats" yaml:"stats" mapstructure:"stats"`
	Metrics  string `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// SiteConfig carries site metadata recorded in stats reports
type SiteConfig struct {
	Name               string   `json:"name" yaml:"name" mapstructure:"name"`
	Description        string   `json:"description" yaml:"description" mapstructure:"description"`
	CanonicalBase      string   `json:"canonicalBase" yaml:"canonicalBase" mapstructure:"canonicalBase" validate:"omitempty,url"`
	TitleLabelDocTypes []string `json:"titleLabelDocTypes" yaml:"titleLabelDocTypes" mapstructure:"titleLabelDocTypes"`
}

// BuildConfig tunes the pipeline
type BuildConfig struct {
	Workers         int  `json:"workers" yaml:"workers" mapstructure:"workers" validate:"min=1,max=256"`
	EmitRefWarnings bool `json:"emitRefWarnings" yaml:"emitRefWarnings" mapstructure:"emitRefWarnings"`
	// Compress forces zstd output and appends .zst to the output path.
	Compress bool `json:"compress" yaml:"compress" mapstructure:"compress"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce" validate:"gte=0"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Registry: "src/main/data/documents.json",
			MSI:      "src/main/reports/masterSuiteIndex.json",
			Output:   "build/documents.json",
			Stats:    "build/stats.json",
		},
		Site: SiteConfig{
			TitleLabelDocTypes: append([]string(nil), status.DefaultTitleLabelDocTypes...),
		},
		Build: BuildConfig{
			Workers:         4,
			EmitRefWarnings: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// setDefaults registers every key so environment overrides apply on Unmarshal
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("paths.registry", d.Paths.Registry)
	v.SetDefault("paths.msi", d.Paths.MSI)
	v.SetDefault("paths.output", d.Paths.Output)
	v.SetDefault("paths.stats", d.Paths.Stats)
	v.SetDefault("paths.metrics", d.Paths.Metrics)
	v.SetDefault("site.name", d.Site.Name)
	v.SetDefault("site.description", d.Site.Description)
	v.SetDefault("site.canonicalBase", d.Site.CanonicalBase)
	v.SetDefault("site.titleLabelDocTypes", d.Site.TitleLabelDocTypes)
	v.SetDefault("build.workers", d.Build.Workers)
	v.SetDefault("build.emitRefWarnings", d.Build.EmitRefWarnings)
	v.SetDefault("build.compress", d.Build.Compress)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// Options controls where Load looks for configuration
type Options struct {
	// File is an explicit config file. When empty, refgraph.* is searched in Dirs.
	File string
	Dirs []string
	// Flags maps flag names to config keys, e.g. "msi" -> "paths.msi"
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
	// LookupEnv defaults to os.LookupEnv
	LookupEnv func(string) (string, bool)
}

// Load reads configuration with precedence flags > env > file > defaults.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("refgraph")
		dirs := opts.Dirs
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, dir := range dirs {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range opts.FlagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || opts.File != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	applySiteEnv(cfg, lookup)

	if cfg.Build.Compress && !strings.HasSuffix(cfg.Paths.Output, ".zst") && cfg.Paths.Output != "" {
		cfg.Paths.Output += ".zst"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySiteEnv applies the SITE_* overrides used by staging deployments
func applySiteEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("SITE_CANONICAL_BASE"); ok && v != "" {
		cfg.Site.CanonicalBase = v
	}
	if v, ok := lookup("SITE_NAME"); ok && v != "" {
		cfg.Site.Name = v
	}
	if v, ok := lookup("SITE_DESCRIPTION"); ok && v != "" {
		cfg.Site.Description = v
	}
}

var validate = validator.New()

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
