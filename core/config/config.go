// Package config loads PageMark settings from an optional YAML file, the
// PAGEMARK_* environment and command-line flags, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	yaml "gopkg.in/yaml.v3"
)

// Summarizer backends.
const (
	BackendAPI    = "api"
	BackendOpenAI = "openai"
)

const (
	DefaultAPIBase     = "http://localhost:8000"
	DefaultTimeout     = 30 * time.Second
	DefaultUserAgent   = "PageMark/1.0 (https://github.com/gaurav-prasanna/pagemark)"
	DefaultCacheSize   = 128
	DefaultSessions    = 64
	DefaultListen      = ":8080"
	DefaultMaxPages    = 100
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Config is the resolved configuration shared by every command.
type Config struct {
	Summarizer string `yaml:"summarizer"`

	API struct {
		Base    string        `yaml:"base"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`

	OpenAI struct {
		Base  string `yaml:"base"`
		Model string `yaml:"model"`
		Key   string `yaml:"key"`
	} `yaml:"openai"`

	HTTP struct {
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"userAgent"`
	} `yaml:"http"`

	CacheSize int    `yaml:"cacheSize"`
	Sessions  int    `yaml:"sessions"`
	Listen    string `yaml:"listen"`
	OutputDir string `yaml:"outputDir"`
	MaxPages  int    `yaml:"maxPages"`
}

// Default returns the built-in settings.
func Default() Config {
	var c Config
	c.Summarizer = BackendAPI
	c.API.Base = DefaultAPIBase
	c.API.Timeout = 90 * time.Second
	c.OpenAI.Model = DefaultOpenAIModel
	c.HTTP.Timeout = DefaultTimeout
	c.HTTP.UserAgent = DefaultUserAgent
	c.CacheSize = DefaultCacheSize
	c.Sessions = DefaultSessions
	c.Listen = DefaultListen
	c.MaxPages = DefaultMaxPages
	return c
}

// LoadFile overlays the YAML file at path onto the defaults.
// Keys missing from the file keep their default values.
func LoadFile(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse yaml: %w", err)
	}
	return c, nil
}

// Environment variable names.
const (
	EnvSummarizer  = "PAGEMARK_SUMMARIZER"
	EnvAPIBase     = "PAGEMARK_API_BASE"
	EnvOpenAIBase  = "PAGEMARK_OPENAI_BASE"
	EnvOpenAIModel = "PAGEMARK_OPENAI_MODEL"
	EnvOpenAIKey   = "PAGEMARK_OPENAI_KEY"
	EnvUserAgent   = "PAGEMARK_USER_AGENT"
)

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvSummarizer, &c.Summarizer)
	set(EnvAPIBase, &c.API.Base)
	set(EnvOpenAIBase, &c.OpenAI.Base)
	set(EnvOpenAIModel, &c.OpenAI.Model)
	set(EnvOpenAIKey, &c.OpenAI.Key)
	set(EnvUserAgent, &c.HTTP.UserAgent)
}

// Flag names understood by ApplyFlags.
const (
	FlagSummarizer  = "summarizer"
	FlagAPIBase     = "api_base"
	FlagOpenAIBase  = "openai_base"
	FlagOpenAIModel = "openai_model"
	FlagTimeout     = "timeout"
	FlagUserAgent   = "user_agent"
	FlagCacheSize   = "cache_size"
	FlagSessions    = "sessions"
	FlagListen      = "listen"
	FlagOutputDir   = "output_dir"
	FlagMaxPages    = "max_pages"
)

// RegisterFlags adds the settings shared by every command to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagSummarizer, d.Summarizer, "Summarizer backend: api or openai")
	fs.String(FlagAPIBase, d.API.Base, "Base URL of the summary API")
	fs.String(FlagOpenAIBase, "", "Base URL of an OpenAI-compatible endpoint (default api.openai.com)")
	fs.String(FlagOpenAIModel, d.OpenAI.Model, "Model used by the openai backend")
	fs.Duration(FlagTimeout, d.HTTP.Timeout, "Timeout for page fetches")
	fs.String(FlagUserAgent, d.HTTP.UserAgent, "User-Agent sent when fetching pages")
	fs.Int(FlagCacheSize, d.CacheSize, "Number of summaries kept in memory")
}

// ApplyFlags overrides settings with flags that were set explicitly.
// Flags missing from fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	for _, name := range []string{
		FlagSummarizer, FlagAPIBase, FlagOpenAIBase, FlagOpenAIModel, FlagTimeout,
		FlagUserAgent, FlagCacheSize, FlagSessions, FlagListen, FlagOutputDir, FlagMaxPages,
	} {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := c.set(name, f.Value.String()); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) set(name, v string) error {
	switch name {
	case FlagSummarizer:
		c.Summarizer = v
	case FlagAPIBase:
		c.API.Base = v
	case FlagOpenAIBase:
		c.OpenAI.Base = v
	case FlagOpenAIModel:
		c.OpenAI.Model = v
	case FlagUserAgent:
		c.HTTP.UserAgent = v
	case FlagListen:
		c.Listen = v
	case FlagOutputDir:
		c.OutputDir = v
	case FlagTimeout:
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.HTTP.Timeout = d
	case FlagCacheSize, FlagSessions, FlagMaxPages:
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		switch name {
		case FlagCacheSize:
			c.CacheSize = n
		case FlagSessions:
			c.Sessions = n
		default:
			c.MaxPages = n
		}
	}
	return nil
}

// Load resolves the configuration: defaults, then the file at path (if
// any), then the environment, then explicitly set flags. Summarizer
// settings are only checked by Validate, since not every command needs them.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = LoadFile(path); err != nil {
			return c, err
		}
	}
	c.ApplyEnv(os.LookupEnv)
	if fs != nil {
		if err := c.ApplyFlags(fs); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Validate reports inconsistent settings.
func (c Config) Validate() error {
	switch c.Summarizer {
	case BackendAPI:
		if err := checkBaseURL(c.API.Base); err != nil {
			return fmt.Errorf("api base: %w", err)
		}
	case BackendOpenAI:
		if c.OpenAI.Model == "" {
			return fmt.Errorf("openai backend needs a model")
		}
		if c.OpenAI.Base != "" {
			if err := checkBaseURL(c.OpenAI.Base); err != nil {
				return fmt.Errorf("openai base: %w", err)
			}
		} else if c.OpenAI.Key == "" {
			return fmt.Errorf("openai backend needs %s when no base URL is set", EnvOpenAIKey)
		}
	default:
		return fmt.Errorf("unknown summarizer %q (want %s or %s)", c.Summarizer, BackendAPI, BackendOpenAI)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CacheSize < 0 || c.Sessions < 0 || c.MaxPages < 0 {
		return fmt.Errorf("cache size, sessions and max pages must not be negative")
	}
	return nil
}

func checkBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	return nil
}
