package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "http://localhost:8000", c.API.Base)
	assert.Equal(t, BackendAPI, c.Summarizer)
}

func TestLoadFile_KeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagemark.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
summarizer: openai
openai:
  base: http://localhost:11434/v1
  model: llama3
http:
  timeout: 5s
maxPages: 7
`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, BackendOpenAI, c.Summarizer)
	assert.Equal(t, "llama3", c.OpenAI.Model)
	assert.Equal(t, 5*time.Second, c.HTTP.Timeout)
	assert.Equal(t, 7, c.MaxPages)
	assert.Equal(t, DefaultUserAgent, c.HTTP.UserAgent)
	assert.Equal(t, DefaultAPIBase, c.API.Base)
	require.NoError(t, c.Validate())
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxPages: [1"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIBase:     "https://api.example.com",
		EnvOpenAIModel: "gpt-x",
		EnvUserAgent:   "",
	}
	c := Default()
	c.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "https://api.example.com", c.API.Base)
	assert.Equal(t, "gpt-x", c.OpenAI.Model)
	assert.Equal(t, DefaultUserAgent, c.HTTP.UserAgent)
}

func TestApplyFlags_OnlyChanged(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.String(FlagOutputDir, "", "")
	fs.Int(FlagMaxPages, DefaultMaxPages, "")
	require.NoError(t, fs.Parse([]string{"--timeout=3s", "--output_dir=out", "--max_pages=5"}))

	c := Default()
	c.API.Base = "https://from-file.example"
	require.NoError(t, c.ApplyFlags(fs))
	assert.Equal(t, 3*time.Second, c.HTTP.Timeout)
	assert.Equal(t, "out", c.OutputDir)
	assert.Equal(t, 5, c.MaxPages)
	assert.Equal(t, "https://from-file.example", c.API.Base)
}

func TestLoad_FlagsBeatEnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base: https://file.example\n"), 0o644))
	t.Setenv(EnvAPIBase, "https://env.example")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))
	c, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", c.API.Base)

	require.NoError(t, fs.Parse([]string{"--api_base=https://flag.example"}))
	c, err = Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example", c.API.Base)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Summarizer = "magic" }},
		{"bad api base", func(c *Config) { c.API.Base = "localhost:8000" }},
		{"openai without key or base", func(c *Config) { c.Summarizer = BackendOpenAI }},
		{"openai bad base", func(c *Config) { c.Summarizer = BackendOpenAI; c.OpenAI.Base = "ftp://x" }},
		{"openai no model", func(c *Config) { c.Summarizer = BackendOpenAI; c.OpenAI.Key = "k"; c.OpenAI.Model = "" }},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"negative pages", func(c *Config) { c.MaxPages = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mod(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := Default()
	c.Summarizer = BackendOpenAI
	c.OpenAI.Key = "sk-test"
	assert.NoError(t, c.Validate())
}
