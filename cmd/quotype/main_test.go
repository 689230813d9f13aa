package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/quotype/internal/config"
	"github.com/verte-zerg/quotype/internal/logging"
	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	path := filepath.Join(home, "quotype", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.QuoteURL != quote.DefaultURL || cfg.Timeout != defaultTimeout || !cfg.Animate {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	writeConfig(t, `[game]
quote-url = "http://file.example/q"
timeout = "4s"
animate = false
log-level = "warn"
`)
	t.Setenv(config.EnvQuoteURL, "http://env.example/q")

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--timeout=2s"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.QuoteURL != "http://env.example/q" {
		t.Fatalf("env must override file, got %q", cfg.QuoteURL)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("flag must override file, got %v", cfg.Timeout)
	}
	if cfg.Animate {
		t.Fatalf("file value for animate ignored")
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
}

func TestResolveConfigBadTimeout(t *testing.T) {
	writeConfig(t, "[game]\ntimeout = \"soon\"\n")
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := resolveConfig(cmd); err == nil {
		t.Fatalf("expected invalid timeout error")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{QuoteURL: quote.DefaultURL, Timeout: time.Second, LogLevel: "info"}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config: %v", err)
	}

	cases := map[string]model.Config{
		"zero timeout": {QuoteURL: quote.DefaultURL, LogLevel: "info"},
		"bad url":      {QuoteURL: "ftp://x", Timeout: time.Second},
		"empty url":    {Timeout: time.Second},
		"bad level":    {QuoteURL: quote.DefaultURL, Timeout: time.Second, LogLevel: "loud"},
	}
	for name, cfg := range cases {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	offline := model.Config{Offline: true, Timeout: time.Second}
	if err := validateConfig(offline); err != nil {
		t.Fatalf("offline mode needs no url: %v", err)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template must be valid TOML: %v", err)
	}
}

func TestBuildSourceSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.txt")
	if err := os.WriteFile(path, []byte("only one\n"), 0o644); err != nil {
		t.Fatalf("write quotes: %v", err)
	}
	logger, err := loggerForTest(t)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	src, err := buildSource(model.Config{QuotesFile: path}, logger)
	if err != nil {
		t.Fatalf("build file source: %v", err)
	}
	if _, ok := src.(*quote.FileSource); !ok {
		t.Fatalf("expected file source, got %T", src)
	}

	src, err = buildSource(model.Config{Offline: true}, logger)
	if err != nil {
		t.Fatalf("build offline source: %v", err)
	}
	if _, ok := src.(quote.StaticSource); !ok {
		t.Fatalf("expected static source, got %T", src)
	}

	src, err = buildSource(model.Config{QuoteURL: quote.DefaultURL, Timeout: time.Second}, logger)
	if err != nil {
		t.Fatalf("build http source: %v", err)
	}
	if _, ok := src.(*quote.HTTPSource); !ok {
		t.Fatalf("expected http source, got %T", src)
	}

	if _, err := buildSource(model.Config{QuotesFile: filepath.Join(t.TempDir(), "missing")}, logger); err == nil {
		t.Fatalf("expected error for missing quotes file")
	}
}

func loggerForTest(t *testing.T) (*logging.Logger, error) {
	t.Helper()
	logger, err := logging.New(filepath.Join(t.TempDir(), "test.log"), "debug")
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() {
		_ = logger.Close()
	})
	return logger, nil
}
