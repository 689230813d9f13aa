package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted between the config file and CLI flags.
const (
	EnvQuoteURL   = "QUOTYPE_QUOTE_URL"
	EnvTimeout    = "QUOTYPE_TIMEOUT"
	EnvQuotesFile = "QUOTYPE_QUOTES_FILE"
	EnvOffline    = "QUOTYPE_OFFLINE"
	EnvAnimate    = "QUOTYPE_ANIMATE"
	EnvLogLevel   = "QUOTYPE_LOG_LEVEL"
)

// LoadDotEnv loads variables from a .env file without overriding the
// process environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays QUOTYPE_* variables onto the file config.
func ApplyEnv(cfg *GameConfig) error {
	if v, ok := lookupEnv(EnvQuoteURL); ok {
		cfg.QuoteURL = &v
	}
	if v, ok := lookupEnv(EnvTimeout); ok {
		cfg.Timeout = &v
	}
	if v, ok := lookupEnv(EnvQuotesFile); ok {
		cfg.QuotesFile = &v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = &v
	}
	if v, ok := lookupEnv(EnvOffline); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvOffline, v, err)
		}
		cfg.Offline = &b
	}
	if v, ok := lookupEnv(EnvAnimate); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvAnimate, v, err)
		}
		cfg.Animate = &b
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}
