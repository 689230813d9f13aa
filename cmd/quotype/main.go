// Package main provides the CLI entrypoint for quotype.
package main

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/quotype/internal/config"
	"github.com/verte-zerg/quotype/internal/logging"
	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
	"github.com/verte-zerg/quotype/internal/tui"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAnimate  = true
	defaultLogLevel = "info"
	dotEnvFile      = ".env"
)

var (
	gameQuoteURL   string
	gameTimeout    time.Duration
	gameQuotesFile string
	gameOffline    bool
	gameAnimate    bool
	gameLogLevel   string
	gameLogFile    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quotype",
		Short:         "Typing speed test on random quotes",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runGameCmd,
	}

	rootCmd.Flags().StringVar(&gameQuoteURL, "quote-url", quote.DefaultURL, "JSON endpoint returning {\"quote\": ...}")
	rootCmd.Flags().DurationVar(&gameTimeout, "timeout", defaultTimeout, "quote fetch timeout")
	rootCmd.Flags().StringVar(&gameQuotesFile, "quotes-file", "", "local file with one quote per line")
	rootCmd.Flags().BoolVar(&gameOffline, "offline", false, "never fetch quotes over the network")
	rootCmd.Flags().BoolVar(&gameAnimate, "animate", defaultAnimate, "animate the result counters")
	rootCmd.Flags().StringVar(&gameLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&gameLogFile, "log-file", "", "log file path (default: $XDG_STATE_HOME/quotype/quotype.log)")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runGameCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("quotype needs an interactive terminal")
	}

	logPath := gameLogFile
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	logger, err := logging.New(logPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()

	src, err := buildSource(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("starting", "offline", cfg.Offline, "quote_url", cfg.QuoteURL, "quotes_file", cfg.QuotesFile)

	m := tui.NewModel(cfg, src, logger.Logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("tui exited with error", "err", err)
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logger.Info("exiting")
	return nil
}

// resolveConfig merges defaults, the config file, the environment and
// flags, in increasing order of precedence.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return model.Config{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(&fileCfg.Game); err != nil {
		return model.Config{}, err
	}

	applyStringConfig(cmd, "quote-url", &gameQuoteURL, fileCfg.Game.QuoteURL)
	applyStringConfig(cmd, "quotes-file", &gameQuotesFile, fileCfg.Game.QuotesFile)
	applyBoolConfig(cmd, "offline", &gameOffline, fileCfg.Game.Offline)
	applyBoolConfig(cmd, "animate", &gameAnimate, fileCfg.Game.Animate)
	applyStringConfig(cmd, "log-level", &gameLogLevel, fileCfg.Game.LogLevel)
	if err := applyDurationConfig(cmd, "timeout", &gameTimeout, fileCfg.Game.Timeout); err != nil {
		return model.Config{}, err
	}

	return model.Config{
		QuoteURL:   gameQuoteURL,
		Timeout:    gameTimeout,
		QuotesFile: gameQuotesFile,
		Offline:    gameOffline,
		Animate:    gameAnimate,
		LogLevel:   gameLogLevel,
	}, nil
}

func buildSource(cfg model.Config, logger *logging.Logger) (quote.Source, error) {
	if cfg.QuotesFile != "" {
		src, err := quote.NewFileSource(cfg.QuotesFile, logger.Logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if cfg.Offline {
		return quote.StaticSource{Quote: quote.Fallback()}, nil
	}
	return quote.NewHTTPSource(cfg.QuoteURL, cfg.Timeout, logger.Logger), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, *value, err)
	}
	*target = d
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# quotype configuration
# Uncomment a value to enable it.
# Precedence: CLI flags > QUOTYPE_* environment (also read from ./.env) > this file.

[game]
# quote-url = %q    # JSON endpoint returning {"quote": "...", "author": "..."}
# timeout = %q                                  # Quote fetch timeout
# quotes-file = ""                                # Local quotes, one per line ("text — author")
# offline = false                                 # Never use the network
# animate = %t                                  # Animate result counters
# log-level = %q                                # debug, info, warn or error
`,
		quote.DefaultURL,
		defaultTimeout.String(),
		defaultAnimate,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if !cfg.Offline && cfg.QuotesFile == "" {
		u, err := url.Parse(strings.TrimSpace(cfg.QuoteURL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("--quote-url must be an http(s) URL, got %q", cfg.QuoteURL)
		}
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}
