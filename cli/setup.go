package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/nox-hq/chatrelay/assist"
	"github.com/nox-hq/chatrelay/core"
	"github.com/nox-hq/chatrelay/relay"
)

// commonFlags are the flags every command that loads the config accepts.
type commonFlags struct {
	configPath string
	envPath    string
	verbose    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", core.DefaultConfigPath, "path to the YAML config file")
	fs.StringVar(&c.envPath, "env", ".env", "dotenv file loaded before reading the environment (missing is fine)")
	fs.BoolVar(&c.verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&c.verbose, "v", false, "enable debug logging (shorthand)")
}

// load reads the dotenv file, then the config with the environment applied.
func (c *commonFlags) load() (*core.Config, error) {
	if err := loadDotenv(c.envPath); err != nil {
		return nil, err
	}
	return core.LoadConfig(c.configPath, os.Getenv)
}

// loadDotenv loads path into the environment. Variables already set win.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// newLogger returns a text logger for terminals and a JSON logger otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// requireCompletionKey reports a missing API key unless a custom endpoint
// is configured, which may not need one.
func requireCompletionKey(cfg *core.Config) error {
	if cfg.Completion.APIKey == "" && cfg.Completion.BaseURL == "" {
		return errors.New("OPENAI_API_KEY environment variable is required (or set completion.base_url for a local endpoint)")
	}
	return nil
}

// stack is the relay and what it is built from.
type stack struct {
	persona   *core.PersonaHolder
	completer *assist.Completer
	relay     *relay.Relay
}

// newProvider builds the completion API client from the config.
func newProvider(cfg *core.Config) *assist.OpenAIProvider {
	opts := []assist.OpenAIOption{
		assist.WithTimeout(cfg.Completion.TimeoutDuration()),
		assist.WithMaxRetries(cfg.Completion.MaxRetries),
	}
	if cfg.Completion.APIKey != "" {
		opts = append(opts, assist.WithAPIKey(cfg.Completion.APIKey))
	}
	if cfg.Completion.BaseURL != "" {
		opts = append(opts, assist.WithBaseURL(cfg.Completion.BaseURL))
	}
	return assist.NewOpenAIProvider(opts...)
}

// newStack wires the relay. allowed overrides the configured server
// allow-list when non-nil.
func newStack(cfg *core.Config, provider assist.Provider, logger *slog.Logger, allowed []string) *stack {
	persona := core.NewPersonaHolder(cfg.Persona)

	completer := assist.NewCompleter(provider, persona,
		assist.WithLogger(logger),
		assist.WithRateLimiter(assist.NewRateLimiter(cfg.Completion.RequestsPerMinute, cfg.Completion.MaxConcurrent)),
		assist.WithTitleModel(cfg.Completion.TitleModel),
	)

	if allowed == nil {
		allowed = cfg.Discord.AllowedServerIDs
	}
	r := relay.New(completer, cfg.Relay,
		relay.WithLogger(logger),
		relay.WithDefaultModel(cfg.Completion.DefaultModel),
		relay.WithAllowedServers(allowed...),
	)
	return &stack{persona: persona, completer: completer, relay: r}
}

// logUsage writes one record per model the completer called.
func (s *stack) logUsage(logger *slog.Logger) {
	for _, u := range s.completer.Usage() {
		logger.Info("model usage", "model", u.Model, "calls", u.Calls, "failures", u.Failures,
			"prompt_tokens", u.PromptTokens, "completion_tokens", u.CompletionTokens,
			"reasoning_tokens", u.ReasoningTokens, "duration", u.TotalDuration)
	}
}
