package core

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file read when no path is given.
const DefaultConfigPath = "chatrelay.yaml"

// Config is the full bot configuration: the YAML file overlaid with
// credentials and allow-lists from the environment.
type Config struct {
	Persona    Persona            `yaml:"persona"`
	Relay      RelaySettings      `yaml:"relay"`
	Completion CompletionSettings `yaml:"completion"`
	Discord    DiscordSettings    `yaml:"discord"`
}

// RelaySettings controls thread handling.
type RelaySettings struct {
	ActivePrefix       string `yaml:"active_prefix"`        // thread name prefix of open conversations
	InactivePrefix     string `yaml:"inactive_prefix"`      // thread name prefix of closed conversations
	MaxThreadMessages  int    `yaml:"max_thread_messages"`  // close threads past this many messages (default: 1000)
	MaxCharsPerReply   int    `yaml:"max_chars_per_reply"`  // chunk size for replies (default: 1900)
	MessageDelay       string `yaml:"message_delay"`        // wait before answering to batch messages (e.g., "2s")
	AutoArchiveMinutes int    `yaml:"auto_archive_minutes"` // thread auto-archive duration (default: 60)
	DisableTitles      bool   `yaml:"disable_titles"`       // skip model-generated thread titles
}

// CompletionSettings controls the completion API client.
type CompletionSettings struct {
	APIKey            string `yaml:"-"`                   // from OPENAI_API_KEY only
	BaseURL           string `yaml:"base_url"`            // custom OpenAI-compatible API base URL
	DefaultModel      string `yaml:"default_model"`       // model used when /chat omits one (default: gpt-5)
	TitleModel        string `yaml:"title_model"`         // model for thread titles (default: gpt-4o-mini)
	Timeout           string `yaml:"timeout"`             // per-request timeout (e.g., "2m", "30s")
	MaxRetries        int    `yaml:"max_retries"`         // SDK retries per attempt (default: 2)
	RequestsPerMinute int    `yaml:"requests_per_minute"` // 0 means unlimited
	MaxConcurrent     int    `yaml:"max_concurrent"`      // in-flight completions across threads (default: 4)
}

// DiscordSettings holds the chat platform identity and the server allow-list.
type DiscordSettings struct {
	Token            string   `yaml:"-"`                  // from DISCORD_BOT_TOKEN only
	ClientID         string   `yaml:"client_id"`          // application id, used for the invite URL
	AllowedServerIDs []string `yaml:"allowed_server_ids"` // servers the bot answers in
}

// Defaults applied by LoadConfig for unset values.
const (
	DefaultActivePrefix       = "💬✅"
	DefaultInactivePrefix     = "💬❌"
	DefaultMaxThreadMessages  = 1000
	DefaultMaxCharsPerReply   = 1900
	DefaultAutoArchiveMinutes = 60
	DefaultTitleModel         = "gpt-4o-mini"
	DefaultTimeout            = 2 * time.Minute
	DefaultMaxRetries         = 2
	DefaultMaxConcurrent      = 4

	// platformMessageLimit is the hard per-message cap of the chat platform.
	platformMessageLimit = 2000
)

// LoadConfig reads the YAML config at path, overlays the environment read
// through getenv, fills defaults and validates the result. A nil getenv
// means os.Getenv.
func LoadConfig(path string, getenv func(string) string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.ApplyEnv(getenv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadPersona reads only the persona section of the config at path. It is
// used to reload the persona while the bot runs.
func LoadPersona(path string) (Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Persona{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Persona.validate(); err != nil {
		return Persona{}, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg.Persona, nil
}

// ApplyEnv overlays environment values on the config. Credentials only come
// from the environment; everything else overrides the file when set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.Discord.Token = getenv("DISCORD_BOT_TOKEN")
	c.Completion.APIKey = getenv("OPENAI_API_KEY")

	if v := getenv("DISCORD_CLIENT_ID"); v != "" {
		c.Discord.ClientID = v
	}
	if v := getenv("OPENAI_BASE_URL"); v != "" {
		c.Completion.BaseURL = v
	}
	// OPENAI_MODEL_DEFAULT wins over the older DEFAULT_MODEL.
	if v := getenv("OPENAI_MODEL_DEFAULT"); v != "" {
		c.Completion.DefaultModel = v
	} else if v := getenv("DEFAULT_MODEL"); v != "" {
		c.Completion.DefaultModel = v
	}
	if v := getenv("ALLOWED_SERVER_IDS"); v != "" {
		c.Discord.AllowedServerIDs = splitList(v)
	}
}

func (c *Config) applyDefaults() {
	r := &c.Relay
	if r.ActivePrefix == "" {
		r.ActivePrefix = DefaultActivePrefix
	}
	if r.InactivePrefix == "" {
		r.InactivePrefix = DefaultInactivePrefix
	}
	if r.MaxThreadMessages == 0 {
		r.MaxThreadMessages = DefaultMaxThreadMessages
	}
	if r.MaxCharsPerReply == 0 {
		r.MaxCharsPerReply = DefaultMaxCharsPerReply
	}
	if r.AutoArchiveMinutes == 0 {
		r.AutoArchiveMinutes = DefaultAutoArchiveMinutes
	}

	cs := &c.Completion
	if cs.DefaultModel == "" {
		cs.DefaultModel = DefaultModel
	}
	if cs.TitleModel == "" {
		cs.TitleModel = DefaultTitleModel
	}
	if cs.MaxRetries == 0 {
		cs.MaxRetries = DefaultMaxRetries
	}
	if cs.MaxConcurrent == 0 {
		cs.MaxConcurrent = DefaultMaxConcurrent
	}
}

// Validate checks every setting that does not depend on which front end
// runs the bot.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Persona.validate(); err != nil {
		errs = append(errs, err)
	}
	if _, ok := LookupModel(c.Completion.DefaultModel); !ok {
		errs = append(errs, fmt.Errorf("completion.default_model: unknown model %q (one of %s)",
			c.Completion.DefaultModel, strings.Join(ModelNames(), ", ")))
	}
	if _, err := parseDuration(c.Completion.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("completion.timeout: %w", err))
	}
	if _, err := parseDuration(c.Relay.MessageDelay); err != nil {
		errs = append(errs, fmt.Errorf("relay.message_delay: %w", err))
	}
	if n := c.Relay.MaxCharsPerReply; n < 0 || n > platformMessageLimit-100 {
		errs = append(errs, fmt.Errorf("relay.max_chars_per_reply: %d out of range (1-%d)", n, platformMessageLimit-100))
	}
	if c.Relay.MaxThreadMessages < 0 {
		errs = append(errs, errors.New("relay.max_thread_messages: must not be negative"))
	}
	if c.Relay.ActivePrefix == c.Relay.InactivePrefix {
		errs = append(errs, errors.New("relay: active and inactive prefixes must differ"))
	}
	if c.Completion.RequestsPerMinute < 0 || c.Completion.MaxConcurrent < 0 || c.Completion.MaxRetries < 0 {
		errs = append(errs, errors.New("completion: limits must not be negative"))
	}
	return errors.Join(errs...)
}

// RequireDiscord reports missing Discord credentials.
func (c *Config) RequireDiscord() error {
	if c.Discord.Token == "" {
		return errors.New("DISCORD_BOT_TOKEN environment variable is required")
	}
	return nil
}

// TimeoutDuration returns the per-request completion timeout.
func (c CompletionSettings) TimeoutDuration() time.Duration {
	d, err := parseDuration(c.Timeout)
	if err != nil || d == 0 {
		return DefaultTimeout
	}
	return d
}

// MessageDelayDuration returns the receive delay, zero when unset.
func (r RelaySettings) MessageDelayDuration() time.Duration {
	d, _ := parseDuration(r.MessageDelay)
	return d
}

// InviteURL returns the bot invite link with the permissions the bot needs
// to post, create and manage threads. The bot scope grants slash commands.
func (d DiscordSettings) InviteURL() string {
	if d.ClientID == "" {
		return ""
	}
	return "https://discord.com/api/oauth2/authorize?client_id=" + d.ClientID +
		"&permissions=328565073920&scope=bot"
}

func (p Persona) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("persona.name is required")
	}
	if strings.TrimSpace(p.Instructions) == "" {
		return errors.New("persona.instructions is required")
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		// Bare numbers are seconds.
		if n, nerr := strconv.ParseFloat(s, 64); nerr == nil {
			d, err = time.Duration(n*float64(time.Second)), nil
		}
	}
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
