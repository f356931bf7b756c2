package relay

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nox-hq/chatrelay/core"
)

// ContinueHint is appended to every delivered chunk that has more after it.
const ContinueHint = "\n\n*(type `continue` for more)*"

// continueTrigger is the message that requests the next pending chunk.
const continueTrigger = "continue"

// Relay handles chat invocations and thread messages.
type Relay struct {
	state        *State
	completer    Completer
	settings     core.RelaySettings
	defaultModel string
	allowed      map[string]bool
	logger       *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithState sets the state the relay works on (default: NewState()).
func WithState(s *State) Option {
	return func(r *Relay) { r.state = s }
}

// WithDefaultModel sets the model for chats that do not pick one and for
// threads whose origin message names none (default: gpt-5).
func WithDefaultModel(model string) Option {
	return func(r *Relay) {
		if model != "" {
			r.defaultModel = model
		}
	}
}

// WithAllowedServers sets the servers the relay answers in. With no allowed
// servers every server is blocked.
func WithAllowedServers(ids ...string) Option {
	return func(r *Relay) {
		r.allowed = make(map[string]bool, len(ids))
		for _, id := range ids {
			r.allowed[id] = true
		}
	}
}

// New creates a Relay.
func New(completer Completer, settings core.RelaySettings, opts ...Option) *Relay {
	r := &Relay{
		state:        NewState(),
		completer:    completer,
		settings:     withDefaults(settings),
		defaultModel: core.DefaultModel,
		allowed:      map[string]bool{},
		logger:       slog.Default(),
		sleep:        sleepContext,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// State returns the relay's state.
func (r *Relay) State() *State { return r.state }

func withDefaults(s core.RelaySettings) core.RelaySettings {
	if s.ActivePrefix == "" {
		s.ActivePrefix = core.DefaultActivePrefix
	}
	if s.InactivePrefix == "" {
		s.InactivePrefix = core.DefaultInactivePrefix
	}
	if s.MaxThreadMessages == 0 {
		s.MaxThreadMessages = core.DefaultMaxThreadMessages
	}
	if s.MaxCharsPerReply == 0 {
		s.MaxCharsPerReply = core.DefaultMaxCharsPerReply
	}
	if s.AutoArchiveMinutes == 0 {
		s.AutoArchiveMinutes = core.DefaultAutoArchiveMinutes
	}
	return s
}

// blocked reports whether the relay must ignore serverID. Direct messages
// have no server and are always blocked.
func (r *Relay) blocked(serverID string) bool {
	return serverID == "" || !r.allowed[serverID]
}

// IsContinue reports whether text is the continue trigger.
func IsContinue(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), continueTrigger)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
