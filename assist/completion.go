// Package assist turns a chat conversation into a model reply. It renders the
// persona and history into a prompt, calls the OpenAI API with fallbacks
// across the Responses and Chat Completions endpoints, and classifies the
// outcome for the relay.
package assist

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nox-hq/chatrelay/core"
)

// stopSequence ends generation on non-reasoning chat models.
const stopSequence = "<|endoftext|>"

// Status classifies the outcome of a completion.
type Status int

const (
	StatusOK Status = iota
	StatusTooLong
	StatusInvalidRequest
	StatusOtherError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTooLong:
		return "too_long"
	case StatusInvalidRequest:
		return "invalid_request"
	default:
		return "other_error"
	}
}

// Result is the outcome of a completion. Failures are reported here, never
// as Go errors: Detail carries every attempt's message for display.
type Result struct {
	Status Status
	Text   string
	Detail string
}

// PersonaSource supplies the persona in effect for the next completion.
type PersonaSource interface {
	Persona() core.Persona
}

// Completer turns a thread conversation into a reply, trying the Responses
// API first and falling back to Chat Completions.
type Completer struct {
	provider   Provider
	persona    PersonaSource
	limiter    *RateLimiter
	redactor   *Redactor
	usage      *usageCollector
	logger     *slog.Logger
	titleModel string
}

// Option configures a Completer.
type Option func(*Completer)

// WithLogger sets the logger for attempt failures (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *Completer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRateLimiter bounds request rate and concurrency across all threads.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Completer) { c.limiter = rl }
}

// WithTitleModel sets the model used by GenerateTitle (default: gpt-4o-mini).
func WithTitleModel(model string) Option {
	return func(c *Completer) {
		if model != "" {
			c.titleModel = model
		}
	}
}

// NewCompleter creates a Completer with the given provider, persona source
// and options.
func NewCompleter(provider Provider, persona PersonaSource, opts ...Option) *Completer {
	c := &Completer{
		provider:   provider,
		persona:    persona,
		redactor:   NewRedactor(),
		usage:      newUsageCollector(),
		logger:     slog.Default(),
		titleModel: core.DefaultTitleModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// attempt is one way of asking for a completion. Attempts run in order until
// one succeeds; an attempt with a when guard only runs if the guard accepts
// the previous failure.
type attempt struct {
	name    string
	primary bool
	when    func(prev error) bool
	run     func(ctx context.Context, req Request) (*Response, error)
}

func (c *Completer) attempts() []attempt {
	return []attempt{
		{
			name:    "responses",
			primary: true,
			run:     c.provider.Respond,
		},
		{
			name: "chat:max_completion_tokens",
			run: func(ctx context.Context, req Request) (*Response, error) {
				return c.provider.Chat(ctx, req, ParamMaxCompletionTokens)
			},
		},
		{
			name: "chat:max_tokens",
			when: namesTokenParam,
			run: func(ctx context.Context, req Request) (*Response, error) {
				return c.provider.Chat(ctx, req, ParamMaxTokens)
			},
		},
	}
}

// Complete generates the bot's next message in convo using the thread's
// generation parameters.
func (c *Completer) Complete(ctx context.Context, convo core.Conversation, cfg core.ThreadConfig) Result {
	p := c.persona.Persona()
	instructions, msgs := NewPrompt(p, convo).Render(p.Name)

	req := newRequest(cfg.Model, cfg.MaxTokens, cfg.Temperature)
	req.Instructions = instructions
	req.Messages = msgs
	return c.run(ctx, req)
}

// newRequest maps a catalog model to the API model and the parameters it
// accepts.
func newRequest(model string, maxTokens int, temperature float64) Request {
	info := core.ModelOrDefault(model)
	req := Request{
		Model:           info.APIName,
		MaxTokens:       maxTokens,
		Temperature:     temperature,
		Reasoning:       info.Reasoning,
		ReasoningEffort: info.ReasoningEffort,
	}
	if !info.Reasoning {
		req.Stop = []string{stopSequence}
	}
	return req
}

func (c *Completer) run(ctx context.Context, req Request) Result {
	release, err := c.limiter.Acquire(ctx)
	if err != nil {
		return Result{Status: StatusOtherError, Detail: err.Error()}
	}
	defer release()

	var (
		failures []string
		last     error
	)
	for _, a := range c.attempts() {
		if a.when != nil && (last == nil || !a.when(last)) {
			continue
		}

		resp, err := c.call(ctx, a, req)
		if err == nil {
			text := strings.TrimSpace(resp.Content)
			if text != "" || !a.primary {
				return Result{Status: StatusOK, Text: text}
			}
			c.logger.Warn("completion returned empty output",
				"attempt", a.name,
				"model", req.Model,
				"status", resp.Status,
				"incomplete_reason", resp.IncompleteReason,
				"output_tokens", resp.CompletionTokens,
				"reasoning_tokens", resp.ReasoningTokens,
				"output_types", resp.OutputTypes,
			)
			err = errEmptyOutput
		}

		if isContextLength(err) {
			return Result{Status: StatusTooLong, Detail: c.detail(err)}
		}
		c.logger.Warn("completion attempt failed", "attempt", a.name, "model", req.Model, "error", c.detail(err))
		failures = append(failures, a.name+": "+c.detail(err))
		last = err

		if ctx.Err() != nil {
			break
		}
	}

	status := StatusOtherError
	if last != nil && isInvalidRequest(last) {
		status = StatusInvalidRequest
	}
	return Result{Status: status, Detail: strings.Join(failures, " | ")}
}

func (c *Completer) call(ctx context.Context, a attempt, req Request) (*Response, error) {
	if err := c.limiter.AllowRequest(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := a.run(ctx, req)
	c.usage.Record(req.Model, time.Since(start), resp, err != nil)
	return resp, err
}

// detail is the user-facing message of err with credentials removed.
func (c *Completer) detail(err error) string {
	msg, _ := c.redactor.Redact(errorMessage(err))
	return msg
}

// Usage returns the API usage per model since the Completer was created.
func (c *Completer) Usage() []ModelUsage {
	return c.usage.Snapshot()
}
