package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/nox-hq/chatrelay/assist"
	"github.com/nox-hq/chatrelay/core"
)

// ChatInvocation is a request to start a conversation.
type ChatInvocation struct {
	ServerID  string // empty for direct messages
	ChannelID string
	// TextChannel is false when invoked anywhere threads cannot be started
	// from, such as inside another thread.
	TextChannel bool

	UserID   string
	UserName string
	Message  string

	// Optional generation parameters; zero values select defaults.
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// HandleChat starts a conversation: it validates the invocation, opens a
// thread carrying the config and answers the first message in it.
//
// Problems with the invocation itself are returned as *UsageError.
func (r *Relay) HandleChat(ctx context.Context, p ChatPlatform, inv ChatInvocation) error {
	logger := r.log(ctx)

	if r.blocked(inv.ServerID) {
		logger.Info("chat blocked", "server", inv.ServerID, "user", inv.UserName)
		return &UsageError{Msg: "Chatting is not enabled here."}
	}
	if !inv.TextChannel {
		return &UsageError{Msg: "Use /chat in a text channel."}
	}
	if strings.TrimSpace(inv.Message) == "" {
		return &UsageError{Msg: "A message is required."}
	}

	cfg, err := r.chatConfig(inv)
	if err != nil {
		return &UsageError{Msg: err.Error()}
	}

	logger.Info("chat started", "server", inv.ServerID, "user", inv.UserName, "model", cfg.Model,
		"message", truncateRunes(inv.Message, 50))

	t, err := p.OpenThread(ctx, OpenThreadRequest{
		ServerID:           inv.ServerID,
		ChannelID:          inv.ChannelID,
		AuthorID:           inv.UserID,
		AuthorName:         inv.UserName,
		Prompt:             inv.Message,
		Config:             cfg,
		ThreadName:         r.threadName(inv.UserName, inv.Message),
		AutoArchiveMinutes: r.settings.AutoArchiveMinutes,
	})
	if err != nil {
		return fmt.Errorf("opening thread: %w", err)
	}

	key := t.Key()
	r.state.Threads.Put(key, cfg)

	unlock := r.state.Locks.Lock(key)
	defer unlock()

	convo := core.Conversation{Messages: []core.Message{{Author: inv.UserName, Text: inv.Message}}}
	res := r.complete(ctx, p, t, convo, cfg)
	if err := r.Process(ctx, p, t, res); err != nil {
		return err
	}

	if !r.settings.DisableTitles && res.Status == assist.StatusOK {
		r.retitle(ctx, p, t, inv.Message)
	}
	return nil
}

// chatConfig resolves and validates the invocation's generation parameters.
func (r *Relay) chatConfig(inv ChatInvocation) (core.ThreadConfig, error) {
	model := inv.Model
	if model == "" {
		model = r.defaultModel
	}
	cfg := core.DefaultThreadConfig(model)
	if inv.Temperature != nil {
		cfg.Temperature = *inv.Temperature
	}
	if inv.MaxTokens != nil {
		cfg.MaxTokens = *inv.MaxTokens
	}
	return cfg, cfg.Validate()
}

func (r *Relay) threadName(author, message string) string {
	return fmt.Sprintf("%s %s - %s", r.settings.ActivePrefix, truncateRunes(author, 20), truncateRunes(message, 30))
}

// retitle replaces the thread title with a generated one. Failures are
// logged and otherwise ignored.
func (r *Relay) retitle(ctx context.Context, p Platform, t Thread, prompt string) {
	title, err := r.completer.GenerateTitle(ctx, prompt)
	if err != nil {
		r.log(ctx).Warn("generating thread title", "thread", t.ID, "error", err)
		return
	}
	if err := p.Rename(ctx, t.ID, r.settings.ActivePrefix+" "+title); err != nil {
		r.log(ctx).Warn("renaming thread", "thread", t.ID, "error", err)
	}
}

// complete runs one completion with the typing indicator shown.
func (r *Relay) complete(ctx context.Context, p Platform, t Thread, convo core.Conversation, cfg core.ThreadConfig) assist.Result {
	stop := p.Typing(ctx, t.ID)
	defer stop()
	return r.completer.Complete(ctx, convo, cfg)
}
