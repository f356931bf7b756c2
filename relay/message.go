package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/nox-hq/chatrelay/core"
)

// MessageEvent is a message posted somewhere the bot can see.
type MessageEvent struct {
	ID         string
	ServerID   string
	AuthorID   string
	AuthorName string
	Content    string

	// Thread is the thread the message was posted in, nil outside threads.
	Thread *Thread
}

// HandleMessage answers a message posted in one of the bot's active
// threads. Messages anywhere else are ignored.
func (r *Relay) HandleMessage(ctx context.Context, p Platform, ev MessageEvent) error {
	botID := p.BotUserID()
	if ev.AuthorID == botID || ev.Thread == nil {
		return nil
	}
	t := *ev.Thread
	if t.OwnerID != botID || t.Archived || t.Locked || !strings.HasPrefix(t.Name, r.settings.ActivePrefix) {
		return nil
	}

	logger := r.log(ctx)

	key := t.Key()
	unlock := r.state.Locks.Lock(key)
	defer unlock()

	if r.settings.MaxThreadMessages > 0 && t.MessageCount > r.settings.MaxThreadMessages {
		logger.Info("thread message limit reached", "thread", t.ID, "messages", t.MessageCount)
		return r.CloseThread(ctx, p, t)
	}
	if r.blocked(t.ServerID) {
		logger.Info("message blocked", "server", t.ServerID)
		return nil
	}

	if IsContinue(ev.Content) {
		return r.Continue(ctx, p, t)
	}

	if d := r.settings.MessageDelayDuration(); d > 0 {
		if err := r.sleep(ctx, d); err != nil {
			return err
		}
		if r.stale(ctx, p, t, ev) {
			logger.Debug("newer message arrived during delay", "thread", t.ID)
			return nil
		}
	}

	logger.Info("processing thread message", "thread", t.ID, "author", ev.AuthorName,
		"message", truncateRunes(ev.Content, 60))

	cfg := r.threadConfig(ctx, p, t)

	history, err := p.History(ctx, t.ID, r.settings.MaxThreadMessages)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}
	convo := core.Conversation{Messages: conversationHistory(history)}

	res := r.complete(ctx, p, t, convo, cfg)

	if r.stale(ctx, p, t, ev) {
		logger.Debug("discarding stale reply", "thread", t.ID)
		return nil
	}
	return r.Process(ctx, p, t, res)
}

// threadConfig returns the config of t, rebuilding it from the origin
// message when the thread is not in the store.
func (r *Relay) threadConfig(ctx context.Context, p Platform, t Thread) core.ThreadConfig {
	key := t.Key()
	if cfg, ok := r.state.Threads.Get(key); ok {
		return cfg
	}

	fields, err := p.OriginFields(ctx, t)
	if err != nil {
		r.log(ctx).Warn("reading origin message, using defaults", "thread", t.ID, "error", err)
		fields = nil
	}
	cfg := core.ReconstructThreadConfig(fields, r.defaultModel)
	r.state.Threads.Put(key, cfg)
	r.log(ctx).Info("thread config reconstructed", "thread", t.ID, "model", cfg.Model,
		"max_tokens", cfg.MaxTokens, "temperature", cfg.Temperature)
	return cfg
}

// stale reports whether someone other than the bot has posted in t since ev.
// An unknown latest message counts as fresh.
func (r *Relay) stale(ctx context.Context, p Platform, t Thread, ev MessageEvent) bool {
	latest, err := p.LatestMessage(ctx, t.ID)
	if err != nil {
		r.log(ctx).Warn("reading latest message", "thread", t.ID, "error", err)
		return false
	}
	return latest.ID != "" && latest.ID != ev.ID && latest.AuthorID != p.BotUserID()
}

// conversationHistory drops continue triggers and strips continue hints so
// paging does not show up in the conversation sent to the model.
func conversationHistory(msgs []core.Message) []core.Message {
	out := make([]core.Message, 0, len(msgs))
	for _, m := range msgs {
		if IsContinue(m.Text) {
			continue
		}
		m.Text = strings.TrimSuffix(m.Text, ContinueHint)
		if m.Text == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
