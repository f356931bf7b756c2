package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nox-hq/chatrelay/assist"
	"github.com/nox-hq/chatrelay/core"
)

// Notice texts.
const (
	emptyResponseNotice = "**Invalid response** – empty text"
	errorNoticePrefix   = "**Error** – "
	closedNotice        = "**Thread closed** - Context limit reached, closing..."
)

// Process delivers a completion result to t. A reply longer than one chunk
// is delivered one chunk at a time: the first now, the rest on continue.
// Callers hold the thread's lock.
func (r *Relay) Process(ctx context.Context, p Platform, t Thread, res assist.Result) error {
	key := t.Key()

	switch res.Status {
	case assist.StatusOK:
		if res.Text == "" {
			return p.Notify(ctx, t.ID, NoticeWarning, emptyResponseNotice)
		}
		chunks := core.SplitReply(res.Text, r.settings.MaxCharsPerReply)
		first := chunks[0]
		if len(chunks) > 1 {
			r.state.Pending.Put(key, chunks[1:])
			first += ContinueHint
		} else {
			r.state.Pending.Drop(key)
		}
		if err := p.Send(ctx, t.ID, first); err != nil {
			return fmt.Errorf("sending reply: %w", err)
		}
		r.log(ctx).Info("reply sent", "thread", t.ID, "chunks", len(chunks))
		return nil

	case assist.StatusTooLong:
		r.log(ctx).Info("context limit reached", "thread", t.ID, "detail", res.Detail)
		return r.CloseThread(ctx, p, t)

	default:
		r.log(ctx).Warn("completion failed", "thread", t.ID, "status", res.Status, "detail", res.Detail)
		return p.Notify(ctx, t.ID, NoticeError, errorNoticePrefix+res.Detail)
	}
}

// Continue delivers the next pending chunk for t, if any. Callers hold the
// thread's lock.
func (r *Relay) Continue(ctx context.Context, p Platform, t Thread) error {
	chunk, remaining, ok := r.state.Pending.Pop(t.Key())
	if !ok {
		return nil
	}
	if remaining > 0 {
		chunk += ContinueHint
	}
	if err := p.Send(ctx, t.ID, chunk); err != nil {
		return fmt.Errorf("sending continuation: %w", err)
	}
	return nil
}

// CloseThread marks t inactive, posts the closing notice, archives and locks
// it and forgets its state.
func (r *Relay) CloseThread(ctx context.Context, p Platform, t Thread) error {
	logger := r.log(ctx)

	if err := p.Rename(ctx, t.ID, r.closedName(t.Name)); err != nil {
		logger.Warn("renaming closed thread", "thread", t.ID, "error", err)
		if err := p.Rename(ctx, t.ID, r.settings.InactivePrefix); err != nil {
			logger.Warn("renaming closed thread to bare prefix", "thread", t.ID, "error", err)
		}
	}

	var errs []error
	if err := p.Notify(ctx, t.ID, NoticeInfo, closedNotice); err != nil {
		errs = append(errs, fmt.Errorf("posting close notice: %w", err))
	}
	if err := p.ArchiveAndLock(ctx, t.ID); err != nil {
		errs = append(errs, fmt.Errorf("archiving thread: %w", err))
	}

	key := t.Key()
	r.state.Threads.Delete(key)
	r.state.Pending.Drop(key)
	logger.Info("thread closed", "thread", t.ID)
	return errors.Join(errs...)
}

// closedName swaps the active prefix of name for the inactive one, keeping
// the title.
func (r *Relay) closedName(name string) string {
	title := name
	if rest, ok := strings.CutPrefix(name, r.settings.ActivePrefix); ok {
		title = rest
	} else if rest, ok := strings.CutPrefix(name, r.settings.InactivePrefix); ok {
		title = rest
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return r.settings.InactivePrefix
	}
	return r.settings.InactivePrefix + " " + title
}
