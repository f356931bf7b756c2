// Package relay connects chat threads to the completion client: it opens
// conversation threads, answers messages in them, pages long replies and
// closes threads whose context is exhausted.
//
// The chat service is reached only through the Platform interfaces, so the
// same relay drives the Discord bot and the local console.
package relay

import (
	"context"

	"github.com/nox-hq/chatrelay/core"
)

// Thread is a conversation thread as seen by the relay.
type Thread struct {
	ServerID     string
	ID           string
	ParentID     string
	Name         string
	OwnerID      string
	Archived     bool
	Locked       bool
	MessageCount int
}

// Key returns the thread's store key.
func (t Thread) Key() core.ThreadKey {
	return core.ThreadKey{ServerID: t.ServerID, ThreadID: t.ID}
}

// MessageRef identifies a posted message and its author.
type MessageRef struct {
	ID       string
	AuthorID string
}

// NoticeKind selects how a notice is rendered.
type NoticeKind int

const (
	NoticeInfo    NoticeKind = iota // blue
	NoticeWarning                   // yellow
	NoticeError                     // red
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// OpenThreadRequest describes a new conversation: the summary message shown
// in the channel and the thread created from it.
type OpenThreadRequest struct {
	ServerID   string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Prompt     string
	Config     core.ThreadConfig

	ThreadName         string
	AutoArchiveMinutes int
}

// Platform is the chat service as used while answering thread messages.
// Implementations must be safe for concurrent use.
type Platform interface {
	// BotUserID returns the bot account's user id.
	BotUserID() string

	Send(ctx context.Context, threadID, text string) error
	Notify(ctx context.Context, threadID string, kind NoticeKind, text string) error

	// Typing shows a typing indicator until stop is called.
	Typing(ctx context.Context, threadID string) (stop func())

	Rename(ctx context.Context, threadID, name string) error
	ArchiveAndLock(ctx context.Context, threadID string) error

	// History returns up to limit thread messages, oldest first. The
	// thread's starter message contributes the original prompt.
	History(ctx context.Context, threadID string, limit int) ([]core.Message, error)

	// OriginFields returns the fields of the summary message the thread was
	// started from.
	OriginFields(ctx context.Context, t Thread) (map[string]string, error)

	// LatestMessage returns the newest message in the thread.
	LatestMessage(ctx context.Context, threadID string) (MessageRef, error)
}

// ChatPlatform is a Platform that can also start a conversation thread in
// reply to a chat invocation.
type ChatPlatform interface {
	Platform
	OpenThread(ctx context.Context, req OpenThreadRequest) (Thread, error)
}
