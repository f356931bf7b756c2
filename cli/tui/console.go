package tui

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/nox-hq/chatrelay/core"
	"github.com/nox-hq/chatrelay/relay"
)

// Identity of the console's single server, channel and bot account.
const (
	ServerID  = "console"
	ChannelID = "console"
	BotID     = "bot"
	UserID    = "user"
)

// Entry is one line of a console thread.
type Entry struct {
	ID       string
	AuthorID string
	Author   string
	Text     string
	Notice   bool
	Kind     relay.NoticeKind
}

// ThreadView is a snapshot of a thread for rendering.
type ThreadView struct {
	Thread  relay.Thread
	Config  map[string]string
	Starter core.Message
	Entries []Entry
	Typing  bool
}

type thread struct {
	info    relay.Thread
	fields  map[string]string
	starter core.Message
	entries []Entry
	typing  int
}

// Console is an in-memory chat service: a relay platform whose threads live
// in the terminal. It is safe for concurrent use.
type Console struct {
	botName  string
	userName string

	mu      sync.Mutex
	threads []*thread
	byID    map[string]*thread
	nextID  int
	changed chan struct{}
}

var _ relay.ChatPlatform = (*Console)(nil)

// NewConsole creates an empty console. botName labels the bot's replies and
// userName the local user's messages.
func NewConsole(botName, userName string) *Console {
	return &Console{
		botName:  botName,
		userName: userName,
		byID:     map[string]*thread{},
		changed:  make(chan struct{}, 1),
	}
}

// Changed is signalled after every change. Signals coalesce.
func (c *Console) Changed() <-chan struct{} { return c.changed }

// BotName returns the bot's display name.
func (c *Console) BotName() string { return c.botName }

// UserName returns the local user's display name.
func (c *Console) UserName() string { return c.userName }

func (c *Console) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// id returns a fresh message or thread id. Callers hold mu.
func (c *Console) id(prefix string) string {
	c.nextID++
	return prefix + strconv.Itoa(c.nextID)
}

func (c *Console) lookup(threadID string) (*thread, error) {
	t, ok := c.byID[threadID]
	if !ok {
		return nil, fmt.Errorf("unknown thread %s", threadID)
	}
	return t, nil
}

func (c *Console) add(threadID string, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookup(threadID)
	if err != nil {
		return err
	}
	e.ID = c.id("m")
	t.entries = append(t.entries, e)
	t.info.MessageCount = len(t.entries)
	c.notify()
	return nil
}

func (c *Console) BotUserID() string { return BotID }

func (c *Console) Send(_ context.Context, threadID, text string) error {
	return c.add(threadID, Entry{AuthorID: BotID, Author: c.botName, Text: text})
}

func (c *Console) Notify(_ context.Context, threadID string, kind relay.NoticeKind, text string) error {
	return c.add(threadID, Entry{AuthorID: BotID, Author: c.botName, Text: text, Notice: true, Kind: kind})
}

func (c *Console) Typing(_ context.Context, threadID string) func() {
	c.mu.Lock()
	t, err := c.lookup(threadID)
	if err == nil {
		t.typing++
		c.notify()
	}
	c.mu.Unlock()
	if err != nil {
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			t.typing--
			c.notify()
		})
	}
}

func (c *Console) Rename(_ context.Context, threadID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookup(threadID)
	if err != nil {
		return err
	}
	t.info.Name = name
	c.notify()
	return nil
}

func (c *Console) ArchiveAndLock(_ context.Context, threadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookup(threadID)
	if err != nil {
		return err
	}
	t.info.Archived = true
	t.info.Locked = true
	c.notify()
	return nil
}

// History returns the starter prompt and the text entries of the thread,
// oldest first, keeping the newest limit.
func (c *Console) History(_ context.Context, threadID string, limit int) ([]core.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookup(threadID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Message, 0, len(t.entries)+1)
	if t.starter.Text != "" {
		out = append(out, t.starter)
	}
	for _, e := range t.entries {
		if !e.Notice && e.Text != "" {
			out = append(out, core.Message{Author: e.Author, Text: e.Text})
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (c *Console) OriginFields(_ context.Context, rt relay.Thread) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookup(rt.ID)
	if err != nil {
		return nil, err
	}
	return maps.Clone(t.fields), nil
}

func (c *Console) LatestMessage(_ context.Context, threadID string) (relay.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookup(threadID)
	if err != nil {
		return relay.MessageRef{}, err
	}
	if len(t.entries) == 0 {
		return relay.MessageRef{}, nil
	}
	last := t.entries[len(t.entries)-1]
	return relay.MessageRef{ID: last.ID, AuthorID: last.AuthorID}, nil
}

// OpenThread creates a thread owned by the bot. The config is kept the way
// the Discord summary embed keeps it: as named fields.
func (c *Console) OpenThread(_ context.Context, req relay.OpenThreadRequest) (relay.Thread, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make(map[string]string, 4)
	for _, f := range req.Config.Fields() {
		fields[f.Name] = f.Value
	}
	t := &thread{
		info: relay.Thread{
			ServerID: req.ServerID,
			ID:       c.id("t"),
			ParentID: req.ChannelID,
			Name:     req.ThreadName,
			OwnerID:  BotID,
		},
		fields:  fields,
		starter: core.Message{Author: req.AuthorName, Text: req.Prompt},
	}
	c.threads = append(c.threads, t)
	c.byID[t.info.ID] = t
	c.notify()
	return t.info, nil
}

// Post adds a message from the local user to a thread and returns the event
// the relay should handle.
func (c *Console) Post(threadID, text string) (relay.MessageEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.lookup(threadID)
	if err != nil {
		return relay.MessageEvent{}, err
	}
	e := Entry{ID: c.id("m"), AuthorID: UserID, Author: c.userName, Text: text}
	t.entries = append(t.entries, e)
	t.info.MessageCount = len(t.entries)
	c.notify()

	info := t.info
	return relay.MessageEvent{
		ID:         e.ID,
		ServerID:   info.ServerID,
		AuthorID:   UserID,
		AuthorName: c.userName,
		Content:    text,
		Thread:     &info,
	}, nil
}

// Threads returns snapshots of every thread in creation order.
func (c *Console) Threads() []ThreadView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ThreadView, len(c.threads))
	for i, t := range c.threads {
		out[i] = ThreadView{
			Thread:  t.info,
			Config:  maps.Clone(t.fields),
			Starter: t.starter,
			Entries: append([]Entry(nil), t.entries...),
			Typing:  t.typing > 0,
		}
	}
	return out
}
