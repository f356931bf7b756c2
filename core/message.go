// Package core holds the chatrelay domain values shared by every other
// package: configuration, the persona, per-thread generation settings, the
// reply chunker and the in-memory stores keyed by thread identity.
//
// Nothing in core talks to the network. The completion client lives in
// assist, the event handling in relay and the chat platform adapters in
// discord and cli/tui.
package core

import "fmt"

// Message is a single chat line: who said it and what they said.
type Message struct {
	Author string `yaml:"user"`
	Text   string `yaml:"text"`
}

// Conversation is an ordered list of messages, oldest first.
type Conversation struct {
	Messages []Message `yaml:"messages"`
}

// ThreadKey identifies a thread across servers.
type ThreadKey struct {
	ServerID string
	ThreadID string
}

// String returns the key in "server/thread" form.
func (k ThreadKey) String() string {
	return fmt.Sprintf("%s/%s", k.ServerID, k.ThreadID)
}
