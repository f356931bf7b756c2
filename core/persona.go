package core

import (
	"sync"
	"sync/atomic"
)

// Persona is the bot's static character: its name, its system
// instructions, and example conversations shown to the model before the
// live thread.
//
// Example messages authored by Name are the bot's own lines. Once the real
// bot account name is known, WithBotName re-attributes them.
type Persona struct {
	Name                 string         `yaml:"name"`
	Instructions         string         `yaml:"instructions"`
	ExampleConversations []Conversation `yaml:"example_conversations"`
}

// WithBotName returns a copy of p renamed to botName, with every example
// message authored by the old name re-attributed to botName.
func (p Persona) WithBotName(botName string) Persona {
	if botName == "" || botName == p.Name {
		return p
	}
	out := Persona{
		Name:                 botName,
		Instructions:         p.Instructions,
		ExampleConversations: make([]Conversation, len(p.ExampleConversations)),
	}
	for i, c := range p.ExampleConversations {
		msgs := make([]Message, len(c.Messages))
		for j, m := range c.Messages {
			if m.Author == p.Name {
				m.Author = botName
			}
			msgs[j] = m
		}
		out.ExampleConversations[i] = Conversation{Messages: msgs}
	}
	return out
}

// PersonaHolder publishes the current persona to concurrent readers. Each
// stored value is immutable; reloads swap the pointer.
type PersonaHolder struct {
	current atomic.Pointer[Persona]

	mu      sync.Mutex
	base    Persona
	botName string
}

// NewPersonaHolder creates a holder serving p.
func NewPersonaHolder(p Persona) *PersonaHolder {
	h := &PersonaHolder{}
	h.Store(p)
	return h
}

// Persona returns the current persona.
func (h *PersonaHolder) Persona() Persona {
	return *h.current.Load()
}

// Store replaces the persona. The bot name set by SetBotName, if any, is
// applied to p before publishing.
func (h *PersonaHolder) Store(p Persona) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.base = p
	h.publish()
}

// SetBotName records the live bot account name and re-publishes the persona
// under it.
func (h *PersonaHolder) SetBotName(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.botName = name
	h.publish()
}

func (h *PersonaHolder) publish() {
	p := h.base.WithBotName(h.botName)
	h.current.Store(&p)
}
