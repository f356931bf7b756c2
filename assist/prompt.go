package assist

import (
	"fmt"

	"github.com/nox-hq/chatrelay/core"
)

// Prompt is everything sent to the model for one completion: a system
// header, the persona's example conversations and the live thread.
type Prompt struct {
	Header   string
	Examples []core.Conversation
	Convo    core.Conversation
}

// NewPrompt builds the prompt for convo under persona p.
func NewPrompt(p core.Persona, convo core.Conversation) Prompt {
	return Prompt{
		Header:   headerFor(p),
		Examples: p.ExampleConversations,
		Convo:    convo,
	}
}

func headerFor(p core.Persona) string {
	return fmt.Sprintf("Instructions for %s: %s", p.Name, p.Instructions)
}

// Render returns the instructions and the role-tagged messages. Messages by
// botName become assistant turns; everyone else speaks as a user prefixed
// with their name so the model can tell speakers apart.
func (p Prompt) Render(botName string) (string, []Message) {
	var msgs []Message
	for _, c := range p.Examples {
		msgs = appendConversation(msgs, c, botName)
	}
	msgs = appendConversation(msgs, p.Convo, botName)
	return p.Header, msgs
}

func appendConversation(msgs []Message, c core.Conversation, botName string) []Message {
	for _, m := range c.Messages {
		if m.Author == botName {
			msgs = append(msgs, Message{Role: RoleAssistant, Content: m.Text})
			continue
		}
		msgs = append(msgs, Message{Role: RoleUser, Content: m.Author + ": " + m.Text})
	}
	return msgs
}
