package assist

import (
	"context"
	"fmt"
	"net/http"
)

// Role identifies the sender of a message in the chat conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Request is one completion request, independent of which API serves it.
type Request struct {
	Model string
	// Instructions is the system header. The Responses API takes it as
	// instructions; chat calls send it as the leading system message.
	Instructions string
	Messages     []Message
	MaxTokens    int
	Temperature  float64

	// Reasoning models reject sampling parameters and may take an effort.
	Reasoning       bool
	ReasoningEffort string

	// Stop sequences, ignored for reasoning models.
	Stop []string
}

// Response holds the model's reply along with diagnostics used when the
// reply turns out to be empty.
type Response struct {
	Content string

	Status           string // API-reported status or finish reason
	IncompleteReason string
	PromptTokens     int
	CompletionTokens int
	ReasoningTokens  int
	OutputTypes      []string // output item types, Responses API only
}

// TokenParam selects the request field carrying the output token budget on
// chat calls.
type TokenParam int

const (
	ParamMaxCompletionTokens TokenParam = iota
	ParamMaxTokens
)

func (p TokenParam) String() string {
	if p == ParamMaxTokens {
		return "max_tokens"
	}
	return "max_completion_tokens"
}

// Provider is the interface for completion backends. Implementations must be
// safe for concurrent use.
type Provider interface {
	// Respond calls the Responses API.
	Respond(ctx context.Context, req Request) (*Response, error)
	// Chat calls Chat Completions with the given token budget field.
	Chat(ctx context.Context, req Request, tokens TokenParam) (*Response, error)
}

// APIError is a failed API call as reported by the server.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Param      string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}
