package assist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/tidwall/gjson"
)

// OpenAIProvider implements Provider using the official OpenAI Go SDK.
// It supports any OpenAI-compatible endpoint via WithBaseURL.
type OpenAIProvider struct {
	client openai.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
}

// WithAPIKey sets the API key. If empty, the SDK falls back to OPENAI_API_KEY.
func WithAPIKey(key string) OpenAIOption {
	return func(c *openaiConfig) { c.apiKey = key }
}

// WithBaseURL sets a custom base URL, enabling Ollama, vLLM, Azure, or other
// OpenAI-compatible endpoints.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openaiConfig) { c.baseURL = url }
}

// WithTimeout sets the per-request timeout for API calls (default: 2 minutes).
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openaiConfig) { c.timeout = d }
}

// WithMaxRetries sets how often the SDK retries a failed call before the
// error is returned (default: 2).
func WithMaxRetries(n int) OpenAIOption {
	return func(c *openaiConfig) { c.maxRetries = n }
}

// NewOpenAIProvider creates an OpenAIProvider with the given options.
func NewOpenAIProvider(opts ...OpenAIOption) *OpenAIProvider {
	cfg := openaiConfig{timeout: 2 * time.Minute, maxRetries: 2}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(cfg.maxRetries)}
	if cfg.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.apiKey))
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &OpenAIProvider{client: openai.NewClient(clientOpts...)}
}

// Respond sends req to the Responses API.
func (p *OpenAIProvider) Respond(ctx context.Context, req Request) (*Response, error) {
	params := responses.ResponseNewParams{
		Model:           req.Model,
		Input:           responses.ResponseNewParamsInputUnion{OfInputItemList: toResponseInput(req.Messages)},
		MaxOutputTokens: openai.Int(int64(req.MaxTokens)),
		Store:           openai.Bool(false),
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if req.Reasoning {
		if req.ReasoningEffort != "" {
			params.Reasoning = openai.ReasoningParam{Effort: openai.ReasoningEffort(req.ReasoningEffort)}
		}
	} else {
		params.Temperature = openai.Float(req.Temperature)
		params.TopP = openai.Float(1.0)
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses: %w", convertError(err))
	}

	return &Response{
		Content:          resp.OutputText(),
		Status:           string(resp.Status),
		IncompleteReason: resp.IncompleteDetails.Reason,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		ReasoningTokens:  int(resp.Usage.OutputTokensDetails.ReasoningTokens),
		OutputTypes:      outputTypes(resp.RawJSON()),
	}, nil
}

// Chat sends req to Chat Completions, carrying the token budget in the field
// selected by tokens.
func (p *OpenAIProvider) Chat(ctx context.Context, req Request, tokens TokenParam) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: toOpenAIMessages(req.Instructions, req.Messages),
	}
	switch tokens {
	case ParamMaxTokens:
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	default:
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Reasoning {
		if req.ReasoningEffort != "" {
			params.ReasoningEffort = openai.ReasoningEffort(req.ReasoningEffort)
		}
	} else {
		params.Temperature = openai.Float(req.Temperature)
		params.TopP = openai.Float(1.0)
		if len(req.Stop) > 0 {
			params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.Stop}
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", convertError(err))
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Response{
		Content:          completion.Choices[0].Message.Content,
		Status:           completion.Choices[0].FinishReason,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		ReasoningTokens:  int(completion.Usage.CompletionTokensDetails.ReasoningTokens),
	}, nil
}

// toOpenAIMessages converts internal Message values to the SDK union type,
// with the instructions as the leading system message.
func toOpenAIMessages(instructions string, msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if instructions != "" {
		out = append(out, openai.SystemMessage(instructions))
	}
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// toResponseInput converts messages to Responses API input items. System
// messages after the instructions are sent as system-role input.
func toResponseInput(msgs []Message) responses.ResponseInputParam {
	out := make(responses.ResponseInputParam, len(msgs))
	for i, m := range msgs {
		role := responses.EasyInputMessageRoleUser
		switch m.Role {
		case RoleAssistant:
			role = responses.EasyInputMessageRoleAssistant
		case RoleSystem:
			role = responses.EasyInputMessageRoleSystem
		}
		out[i] = responses.ResponseInputItemParamOfMessage(m.Content, role)
	}
	return out
}

// outputTypes lists the type of every output item in a raw Responses API
// body, e.g. ["reasoning"] when the budget ran out before any text.
func outputTypes(raw string) []string {
	if raw == "" {
		return nil
	}
	var types []string
	gjson.Get(raw, "output.#.type").ForEach(func(_, v gjson.Result) bool {
		types = append(types, v.String())
		return true
	})
	return types
}

// convertError turns SDK API errors into *APIError so classification does
// not depend on the SDK's request bookkeeping.
func convertError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.RawJSON()
	}
	return &APIError{
		StatusCode: apiErr.StatusCode,
		Type:       apiErr.Type,
		Code:       apiErr.Code,
		Param:      apiErr.Param,
		Message:    msg,
	}
}
