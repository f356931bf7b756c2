package assist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nox-hq/chatrelay/core"
)

func TestOpenAIProvider_ImplementsProvider(t *testing.T) {
	var _ Provider = (*OpenAIProvider)(nil)
}

// TestNewOpenAIProvider_AllOptions verifies all options can be combined.
func TestNewOpenAIProvider_AllOptions(t *testing.T) {
	p := NewOpenAIProvider(
		WithAPIKey("sk-test-key"),
		WithBaseURL("http://localhost:8080/v1"),
		WithTimeout(10*time.Second),
		WithMaxRetries(0),
	)
	if p == nil {
		t.Fatal("expected provider")
	}
}

// TestToOpenAIMessages tests the message conversion function.
func TestToOpenAIMessages(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "alice: hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: Role("unknown"), Content: "Defaults to user."},
	}

	result := toOpenAIMessages("be nice", messages)
	if len(result) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(result))
	}
	if result[0].OfSystem == nil {
		t.Error("first message should be the system instructions")
	}
	if result[2].OfAssistant == nil {
		t.Error("third message should be an assistant message")
	}

	if got := toOpenAIMessages("", nil); len(got) != 0 {
		t.Fatalf("expected 0 messages, got %d", len(got))
	}
}

func TestOutputTypes(t *testing.T) {
	raw := `{"output":[{"type":"reasoning"},{"type":"message"}]}`
	got := outputTypes(raw)
	if strings.Join(got, ",") != "reasoning,message" {
		t.Errorf("outputTypes = %v", got)
	}
	if outputTypes("") != nil {
		t.Error("expected nil for empty body")
	}
}

// mockAPI is an httptest server speaking enough of the OpenAI API for the
// provider: /responses and /chat/completions, each scripted by a handler.
type mockAPI struct {
	srv *httptest.Server

	mu     sync.Mutex
	bodies map[string][]string
}

func newMockAPI(t *testing.T, responses, chat http.HandlerFunc) *mockAPI {
	t.Helper()
	m := &mockAPI{bodies: make(map[string][]string)}
	m.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		var route string
		var h http.HandlerFunc
		switch {
		case strings.HasSuffix(r.URL.Path, "/responses"):
			route, h = "responses", responses
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			route, h = "chat", chat
		default:
			http.NotFound(w, r)
			return
		}
		m.mu.Lock()
		m.bodies[route] = append(m.bodies[route], string(body))
		m.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockAPI) provider() *OpenAIProvider {
	return NewOpenAIProvider(
		WithBaseURL(m.srv.URL),
		WithAPIKey("test-key"),
		WithMaxRetries(0),
	)
}

func (m *mockAPI) requests(route string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.bodies[route]...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func apiError(status int, typ, code, param, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]any{"error": map[string]any{
			"message": msg, "type": typ, "code": code, "param": param,
		}})
	}
}

func responsesReply(text, status string, outputTypes ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var output []map[string]any
		for _, typ := range outputTypes {
			item := map[string]any{"type": typ, "id": "item_" + typ}
			if typ == "message" {
				item["role"] = "assistant"
				item["status"] = "completed"
				item["content"] = []map[string]any{{"type": "output_text", "text": text, "annotations": []any{}}}
			}
			output = append(output, item)
		}
		resp := map[string]any{
			"id":         "resp_test",
			"object":     "response",
			"created_at": 1234567890,
			"model":      "gpt-5",
			"status":     status,
			"output":     output,
			"usage": map[string]any{
				"input_tokens":          20,
				"output_tokens":         64,
				"total_tokens":          84,
				"output_tokens_details": map[string]any{"reasoning_tokens": 64},
			},
		}
		if status == "incomplete" {
			resp["incomplete_details"] = map[string]any{"reason": "max_output_tokens"}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func chatReply(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": text, "refusal": ""},
				"logprobs":      nil,
			}},
			"usage": map[string]any{"prompt_tokens": 42, "completion_tokens": 15, "total_tokens": 57},
		})
	}
}

func TestRespond_Success(t *testing.T) {
	api := newMockAPI(t, responsesReply("Hello from responses.", "completed", "message"), nil)

	resp, err := api.provider().Respond(context.Background(), Request{
		Model:        "gpt-4o",
		Instructions: "be nice",
		Messages:     []Message{{Role: RoleUser, Content: "alice: hi"}},
		MaxTokens:    100,
		Temperature:  0.5,
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.Content != "Hello from responses." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.PromptTokens != 20 || resp.CompletionTokens != 64 {
		t.Errorf("usage = %d/%d", resp.PromptTokens, resp.CompletionTokens)
	}

	body := api.requests("responses")[0]
	if gjson.Get(body, "instructions").String() != "be nice" {
		t.Errorf("instructions not sent: %s", body)
	}
	if gjson.Get(body, "max_output_tokens").Int() != 100 {
		t.Errorf("max_output_tokens not sent: %s", body)
	}
	if gjson.Get(body, "temperature").Float() != 0.5 {
		t.Errorf("temperature not sent: %s", body)
	}
}

func TestRespond_ReasoningOmitsSampling(t *testing.T) {
	api := newMockAPI(t, responsesReply("ok", "completed", "reasoning", "message"), nil)

	_, err := api.provider().Respond(context.Background(), Request{
		Model:           "gpt-5",
		Messages:        []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens:       4096,
		Temperature:     1,
		Reasoning:       true,
		ReasoningEffort: "high",
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	body := api.requests("responses")[0]
	if gjson.Get(body, "temperature").Exists() || gjson.Get(body, "top_p").Exists() {
		t.Errorf("sampling params sent to reasoning model: %s", body)
	}
	if gjson.Get(body, "reasoning.effort").String() != "high" {
		t.Errorf("reasoning effort missing: %s", body)
	}
}

func TestRespond_IncompleteDiagnostics(t *testing.T) {
	api := newMockAPI(t, responsesReply("", "incomplete", "reasoning"), nil)

	resp, err := api.provider().Respond(context.Background(), Request{Model: "gpt-5", MaxTokens: 64, Reasoning: true})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("Content = %q, want empty", resp.Content)
	}
	if resp.Status != "incomplete" || resp.IncompleteReason != "max_output_tokens" {
		t.Errorf("status = %q/%q", resp.Status, resp.IncompleteReason)
	}
	if resp.ReasoningTokens != 64 {
		t.Errorf("ReasoningTokens = %d, want 64", resp.ReasoningTokens)
	}
	if strings.Join(resp.OutputTypes, ",") != "reasoning" {
		t.Errorf("OutputTypes = %v", resp.OutputTypes)
	}
}

func TestChat_TokenParamAndStop(t *testing.T) {
	api := newMockAPI(t, nil, chatReply("This is the LLM response."))
	p := api.provider()

	req := Request{
		Model:        "gpt-4o",
		Instructions: "be nice",
		Messages:     []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens:    256,
		Temperature:  0.2,
		Stop:         []string{stopSequence},
	}
	resp, err := p.Chat(context.Background(), req, ParamMaxCompletionTokens)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Content != "This is the LLM response." {
		t.Errorf("Content = %q", resp.Content)
	}
	if _, err := p.Chat(context.Background(), req, ParamMaxTokens); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	bodies := api.requests("chat")
	if len(bodies) != 2 {
		t.Fatalf("expected 2 chat requests, got %d", len(bodies))
	}
	if gjson.Get(bodies[0], "max_completion_tokens").Int() != 256 || gjson.Get(bodies[0], "max_tokens").Exists() {
		t.Errorf("first request budget wrong: %s", bodies[0])
	}
	if gjson.Get(bodies[1], "max_tokens").Int() != 256 || gjson.Get(bodies[1], "max_completion_tokens").Exists() {
		t.Errorf("second request budget wrong: %s", bodies[1])
	}
	if gjson.Get(bodies[0], "stop.0").String() != stopSequence {
		t.Errorf("stop not sent: %s", bodies[0])
	}
	if gjson.Get(bodies[0], "top_p").Float() != 1.0 {
		t.Errorf("top_p not sent: %s", bodies[0])
	}
	if gjson.Get(bodies[0], "messages.0.role").String() != "system" {
		t.Errorf("instructions not leading: %s", bodies[0])
	}
}

func TestChat_NoChoices(t *testing.T) {
	api := newMockAPI(t, nil, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": "chatcmpl-test", "object": "chat.completion", "model": "gpt-4o",
			"choices": []map[string]any{},
		})
	})

	_, err := api.provider().Chat(context.Background(), Request{Model: "gpt-4o", MaxTokens: 1}, ParamMaxCompletionTokens)
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("error = %v, want 'no choices'", err)
	}
}

func TestChat_APIErrorConverted(t *testing.T) {
	api := newMockAPI(t, nil, apiError(http.StatusBadRequest, "invalid_request_error", "", "max_completion_tokens",
		"Unsupported parameter: 'max_completion_tokens' is not supported with this model."))

	_, err := api.provider().Chat(context.Background(), Request{Model: "gpt-4", MaxTokens: 1}, ParamMaxCompletionTokens)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Param != "max_completion_tokens" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !namesTokenParam(err) || !isInvalidRequest(err) {
		t.Errorf("classification failed for %v", err)
	}
}

// TestCompleter_EndToEnd drives the whole fallback chain against the mock
// API: Responses is unavailable, max_completion_tokens is rejected and the
// legacy max_tokens call succeeds.
func TestCompleter_EndToEnd(t *testing.T) {
	var chatCalls int
	var mu sync.Mutex
	api := newMockAPI(t,
		apiError(http.StatusNotFound, "invalid_request_error", "", "", "Not found"),
		func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			chatCalls++
			n := chatCalls
			mu.Unlock()
			if n == 1 {
				apiError(http.StatusBadRequest, "invalid_request_error", "unsupported_parameter", "max_completion_tokens",
					"Unsupported parameter: 'max_completion_tokens'")(w, r)
				return
			}
			chatReply("  legacy reply  ")(w, r)
		},
	)

	c := newTestCompleter(api.provider())
	res := c.Complete(context.Background(), helloConvo(), core.DefaultThreadConfig("gpt-4"))
	if res.Status != StatusOK || res.Text != "legacy reply" {
		t.Fatalf("Result = %+v", res)
	}
	if len(api.requests("responses")) != 1 || len(api.requests("chat")) != 2 {
		t.Errorf("requests: responses=%d chat=%d", len(api.requests("responses")), len(api.requests("chat")))
	}
}

func TestCompleter_EndToEndContextLength(t *testing.T) {
	api := newMockAPI(t,
		apiError(http.StatusBadRequest, "invalid_request_error", "context_length_exceeded", "input",
			"Your input exceeds the context window of this model."),
		chatReply("unreachable"),
	)

	c := newTestCompleter(api.provider())
	res := c.Complete(context.Background(), helloConvo(), core.DefaultThreadConfig("gpt-4o"))
	if res.Status != StatusTooLong {
		t.Fatalf("status = %s, want too_long", res.Status)
	}
	if len(api.requests("chat")) != 0 {
		t.Errorf("chat called after context length error")
	}
}
