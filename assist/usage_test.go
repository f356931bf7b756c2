package assist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nox-hq/chatrelay/core"
)

func TestUsageCollector_Record(t *testing.T) {
	uc := newUsageCollector()
	uc.Record("gpt-5", 2*time.Second, &Response{PromptTokens: 10, CompletionTokens: 4, ReasoningTokens: 2}, false)
	uc.Record("gpt-5", time.Second, nil, true)
	uc.Record("gpt-4o", time.Second, &Response{PromptTokens: 3, CompletionTokens: 1}, false)

	got := uc.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 models, got %d", len(got))
	}
	if got[0].Model != "gpt-4o" || got[1].Model != "gpt-5" {
		t.Fatalf("snapshot not ordered by model: %+v", got)
	}

	u := got[1]
	if u.Calls != 2 || u.Failures != 1 {
		t.Errorf("calls=%d failures=%d, want 2 and 1", u.Calls, u.Failures)
	}
	if u.PromptTokens != 10 || u.CompletionTokens != 4 || u.ReasoningTokens != 2 {
		t.Errorf("tokens = %+v", u)
	}
	if u.TotalDuration != 3*time.Second {
		t.Errorf("duration = %v, want 3s", u.TotalDuration)
	}
}

func TestUsageCollector_SnapshotIsCopy(t *testing.T) {
	uc := newUsageCollector()
	uc.Record("gpt-5", time.Second, nil, false)
	snap := uc.Snapshot()
	snap[0].Calls = 99
	if uc.Snapshot()[0].Calls != 1 {
		t.Error("modifying snapshot changed collector state")
	}
}

func TestCompleter_UsageCountsEveryAttempt(t *testing.T) {
	mock := &MockProvider{
		RespondErr: errors.New("primary down"),
		ChatResp: map[TokenParam]*Response{
			ParamMaxCompletionTokens: {Content: "from chat", PromptTokens: 7, CompletionTokens: 2},
		},
	}
	c := newTestCompleter(mock)

	res := c.Complete(context.Background(), helloConvo(), core.DefaultThreadConfig("gpt-4o"))
	if res.Status != StatusOK {
		t.Fatalf("Result = %+v", res)
	}

	usage := c.Usage()
	if len(usage) != 1 {
		t.Fatalf("usage = %+v, want one model", usage)
	}
	u := usage[0]
	if u.Model != "gpt-4o" || u.Calls != 2 || u.Failures != 1 || u.PromptTokens != 7 {
		t.Errorf("usage = %+v", u)
	}
}
