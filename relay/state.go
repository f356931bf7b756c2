package relay

import (
	"context"
	"log/slog"

	"github.com/nox-hq/chatrelay/assist"
	"github.com/nox-hq/chatrelay/core"
)

// State is the relay's in-memory state. None of it is persisted: thread
// configs are rebuilt from origin messages and pending chunks are lost on
// restart.
type State struct {
	Threads *core.ThreadConfigStore
	Pending *core.ContinuationStore
	Locks   *core.KeyedMutex
}

// NewState returns empty state.
func NewState() *State {
	return &State{
		Threads: core.NewThreadConfigStore(),
		Pending: core.NewContinuationStore(),
		Locks:   core.NewKeyedMutex(),
	}
}

// Completer produces replies and thread titles.
type Completer interface {
	Complete(ctx context.Context, convo core.Conversation, cfg core.ThreadConfig) assist.Result
	GenerateTitle(ctx context.Context, text string) (string, error)
}

// UsageError is a problem with how a command was invoked. Its message is
// shown to the invoking user only.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

type loggerKey struct{}

// ContextWithLogger attaches l to ctx; relay logs for work done under ctx
// go to l.
func ContextWithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFromContext returns the logger attached by ContextWithLogger.
func LoggerFromContext(ctx context.Context) (*slog.Logger, bool) {
	l, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	return l, ok && l != nil
}

func (r *Relay) log(ctx context.Context) *slog.Logger {
	if l, ok := LoggerFromContext(ctx); ok {
		return l
	}
	return r.logger
}
