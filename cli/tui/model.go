// Package tui provides a local terminal chat that drives the relay through
// an in-memory Console platform, using the Bubble Tea framework.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nox-hq/chatrelay/relay"
)

// Chatter handles console input. *relay.Relay implements it.
type Chatter interface {
	HandleChat(ctx context.Context, p relay.ChatPlatform, inv relay.ChatInvocation) error
	HandleMessage(ctx context.Context, p relay.Platform, ev relay.MessageEvent) error
}

const lobbyHint = "Start a conversation with /chat <message>, or pick a thread with tab."

// changedMsg reports that the console's threads changed.
type changedMsg struct{}

// doneMsg reports that a relay call returned.
type doneMsg struct{ err error }

// Model is the root Bubble Tea model for the console.
type Model struct {
	ctx     context.Context
	console *Console
	chat    Chatter

	input    textinput.Model
	viewport viewport.Model

	current string // selected thread id; empty shows the thread list
	seen    int    // threads known at the last refresh
	pending int    // relay calls in flight
	status  string
	width   int
	height  int
}

// New creates a Model. Relay calls run under ctx.
func New(ctx context.Context, console *Console, chat Chatter) *Model {
	ti := textinput.New()
	ti.Placeholder = "/chat <message>"
	ti.Prompt = "> "
	ti.CharLimit = 4000
	ti.Focus()

	m := &Model{
		ctx:      ctx,
		console:  console,
		chat:     chat,
		input:    ti,
		viewport: viewport.New(80, 18),
		width:    80,
		height:   24,
		status:   lobbyHint,
	}
	m.layout()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.console.Changed()))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refresh()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.console.Changed())

	case doneMsg:
		m.pending--
		if msg.err != nil {
			m.status = errorText(msg.err)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Width(m.width).Render(titleStyle.Render("chatrelay console") + "  " + subtleStyle.Render(m.title())))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	status := m.status
	if m.pending > 0 {
		status = "waiting for the bot…"
	}
	b.WriteString(subtleStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpLine())
	return b.String()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matchesBinding(msg, keys.Quit):
		return m, tea.Quit

	case matchesBinding(msg, keys.Send):
		return m.submit()

	case matchesBinding(msg, keys.NextThread):
		m.cycle(1)
		return m, nil

	case matchesBinding(msg, keys.PrevThread):
		m.cycle(-1)
		return m, nil

	case matchesBinding(msg, keys.Lobby):
		m.current = ""
		m.status = lobbyHint
		m.refresh()
		return m, nil

	case matchesBinding(msg, keys.ScrollUp), matchesBinding(msg, keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line: a /chat command anywhere, a message inside
// the selected thread.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}

	if isChatCommand(line) {
		inv, err := parseChat(line, m.console.UserName())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		return m, m.call(func(ctx context.Context) error {
			return m.chat.HandleChat(ctx, m.console, inv)
		})
	}

	if m.current == "" {
		m.status = lobbyHint
		return m, nil
	}
	ev, err := m.console.Post(m.current, line)
	if err != nil {
		m.status = errorText(err)
		return m, nil
	}
	m.status = ""
	return m, m.call(func(ctx context.Context) error {
		return m.chat.HandleMessage(ctx, m.console, ev)
	})
}

// call runs f off the update loop and reports its result as a doneMsg.
func (m *Model) call(f func(ctx context.Context) error) tea.Cmd {
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{err: f(ctx)}
	}
}

// cycle moves the selection by step through the threads, wrapping around.
func (m *Model) cycle(step int) {
	threads := m.console.Threads()
	if len(threads) == 0 {
		return
	}
	idx := -1
	for i, t := range threads {
		if t.Thread.ID == m.current {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = len(threads) - 1
	default:
		idx = (idx + step + len(threads)) % len(threads)
	}
	m.current = threads[idx].Thread.ID
	m.status = ""
	m.refresh()
}

// refresh re-renders the viewport. A newly opened thread becomes the
// selection.
func (m *Model) refresh() {
	threads := m.console.Threads()
	if len(threads) > m.seen {
		m.current = threads[len(threads)-1].Thread.ID
		m.seen = len(threads)
	}

	atBottom := m.viewport.AtBottom()
	if tv, ok := find(threads, m.current); ok {
		m.viewport.SetContent(renderThread(tv, m.console.BotName(), m.viewport.Width))
		if atBottom {
			m.viewport.GotoBottom()
		}
		return
	}
	m.current = ""
	m.viewport.SetContent(renderLobby(threads))
	m.viewport.GotoTop()
}

func (m *Model) layout() {
	// Header (2 lines), status, input and help take five lines.
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
	m.input.Width = max(m.width-4, 10)
}

func (m *Model) title() string {
	if tv, ok := find(m.console.Threads(), m.current); ok {
		return tv.Thread.Name
	}
	return "threads"
}

func find(threads []ThreadView, id string) (ThreadView, bool) {
	for _, t := range threads {
		if id != "" && t.Thread.ID == id {
			return t, true
		}
	}
	return ThreadView{}, false
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func errorText(err error) string {
	var usage *relay.UsageError
	if errors.As(err, &usage) {
		return usage.Msg
	}
	return "error: " + err.Error()
}

// matchesBinding checks if a key message matches a key binding.
func matchesBinding(msg tea.KeyMsg, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}
