package tui

import (
	"fmt"
	"strings"

	"github.com/nox-hq/chatrelay/core"
)

// renderLobby renders the thread list.
func renderLobby(threads []ThreadView) string {
	if len(threads) == 0 {
		return subtleStyle.Render("  No conversations yet.") + "\n"
	}
	var b strings.Builder
	for _, t := range threads {
		state := fmt.Sprintf("%d messages", len(t.Entries))
		if t.Thread.Locked {
			state += ", closed"
		}
		b.WriteString("  " + t.Thread.Name + " " + subtleStyle.Render("("+state+")"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderThread renders one conversation: its config, the opening prompt
// and every entry since.
func renderThread(t ThreadView, botName string, width int) string {
	var b strings.Builder

	cfg := make([]string, 0, 3)
	for _, name := range []string{core.FieldModel, core.FieldTemperature, core.FieldMaxTokens} {
		if v, ok := t.Config[name]; ok {
			cfg = append(cfg, name+" "+v)
		}
	}
	b.WriteString(configStyle.Render(joinDot(cfg)))
	b.WriteString("\n\n")

	if t.Starter.Text != "" {
		b.WriteString(userStyle.Render(t.Starter.Author))
		b.WriteString("\n")
		b.WriteString(wrapText(t.Starter.Text, width, "  "))
		b.WriteString("\n")
	}

	for _, e := range t.Entries {
		if e.Notice {
			b.WriteString(noticeStyle(e.Kind).Render(e.Text))
			b.WriteString("\n\n")
			continue
		}
		style := userStyle
		if e.AuthorID == BotID {
			style = botStyle
		}
		b.WriteString(style.Render(e.Author))
		b.WriteString("\n")
		b.WriteString(wrapText(e.Text, width, "  "))
		b.WriteString("\n")
	}

	switch {
	case t.Thread.Locked:
		b.WriteString(selectedStyle.Render("This thread is closed."))
		b.WriteString("\n")
	case t.Typing:
		b.WriteString(subtleStyle.Render(botName + " is typing…"))
		b.WriteString("\n")
	}
	return b.String()
}

// wrapText wraps each line of text at the given width with the given indent
// prefix. Line breaks in text are kept.
func wrapText(text string, width int, indent string) string {
	if width <= 0 {
		width = 78
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		b.WriteString(indent)
		lineLen := len([]rune(indent))
		for i, word := range words {
			n := len([]rune(word))
			if i > 0 && lineLen+1+n > width {
				b.WriteString("\n" + indent)
				lineLen = len([]rune(indent))
			} else if i > 0 {
				b.WriteString(" ")
				lineLen++
			}
			b.WriteString(word)
			lineLen += n
		}
		b.WriteString("\n")
	}
	return b.String()
}
