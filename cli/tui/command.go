package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nox-hq/chatrelay/core"
	"github.com/nox-hq/chatrelay/relay"
)

const chatCommand = "/chat"

// isChatCommand reports whether line starts a conversation.
func isChatCommand(line string) bool {
	return line == chatCommand || strings.HasPrefix(line, chatCommand+" ")
}

// parseChat parses "/chat [model=M] [temperature=T] [max_tokens=N] message".
// Options must come before the message.
func parseChat(line, userName string) (relay.ChatInvocation, error) {
	inv := relay.ChatInvocation{
		ServerID:    ServerID,
		ChannelID:   ChannelID,
		TextChannel: true,
		UserID:      UserID,
		UserName:    userName,
	}

	rest := strings.TrimSpace(strings.TrimPrefix(line, chatCommand))
	for rest != "" {
		word, tail, _ := strings.Cut(rest, " ")
		name, value, ok := strings.Cut(word, "=")
		if !ok || !core.IsConfigField(name) {
			break
		}
		switch name {
		case core.FieldModel:
			inv.Model = value
		case core.FieldTemperature:
			t, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return inv, fmt.Errorf("temperature %q is not a number", value)
			}
			inv.Temperature = &t
		case core.FieldMaxTokens:
			n, err := strconv.Atoi(value)
			if err != nil {
				return inv, fmt.Errorf("max_tokens %q is not an integer", value)
			}
			inv.MaxTokens = &n
		}
		rest = strings.TrimSpace(tail)
	}

	if rest == "" {
		return inv, errors.New("usage: /chat [model=M] [temperature=T] [max_tokens=N] <message>")
	}
	inv.Message = rest
	return inv, nil
}
