package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	titleMaxTokens   = 16
	titleTemperature = 0.6
	titleMaxRunes    = 40
)

// GenerateTitle asks the title model for a short thread title summarizing
// text. The result is a single line of at most 40 characters.
func (c *Completer) GenerateTitle(ctx context.Context, text string) (string, error) {
	p := c.persona.Persona()

	req := newRequest(c.titleModel, titleMaxTokens, titleTemperature)
	req.Instructions = fmt.Sprintf("Return a short Discord thread title for a conversation with %s.", p.Name)
	req.Messages = []Message{{Role: RoleUser, Content: text}}

	res := c.run(ctx, req)
	if res.Status != StatusOK {
		return "", fmt.Errorf("generating title: %s: %s", res.Status, res.Detail)
	}
	title := cleanTitle(res.Text)
	if title == "" {
		return "", errors.New("generating title: empty title")
	}
	return title, nil
}

// cleanTitle collapses the title to one line, drops wrapping quotes and caps
// its length.
func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, `"'`)
	if r := []rune(s); len(r) > titleMaxRunes {
		s = strings.TrimSpace(string(r[:titleMaxRunes]))
	}
	return s
}
