package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/nox-hq/chatrelay/core"
)

const (
	cmdChat = "chat"

	optMessage     = "message"
	optModel       = "model"
	optTemperature = "temperature"
	optMaxTokens   = "max_tokens"
)

// chatCommand is the /chat definition. Range limits are enforced by Discord
// and checked again by the relay.
func chatCommand() *discordgo.ApplicationCommand {
	minTemp := 0.0
	minTokens := float64(core.MinMaxTokens)

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(core.Models()))
	for _, name := range core.ModelNames() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	return &discordgo.ApplicationCommand{
		Name:        cmdChat,
		Description: "Create a new thread for conversation",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optMessage,
				Description: "The first prompt to start the chat with",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optModel,
				Description: "The model to use for the chat",
				Choices:     choices,
			},
			{
				Type:        discordgo.ApplicationCommandOptionNumber,
				Name:        optTemperature,
				Description: "Controls randomness (0-1). Higher = more creative.",
				MinValue:    &minTemp,
				MaxValue:    1,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        optMaxTokens,
				Description: "Max tokens the model may generate per reply (1-4096).",
				MinValue:    &minTokens,
				MaxValue:    core.MaxMaxTokens,
			},
		},
	}
}
