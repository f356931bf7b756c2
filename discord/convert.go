package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nox-hq/chatrelay/core"
	"github.com/nox-hq/chatrelay/relay"
)

// Embed colors.
const (
	colorGreen  = 0x2ecc71
	colorYellow = 0xfee75c
	colorRed    = 0xe74c3c
	colorBlue   = 0x3498db
)

// Discord limits.
const (
	maxFieldValue  = 1024
	maxDescription = 4096
	maxThreadName  = 100
)

// threadFromChannel converts a thread channel. Channels that are not threads
// yield nil.
func threadFromChannel(ch *discordgo.Channel) *relay.Thread {
	if ch == nil || !ch.IsThread() {
		return nil
	}
	t := &relay.Thread{
		ServerID:     ch.GuildID,
		ID:           ch.ID,
		ParentID:     ch.ParentID,
		Name:         ch.Name,
		OwnerID:      ch.OwnerID,
		MessageCount: ch.MessageCount,
	}
	if md := ch.ThreadMetadata; md != nil {
		t.Archived = md.Archived
		t.Locked = md.Locked
	}
	return t
}

// summaryEmbed is the channel message a conversation thread is started
// from. Its fields are the thread's only persisted config.
func summaryEmbed(req relay.OpenThreadRequest) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, 4)
	for _, f := range req.Config.Fields() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Name != core.FieldModel,
		})
	}
	fields = append(fields, &discordgo.MessageEmbedField{
		Name:  req.AuthorName,
		Value: truncate(req.Prompt, maxFieldValue),
	})
	return &discordgo.MessageEmbed{
		Description: fmt.Sprintf("<@%s> wants to chat! 🤖💬", req.AuthorID),
		Color:       colorGreen,
		Fields:      fields,
	}
}

// noticeEmbed renders a relay notice.
func noticeEmbed(kind relay.NoticeKind, text string) *discordgo.MessageEmbed {
	color := colorBlue
	switch kind {
	case relay.NoticeWarning:
		color = colorYellow
	case relay.NoticeError:
		color = colorRed
	}
	return &discordgo.MessageEmbed{Description: truncate(text, maxDescription), Color: color}
}

// embedFields returns the fields of the first embed on m, keyed by name.
func embedFields(m *discordgo.Message) map[string]string {
	if m == nil || len(m.Embeds) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Embeds[0].Fields))
	for _, f := range m.Embeds[0].Fields {
		if f != nil && f.Name != "" {
			out[f.Name] = f.Value
		}
	}
	return out
}

// starterPrompt extracts the opening prompt from a summary message: the
// first field that is not part of the config, else the first field.
func starterPrompt(origin *discordgo.Message) (core.Message, bool) {
	if origin == nil || len(origin.Embeds) == 0 || len(origin.Embeds[0].Fields) == 0 {
		return core.Message{}, false
	}
	fields := origin.Embeds[0].Fields
	for _, f := range fields {
		if f != nil && f.Name != "" && f.Value != "" && !core.IsConfigField(strings.ToLower(f.Name)) {
			return core.Message{Author: f.Name, Text: f.Value}, true
		}
	}
	if f := fields[0]; f != nil && f.Value != "" {
		return core.Message{Author: f.Name, Text: f.Value}, true
	}
	return core.Message{}, false
}

// historyMessage converts a thread message for the conversation. Messages
// without text, such as notices, are skipped. Thread starter messages are
// resolved by the caller through origin.
func historyMessage(m *discordgo.Message, origin *discordgo.Message) (core.Message, bool) {
	if m == nil {
		return core.Message{}, false
	}
	if m.Type == discordgo.MessageTypeThreadStarterMessage {
		return starterPrompt(origin)
	}
	if m.Content == "" || m.Author == nil {
		return core.Message{}, false
	}
	return core.Message{Author: m.Author.Username, Text: m.Content}, true
}

// chatInvocation converts a /chat interaction. channelType is the type of
// the channel the command was used in.
func chatInvocation(i *discordgo.InteractionCreate, channelType discordgo.ChannelType) relay.ChatInvocation {
	inv := relay.ChatInvocation{
		ServerID:    i.GuildID,
		ChannelID:   i.ChannelID,
		TextChannel: channelType == discordgo.ChannelTypeGuildText,
	}
	if u := interactionUser(i); u != nil {
		inv.UserID = u.ID
		inv.UserName = u.Username
	}

	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case optMessage:
			inv.Message = opt.StringValue()
		case optModel:
			inv.Model = opt.StringValue()
		case optTemperature:
			v := opt.FloatValue()
			inv.Temperature = &v
		case optMaxTokens:
			v := int(opt.IntValue())
			inv.MaxTokens = &v
		}
	}
	return inv
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
