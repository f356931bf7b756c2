package discord

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/nox-hq/chatrelay/core"
	"github.com/nox-hq/chatrelay/relay"
)

func TestThreadFromChannel(t *testing.T) {
	t.Parallel()

	if got := threadFromChannel(&discordgo.Channel{ID: "c1", Type: discordgo.ChannelTypeGuildText}); got != nil {
		t.Fatalf("text channel converted to %+v", got)
	}
	if got := threadFromChannel(nil); got != nil {
		t.Fatalf("nil channel converted to %+v", got)
	}

	ch := &discordgo.Channel{
		ID:             "t1",
		GuildID:        "g1",
		ParentID:       "c1",
		Name:           "💬✅ alice - hi",
		OwnerID:        "bot",
		Type:           discordgo.ChannelTypeGuildPublicThread,
		MessageCount:   7,
		ThreadMetadata: &discordgo.ThreadMetadata{Archived: true, Locked: true},
	}
	got := threadFromChannel(ch)
	if got == nil {
		t.Fatal("thread channel not converted")
	}
	want := relay.Thread{ServerID: "g1", ID: "t1", ParentID: "c1", Name: ch.Name, OwnerID: "bot",
		Archived: true, Locked: true, MessageCount: 7}
	if *got != want {
		t.Fatalf("threadFromChannel = %+v, want %+v", *got, want)
	}
}

func TestSummaryEmbedCarriesConfig(t *testing.T) {
	t.Parallel()

	cfg := core.ThreadConfig{Model: "gpt-4o", MaxTokens: 300, Temperature: 0.5}
	embed := summaryEmbed(relay.OpenThreadRequest{
		AuthorID:   "u1",
		AuthorName: "alice",
		Prompt:     "tell me a story",
		Config:     cfg,
	})

	if !strings.Contains(embed.Description, "<@u1>") {
		t.Errorf("description %q does not mention the author", embed.Description)
	}
	if embed.Color != colorGreen {
		t.Errorf("color = %#x, want %#x", embed.Color, colorGreen)
	}

	origin := &discordgo.Message{Embeds: []*discordgo.MessageEmbed{embed}}
	if got := core.ReconstructThreadConfig(embedFields(origin), core.DefaultModel); got != cfg {
		t.Errorf("reconstructed %+v, want %+v", got, cfg)
	}

	prompt, ok := starterPrompt(origin)
	if !ok {
		t.Fatal("starter prompt not found")
	}
	if prompt.Author != "alice" || prompt.Text != "tell me a story" {
		t.Errorf("starter prompt = %+v", prompt)
	}
}

func TestSummaryEmbedTruncatesPrompt(t *testing.T) {
	t.Parallel()

	embed := summaryEmbed(relay.OpenThreadRequest{
		AuthorName: "alice",
		Prompt:     strings.Repeat("x", 3000),
		Config:     core.DefaultThreadConfig(core.DefaultModel),
	})
	last := embed.Fields[len(embed.Fields)-1]
	if n := len([]rune(last.Value)); n != maxFieldValue {
		t.Fatalf("prompt field has %d runes, want %d", n, maxFieldValue)
	}
}

func TestStarterPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		origin *discordgo.Message
		want   core.Message
		ok     bool
	}{
		{name: "nil", origin: nil},
		{name: "no embeds", origin: &discordgo.Message{Content: "hi"}},
		{
			name: "only config fields falls back to first",
			origin: &discordgo.Message{Embeds: []*discordgo.MessageEmbed{{Fields: []*discordgo.MessageEmbedField{
				{Name: "model", Value: "gpt-5"},
			}}}},
			want: core.Message{Author: "model", Text: "gpt-5"},
			ok:   true,
		},
		{
			name: "config names match case-insensitively",
			origin: &discordgo.Message{Embeds: []*discordgo.MessageEmbed{{Fields: []*discordgo.MessageEmbedField{
				{Name: "Model", Value: "gpt-5"},
				{Name: "bob", Value: "hello"},
			}}}},
			want: core.Message{Author: "bob", Text: "hello"},
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := starterPrompt(tt.origin)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("starterPrompt = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHistoryMessage(t *testing.T) {
	t.Parallel()

	if _, ok := historyMessage(&discordgo.Message{Author: &discordgo.User{Username: "bot"},
		Embeds: []*discordgo.MessageEmbed{{Description: "notice"}}}, nil); ok {
		t.Error("embed-only message included")
	}

	got, ok := historyMessage(&discordgo.Message{Author: &discordgo.User{Username: "alice"}, Content: "hi"}, nil)
	if !ok || got != (core.Message{Author: "alice", Text: "hi"}) {
		t.Errorf("historyMessage = %+v, %v", got, ok)
	}

	starter := &discordgo.Message{Type: discordgo.MessageTypeThreadStarterMessage}
	origin := &discordgo.Message{Embeds: []*discordgo.MessageEmbed{{Fields: []*discordgo.MessageEmbedField{
		{Name: "alice", Value: "first question"},
	}}}}
	got, ok = historyMessage(starter, origin)
	if !ok || got.Text != "first question" {
		t.Errorf("starter message = %+v, %v", got, ok)
	}
}

func TestNoticeEmbed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind relay.NoticeKind
		want int
	}{
		{relay.NoticeInfo, colorBlue},
		{relay.NoticeWarning, colorYellow},
		{relay.NoticeError, colorRed},
	}
	for _, tt := range tests {
		e := noticeEmbed(tt.kind, "text")
		if e.Color != tt.want || e.Description != "text" {
			t.Errorf("noticeEmbed(%s) = %+v", tt.kind, e)
		}
	}
}

func TestChatInvocation(t *testing.T) {
	t.Parallel()

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: cmdChat,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: optMessage, Type: discordgo.ApplicationCommandOptionString, Value: "hello"},
				{Name: optModel, Type: discordgo.ApplicationCommandOptionString, Value: "gpt-4o"},
				{Name: optTemperature, Type: discordgo.ApplicationCommandOptionNumber, Value: 0.3},
				{Name: optMaxTokens, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(256)},
			},
		},
	}}

	inv := chatInvocation(i, discordgo.ChannelTypeGuildText)
	if inv.ServerID != "g1" || inv.ChannelID != "c1" || !inv.TextChannel {
		t.Errorf("location = %+v", inv)
	}
	if inv.UserID != "u1" || inv.UserName != "alice" || inv.Message != "hello" || inv.Model != "gpt-4o" {
		t.Errorf("invocation = %+v", inv)
	}
	if inv.Temperature == nil || *inv.Temperature != 0.3 {
		t.Errorf("temperature = %v", inv.Temperature)
	}
	if inv.MaxTokens == nil || *inv.MaxTokens != 256 {
		t.Errorf("max tokens = %v", inv.MaxTokens)
	}

	inThread := chatInvocation(i, discordgo.ChannelTypeGuildPublicThread)
	if inThread.TextChannel {
		t.Error("thread counted as text channel")
	}
}

func TestChatCommandOptions(t *testing.T) {
	t.Parallel()

	cmd := chatCommand()
	if cmd.Name != cmdChat {
		t.Fatalf("name = %q", cmd.Name)
	}
	byName := map[string]*discordgo.ApplicationCommandOption{}
	for _, o := range cmd.Options {
		byName[o.Name] = o
	}
	if o := byName[optMessage]; o == nil || !o.Required {
		t.Error("message option missing or optional")
	}
	if o := byName[optModel]; o == nil || len(o.Choices) != len(core.ModelNames()) {
		t.Error("model choices do not match the catalog")
	}
	if o := byName[optMaxTokens]; o == nil || o.MaxValue != core.MaxMaxTokens || *o.MinValue != core.MinMaxTokens {
		t.Error("max_tokens range wrong")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("ééééé", 3); got != "éé…" {
		t.Errorf("truncate runes = %q", got)
	}
}
