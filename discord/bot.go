// Package discord runs the relay as a Discord bot: it registers the /chat
// command, turns gateway events into relay calls and implements the relay
// platform over the Discord REST API.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/nox-hq/chatrelay/core"
	"github.com/nox-hq/chatrelay/relay"
)

// Intents the bot needs: guild and thread events, messages and their text.
const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// Bot is a Discord gateway connection driving a Relay.
type Bot struct {
	session  *discordgo.Session
	relay    *relay.Relay
	persona  *core.PersonaHolder
	platform *platform
	invite   string
	logger   *slog.Logger

	ctx context.Context
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithInviteURL sets the invite link logged once the bot is connected.
func WithInviteURL(url string) Option {
	return func(b *Bot) { b.invite = url }
}

// New creates a bot authenticating with token. The persona holder is told
// the bot account's name once connected.
func New(token string, r *relay.Relay, persona *core.PersonaHolder, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discord: token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: session: %w", err)
	}
	s.Identify.Intents = intents

	b := &Bot{
		session: s,
		relay:   r,
		persona: persona,
		logger:  slog.Default(),
		ctx:     context.Background(),
	}
	for _, o := range opts {
		o(b)
	}
	b.platform = &platform{rest: s, botID: b.botUserID, logger: b.logger}
	return b, nil
}

func (b *Bot) botUserID() string {
	if st := b.session.State; st != nil && st.User != nil {
		return st.User.ID
	}
	return ""
}

// Run connects to the gateway and handles events until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessage)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open: %w", err)
	}
	b.logger.Info("discord gateway connected")

	<-ctx.Done()
	if err := b.session.Close(); err != nil {
		b.logger.Warn("closing discord session", "error", err)
	}
	b.logger.Info("discord gateway closed")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	b.persona.SetBotName(r.User.Username)
	b.logger.Info("logged in", "user", r.User.Username, "id", r.User.ID, "servers", len(r.Guilds))
	if b.invite != "" {
		b.logger.Info("invite the bot", "url", b.invite)
	}

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	if _, err := s.ApplicationCommandBulkOverwrite(appID, "", []*discordgo.ApplicationCommand{chatCommand()}); err != nil {
		b.logger.Error("registering commands", "error", err)
	}
}

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand || i.ApplicationCommandData().Name != cmdChat {
		return
	}
	ctx, logger := b.eventContext("interaction")
	defer b.recover(logger)
	b.handleChat(ctx, i)
}

func (b *Bot) onMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.GuildID == "" || m.Author.ID == b.botUserID() {
		return
	}
	ctx, logger := b.eventContext("message")
	defer b.recover(logger)
	b.handleMessage(ctx, m.Message)
}

func (b *Bot) handleChat(ctx context.Context, i *discordgo.InteractionCreate) {
	logger := b.relayLogger(ctx)

	channelType := discordgo.ChannelTypeDM
	if i.GuildID != "" {
		ch, err := b.platform.rest.Channel(i.ChannelID, discordgo.WithContext(ctx))
		if err != nil {
			logger.Warn("looking up channel", "channel", i.ChannelID, "error", err)
		} else {
			channelType = ch.Type
		}
	}

	ip := &interactionPlatform{platform: b.platform, interaction: i.Interaction}
	err := b.relay.HandleChat(ctx, ip, chatInvocation(i, channelType))
	if err == nil {
		return
	}

	msg := "Error starting chat: " + err.Error()
	var usage *relay.UsageError
	if errors.As(err, &usage) {
		msg = usage.Msg
	} else {
		logger.Error("handling /chat", "error", err)
	}
	if rerr := ip.Reply(ctx, msg); rerr != nil {
		logger.Warn("replying to interaction", "error", rerr)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	logger := b.relayLogger(ctx)

	ch, err := b.platform.rest.Channel(m.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		logger.Warn("looking up channel", "channel", m.ChannelID, "error", err)
		return
	}
	t := threadFromChannel(ch)
	if t == nil {
		return
	}

	ev := relay.MessageEvent{
		ID:         m.ID,
		ServerID:   m.GuildID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
		Thread:     t,
	}
	if err := b.relay.HandleMessage(ctx, b.platform, ev); err != nil {
		logger.Error("handling message", "thread", t.ID, "error", err)
	}
}

// eventContext returns the context and logger for one gateway event, tagged
// with a fresh event id.
func (b *Bot) eventContext(kind string) (context.Context, *slog.Logger) {
	logger := b.logger.With("event", kind, "event_id", uuid.NewString())
	return relay.ContextWithLogger(b.ctx, logger), logger
}

func (b *Bot) relayLogger(ctx context.Context) *slog.Logger {
	if l, ok := relay.LoggerFromContext(ctx); ok {
		return l
	}
	return b.logger
}

func (b *Bot) recover(logger *slog.Logger) {
	if v := recover(); v != nil {
		logger.Error("event handler panic", "panic", v)
	}
}
