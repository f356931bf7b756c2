package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nox-hq/chatrelay/core"
	"github.com/nox-hq/chatrelay/relay"
)

// pageSize is the most messages Discord returns per history request.
const pageSize = 100

// typingInterval renews the typing indicator before Discord's ten second
// expiry.
const typingInterval = 8 * time.Second

// restClient is the subset of *discordgo.Session the platform calls.
type restClient interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageThreadStartComplex(channelID, messageID string, data *discordgo.ThreadStart, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponse(interaction *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// platform implements relay.Platform over the Discord REST API.
type platform struct {
	rest   restClient
	botID  func() string
	logger *slog.Logger
}

var _ relay.Platform = (*platform)(nil)

func (p *platform) BotUserID() string { return p.botID() }

func (p *platform) Send(ctx context.Context, threadID, text string) error {
	_, err := p.rest.ChannelMessageSend(threadID, text, discordgo.WithContext(ctx))
	return err
}

func (p *platform) Notify(ctx context.Context, threadID string, kind relay.NoticeKind, text string) error {
	_, err := p.rest.ChannelMessageSendEmbed(threadID, noticeEmbed(kind, text), discordgo.WithContext(ctx))
	return err
}

// Typing sends the typing indicator now and every typingInterval until stop
// is called or ctx ends.
func (p *platform) Typing(ctx context.Context, threadID string) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			if err := p.rest.ChannelTyping(threadID, discordgo.WithContext(ctx)); err != nil && ctx.Err() == nil {
				p.logger.Debug("typing indicator", "thread", threadID, "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func (p *platform) Rename(ctx context.Context, threadID, name string) error {
	_, err := p.rest.ChannelEdit(threadID, &discordgo.ChannelEdit{Name: truncate(name, maxThreadName)},
		discordgo.WithContext(ctx))
	return err
}

func (p *platform) ArchiveAndLock(ctx context.Context, threadID string) error {
	yes := true
	_, err := p.rest.ChannelEdit(threadID, &discordgo.ChannelEdit{Archived: &yes, Locked: &yes},
		discordgo.WithContext(ctx))
	return err
}

// History pages backwards through the thread until limit messages are read
// or the thread start is reached, then returns the text messages oldest
// first.
func (p *platform) History(ctx context.Context, threadID string, limit int) ([]core.Message, error) {
	var raw []*discordgo.Message
	before := ""
	for limit <= 0 || len(raw) < limit {
		n := pageSize
		if limit > 0 {
			n = min(pageSize, limit-len(raw))
		}
		page, err := p.rest.ChannelMessages(threadID, n, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing messages of %s: %w", threadID, err)
		}
		raw = append(raw, page...)
		if len(page) < n {
			break
		}
		before = page[len(page)-1].ID
	}
	slices.Reverse(raw)

	out := make([]core.Message, 0, len(raw))
	for _, m := range raw {
		var origin *discordgo.Message
		if m.Type == discordgo.MessageTypeThreadStarterMessage {
			origin = p.starterOrigin(ctx, m)
		}
		if msg, ok := historyMessage(m, origin); ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

// starterOrigin resolves the channel message a thread starter message
// points at. Failures are logged and yield nil.
func (p *platform) starterOrigin(ctx context.Context, m *discordgo.Message) *discordgo.Message {
	if m.ReferencedMessage != nil {
		return m.ReferencedMessage
	}
	ref := m.MessageReference
	if ref == nil || ref.MessageID == "" {
		return nil
	}
	origin, err := p.rest.ChannelMessage(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		p.logger.Warn("resolving thread starter message", "channel", ref.ChannelID, "message", ref.MessageID, "error", err)
		return nil
	}
	return origin
}

// OriginFields reads the summary message the thread was started from. A
// thread started from a message shares that message's id.
func (p *platform) OriginFields(ctx context.Context, t relay.Thread) (map[string]string, error) {
	if t.ParentID == "" {
		return nil, errors.New("thread has no parent channel")
	}
	m, err := p.rest.ChannelMessage(t.ParentID, t.ID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching origin message of %s: %w", t.ID, err)
	}
	return embedFields(m), nil
}

func (p *platform) LatestMessage(ctx context.Context, threadID string) (relay.MessageRef, error) {
	msgs, err := p.rest.ChannelMessages(threadID, 1, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return relay.MessageRef{}, err
	}
	if len(msgs) == 0 {
		return relay.MessageRef{}, nil
	}
	ref := relay.MessageRef{ID: msgs[0].ID}
	if msgs[0].Author != nil {
		ref.AuthorID = msgs[0].Author.ID
	}
	return ref, nil
}

// interactionPlatform answers one /chat interaction. The summary message is
// the interaction response, so OpenThread must run before anything else
// responds to the interaction.
type interactionPlatform struct {
	*platform
	interaction *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

var _ relay.ChatPlatform = (*interactionPlatform)(nil)

func (p *interactionPlatform) OpenThread(ctx context.Context, req relay.OpenThreadRequest) (relay.Thread, error) {
	err := p.rest.InteractionRespond(p.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{summaryEmbed(req)},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return relay.Thread{}, fmt.Errorf("sending summary: %w", err)
	}
	p.markResponded()

	summary, err := p.rest.InteractionResponse(p.interaction, discordgo.WithContext(ctx))
	if err != nil {
		return relay.Thread{}, fmt.Errorf("fetching summary: %w", err)
	}

	ch, err := p.rest.MessageThreadStartComplex(req.ChannelID, summary.ID, &discordgo.ThreadStart{
		Name:                truncate(req.ThreadName, maxThreadName),
		AutoArchiveDuration: req.AutoArchiveMinutes,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return relay.Thread{}, fmt.Errorf("starting thread: %w", err)
	}

	t := threadFromChannel(ch)
	if t == nil {
		return relay.Thread{}, fmt.Errorf("channel %s is not a thread", ch.ID)
	}
	if t.ServerID == "" {
		t.ServerID = req.ServerID
	}
	if t.ParentID == "" {
		t.ParentID = req.ChannelID
	}
	if t.OwnerID == "" {
		t.OwnerID = p.BotUserID()
	}
	return *t, nil
}

// Reply answers the invoking user privately: as the interaction response
// when nothing has responded yet, as a followup otherwise.
func (p *interactionPlatform) Reply(ctx context.Context, text string) error {
	if !p.markResponded() {
		return p.rest.InteractionRespond(p.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: text,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		}, discordgo.WithContext(ctx))
	}
	_, err := p.rest.FollowupMessageCreate(p.interaction, true, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	return err
}

// markResponded records that the interaction has a response and reports
// whether it already had one.
func (p *interactionPlatform) markResponded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.responded
	p.responded = true
	return was
}
