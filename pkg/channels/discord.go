package channels

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/tinyland-inc/dealclaw/pkg/bus"
	"github.com/tinyland-inc/dealclaw/pkg/config"
)

// DiscordChannel feeds guild and DM messages into the deal pipeline.
type DiscordChannel struct {
	*BaseChannel
	session *discordgo.Session
	logger  *zap.Logger
}

func NewDiscordChannel(cfg config.DiscordConfig, msgBus *bus.MessageBus, logger *zap.Logger) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	c := &DiscordChannel{
		BaseChannel: NewBaseChannel("discord", msgBus, cfg.AllowFrom),
		session:     session,
		logger:      logger.With(zap.String("channel", "discord")),
	}
	session.AddHandler(c.onMessageCreate)
	return c, nil
}

func (c *DiscordChannel) Start(_ context.Context) error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	c.SetRunning(true)
	c.logger.Info("session opened")
	return nil
}

func (c *DiscordChannel) Stop(_ context.Context) error {
	c.SetRunning(false)
	if err := c.session.Close(); err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}
	return nil
}

func (c *DiscordChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if _, err := c.session.ChannelMessageSend(msg.ChatID, msg.Content); err != nil {
		return fmt.Errorf("sending discord message: %w", err)
	}
	return nil
}

func (c *DiscordChannel) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if m.Content == "" {
		return
	}
	if !c.IsAllowed(m.Author.ID) {
		c.logger.Debug("dropping message from unauthorized sender", zap.String("sender_id", m.Author.ID))
		return
	}

	c.HandleMessage(m.ID, m.Author.ID, m.ChannelID, m.Content)
}
