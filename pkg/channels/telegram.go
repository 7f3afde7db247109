package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"github.com/tinyland-inc/dealclaw/pkg/bus"
	"github.com/tinyland-inc/dealclaw/pkg/config"
)

// TelegramChannel receives updates via webhook when a public URL is
// configured (the bot token doubles as the path secret) and falls back to
// long polling otherwise.
type TelegramChannel struct {
	*BaseChannel
	cfg    config.TelegramConfig
	bot    *telego.Bot
	logger *zap.Logger
	cancel context.CancelFunc
}

func NewTelegramChannel(cfg config.TelegramConfig, msgBus *bus.MessageBus, logger *zap.Logger) (*TelegramChannel, error) {
	bot, err := telego.NewBot(cfg.Token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &TelegramChannel{
		BaseChannel: NewBaseChannel("telegram", msgBus, cfg.AllowFrom),
		cfg:         cfg,
		bot:         bot,
		logger:      logger.With(zap.String("channel", "telegram")),
	}, nil
}

// WebhookMode reports whether updates arrive via webhook delivery.
func (c *TelegramChannel) WebhookMode() bool {
	return c.cfg.WebhookURL != ""
}

// WebhookPath is the mux path updates are delivered to. The token in the
// path is the shared secret; Telegram is the only party that knows it.
func (c *TelegramChannel) WebhookPath() string {
	return "/webhook/" + c.cfg.Token
}

// WebhookHandler decodes webhook deliveries into updates. Mount it at
// WebhookPath on the gateway mux.
func (c *TelegramChannel) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var update telego.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		c.handleUpdate(update)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	})
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if c.WebhookMode() {
		url := strings.TrimRight(c.cfg.WebhookURL, "/") + c.WebhookPath()
		if err := c.bot.SetWebhook(ctx, &telego.SetWebhookParams{URL: url}); err != nil {
			cancel()
			return fmt.Errorf("setting telegram webhook: %w", err)
		}
		c.logger.Info("webhook registered")
		c.SetRunning(true)
		return nil
	}

	updates, err := c.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("starting telegram long polling: %w", err)
	}
	c.SetRunning(true)
	c.logger.Info("long polling started")

	go func() {
		for update := range updates {
			c.handleUpdate(update)
		}
	}()
	return nil
}

func (c *TelegramChannel) Stop(_ context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	c.SetRunning(false)
	return nil
}

func (c *TelegramChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", msg.ChatID, err)
	}
	_, err = c.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   msg.Content,
	})
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

func (c *TelegramChannel) handleUpdate(update telego.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message

	senderID := ""
	if msg.From != nil {
		senderID = strconv.FormatInt(msg.From.ID, 10)
	}
	if !c.IsAllowed(senderID) {
		c.logger.Debug("dropping message from unauthorized sender", zap.String("sender_id", senderID))
		return
	}

	c.HandleMessage(
		strconv.Itoa(msg.MessageID),
		senderID,
		strconv.FormatInt(msg.Chat.ID, 10),
		msg.Text,
	)
}
