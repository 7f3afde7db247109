package channels

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/tinyland-inc/dealclaw/pkg/bus"
	"github.com/tinyland-inc/dealclaw/pkg/config"
)

// Manager owns the enabled channels and fans outbound messages back to the
// channel that originated the conversation.
type Manager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
	logger   *zap.Logger
}

func NewManager(cfg *config.Config, msgBus *bus.MessageBus, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		channels: make(map[string]Channel),
		bus:      msgBus,
		logger:   logger,
	}

	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.Token != "" {
		ch, err := NewTelegramChannel(cfg.Channels.Telegram, msgBus, logger)
		if err != nil {
			return nil, err
		}
		m.channels[ch.Name()] = ch
	}

	if cfg.Channels.Discord.Enabled && cfg.Channels.Discord.Token != "" {
		ch, err := NewDiscordChannel(cfg.Channels.Discord, msgBus, logger)
		if err != nil {
			return nil, err
		}
		m.channels[ch.Name()] = ch
	}

	return m, nil
}

func (m *Manager) GetChannel(name string) (Channel, bool) {
	ch, ok := m.channels[name]
	return ch, ok
}

func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) StartAll(ctx context.Context) error {
	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			m.logger.Error("starting channel", zap.String("channel", name), zap.Error(err))
			return err
		}
	}
	return nil
}

func (m *Manager) StopAll(ctx context.Context) {
	for name, ch := range m.channels {
		if err := ch.Stop(ctx); err != nil {
			m.logger.Warn("stopping channel", zap.String("channel", name), zap.Error(err))
		}
	}
}

// DispatchOutbound routes replies from the bus to their channel until the
// context is cancelled or the bus closes.
func (m *Manager) DispatchOutbound(ctx context.Context) {
	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}
		ch, found := m.channels[msg.Channel]
		if !found {
			m.logger.Warn("outbound message for unknown channel", zap.String("channel", msg.Channel))
			continue
		}
		if err := ch.Send(ctx, msg); err != nil {
			m.logger.Warn("sending reply", zap.String("channel", msg.Channel), zap.Error(err))
		}
	}
}
