package channels

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tinyland-inc/dealclaw/pkg/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
	IsAllowed(senderID string) bool
}

type BaseChannel struct {
	bus       *bus.MessageBus
	running   atomic.Bool
	name      string
	allowList []string
}

func NewBaseChannel(name string, msgBus *bus.MessageBus, allowList []string) *BaseChannel {
	return &BaseChannel{
		bus:       msgBus,
		name:      name,
		allowList: allowList,
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

// IsAllowed reports whether the sender passes the channel allowlist. An
// empty allowlist admits everyone.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}
	for _, allowed := range c.allowList {
		if senderID == allowed {
			return true
		}
	}
	return false
}

// HandleMessage applies the allowlist and publishes the message onto the
// inbound bus. Unauthorized senders are dropped silently.
func (c *BaseChannel) HandleMessage(messageID, senderID, chatID, content string) {
	if !c.IsAllowed(senderID) {
		return
	}

	if messageID == "" {
		messageID = uuid.New().String()
	}

	msg := bus.InboundMessage{
		Channel:   c.name,
		SenderID:  senderID,
		ChatID:    chatID,
		Content:   content,
		MessageID: messageID,
	}

	c.bus.PublishInbound(context.TODO(), msg)
}

func (c *BaseChannel) SetRunning(running bool) {
	c.running.Store(running)
}
