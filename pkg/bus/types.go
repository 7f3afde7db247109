package bus

type InboundMessage struct {
	Channel   string `json:"channel"`
	SenderID  string `json:"sender_id"`
	ChatID    string `json:"chat_id"`
	Content   string `json:"content"`
	MessageID string `json:"message_id,omitempty"` // platform message ID
}

type OutboundMessage struct {
	Channel string `json:"channel"`
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
}
