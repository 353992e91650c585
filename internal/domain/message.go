package domain

// MessageSnapshot is the minimal projection of an inbound chat message the
// engine keeps around. Zero ids mean "absent".
type MessageSnapshot struct {
	ID          int64
	SenderID    int64
	ReplyToID   int64
	ChannelPost bool
}

// HasSender reports whether the message carries a user sender.
func (s MessageSnapshot) HasSender() bool {
	return s.SenderID != 0
}

// Message is a parsed inbound event routed to a chat engine.
type Message struct {
	MessageSnapshot
	ChatID  int64
	Command string
	Args    []string
	ReplyTo *MessageSnapshot
}

// Snapshot returns the immutable projection of m.
func (m Message) Snapshot() MessageSnapshot {
	return m.MessageSnapshot
}
