package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"glock/internal/domain"
	"glock/internal/integrations/telegram"
)

// Router is the set of chat operations an update can be dispatched to.
// *usecase.Chats satisfies it.
type Router interface {
	Shoot(ctx context.Context, m domain.Message)
	Buckshot(ctx context.Context, m domain.Message)
	Statuette(ctx context.Context, m domain.Message)
	Heal(ctx context.Context, m domain.Message)
	Leave(ctx context.Context, m domain.Message) error
	Help(ctx context.Context, m domain.Message)
	Observe(ctx context.Context, m domain.Message)
	DropRestricted(ctx context.Context, m domain.Message) bool
}

type Handler struct {
	router      Router
	botUsername string
	log         *slog.Logger
}

func NewHandler(router Router, botUsername string, logger *slog.Logger) (*Handler, error) {
	if router == nil {
		return nil, errors.New("handler: router must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		router:      router,
		botUsername: strings.TrimPrefix(strings.TrimSpace(botUsername), "@"),
		log:         logger,
	}, nil
}

// Handle dispatches one update. It never returns an error: failures are
// logged with the update's event id.
func (h *Handler) Handle(ctx context.Context, u telegram.Update) {
	log := h.log.With("event_id", uuid.NewString(), "update_id", u.UpdateID)
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "update handler panicked", "panic", r)
		}
	}()

	raw := u.Message
	if raw == nil {
		raw = u.ChannelPost
	}
	if raw == nil {
		return
	}

	m := h.toMessage(raw)
	log = log.With("chat_id", m.ChatID, "message_id", m.ID)
	log.DebugContext(ctx, "update received", "sender_id", m.SenderID, "command", m.Command)

	if err := h.dispatch(ctx, m); err != nil {
		log.WarnContext(ctx, "update handling failed", "command", m.Command, "err", err)
	}
}

func (h *Handler) dispatch(ctx context.Context, m domain.Message) error {
	if isKnownCommand(m.Command) && h.router.DropRestricted(ctx, m) {
		return nil
	}
	switch m.Command {
	case "shoot":
		h.router.Shoot(ctx, m)
	case "buckshot":
		h.router.Buckshot(ctx, m)
	case "statuette":
		h.router.Statuette(ctx, m)
	case "heal":
		h.router.Heal(ctx, m)
	case "leave":
		return h.router.Leave(ctx, m)
	case "help", "start":
		h.router.Help(ctx, m)
	default:
		h.router.Observe(ctx, m)
	}
	return nil
}

func isKnownCommand(name string) bool {
	switch name {
	case "shoot", "buckshot", "statuette", "heal", "leave", "help", "start":
		return true
	}
	return false
}

func (h *Handler) toMessage(raw *telegram.Message) domain.Message {
	m := domain.Message{
		MessageSnapshot: snapshot(raw),
		ChatID:          raw.Chat.ID,
	}
	if raw.ReplyToMessage != nil {
		reply := snapshot(raw.ReplyToMessage)
		m.ReplyTo = &reply
	}
	m.Command, m.Args = h.parseCommand(raw.Text)
	return m
}

func snapshot(raw *telegram.Message) domain.MessageSnapshot {
	s := domain.MessageSnapshot{
		ID:          raw.MessageID,
		ChannelPost: isChannelOrTopicPost(raw),
	}
	// Messages sent as a chat carry a shared placeholder user in From.
	if raw.From != nil && raw.SenderChat == nil {
		s.SenderID = raw.From.ID
	}
	if raw.ReplyToMessage != nil {
		s.ReplyToID = raw.ReplyToMessage.MessageID
	}
	return s
}

// isChannelOrTopicPost reports whether raw was authored by a channel or is the
// root of a forum topic. Such messages are never mute targets.
func isChannelOrTopicPost(raw *telegram.Message) bool {
	return raw.Chat.Type == "channel" ||
		(raw.SenderChat != nil && raw.SenderChat.Type == "channel") ||
		raw.AuthorSignature != "" ||
		raw.ForwardSignature != "" ||
		raw.IsAutomaticForward ||
		raw.ForumTopicCreated != nil
}

// parseCommand splits "/cmd@bot arg1 arg2" into a lower-case command and its
// arguments. Commands addressed to another bot, and plain text, yield "".
func (h *Handler) parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	name, target, addressed := strings.Cut(fields[0][1:], "@")
	if addressed && !strings.EqualFold(target, h.botUsername) {
		return "", nil
	}
	if name == "" {
		return "", nil
	}
	return strings.ToLower(name), fields[1:]
}
