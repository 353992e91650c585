package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"glock/internal/chatstate"
	"glock/internal/domain"
	"glock/internal/metrics"
)

const (
	emojiShot      = "💥"
	emojiMiss      = "💨"
	emojiStatuette = "🗿"

	minBuckshotDuration = 45 * time.Second
)

var buckshotEmoji = []string{"💥", "🗯️", "⚡️"}

// Deps are the collaborators shared by every chat engine.
type Deps struct {
	Gateway  Gateway
	Registry ActivityRegistry
	Rand     chatstate.Rand
	Now      func() time.Time
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func (d Deps) validate() error {
	if d.Gateway == nil {
		return errors.New("usecase: gateway must not be nil")
	}
	if d.Registry == nil {
		return errors.New("usecase: activity registry must not be nil")
	}
	if d.Rand == nil {
		return errors.New("usecase: rand must not be nil")
	}
	return nil
}

// DuelEngine runs the game verbs for a single chat. It is safe for
// concurrent use by any number of event goroutines.
type DuelEngine struct {
	chatID   int64
	settings Settings
	chat     chatGateway
	registry ActivityRegistry
	rnd      chatstate.Rand
	now      func() time.Time
	metrics  *metrics.Metrics
	log      *slog.Logger

	lane         *chatstate.Lane
	restrictions *chatstate.Restrictions
	temp         *chatstate.TempMessages
	recent       *chatstate.Window
	statuettes   *chatstate.Statuettes
}

// NewDuelEngine builds the engine and starts its lane. Callers must Close it.
func NewDuelEngine(chatID int64, settings Settings, deps Deps) (*DuelEngine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	chat := chatGateway{gw: deps.Gateway, chatID: chatID, metrics: deps.Metrics}
	lane := chatstate.NewLane()
	return &DuelEngine{
		chatID:       chatID,
		settings:     settings,
		chat:         chat,
		registry:     deps.Registry,
		rnd:          deps.Rand,
		now:          now,
		metrics:      deps.Metrics,
		log:          logger.With("chat_id", chatID),
		lane:         lane,
		restrictions: chatstate.NewRestrictions(lane, chat, now),
		temp:         chatstate.NewTempMessages(lane, chat, now),
		recent:       chatstate.NewWindow(settings.WindowSize, deps.Rand),
		statuettes:   chatstate.NewStatuettes(),
	}, nil
}

// mayAct reports whether m has a sender who is not currently restricted.
func (e *DuelEngine) mayAct(m domain.Message) bool {
	return m.HasSender() && !e.restrictions.IsRestricted(m.SenderID)
}

// Shoot mutes the author of the replied-to message, or the shooter when the
// command is not a reply.
func (e *DuelEngine) Shoot(ctx context.Context, m domain.Message) {
	if !e.mayAct(m) {
		return
	}
	e.logActivity(ctx, m.SenderID)
	target := m.Snapshot()
	if m.ReplyTo != nil {
		target = *m.ReplyTo
	}
	e.mute(ctx, "shoot", target, e.settings.RestrictionDuration, emojiShot)
	e.markTemp(m.ID)
}

// Buckshot mutes a random subset of the recent message window.
func (e *DuelEngine) Buckshot(ctx context.Context, m domain.Message) {
	if !e.mayAct(m) {
		return
	}
	e.logActivity(ctx, m.SenderID)
	defer e.markTemp(m.ID)

	size := e.recent.Len()
	switch {
	case size == 0:
		return
	case size == 1:
		if target, ok := e.recent.Sample(); ok {
			e.mute(ctx, "buckshot", target, e.settings.RestrictionDuration, e.pick(buckshotEmoji))
		}
		return
	}

	targets := 2 + e.rnd.IntN(size-1)
	for range targets {
		target, ok := e.recent.Sample()
		if !ok {
			return
		}
		e.mute(ctx, "buckshot", target, e.buckshotDuration(), e.pick(buckshotEmoji))
	}
}

// buckshotDuration is uniform in [45s, 2*base+1s) at second granularity.
func (e *DuelEngine) buckshotDuration() time.Duration {
	lo := int(minBuckshotDuration / time.Second)
	hi := int(2*e.settings.RestrictionDuration/time.Second) + 1
	return time.Duration(lo+e.rnd.IntN(hi-lo)) * time.Second
}

// Statuette plants a persistent trap reply that mutes the next speaker.
func (e *DuelEngine) Statuette(ctx context.Context, m domain.Message) {
	if !e.mayAct(m) {
		return
	}
	e.logActivity(ctx, m.SenderID)
	if id, ok := e.reply(ctx, m.ID, emojiStatuette, replyPersistent); ok {
		e.statuettes.Offer(id)
		e.metrics.Statuette("planted")
	}
	e.markTemp(m.ID)
}

// RedeemStatuette springs the oldest planted trap on the sender of m.
func (e *DuelEngine) RedeemStatuette(ctx context.Context, m domain.Message) {
	if !e.mayAct(m) {
		return
	}
	trapID, ok := e.statuettes.Poll()
	if !ok {
		return
	}
	e.metrics.Statuette("redeemed")
	if err := e.chat.Delete(ctx, trapID); err != nil {
		e.log.DebugContext(ctx, "statuette delete failed", "message_id", trapID, "err", err)
	}
	e.mute(ctx, "statuette", m.Snapshot(), e.settings.RestrictionDuration, emojiShot)
}

// Filter deletes messages of restricted members and feeds everything else
// into the recent message window.
func (e *DuelEngine) Filter(ctx context.Context, m domain.Message) {
	if e.DropRestricted(ctx, m) {
		return
	}
	e.recent.Push(m.Snapshot())
}

// DropRestricted deletes m when its sender is muted and reports whether it did.
// It applies to commands as well as plain messages.
func (e *DuelEngine) DropRestricted(ctx context.Context, m domain.Message) bool {
	if !m.HasSender() || !e.restrictions.IsRestricted(m.SenderID) {
		return false
	}
	if err := e.chat.Delete(ctx, m.ID); err != nil {
		e.log.DebugContext(ctx, "restricted message delete failed", "message_id", m.ID, "err", err)
	}
	return true
}

// IsRestricted reports whether userID is muted in this chat.
func (e *DuelEngine) IsRestricted(userID int64) bool {
	return e.restrictions.IsRestricted(userID)
}

// ProcessRestrictions drops expired restriction records.
func (e *DuelEngine) ProcessRestrictions(ctx context.Context) {
	n := e.restrictions.Sweep(e.now())
	e.metrics.RestrictionsExpired(n)
	if n > 0 {
		e.log.DebugContext(ctx, "restrictions expired", "count", n)
	}
}

// CleanTempMessages deletes expired temporary messages.
func (e *DuelEngine) CleanTempMessages(ctx context.Context) {
	e.metrics.TempMessagesDeleted(e.temp.Sweep(ctx, e.now()))
}

// Close stops the lane, discarding queued work.
func (e *DuelEngine) Close() {
	e.lane.Close()
}

func (e *DuelEngine) logActivity(ctx context.Context, userID int64) {
	if err := e.registry.Set(ctx, userID, e.now()); err != nil {
		e.log.WarnContext(ctx, "record activity failed", "user_id", userID, "err", err)
	}
}

func (e *DuelEngine) markTemp(messageID int64) {
	e.temp.MarkTemp(messageID, e.settings.TempLifetime)
}

func (e *DuelEngine) pick(options []string) string {
	return options[e.rnd.IntN(len(options))]
}
