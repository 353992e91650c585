package usecase

import (
	"context"
	"time"

	"glock/internal/domain"
	"glock/internal/metrics"
)

type replyKind int

const (
	replyTemp replyKind = iota
	replyPersistent
)

// mute is the single path through which every verb restricts a member.
func (e *DuelEngine) mute(ctx context.Context, verb string, target domain.MessageSnapshot, d time.Duration, emoji string) {
	if isChannelOrTopicPost(target) || !target.HasSender() {
		return
	}
	if e.settings.StrictTargets && !e.isRegisteredParticipant(ctx, target) {
		e.metrics.Missed()
		e.reply(ctx, target.ID, emojiMiss, replyTemp)
		return
	}
	until, err := e.restrictions.Mute(ctx, target.SenderID, d)
	if err != nil {
		e.log.WarnContext(ctx, "restrict member failed", "user_id", target.SenderID, "err", err)
	}
	e.metrics.Muted(verb)
	e.log.InfoContext(ctx, "member muted", "verb", verb, "user_id", target.SenderID, "until", until)
	e.reply(ctx, target.ID, emoji, replyTemp)
}

// isChannelOrTopicPost reports whether s was posted on behalf of a channel.
// Such posts are never muted.
func isChannelOrTopicPost(s domain.MessageSnapshot) bool {
	return s.ChannelPost
}

// isRegisteredParticipant reports whether the author of s has joined the
// game. Registry failures count as not registered.
func (e *DuelEngine) isRegisteredParticipant(ctx context.Context, s domain.MessageSnapshot) bool {
	if !s.HasSender() {
		return false
	}
	ok, err := e.registry.Contains(ctx, s.SenderID)
	if err != nil {
		e.log.WarnContext(ctx, "activity lookup failed", "user_id", s.SenderID, "err", err)
		return false
	}
	return ok
}

// reply sends text as a reply to messageID. Send failures are reported as
// no message id.
func (e *DuelEngine) reply(ctx context.Context, messageID int64, text string, kind replyKind) (int64, bool) {
	id, err := e.chat.send(ctx, text, messageID)
	if err != nil {
		e.log.DebugContext(ctx, "reply failed", "reply_to", messageID, "err", err)
		return 0, false
	}
	if kind == replyTemp {
		e.markTemp(id)
	}
	return id, true
}

// chatGateway binds a Gateway to one chat and adapts it to the chatstate
// Restrictor and Deleter interfaces.
type chatGateway struct {
	gw      Gateway
	chatID  int64
	metrics *metrics.Metrics
}

func (c chatGateway) Restrict(ctx context.Context, userID int64, until time.Time) error {
	err := c.gw.RestrictMember(ctx, c.chatID, userID, domain.Muted, until)
	if err != nil {
		c.metrics.GatewayFailed("restrictChatMember")
	}
	return err
}

func (c chatGateway) Delete(ctx context.Context, messageID int64) error {
	err := c.gw.DeleteMessage(ctx, c.chatID, messageID)
	if err != nil {
		c.metrics.GatewayFailed("deleteMessage")
	}
	return err
}

func (c chatGateway) send(ctx context.Context, text string, replyToID int64) (int64, error) {
	id, err := c.gw.SendMessage(ctx, c.chatID, text, replyToID)
	if err != nil {
		c.metrics.GatewayFailed("sendMessage")
	}
	return id, err
}

func (c chatGateway) restore(ctx context.Context, userID int64) error {
	err := c.gw.RestorePermissions(ctx, c.chatID, userID)
	if err != nil {
		c.metrics.GatewayFailed("restorePermissions")
	}
	return err
}
