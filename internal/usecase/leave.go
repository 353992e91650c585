package usecase

import (
	"context"
	"time"

	"glock/internal/domain"
)

const (
	emojiPeace = "🕊️"

	// peaceCooldown is how long a participant must stay idle before leaving.
	peaceCooldown = 24 * time.Hour

	leaveRefusal = "Since you have already shot other users, you cannot quit the game until 24 hours have passed 😈"
)

// Leave removes the sender from the game once they have been idle for a day.
func (e *DuelEngine) Leave(ctx context.Context, m domain.Message) error {
	if !e.mayAct(m) {
		return nil
	}
	peaceful, err := e.isPeaceful(ctx, m.SenderID)
	if err != nil {
		return err
	}
	if !peaceful {
		e.reply(ctx, m.ID, leaveRefusal, replyTemp)
		return nil
	}
	e.reply(ctx, m.ID, emojiPeace, replyTemp)
	if err := e.registry.Remove(ctx, m.SenderID); err != nil {
		return newError(ErrorRegistry, "activity_remove_failed", err)
	}
	e.log.InfoContext(ctx, "participant left", "user_id", m.SenderID)
	return nil
}

func (e *DuelEngine) isPeaceful(ctx context.Context, userID int64) (bool, error) {
	last, ok, err := e.registry.Get(ctx, userID)
	if err != nil {
		return false, newError(ErrorRegistry, "activity_lookup_failed", err)
	}
	if !ok {
		return true, nil
	}
	return e.now().Sub(last) >= peaceCooldown, nil
}
