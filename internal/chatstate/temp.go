package chatstate

import (
	"context"
	"log/slog"
	"time"

	"glock/internal/domain"
)

// Deleter removes a message from the chat.
type Deleter interface {
	Delete(ctx context.Context, messageID int64) error
}

// TempMessages tracks messages scheduled for deletion. The expiry map is
// only touched on the lane.
type TempMessages struct {
	lane     *Lane
	deleter  Deleter
	now      func() time.Time
	expiries map[int64]int64
}

// NewTempMessages returns a tracker writing through lane.
func NewTempMessages(lane *Lane, deleter Deleter, now func() time.Time) *TempMessages {
	if now == nil {
		now = time.Now
	}
	return &TempMessages{
		lane:     lane,
		deleter:  deleter,
		now:      now,
		expiries: make(map[int64]int64),
	}
}

// MarkTemp schedules messageID for deletion after lifetime.
func (t *TempMessages) MarkTemp(messageID int64, lifetime time.Duration) {
	expiresAt := t.now().Add(lifetime).Unix()
	t.lane.Submit(func() {
		if cur, ok := t.expiries[messageID]; ok && cur >= expiresAt {
			return
		}
		t.expiries[messageID] = expiresAt
	})
}

// Sweep deletes every message expiring at or before now and returns how many
// were dropped from tracking. Deletion failures are ignored; the message may
// already be gone.
func (t *TempMessages) Sweep(ctx context.Context, now time.Time) int {
	var expired []int64
	t.lane.Do(func() {
		cutoff := now.Unix()
		for id, expiresAt := range t.expiries {
			if expiresAt <= cutoff {
				expired = append(expired, id)
				delete(t.expiries, id)
			}
		}
	})
	for _, id := range expired {
		if err := t.deleter.Delete(ctx, id); err != nil {
			slog.DebugContext(ctx, "temp message delete failed", "message_id", id, "err", err)
		}
	}
	return len(expired)
}

// Pending returns the tracked message ids and their expiries.
func (t *TempMessages) Pending() []domain.TempArtifact {
	var out []domain.TempArtifact
	t.lane.Do(func() {
		out = make([]domain.TempArtifact, 0, len(t.expiries))
		for id, expiresAt := range t.expiries {
			out = append(out, domain.TempArtifact{MessageID: id, ExpiresAt: expiresAt})
		}
	})
	return out
}
