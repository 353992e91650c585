package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"glock/internal/domain"
)

var healEmoji = []string{"💊", "💉", "🚑"}

// Heal lifts the restriction of the replied-to member when args carry the
// current healing code.
func (e *DuelEngine) Heal(ctx context.Context, m domain.Message, args []string) {
	if !e.mayAct(m) {
		return
	}
	if m.ReplyTo == nil || !m.ReplyTo.HasSender() {
		return
	}
	code, ok := parseHealingCode(args)
	if !ok {
		return
	}
	if code != healingCode(e.now(), e.settings.HealingLocation, e.settings.HealingConstant) {
		e.metrics.Healed(false)
		e.markTemp(m.ID)
		return
	}

	target := *m.ReplyTo
	e.restrictions.Lift(target.SenderID)
	if err := e.chat.restore(ctx, target.SenderID); err != nil {
		e.log.WarnContext(ctx, "restore permissions failed", "user_id", target.SenderID, "err", err)
	}
	e.metrics.Healed(true)
	e.log.InfoContext(ctx, "member healed", "user_id", target.SenderID, "healer_id", m.SenderID)
	e.reply(ctx, target.ID, e.pick(healEmoji), replyTemp)
	e.markTemp(m.ID)
}

func parseHealingCode(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	code, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}

// healingCode is the hour followed by the zero-padded minute, read as a
// number, times constant. 14:05 with constant 7 gives 1405*7.
func healingCode(at time.Time, loc *time.Location, constant int64) int64 {
	local := at.In(loc)
	return int64(local.Hour()*100+local.Minute()) * constant
}
