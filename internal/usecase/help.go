package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glock/internal/domain"
)

// Help replies with the game rules. The reply stays; the command goes.
func (e *DuelEngine) Help(ctx context.Context, m domain.Message) {
	if !e.mayAct(m) {
		return
	}
	e.reply(ctx, m.ID, buildHelpText(e.settings), replyPersistent)
	e.markTemp(m.ID)
}

func buildHelpText(s Settings) string {
	return strings.Join([]string{
		"Commands:",
		commandLines(s),
		"",
		"Rules:",
		ruleLines(s),
	}, "\n")
}

func commandLines(s Settings) string {
	return strings.Join([]string{
		fmt.Sprintf("/shoot - reply to a message to mute its author for %s (no reply: you shoot yourself)", humanDuration(s.RestrictionDuration)),
		fmt.Sprintf("/buckshot - fire at up to %d recent messages at once", s.WindowSize),
		"/statuette - plant a trap; the next person to speak is muted",
		"/heal <code> - reply to a muted member to lift the restriction with the secret code",
		"/leave - quit the game after 24 hours without shooting",
	}, "\n")
}

func ruleLines(s Settings) string {
	lines := []string{
		"1) Muted members cannot shoot, heal or leave.",
		"2) Posts made on behalf of a channel are never hit.",
	}
	if s.StrictTargets {
		lines = append(lines, "3) Only members who have fired at least once can be hit.")
	}
	return strings.Join(lines, "\n")
}

func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return fmt.Sprintf("%d s", int(d/time.Second))
}
