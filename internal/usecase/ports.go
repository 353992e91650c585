package usecase

import (
	"context"
	"time"

	"glock/internal/domain"
)

// Gateway is the outbound chat platform capability.
// *telegram.Client satisfies this interface.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string, replyToID int64) (int64, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	RestrictMember(ctx context.Context, chatID, userID int64, perms domain.Permissions, until time.Time) error
	RestorePermissions(ctx context.Context, chatID, userID int64) error
}

// ActivityRegistry stores the last game activity of each participant.
// *repository.Client and *repository.Memory satisfy this interface.
type ActivityRegistry interface {
	Get(ctx context.Context, userID int64) (time.Time, bool, error)
	Set(ctx context.Context, userID int64, at time.Time) error
	Remove(ctx context.Context, userID int64) error
	Contains(ctx context.Context, userID int64) (bool, error)
}
