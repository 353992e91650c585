package domain

// Activity is the persisted last-activity record of a game participant.
type Activity struct {
	PK           string
	SK           string
	UserID       int64
	LastActivity int64
	TTL          int64
}
