package domain

// Restriction is the bookkeeping record for an active mute.
type Restriction struct {
	UserID    int64
	ExpiresAt int64
}

// TempArtifact is a message scheduled for automatic deletion.
type TempArtifact struct {
	MessageID int64
	ExpiresAt int64
}

// Permissions is the set of member rights applied by a restrict call.
type Permissions struct {
	CanSendMessages       bool
	CanSendMedia          bool
	CanSendPolls          bool
	CanSendOtherMessages  bool
	CanAddWebPagePreviews bool
	CanChangeInfo         bool
	CanInviteUsers        bool
	CanPinMessages        bool
}

// Muted revokes every right.
var Muted = Permissions{}

// FullPermissions restores every right.
var FullPermissions = Permissions{
	CanSendMessages:       true,
	CanSendMedia:          true,
	CanSendPolls:          true,
	CanSendOtherMessages:  true,
	CanAddWebPagePreviews: true,
	CanChangeInfo:         true,
	CanInviteUsers:        true,
	CanPinMessages:        true,
}
