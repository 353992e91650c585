package telegram

import (
	"encoding/json"

	"glock/internal/domain"
)

// Update is the subset of a Bot API update the bot consumes.
type Update struct {
	UpdateID    int64    `json:"update_id"`
	Message     *Message `json:"message,omitempty"`
	ChannelPost *Message `json:"channel_post,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type Message struct {
	MessageID          int64           `json:"message_id"`
	From               *User           `json:"from,omitempty"`
	SenderChat         *Chat           `json:"sender_chat,omitempty"`
	Chat               Chat            `json:"chat"`
	Text               string          `json:"text,omitempty"`
	Entities           []MessageEntity `json:"entities,omitempty"`
	ReplyToMessage     *Message        `json:"reply_to_message,omitempty"`
	AuthorSignature    string          `json:"author_signature,omitempty"`
	ForwardSignature   string          `json:"forward_signature,omitempty"`
	IsAutomaticForward bool            `json:"is_automatic_forward,omitempty"`
	IsTopicMessage     bool            `json:"is_topic_message,omitempty"`
	ForumTopicCreated  *struct{}       `json:"forum_topic_created,omitempty"`
}

// ChatPermissions mirrors the Bot API object of the same name.
type ChatPermissions struct {
	CanSendMessages       bool `json:"can_send_messages"`
	CanSendAudios         bool `json:"can_send_audios"`
	CanSendDocuments      bool `json:"can_send_documents"`
	CanSendPhotos         bool `json:"can_send_photos"`
	CanSendVideos         bool `json:"can_send_videos"`
	CanSendVideoNotes     bool `json:"can_send_video_notes"`
	CanSendVoiceNotes     bool `json:"can_send_voice_notes"`
	CanSendPolls          bool `json:"can_send_polls"`
	CanSendOtherMessages  bool `json:"can_send_other_messages"`
	CanAddWebPagePreviews bool `json:"can_add_web_page_previews"`
	CanChangeInfo         bool `json:"can_change_info"`
	CanInviteUsers        bool `json:"can_invite_users"`
	CanPinMessages        bool `json:"can_pin_messages"`
}

func permissionsFrom(p domain.Permissions) ChatPermissions {
	return ChatPermissions{
		CanSendMessages:       p.CanSendMessages,
		CanSendAudios:         p.CanSendMedia,
		CanSendDocuments:      p.CanSendMedia,
		CanSendPhotos:         p.CanSendMedia,
		CanSendVideos:         p.CanSendMedia,
		CanSendVideoNotes:     p.CanSendMedia,
		CanSendVoiceNotes:     p.CanSendMedia,
		CanSendPolls:          p.CanSendPolls,
		CanSendOtherMessages:  p.CanSendOtherMessages,
		CanAddWebPagePreviews: p.CanAddWebPagePreviews,
		CanChangeInfo:         p.CanChangeInfo,
		CanInviteUsers:        p.CanInviteUsers,
		CanPinMessages:        p.CanPinMessages,
	}
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type replyParameters struct {
	MessageID                int64 `json:"message_id"`
	AllowSendingWithoutReply bool  `json:"allow_sending_without_reply"`
}

type sendMessageRequest struct {
	ChatID              int64            `json:"chat_id"`
	Text                string           `json:"text"`
	DisableNotification bool             `json:"disable_notification"`
	ReplyParameters     *replyParameters `json:"reply_parameters,omitempty"`
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

type restrictChatMemberRequest struct {
	ChatID      int64           `json:"chat_id"`
	UserID      int64           `json:"user_id"`
	Permissions ChatPermissions `json:"permissions"`
	UntilDate   int64           `json:"until_date,omitempty"`
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}
