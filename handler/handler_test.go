package handler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"glock/internal/domain"
	"glock/internal/integrations/telegram"
)

type stubRouter struct {
	mu       sync.Mutex
	calls    []string
	last     domain.Message
	leaveErr error
	panicOn  string
	muted    map[int64]bool
	dropped  []int64
}

func (s *stubRouter) record(name string, m domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == s.panicOn {
		panic("boom")
	}
	s.calls = append(s.calls, name)
	s.last = m
}

func (s *stubRouter) Shoot(_ context.Context, m domain.Message)     { s.record("shoot", m) }
func (s *stubRouter) Buckshot(_ context.Context, m domain.Message)  { s.record("buckshot", m) }
func (s *stubRouter) Statuette(_ context.Context, m domain.Message) { s.record("statuette", m) }
func (s *stubRouter) Heal(_ context.Context, m domain.Message)      { s.record("heal", m) }
func (s *stubRouter) Help(_ context.Context, m domain.Message)      { s.record("help", m) }
func (s *stubRouter) Observe(_ context.Context, m domain.Message)   { s.record("observe", m) }

func (s *stubRouter) DropRestricted(_ context.Context, m domain.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.muted[m.SenderID] {
		return false
	}
	s.dropped = append(s.dropped, m.ID)
	return true
}

func (s *stubRouter) Leave(_ context.Context, m domain.Message) error {
	s.record("leave", m)
	return s.leaveErr
}

func parseUpdate(t *testing.T, raw string) telegram.Update {
	t.Helper()
	var u telegram.Update
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return u
}

func textUpdate(text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 10,
			From:      &telegram.User{ID: 5, FirstName: "A"},
			Chat:      telegram.Chat{ID: -100, Type: "supergroup"},
			Text:      text,
		},
	}
}

func newTestHandler(t *testing.T, r Router) *Handler {
	t.Helper()
	h, err := NewHandler(r, "@glock_bot", nil)
	require.NoError(t, err)
	return h
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil, "glock_bot", nil)
	require.Error(t, err)
}

func TestHandle_RoutesCommands(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"/shoot", "shoot"},
		{"/Shoot@glock_bot", "shoot"},
		{"/buckshot", "buckshot"},
		{"/statuette", "statuette"},
		{"/heal 9835", "heal"},
		{"/leave", "leave"},
		{"/help", "help"},
		{"/start", "help"},
		{"/shoot@other_bot", "observe"},
		{"/unknown", "observe"},
		{"hello there", "observe"},
		{"", "observe"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			r := &stubRouter{}
			newTestHandler(t, r).Handle(context.Background(), textUpdate(tc.text))
			require.Equal(t, []string{tc.want}, r.calls)
		})
	}
}

func TestHandle_ParsesArgsAndIdentity(t *testing.T) {
	r := &stubRouter{}
	newTestHandler(t, r).Handle(context.Background(), parseUpdate(t, `{
		"update_id": 3,
		"message": {
			"message_id": 12,
			"from": {"id": 5, "is_bot": false, "first_name": "A"},
			"chat": {"id": -100, "type": "supergroup"},
			"text": "/heal@GLOCK_BOT  9835 extra",
			"reply_to_message": {
				"message_id": 11,
				"from": {"id": 6, "is_bot": false, "first_name": "B"},
				"chat": {"id": -100, "type": "supergroup"}
			}
		}
	}`))

	require.Equal(t, []string{"heal"}, r.calls)
	m := r.last
	require.Equal(t, int64(-100), m.ChatID)
	require.Equal(t, int64(12), m.ID)
	require.Equal(t, int64(5), m.SenderID)
	require.Equal(t, int64(11), m.ReplyToID)
	require.Equal(t, []string{"9835", "extra"}, m.Args)
	require.NotNil(t, m.ReplyTo)
	require.Equal(t, domain.MessageSnapshot{ID: 11, SenderID: 6}, *m.ReplyTo)
}

func TestHandle_ChannelAndTopicPosts(t *testing.T) {
	cases := map[string]string{
		"automatic forward": `{"message_id": 11, "chat": {"id": -100, "type": "supergroup"}, "is_automatic_forward": true, "from": {"id": 777000, "is_bot": false, "first_name": "Telegram"}}`,
		"author signature":  `{"message_id": 11, "chat": {"id": -100, "type": "supergroup"}, "author_signature": "Editor", "from": {"id": 6, "is_bot": false, "first_name": "B"}}`,
		"forward signature": `{"message_id": 11, "chat": {"id": -100, "type": "supergroup"}, "forward_signature": "Editor", "from": {"id": 6, "is_bot": false, "first_name": "B"}}`,
		"sent as channel":   `{"message_id": 11, "chat": {"id": -100, "type": "supergroup"}, "sender_chat": {"id": -200, "type": "channel"}, "from": {"id": 136817688, "is_bot": true, "first_name": "Channel"}}`,
		"topic root":        `{"message_id": 11, "chat": {"id": -100, "type": "supergroup"}, "forum_topic_created": {}, "from": {"id": 6, "is_bot": false, "first_name": "B"}}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			r := &stubRouter{}
			newTestHandler(t, r).Handle(context.Background(), parseUpdate(t, `{
				"update_id": 4,
				"message": {
					"message_id": 12,
					"from": {"id": 5, "is_bot": false, "first_name": "A"},
					"chat": {"id": -100, "type": "supergroup"},
					"text": "/shoot",
					"reply_to_message": `+reply+`
				}
			}`))
			require.Equal(t, []string{"shoot"}, r.calls)
			require.True(t, r.last.ReplyTo.ChannelPost)
			require.False(t, r.last.ChannelPost)
			require.NotEqual(t, int64(136817688), r.last.ReplyTo.SenderID)
		})
	}
}

func TestHandle_ChannelPostUpdateIsObserved(t *testing.T) {
	r := &stubRouter{}
	newTestHandler(t, r).Handle(context.Background(), parseUpdate(t, `{
		"update_id": 5,
		"channel_post": {"message_id": 3, "chat": {"id": -200, "type": "channel"}, "text": "/shoot"}
	}`))
	require.Equal(t, []string{"shoot"}, r.calls)
	require.True(t, r.last.ChannelPost)
	require.False(t, r.last.HasSender())
}

func TestHandle_EmptyUpdateIsIgnored(t *testing.T) {
	r := &stubRouter{}
	newTestHandler(t, r).Handle(context.Background(), telegram.Update{UpdateID: 9})
	require.Empty(t, r.calls)
}

func TestHandle_SurvivesRouterErrorsAndPanics(t *testing.T) {
	r := &stubRouter{leaveErr: errors.New("registry down"), panicOn: "shoot"}
	h := newTestHandler(t, r)

	require.NotPanics(t, func() { h.Handle(context.Background(), textUpdate("/leave")) })
	require.NotPanics(t, func() { h.Handle(context.Background(), textUpdate("/shoot")) })
	require.Equal(t, []string{"leave"}, r.calls)
}

func TestParseCommand(t *testing.T) {
	h := newTestHandler(t, &stubRouter{})
	cmd, args := h.parseCommand("/@glock_bot")
	require.Empty(t, cmd)
	require.Nil(t, args)

	cmd, args = h.parseCommand("  /BUCKSHOT  ")
	require.Equal(t, "buckshot", cmd)
	require.Empty(t, args)
}

func TestHandle_AnonymousAdminHasNoSender(t *testing.T) {
	anonymous := `{"id": 1087968824, "is_bot": true, "first_name": "Group"}`
	group := `{"id": -100, "type": "supergroup"}`

	r := &stubRouter{}
	newTestHandler(t, r).Handle(context.Background(), parseUpdate(t, `{
		"update_id": 6,
		"message": {
			"message_id": 12,
			"from": {"id": 5, "is_bot": false, "first_name": "A"},
			"chat": `+group+`,
			"text": "/shoot",
			"reply_to_message": {"message_id": 11, "chat": `+group+`, "sender_chat": `+group+`, "from": `+anonymous+`}
		}
	}`))
	require.Equal(t, []string{"shoot"}, r.calls)
	require.False(t, r.last.ReplyTo.HasSender())
	require.False(t, r.last.ReplyTo.ChannelPost)

	r = &stubRouter{}
	newTestHandler(t, r).Handle(context.Background(), parseUpdate(t, `{
		"update_id": 7,
		"message": {"message_id": 13, "chat": `+group+`, "sender_chat": `+group+`, "from": `+anonymous+`, "text": "/buckshot"}
	}`))
	require.Equal(t, []string{"buckshot"}, r.calls)
	require.False(t, r.last.HasSender())
}

func TestHandle_RestrictedCommandsAreDropped(t *testing.T) {
	r := &stubRouter{muted: map[int64]bool{5: true}}
	h := newTestHandler(t, r)

	h.Handle(context.Background(), textUpdate("/help spam spam spam"))
	h.Handle(context.Background(), textUpdate("/shoot"))
	require.Empty(t, r.calls)
	require.Equal(t, []int64{10, 10}, r.dropped)

	// plain messages keep going through Observe, which filters them itself
	h.Handle(context.Background(), textUpdate("plain spam"))
	require.Equal(t, []string{"observe"}, r.calls)
	require.Len(t, r.dropped, 2)
}
