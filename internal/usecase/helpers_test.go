package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"glock/internal/domain"
)

type sentMessage struct {
	chatID  int64
	text    string
	replyTo int64
	id      int64
}

type restrictCall struct {
	chatID int64
	userID int64
	perms  domain.Permissions
	until  int64
}

type fakeGateway struct {
	mu        sync.Mutex
	nextID    int64
	sendErr   error
	restrErr  error
	sent      []sentMessage
	deleted   []int64
	restricts []restrictCall
	restored  []int64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 1000}
}

func (g *fakeGateway) SendMessage(_ context.Context, chatID int64, text string, replyToID int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return 0, g.sendErr
	}
	g.nextID++
	g.sent = append(g.sent, sentMessage{chatID: chatID, text: text, replyTo: replyToID, id: g.nextID})
	return g.nextID, nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, _ int64, messageID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, messageID)
	return nil
}

func (g *fakeGateway) RestrictMember(_ context.Context, chatID, userID int64, perms domain.Permissions, until time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restricts = append(g.restricts, restrictCall{chatID: chatID, userID: userID, perms: perms, until: until.Unix()})
	return g.restrErr
}

func (g *fakeGateway) RestorePermissions(_ context.Context, _ int64, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restored = append(g.restored, userID)
	return nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent) + len(g.deleted) + len(g.restricts) + len(g.restored)
}

type fakeRegistry struct {
	mu     sync.Mutex
	last   map[int64]time.Time
	err    error
	writes int
}

func newFakeRegistry(registered ...int64) *fakeRegistry {
	r := &fakeRegistry{last: make(map[int64]time.Time)}
	for _, id := range registered {
		r.last[id] = time.Unix(0, 0)
	}
	return r
}

func (r *fakeRegistry) Get(_ context.Context, userID int64) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return time.Time{}, false, r.err
	}
	t, ok := r.last[userID]
	return t, ok, nil
}

func (r *fakeRegistry) Set(_ context.Context, userID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.writes++
	r.last[userID] = at
	return nil
}

func (r *fakeRegistry) Remove(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.writes++
	delete(r.last, userID)
	return nil
}

func (r *fakeRegistry) Contains(_ context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.last[userID]
	return ok, nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type seqRand struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *seqRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

const testChat int64 = -100

var errBoom = errors.New("boom")

func defaultSettings() Settings {
	return Settings{
		RestrictionDuration: 60 * time.Second,
		TempLifetime:        3 * time.Second,
		HealingConstant:     7,
		HealingLocation:     time.UTC,
		WindowSize:          7,
		StrictTargets:       true,
	}
}

type harness struct {
	engine   *DuelEngine
	gateway  *fakeGateway
	registry *fakeRegistry
	clock    *testClock
}

func newHarness(t *testing.T, settings Settings, rnd *seqRand, registered ...int64) *harness {
	t.Helper()
	if rnd == nil {
		rnd = &seqRand{vals: []int{0}}
	}
	h := &harness{
		gateway:  newFakeGateway(),
		registry: newFakeRegistry(registered...),
		clock:    &testClock{t: time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)},
	}
	e, err := NewDuelEngine(testChat, settings, Deps{
		Gateway:  h.gateway,
		Registry: h.registry,
		Rand:     rnd,
		Now:      h.clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(e.Close)
	h.engine = e
	return h
}

// flush waits for every queued lane mutation.
func (h *harness) flush() {
	h.engine.lane.Do(func() {})
}

func (h *harness) tempIDs() []int64 {
	pending := h.engine.temp.Pending()
	out := make([]int64, 0, len(pending))
	for _, p := range pending {
		out = append(out, p.MessageID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func msg(id, sender int64) domain.Message {
	return domain.Message{
		MessageSnapshot: domain.MessageSnapshot{ID: id, SenderID: sender},
		ChatID:          testChat,
	}
}

func replyMsg(id, sender int64, target domain.MessageSnapshot) domain.Message {
	m := msg(id, sender)
	m.ReplyToID = target.ID
	m.ReplyTo = &target
	return m
}

func snap(id, sender int64) domain.MessageSnapshot {
	return domain.MessageSnapshot{ID: id, SenderID: sender}
}
