package usecase

import (
	"context"
	"log/slog"
	"sync"

	"glock/internal/domain"
)

// Chats owns one DuelEngine per chat, created on the first event for that
// chat and kept until Close.
type Chats struct {
	settings Settings
	deps     Deps

	mu      sync.Mutex
	engines map[int64]*DuelEngine
	closed  bool
}

// NewChats validates the settings and collaborators up front so a bad
// configuration fails at startup rather than on the first event.
func NewChats(settings Settings, deps Deps) (*Chats, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Chats{
		settings: settings,
		deps:     deps,
		engines:  make(map[int64]*DuelEngine),
	}, nil
}

// Engine returns the engine of chatID, creating it if needed. After Close it
// returns a closed engine that performs no state mutation.
func (c *Chats) Engine(chatID int64) *DuelEngine {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.engines[chatID]; ok {
		return e
	}
	// settings and deps were validated by NewChats
	e, _ := NewDuelEngine(chatID, c.settings, c.deps)
	if c.closed {
		e.Close()
		return e
	}
	c.engines[chatID] = e
	c.deps.Metrics.SetChats(len(c.engines))
	return e
}

// Count returns the number of chats with an engine.
func (c *Chats) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.engines)
}

// CleanTempMessages sweeps temporary messages in every chat.
func (c *Chats) CleanTempMessages(ctx context.Context) {
	c.forEach(func(e *DuelEngine) { e.CleanTempMessages(ctx) })
}

// ProcessRestrictions sweeps expired restrictions in every chat.
func (c *Chats) ProcessRestrictions(ctx context.Context) {
	c.forEach(func(e *DuelEngine) { e.ProcessRestrictions(ctx) })
}

// LogCount reports the number of chats.
func (c *Chats) LogCount(ctx context.Context) {
	c.deps.Logger.InfoContext(ctx, "number of chats", "count", c.Count())
}

// Close closes every engine, discarding their queued work.
func (c *Chats) Close() {
	c.mu.Lock()
	c.closed = true
	engines := c.snapshot()
	c.mu.Unlock()
	for _, e := range engines {
		e.Close()
	}
}

func (c *Chats) forEach(fn func(*DuelEngine)) {
	c.mu.Lock()
	engines := c.snapshot()
	c.mu.Unlock()
	for _, e := range engines {
		fn(e)
	}
}

// snapshot must be called with mu held.
func (c *Chats) snapshot() []*DuelEngine {
	out := make([]*DuelEngine, 0, len(c.engines))
	for _, e := range c.engines {
		out = append(out, e)
	}
	return out
}

func (c *Chats) Shoot(ctx context.Context, m domain.Message) {
	c.Engine(m.ChatID).Shoot(ctx, m)
}

func (c *Chats) Buckshot(ctx context.Context, m domain.Message) {
	c.Engine(m.ChatID).Buckshot(ctx, m)
}

func (c *Chats) Statuette(ctx context.Context, m domain.Message) {
	c.Engine(m.ChatID).Statuette(ctx, m)
}

func (c *Chats) Heal(ctx context.Context, m domain.Message) {
	c.Engine(m.ChatID).Heal(ctx, m, m.Args)
}

func (c *Chats) Leave(ctx context.Context, m domain.Message) error {
	return c.Engine(m.ChatID).Leave(ctx, m)
}

func (c *Chats) Help(ctx context.Context, m domain.Message) {
	c.Engine(m.ChatID).Help(ctx, m)
}

// DropRestricted deletes m when its sender is muted in m's chat.
func (c *Chats) DropRestricted(ctx context.Context, m domain.Message) bool {
	return c.Engine(m.ChatID).DropRestricted(ctx, m)
}

// Observe handles a plain message: filtering first, then trap redemption.
func (c *Chats) Observe(ctx context.Context, m domain.Message) {
	e := c.Engine(m.ChatID)
	e.Filter(ctx, m)
	e.RedeemStatuette(ctx, m)
}
