package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const defaultBackoff = time.Second

// updatesSource is the part of *Client the poller needs.
type updatesSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
}

// Poller long-polls getUpdates and dispatches each update on its own goroutine.
type Poller struct {
	source  updatesSource
	timeout time.Duration
	backoff time.Duration
	logger  *slog.Logger
}

func NewPoller(source updatesSource, timeout time.Duration, logger *slog.Logger) (*Poller, error) {
	if source == nil {
		return nil, errors.New("telegram: updates source must not be nil")
	}
	if timeout < 0 {
		return nil, errors.New("telegram: poll timeout must not be negative")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{source: source, timeout: timeout, backoff: defaultBackoff, logger: logger}, nil
}

// Run polls until ctx is cancelled, then waits for in-flight handlers and
// returns nil.
func (p *Poller) Run(ctx context.Context, fn func(context.Context, Update)) error {
	var (
		wg     sync.WaitGroup
		offset int64
	)
	defer wg.Wait()

	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := p.source.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.WarnContext(ctx, "get updates failed", "offset", offset, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.backoff):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			wg.Add(1)
			go func(u Update) {
				defer wg.Done()
				fn(ctx, u)
			}(u)
		}
	}
}
