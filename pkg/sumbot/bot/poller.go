package bot

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jholhewres/sumbot/pkg/sumbot/signal"
)

// Fetcher retrieves one batch of raw relay items.
type Fetcher interface {
	Fetch(ctx context.Context) ([]signal.Item, error)
}

// Poller drives the pipeline: it fetches a batch at a fixed interval and
// feeds every item through the bot in array order. There is no backoff and
// no retry; a failed fetch waits for the next tick. Processing is serialized
// within a tick — message volume is low and throughput is a non-goal.
type Poller struct {
	fetcher  Fetcher
	bot      *Bot
	interval time.Duration
	logger   *slog.Logger

	// fetchCount counts successful fetches since start.
	fetchCount atomic.Int64
}

// NewPoller creates a Poller. interval must be positive.
func NewPoller(fetcher Fetcher, b *Bot, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:  fetcher,
		bot:      b,
		interval: interval,
		logger:   logger.With("component", "poller"),
	}
}

// Run polls until the context is cancelled. The first fetch happens
// immediately, then one per tick.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("polling started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("polling stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// FetchCount returns the number of successful fetches since start.
func (p *Poller) FetchCount() int64 {
	return p.fetchCount.Load()
}

// poll runs one fetch-and-process cycle. Nothing below this point may abort
// the loop: fetch errors skip the cycle, and a failing item never prevents
// the remaining items of the batch from being processed.
func (p *Poller) poll(ctx context.Context) {
	logger := p.logger.With("cycle", uuid.NewString()[:8])

	items, err := p.fetcher.Fetch(ctx)
	if err != nil {
		logger.Warn("fetch failed, waiting for next tick", "error", err)
		return
	}
	count := p.fetchCount.Add(1)
	logger.Debug("fetch succeeded", "items", len(items), "fetches", count)

	for i, item := range items {
		if err := p.bot.HandleItem(ctx, item); err != nil {
			logger.Error("item processing failed", "index", i, "error", err)
		}
	}
}
