package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/jholhewres/sumbot/pkg/sumbot/config"
)

// Digest posts a summary of the group's recent tail on a cron schedule. It
// reuses the summary pipeline with an empty anchor, so the range query falls
// back to the most recent messages.
type Digest struct {
	bot    *Bot
	cfg    config.DigestConfig
	cron   *cron.Cron
	logger *slog.Logger
}

// NewDigest creates a Digest. It does nothing until Start is called.
func NewDigest(b *Bot, cfg config.DigestConfig, logger *slog.Logger) *Digest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Digest{
		bot:    b,
		cfg:    cfg,
		cron:   cron.New(),
		logger: logger.With("component", "digest"),
	}
}

// Start registers the schedule and starts the cron runner. The job is bound
// to ctx so shutdown cancels an in-flight digest.
func (d *Digest) Start(ctx context.Context) error {
	_, err := d.cron.AddFunc(d.cfg.Schedule, func() {
		if err := d.run(ctx); err != nil {
			d.logger.Error("digest failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", d.cfg.Schedule, err)
	}
	d.cron.Start()
	d.logger.Info("digest scheduled", "schedule", d.cfg.Schedule, "limit", d.cfg.Limit)
	return nil
}

// Stop stops the cron runner and waits for a running job to finish.
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
}

func (d *Digest) run(ctx context.Context) error {
	d.logger.Info("running scheduled digest")
	return d.bot.SummarizeRecent(ctx, d.cfg.Limit)
}
