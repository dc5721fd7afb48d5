// Package poller runs the polling control loop that feeds the pipeline.
// Each cycle enumerates the currently visible videos, registers a record
// for new ones, and processes every item in order. The loop survives
// per-item and cycle-level failures and stops only on context
// cancellation.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"drivescribe/internal/source"
	"drivescribe/internal/store"
)

// Clock abstracts time for testability.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Lister enumerates candidate videos. source.Source satisfies this.
type Lister interface {
	ListVideos(ctx context.Context) ([]source.Item, error)
}

// Processor drives one item through the pipeline.
type Processor interface {
	Process(ctx context.Context, item source.Item) error
}

// Poller repeatedly invokes the processor over all visible items on a
// fixed interval.
type Poller struct {
	lister    Lister
	store     store.Store
	processor Processor
	logger    *slog.Logger

	// interval separates successful cycles; cooldown is the shorter
	// delay after a cycle-level failure so transient outages don't
	// stall a full polling period.
	interval time.Duration
	cooldown time.Duration
	clock    Clock
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock overrides the clock. Used by tests.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

// New creates a Poller.
func New(lister Lister, st store.Store, processor Processor, interval, cooldown time.Duration, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Poller{
		lister:    lister,
		store:     st,
		processor: processor,
		logger:    logger,
		interval:  interval,
		cooldown:  cooldown,
		clock:     realClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loops until ctx is cancelled, then returns nil.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poll loop started",
		slog.Duration("interval", p.interval),
		slog.Duration("cooldown", p.cooldown),
	)

	for {
		delay := p.interval
		if err := p.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("poll loop stopped")
				return nil
			}
			p.logger.Error("poll cycle failed",
				slog.String("error", err.Error()),
			)
			delay = p.cooldown
		}

		select {
		case <-ctx.Done():
			p.logger.Info("poll loop stopped")
			return nil
		case <-p.clock.After(delay):
		}
	}
}

// runCycle enumerates the visible items and processes each in order.
// Per-item failures are logged and skipped; only enumeration failure is
// reported to the caller as a cycle-level failure.
func (p *Poller) runCycle(ctx context.Context) error {
	cycleID := uuid.NewString()

	items, err := p.lister.ListVideos(ctx)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		p.logger.Info("no videos found",
			slog.String("cycle", cycleID),
		)
		return nil
	}

	p.logger.Info("cycle started",
		slog.String("cycle", cycleID),
		slog.Int("items", len(items)),
	)

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rec := &store.Record{
			ID:       item.ID,
			Name:     item.Name,
			MimeType: item.MimeType,
			ViewLink: item.ViewLink,
		}
		if err := p.store.CreateIfAbsent(ctx, rec); err != nil {
			p.logger.Error("register item",
				slog.String("cycle", cycleID),
				slog.String("name", item.Name),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := p.processor.Process(ctx, item); err != nil {
			// Already reported by the orchestrator with stage context;
			// keep iterating so one item never blocks its siblings.
			p.logger.Warn("item processing incomplete",
				slog.String("cycle", cycleID),
				slog.String("name", item.Name),
				slog.String("error", err.Error()),
			)
		}
	}

	p.logger.Info("cycle finished",
		slog.String("cycle", cycleID),
	)
	return nil
}
