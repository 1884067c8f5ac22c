package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/internal/logger"
)

// Refresher re-quotes a session on a fixed cadence while its quote is on
// display, so the shown price tracks the pool. It must be stopped the
// moment swap execution begins; executing against a quote that keeps
// moving underneath would race the generation check.
type Refresher struct {
	shroff   Shroff
	amount   decimal.Decimal
	interval time.Duration
	log      logger.LoggerInterface

	mu     sync.Mutex
	latest *TaggedQuote
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher creates a refresher for one session and amount.
func NewRefresher(shroff Shroff, amount decimal.Decimal, interval time.Duration, log logger.LoggerInterface) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{
		shroff:   shroff,
		amount:   amount,
		interval: interval,
		log:      log,
	}
}

// Start quotes once immediately, then keeps re-quoting until Stop or
// context cancellation. Calling Start on a running refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	if err := r.refresh(ctx); err != nil {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
		return err
	}

	go r.run(ctx)
	return nil
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				// Keep the last good quote on display; the next tick
				// may succeed.
				r.log.Warn(ctx, "quote refresh failed",
					"venue", r.shroff.Venue(), "error", err)
			}
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) error {
	tagged, err := r.shroff.GetQuote(ctx, r.amount)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.latest = tagged
	r.mu.Unlock()

	r.log.Debug(ctx, "quote refreshed",
		"venue", r.shroff.Venue(),
		"generation", tagged.Generation,
		"target_amount", tagged.Quote.TargetAmountPrettified().String())
	return nil
}

// Latest returns the most recent quote, or nil before the first refresh.
func (r *Refresher) Latest() *TaggedQuote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Stop halts refreshing and waits for the loop to exit. The last quote
// stays readable through Latest.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// StopAndSwap freezes the displayed quote and executes it. This is the
// only sanctioned path from display to execution.
func (r *Refresher) StopAndSwap(ctx context.Context) error {
	r.Stop()

	tagged := r.Latest()
	if tagged == nil {
		return r.shroff.Swap(ctx, 0)
	}
	return r.shroff.Swap(ctx, tagged.Generation)
}
