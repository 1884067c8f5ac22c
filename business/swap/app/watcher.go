package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/business/swap/domain"
	tokensApp "github.com/vaultic/shroff/business/tokens/app"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/logger"
)

// WatchedPair is one pair the watcher keeps quoting. Amount is in human
// source units; the watcher scales it per the resolved token.
type WatchedPair struct {
	Source agent.Principal
	Target agent.Principal
	Amount decimal.Decimal
	Label  string
}

// WatcherConfig holds configuration for the quote watcher.
type WatcherConfig struct {
	Pairs    []WatchedPair
	Interval time.Duration
}

// BestFinding is one watcher observation: the winning venue for a pair.
type BestFinding struct {
	Pair         string
	Venue        domain.Venue
	SourceAmount string
	TargetAmount string
	Rate         string
	Impact       *domain.PriceImpact
	ObservedAt   time.Time
}

// Watcher periodically quotes configured pairs across all venues and
// reports the best offer. It never executes swaps.
type Watcher struct {
	service  *SwapService
	tokens   *tokensApp.TokenService
	reporter Reporter
	config   WatcherConfig
	log      logger.LoggerInterface
}

// NewWatcher creates a quote watcher.
func NewWatcher(
	service *SwapService,
	tokens *tokensApp.TokenService,
	reporter Reporter,
	config WatcherConfig,
	log logger.LoggerInterface,
) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	return &Watcher{
		service:  service,
		tokens:   tokens,
		reporter: reporter,
		config:   config,
		log:      log,
	}
}

// Start begins the watch loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info(ctx, "starting quote watcher",
		"pairs", len(w.config.Pairs), "interval", w.config.Interval)

	if err := w.reporter.Start(ctx); err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info(ctx, "watcher stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	for _, pair := range w.config.Pairs {
		w.observe(ctx, pair)
	}
}

func (w *Watcher) observe(ctx context.Context, pair WatchedPair) {
	source, err := w.tokens.Resolve(ctx, pair.Source)
	if err != nil {
		w.log.Warn(ctx, "watcher cannot resolve source token", "pair", pair.Label, "error", err)
		return
	}
	amount := source.FromHuman(pair.Amount)

	providers, err := w.service.GetSwapProviders(ctx, pair.Source, pair.Target, agent.AnonymousPrincipal)
	if err != nil {
		w.reporter.ReportUnavailable(pair.Label, err)
		return
	}

	_, tagged, err := w.service.BestQuote(ctx, providers, amount)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeLiquidityUnavailable) {
			w.reporter.ReportUnavailable(pair.Label, err)
			return
		}
		w.log.Warn(ctx, "watcher quote round failed", "pair", pair.Label, "error", err)
		return
	}

	quote := tagged.Quote
	w.reporter.ReportBest(&BestFinding{
		Pair:         pair.Label,
		Venue:        quote.Venue(),
		SourceAmount: quote.SourceAmountPrettifiedWithSymbol(),
		TargetAmount: quote.TargetAmountPrettifiedWithSymbol(),
		Rate:         quote.QuoteRateString(),
		Impact:       quote.PriceImpact(),
		ObservedAt:   time.Now(),
	})
}

// Stop gracefully shuts down the watcher's reporter.
func (w *Watcher) Stop() error {
	return w.reporter.Stop()
}
