package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vaultic/shroff/business/swap/domain"
	tokensApp "github.com/vaultic/shroff/business/tokens/app"
	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/logger"
)

type recordingReporter struct {
	mu          sync.Mutex
	findings    []*BestFinding
	unavailable []string
}

func (r *recordingReporter) Start(context.Context) error { return nil }
func (r *recordingReporter) Stop() error                 { return nil }

func (r *recordingReporter) ReportBest(finding *BestFinding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = append(r.findings, finding)
}

func (r *recordingReporter) ReportUnavailable(pair string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = append(r.unavailable, pair)
}

type mapRegistry struct {
	tokens map[string]tokens.Token
}

func (r *mapRegistry) Lookup(_ context.Context, ledger agent.Principal) (tokens.Token, error) {
	token, ok := r.tokens[ledger.Text()]
	if !ok {
		return tokens.Token{}, fmt.Errorf("unknown ledger %s", ledger.Text())
	}
	return token, nil
}

type noPriceOracle struct{}

func (noPriceOracle) USDPrice(context.Context, agent.Principal) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func testTokenService(known ...tokens.Token) *tokensApp.TokenService {
	registry := &mapRegistry{tokens: make(map[string]tokens.Token)}
	for _, token := range known {
		registry.tokens[token.Ledger.Text()] = token
	}
	return tokensApp.NewTokenService(registry, noPriceOracle{}, logger.NewNop())
}

func watchedPair() WatchedPair {
	return WatchedPair{
		Source: testSource,
		Target: testTarget,
		Amount: decimal.NewFromInt(1),
		Label:  "ICP-ckBTC",
	}
}

func TestWatcher_ReportsBestVenue(t *testing.T) {
	icpswap := &fakeShroff{
		venue: domain.VenueICPSwap,
		quote: testQuote(t, domain.VenueICPSwap, 100_000_000),
	}
	kongswap := &fakeShroff{
		venue: domain.VenueKongSwap,
		quote: testQuote(t, domain.VenueKongSwap, 105_000_000),
	}
	service := NewSwapService([]BuilderFactory{
		okFactory(domain.VenueICPSwap, icpswap),
		okFactory(domain.VenueKongSwap, kongswap),
	}, logger.NewNop())

	icp := tokens.Token{Ledger: tokens.ICP.Ledger, Symbol: "ICP", Decimals: 8, Fee: 10_000}
	reporter := &recordingReporter{}
	watcher := NewWatcher(service, testTokenService(icp), reporter, WatcherConfig{}, logger.NewNop())

	watcher.observe(context.Background(), watchedPair())

	require.Len(t, reporter.findings, 1)
	finding := reporter.findings[0]
	require.Equal(t, "ICP-ckBTC", finding.Pair)
	require.Equal(t, domain.VenueKongSwap, finding.Venue)
	require.Equal(t, "1.0499999 ckBTC", finding.TargetAmount)
	require.Empty(t, reporter.unavailable)
}

func TestWatcher_ReportsUnavailablePair(t *testing.T) {
	liquidityErr := apperror.New(apperror.CodeLiquidityUnavailable)
	service := NewSwapService([]BuilderFactory{
		errFactory(domain.VenueICPSwap, liquidityErr),
		errFactory(domain.VenueKongSwap, liquidityErr),
	}, logger.NewNop())

	icp := tokens.Token{Ledger: tokens.ICP.Ledger, Symbol: "ICP", Decimals: 8, Fee: 10_000}
	reporter := &recordingReporter{}
	watcher := NewWatcher(service, testTokenService(icp), reporter, WatcherConfig{}, logger.NewNop())

	watcher.observe(context.Background(), watchedPair())

	require.Empty(t, reporter.findings)
	require.Equal(t, []string{"ICP-ckBTC"}, reporter.unavailable)
}

func TestWatcher_ReportsQuoteRoundFailure(t *testing.T) {
	icpswap := &fakeShroff{
		venue:    domain.VenueICPSwap,
		quoteErr: apperror.New(apperror.CodeServiceUnavailable),
	}
	service := NewSwapService([]BuilderFactory{
		okFactory(domain.VenueICPSwap, icpswap),
	}, logger.NewNop())

	icp := tokens.Token{Ledger: tokens.ICP.Ledger, Symbol: "ICP", Decimals: 8, Fee: 10_000}
	reporter := &recordingReporter{}
	watcher := NewWatcher(service, testTokenService(icp), reporter, WatcherConfig{}, logger.NewNop())

	watcher.observe(context.Background(), watchedPair())

	// BestQuote failures surface as liquidity, which the watcher reports.
	require.Empty(t, reporter.findings)
	require.Equal(t, []string{"ICP-ckBTC"}, reporter.unavailable)
}

func TestWatcher_SkipsUnresolvableSource(t *testing.T) {
	service := NewSwapService(nil, logger.NewNop())
	reporter := &recordingReporter{}
	watcher := NewWatcher(service, testTokenService(), reporter, WatcherConfig{}, logger.NewNop())

	watcher.observe(context.Background(), watchedPair())

	require.Empty(t, reporter.findings)
	require.Empty(t, reporter.unavailable)
}
