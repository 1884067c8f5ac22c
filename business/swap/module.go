// Package swap implements the swap quoting and execution bounded context.
package swap

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vaultic/shroff/business/swap/app"
	swapDI "github.com/vaultic/shroff/business/swap/di"
	"github.com/vaultic/shroff/business/swap/infra"
	"github.com/vaultic/shroff/business/swap/infra/icpswap"
	"github.com/vaultic/shroff/business/swap/infra/kongswap"
	tokensDI "github.com/vaultic/shroff/business/tokens/di"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/config"
	"github.com/vaultic/shroff/internal/di"
	"github.com/vaultic/shroff/internal/logger"
	"github.com/vaultic/shroff/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct{}

// RegisterServices registers all swap services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register ICPSwap factory - private dependency
	di.RegisterToken(c, swapDI.ICPSwapFactory, func(sr di.ServiceRegistry) *icpswap.Factory {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ag := sr.Get("agent").(agent.Agent)

		factory, err := agent.PrincipalFromText(cfg.ICPSwap.FactoryCanister)
		if err != nil {
			panic("invalid icpswap factory principal: " + err.Error())
		}
		rates, err := agent.PrincipalFromText(cfg.Tokens.RatesCanister)
		if err != nil {
			panic("invalid rates canister principal: " + err.Error())
		}

		client, err := icpswap.NewClient(ag, factory, cfg.ICPSwap.PoolFee, log)
		if err != nil {
			panic("failed to create icpswap client: " + err.Error())
		}

		return icpswap.NewFactory(client, ag, tokensDI.GetTokenService(sr),
			rates, cfg.Swap.DefaultSlippageDecimal(), log)
	})

	// Register KongSwap factory - private dependency
	di.RegisterToken(c, swapDI.KongSwapFactory, func(sr di.ServiceRegistry) *kongswap.Factory {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ag := sr.Get("agent").(agent.Agent)

		backend, err := agent.PrincipalFromText(cfg.KongSwap.BackendCanister)
		if err != nil {
			panic("invalid kongswap backend principal: " + err.Error())
		}
		rates, err := agent.PrincipalFromText(cfg.Tokens.RatesCanister)
		if err != nil {
			panic("invalid rates canister principal: " + err.Error())
		}

		client, err := kongswap.NewClient(ag, backend, log)
		if err != nil {
			panic("failed to create kongswap client: " + err.Error())
		}

		return kongswap.NewFactory(client, ag, tokensDI.GetTokenService(sr),
			rates, cfg.Swap.DefaultSlippageDecimal(), cfg.Swap.WidgetFeeRateDecimal(), log)
	})

	// Register Reporter - private dependency
	di.RegisterToken(c, swapDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		return infra.NewConsoleReporter()
	})

	// Register SwapService (public - exposed to other modules)
	di.RegisterToken(c, swapDI.SwapService, func(sr di.ServiceRegistry) *app.SwapService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewSwapService([]app.BuilderFactory{
			swapDI.GetICPSwapFactory(sr),
			swapDI.GetKongSwapFactory(sr),
		}, log)
	})

	// Register Watcher (public)
	di.RegisterToken(c, swapDI.Watcher, func(sr di.ServiceRegistry) *app.Watcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		pairs, err := watchedPairs(cfg.Swap.WatchPairs, cfg.Swap.WatchAmounts)
		if err != nil {
			panic("invalid watch configuration: " + err.Error())
		}

		return app.NewWatcher(
			swapDI.GetSwapService(sr),
			tokensDI.GetTokenService(sr),
			swapDI.GetReporter(sr),
			app.WatcherConfig{Pairs: pairs, Interval: cfg.Swap.QuoteRefreshInterval},
			log,
		)
	})

	return nil
}

// watchedPairs parses "sourceLedger:targetLedger" entries with their
// aligned human-unit amounts.
func watchedPairs(pairs, amounts []string) ([]app.WatchedPair, error) {
	if len(pairs) != len(amounts) {
		return nil, fmt.Errorf("swap: %d watch pairs but %d amounts", len(pairs), len(amounts))
	}

	watched := make([]app.WatchedPair, 0, len(pairs))
	for i, entry := range pairs {
		parts := strings.Split(entry, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("swap: watch pair %q is not source:target", entry)
		}
		source, err := agent.PrincipalFromText(parts[0])
		if err != nil {
			return nil, fmt.Errorf("swap: watch pair %q: %w", entry, err)
		}
		target, err := agent.PrincipalFromText(parts[1])
		if err != nil {
			return nil, fmt.Errorf("swap: watch pair %q: %w", entry, err)
		}
		amount, err := decimal.NewFromString(amounts[i])
		if err != nil {
			return nil, fmt.Errorf("swap: watch amount %q: %w", amounts[i], err)
		}
		watched = append(watched, app.WatchedPair{
			Source: source,
			Target: target,
			Amount: amount,
			Label:  entry,
		})
	}
	return watched, nil
}

// Startup launches the watcher loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	watcher := swapDI.GetWatcher(mono.Services())
	if len(mono.Config().Swap.WatchPairs) == 0 {
		log.Info(ctx, "swap module started, no pairs watched")
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	log.Info(ctx, "swap module started")
	return nil
}
