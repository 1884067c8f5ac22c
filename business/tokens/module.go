// Package tokens implements the token metadata and pricing bounded context.
package tokens

import (
	"context"

	"github.com/vaultic/shroff/business/tokens/app"
	tokensDI "github.com/vaultic/shroff/business/tokens/di"
	"github.com/vaultic/shroff/business/tokens/infra/icrcregistry"
	"github.com/vaultic/shroff/business/tokens/infra/rates"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/config"
	"github.com/vaultic/shroff/internal/di"
	"github.com/vaultic/shroff/internal/logger"
	"github.com/vaultic/shroff/internal/monolith"
)

// Module implements the tokens bounded context.
type Module struct{}

// RegisterServices registers all token services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Registry (ledger metadata) - private dependency
	di.RegisterToken(c, tokensDI.Registry, func(sr di.ServiceRegistry) app.Registry {
		log := sr.Get("logger").(logger.LoggerInterface)
		ag := sr.Get("agent").(agent.Agent)

		registry, err := icrcregistry.NewRegistry(ag, log)
		if err != nil {
			panic("failed to create token registry: " + err.Error())
		}
		return registry
	})

	// Register PriceOracle (rates canister) - private dependency
	di.RegisterToken(c, tokensDI.PriceOracle, func(sr di.ServiceRegistry) app.PriceOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		ag := sr.Get("agent").(agent.Agent)

		canister, err := agent.PrincipalFromText(cfg.Tokens.RatesCanister)
		if err != nil {
			panic("invalid rates canister principal: " + err.Error())
		}
		return rates.NewOracle(ag, canister, log)
	})

	// Register TokenService (public - exposed to other modules)
	di.RegisterToken(c, tokensDI.TokenService, func(sr di.ServiceRegistry) *app.TokenService {
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := tokensDI.GetRegistry(sr)
		oracle := tokensDI.GetPriceOracle(sr)
		return app.NewTokenService(registry, oracle, log)
	})

	return nil
}

// Startup initializes the tokens module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "tokens module started")
	return nil
}
