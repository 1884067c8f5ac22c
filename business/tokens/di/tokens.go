// Package di contains dependency injection tokens for the tokens context.
package di

import (
	"github.com/vaultic/shroff/business/tokens/app"
	"github.com/vaultic/shroff/internal/di"
)

// Public service tokens - exposed to other modules
var (
	TokenService = di.NewToken[*app.TokenService]("tokens.TokenService")
)

// Private dependency tokens - internal to tokens module
var (
	Registry    = di.NewToken[app.Registry]("tokens:registry")
	PriceOracle = di.NewToken[app.PriceOracle]("tokens:priceOracle")
)

// Helper functions for type-safe access
func GetTokenService(c di.ServiceRegistry) *app.TokenService {
	return di.GetToken(c, TokenService)
}

func GetRegistry(c di.ServiceRegistry) app.Registry {
	return di.GetToken(c, Registry)
}

func GetPriceOracle(c di.ServiceRegistry) app.PriceOracle {
	return di.GetToken(c, PriceOracle)
}
