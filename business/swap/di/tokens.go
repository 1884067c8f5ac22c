// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/vaultic/shroff/business/swap/app"
	"github.com/vaultic/shroff/business/swap/infra/icpswap"
	"github.com/vaultic/shroff/business/swap/infra/kongswap"
	"github.com/vaultic/shroff/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SwapService = di.NewToken[*app.SwapService]("swap.SwapService")
	Watcher     = di.NewToken[*app.Watcher]("swap.Watcher")
)

// Private dependency tokens - internal to swap module
var (
	ICPSwapFactory  = di.NewToken[*icpswap.Factory]("swap:icpswapFactory")
	KongSwapFactory = di.NewToken[*kongswap.Factory]("swap:kongswapFactory")
	Reporter        = di.NewToken[app.Reporter]("swap:reporter")
)

// Helper functions for type-safe access
func GetSwapService(c di.ServiceRegistry) *app.SwapService {
	return di.GetToken(c, SwapService)
}

func GetWatcher(c di.ServiceRegistry) *app.Watcher {
	return di.GetToken(c, Watcher)
}

func GetICPSwapFactory(c di.ServiceRegistry) *icpswap.Factory {
	return di.GetToken(c, ICPSwapFactory)
}

func GetKongSwapFactory(c di.ServiceRegistry) *kongswap.Factory {
	return di.GetToken(c, KongSwapFactory)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
