// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/config"
	"github.com/vaultic/shroff/internal/di"
	"github.com/vaultic/shroff/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Agent() agent.Agent
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	icAgent   agent.Agent
	container di.Container
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	icAgent, err := agent.NewHTTPGateway(agent.GatewayConfig{
		URL:               cfg.Gateway.URL,
		RequestTimeout:    cfg.Gateway.RequestTimeout,
		RequestsPerSecond: cfg.Gateway.RequestsPerSecond,
		Identity:          agent.AnonymousPrincipal,
	}, log)
	if err != nil {
		return nil, err
	}

	container := di.NewContainer()

	// Register global services
	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("agent", icAgent)

	return &app{
		config:    cfg,
		logger:    log,
		icAgent:   icAgent,
		container: container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Agent() agent.Agent {
	return a.icAgent
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
