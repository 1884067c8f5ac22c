package metrics

type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otelCollector"
)

// Config holds metric reader configuration.
type Config struct {
	ServiceName string
	Providers   []ProviderCfg
}

// ProviderCfg describes one metric reader.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

// WithServiceName tags all exported metrics with the service name.
func WithServiceName(name string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = name
		return config
	}
}

// WithPrometheus adds a Prometheus pull reader.
func WithPrometheus() OptionFn {
	return func(config Config) Config {
		config.Providers = append(config.Providers, ProviderCfg{Provider: PrometheusProvider})
		return config
	}
}

// WithOtelCollector adds an OTLP gRPC push reader.
func WithOtelCollector(endpoint string, headers map[string]string, insecure bool) OptionFn {
	return func(config Config) Config {
		config.Providers = append(config.Providers, ProviderCfg{
			Provider: OtelCollector,
			Endpoint: endpoint,
			Headers:  headers,
			Insecure: insecure,
		})
		return config
	}
}
