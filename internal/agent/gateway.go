// Package agent talks to Internet Computer canisters through a JSON
// boundary gateway. Venue and ledger clients depend only on the Agent
// interface so tests can substitute canned canister replies.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/circuitbreaker"
	"github.com/vaultic/shroff/internal/httpclient"
	"github.com/vaultic/shroff/internal/logger"
	"github.com/vaultic/shroff/internal/ratelimit"
)

// GatewayConfig configures the HTTP gateway agent.
type GatewayConfig struct {
	// URL of the boundary gateway, e.g. https://icp-api.io.
	URL string
	// RequestTimeout bounds a single canister round trip.
	RequestTimeout time.Duration
	// RequestsPerSecond throttles outbound calls to the gateway.
	RequestsPerSecond float64
	// Identity is the principal requests are made as. Zero value means
	// anonymous, which suffices for queries and quote traffic.
	Identity Principal
}

// envelope is the gateway request frame for both queries and calls.
type envelope struct {
	MethodName string          `json:"method_name"`
	Sender     string          `json:"sender"`
	Arg        json.RawMessage `json:"arg,omitempty"`
}

// reply is the gateway response frame. Rejected requests carry the
// canister's reject code and message instead of a payload.
type reply struct {
	Status        string          `json:"status"`
	Reply         json.RawMessage `json:"reply,omitempty"`
	RejectCode    int             `json:"reject_code,omitempty"`
	RejectMessage string          `json:"reject_message,omitempty"`
}

const (
	statusReplied  = "replied"
	statusRejected = "rejected"
)

// HTTPGateway implements Agent over a boundary-node HTTP API.
type HTTPGateway struct {
	client   httpclient.Client
	limiter  *ratelimit.Limiter
	breaker  *circuitbreaker.CircuitBreaker[*httpclient.Response]
	identity Principal
	log      logger.LoggerInterface
	tracer   trace.Tracer
}

var _ Agent = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway-backed agent.
func NewHTTPGateway(cfg GatewayConfig, log logger.LoggerInterface) (*HTTPGateway, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("agent: gateway URL is required")
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("ic_gateway"),
		httpclient.WithBaseURL(cfg.URL),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.RequestTimeout))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("agent: build http client: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &HTTPGateway{
		client:   client,
		limiter:  ratelimit.New(rps),
		breaker:  circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("ic_gateway")),
		identity: cfg.Identity,
		log:      log,
		tracer:   otel.GetTracerProvider().Tracer("ic_gateway"),
	}, nil
}

// Identity returns the principal requests are sent as.
func (g *HTTPGateway) Identity() Principal {
	return g.identity
}

// Query performs a read-only canister call.
func (g *HTTPGateway) Query(ctx context.Context, canisterID Principal, method string, args any, out any) error {
	return g.send(ctx, "query", canisterID, method, args, out)
}

// Call performs an update call that goes through consensus.
func (g *HTTPGateway) Call(ctx context.Context, canisterID Principal, method string, args any, out any) error {
	return g.send(ctx, "call", canisterID, method, args, out)
}

func (g *HTTPGateway) send(ctx context.Context, kind string, canisterID Principal, method string, args any, out any) error {
	ctx, span := g.tracer.Start(ctx, "agent."+kind,
		trace.WithAttributes(
			attribute.String("ic.canister", canisterID.Text()),
			attribute.String("ic.method", method),
		),
	)
	defer span.End()

	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("agent: rate limit wait: %w", err)
	}

	var arg json.RawMessage
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("agent: encode args for %s.%s: %w", canisterID.Text(), method, err)
		}
		arg = encoded
	}

	body := envelope{
		MethodName: method,
		Sender:     g.identity.Text(),
		Arg:        arg,
	}

	path := fmt.Sprintf("/api/v2/canister/%s/%s", canisterID.Text(), kind)

	var frame reply
	resp, err := g.breaker.Execute(func() (*httpclient.Response, error) {
		return g.client.NewRequest().
			SetBody(body).
			SetResult(&frame).
			Post(ctx, path)
	})
	if err != nil {
		g.log.Warn(ctx, "canister request failed",
			"canister", canisterID.Text(), "method", method, "kind", kind, "error", err)
		if apperror.HasCode(err, apperror.CodeCircuitOpen) {
			return err
		}
		return apperror.New(apperror.CodeCanisterCallFailed,
			apperror.WithContext(canisterID.Text()+"."+method),
			apperror.WithCause(err))
	}
	if resp.IsError() {
		g.log.Warn(ctx, "gateway returned error status",
			"canister", canisterID.Text(), "method", method, "status", resp.StatusCode)
		return apperror.New(apperror.CodeCanisterCallFailed,
			apperror.WithContext(fmt.Sprintf("%s.%s: gateway status %d", canisterID.Text(), method, resp.StatusCode)))
	}

	switch frame.Status {
	case statusReplied:
		if out == nil || len(frame.Reply) == 0 {
			return nil
		}
		if err := json.Unmarshal(frame.Reply, out); err != nil {
			return fmt.Errorf("agent: decode reply from %s.%s: %w", canisterID.Text(), method, err)
		}
		return nil
	case statusRejected:
		g.log.Warn(ctx, "canister rejected request",
			"canister", canisterID.Text(), "method", method,
			"reject_code", frame.RejectCode, "reject_message", frame.RejectMessage)
		return apperror.New(apperror.CodeCanisterRejected,
			apperror.WithContext(fmt.Sprintf("%s.%s: reject %d: %s",
				canisterID.Text(), method, frame.RejectCode, frame.RejectMessage)))
	default:
		return apperror.New(apperror.CodeCanisterCallFailed,
			apperror.WithContext(fmt.Sprintf("%s.%s: unexpected status %q", canisterID.Text(), method, frame.Status)))
	}
}
