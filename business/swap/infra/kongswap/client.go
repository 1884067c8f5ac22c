package kongswap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/logger"
)

const (
	tracerName = "kongswap"
	meterName  = "kongswap"
)

// VenueQuote is the venue's own quote reply, decoded.
type VenueQuote struct {
	ReceiveAmount decimal.Decimal
	// Slippage is the percentage the venue already folded into
	// ReceiveAmount.
	Slippage decimal.Decimal
	// LPFeeTotal sums the lp_fee of every hop, in target raw units.
	LPFeeTotal decimal.Decimal
	Price      string
	Hops       int
}

// Submission describes one swap execution request.
type Submission struct {
	Source       tokens.Token
	Target       tokens.Token
	PayAmount    decimal.Decimal
	ExpectedOut  decimal.Decimal
	MaxSlippage  decimal.Decimal
	FundingBlock *uint64
}

// Client talks to the venue's backend canister.
type Client struct {
	agent   agent.Agent
	backend agent.Principal
	logger  logger.LoggerInterface
	tracer  trace.Tracer

	callsTotal metric.Int64Counter
}

// NewClient creates a venue client against the backend canister.
func NewClient(a agent.Agent, backend agent.Principal, log logger.LoggerInterface) (*Client, error) {
	c := &Client{
		agent:   a,
		backend: backend,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	meter := otel.Meter(meterName)
	var err error
	c.callsTotal, err = meter.Int64Counter("kongswap_calls_total",
		metric.WithDescription("Total KongSwap canister calls"))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Backend returns the backend canister principal.
func (c *Client) Backend() agent.Principal {
	return c.backend
}

// SwapAmounts quotes a swap, including the venue's own fee breakdown.
func (c *Client) SwapAmounts(ctx context.Context, source, target tokens.Token, payAmount decimal.Decimal) (VenueQuote, error) {
	ctx, span := c.tracer.Start(ctx, "kongswap.swap_amounts",
		trace.WithAttributes(attribute.String("pair", source.Symbol+"-"+target.Symbol)))
	defer span.End()
	c.callsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "swap_amounts")))

	args := swapAmountsArgs{
		PayToken:     tokenID(source.Ledger.Text()),
		PayAmount:    payAmount.String(),
		ReceiveToken: tokenID(target.Ledger.Text()),
	}

	var result swapAmountsResult
	if err := c.agent.Query(ctx, c.backend, "swap_amounts", args, &result); err != nil {
		return VenueQuote{}, err
	}
	if result.Err != nil {
		return VenueQuote{}, venueErr(*result.Err)
	}
	if result.Ok == nil {
		return VenueQuote{}, fmt.Errorf("kongswap: empty swap_amounts reply")
	}

	return decodeVenueQuote(*result.Ok)
}

func decodeVenueQuote(reply swapAmountsReply) (VenueQuote, error) {
	receive, err := decimal.NewFromString(reply.ReceiveAmount)
	if err != nil {
		return VenueQuote{}, fmt.Errorf("kongswap: bad receive_amount %q: %w", reply.ReceiveAmount, err)
	}
	slippage, err := decimal.NewFromString(reply.Slippage)
	if err != nil {
		return VenueQuote{}, fmt.Errorf("kongswap: bad slippage %q: %w", reply.Slippage, err)
	}

	lpFee := decimal.Zero
	for _, tx := range reply.Txs {
		fee, err := decimal.NewFromString(tx.LPFee)
		if err != nil {
			return VenueQuote{}, fmt.Errorf("kongswap: bad lp_fee %q: %w", tx.LPFee, err)
		}
		lpFee = lpFee.Add(fee)
	}

	return VenueQuote{
		ReceiveAmount: receive,
		Slippage:      slippage,
		LPFeeTotal:    lpFee,
		Price:         reply.Price,
		Hops:          len(reply.Txs),
	}, nil
}

// PoolExists probes the pools listing for the pair in both token orders.
func (c *Client) PoolExists(ctx context.Context, source, target tokens.Token) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "kongswap.pools")
	defer span.End()

	for _, symbol := range []string{
		source.Symbol + "_" + target.Symbol,
		target.Symbol + "_" + source.Symbol,
	} {
		found, err := c.poolExists(ctx, symbol)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) poolExists(ctx context.Context, symbol string) (bool, error) {
	c.callsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "pools")))

	var result poolsResult
	if err := c.agent.Query(ctx, c.backend, "pools", poolsArgs{Symbol: &symbol}, &result); err != nil {
		return false, err
	}
	if result.Err != nil {
		// The backend answers an unknown symbol with Err, not an empty
		// list.
		c.logger.Debug(ctx, "pool probe miss", "symbol", symbol, "reason", *result.Err)
		return false, nil
	}
	return result.Ok != nil && len(result.Ok.Pools) > 0, nil
}

// Swap executes a swap; the venue folds deposit and payout into this one
// call, funded by either a prior allowance or the given transfer block.
func (c *Client) Swap(ctx context.Context, sub Submission) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "kongswap.swap",
		trace.WithAttributes(attribute.String("pair", sub.Source.Symbol+"-"+sub.Target.Symbol)))
	defer span.End()
	c.callsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "swap")))

	args := swapCallArgs{
		PayToken:      tokenID(sub.Source.Ledger.Text()),
		PayAmount:     sub.PayAmount.String(),
		ReceiveToken:  tokenID(sub.Target.Ledger.Text()),
		ReceiveAmount: sub.ExpectedOut.String(),
		MaxSlippage:   sub.MaxSlippage.String(),
	}
	if sub.FundingBlock != nil {
		args.PayTxID = &payTxID{BlockIndex: *sub.FundingBlock}
	}

	var result swapResult
	if err := c.agent.Call(ctx, c.backend, "swap", args, &result); err != nil {
		return decimal.Zero, err
	}
	if result.Err != nil {
		return decimal.Zero, venueErr(*result.Err)
	}
	if result.Ok == nil {
		return decimal.Zero, fmt.Errorf("kongswap: empty swap reply")
	}

	received, err := decimal.NewFromString(result.Ok.ReceiveAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("kongswap: bad swap receive_amount %q: %w", result.Ok.ReceiveAmount, err)
	}
	return received, nil
}
