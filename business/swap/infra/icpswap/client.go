package icpswap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/vaultic/shroff/business/swap/domain"
	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/logger"
)

const (
	tracerName = "icpswap"
	meterName  = "icpswap"
)

// Pool describes one resolved swap pool.
type Pool struct {
	Canister agent.Principal
	Token0   agent.Principal
	Token1   agent.Principal
	Fee      uint64
}

// ZeroForOne reports whether source is the pool's token0, which fixes the
// swap direction parameter.
func (p Pool) ZeroForOne(source agent.Principal) bool {
	return p.Token0.Equals(source)
}

// UnusedBalances is a user's undeposited pool balance per token order.
type UnusedBalances struct {
	Balance0 decimal.Decimal
	Balance1 decimal.Decimal
}

// Client talks to the venue's SwapFactory and SwapPool canisters.
type Client struct {
	agent   agent.Agent
	factory agent.Principal
	poolFee uint64
	logger  logger.LoggerInterface
	tracer  trace.Tracer

	callsTotal metric.Int64Counter
}

// NewClient creates a venue client against the given factory canister.
func NewClient(a agent.Agent, factory agent.Principal, poolFee uint64, log logger.LoggerInterface) (*Client, error) {
	c := &Client{
		agent:   a,
		factory: factory,
		poolFee: poolFee,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	meter := otel.Meter(meterName)
	var err error
	c.callsTotal, err = meter.Int64Counter("icpswap_calls_total",
		metric.WithDescription("Total ICPSwap canister calls"))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetPool resolves the pool for a pair at the configured fee tier.
// Internal venue errors mean downtime; everything else means the pair has
// no pool.
func (c *Client) GetPool(ctx context.Context, source, target tokens.Token) (Pool, error) {
	ctx, span := c.tracer.Start(ctx, "icpswap.get_pool",
		trace.WithAttributes(attribute.String("pair", source.Symbol+"-"+target.Symbol)))
	defer span.End()
	c.callsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "getPool")))

	args := getPoolArgs{
		Token0: poolToken{Address: source.Ledger.Text(), Standard: tokenStandard},
		Token1: poolToken{Address: target.Ledger.Text(), Standard: tokenStandard},
		Fee:    c.poolFee,
	}

	var result poolResult
	if err := c.agent.Query(ctx, c.factory, "getPool", args, &result); err != nil {
		return Pool{}, apperror.ServiceUnavailable(string(domain.VenueICPSwap), err)
	}
	if result.Err != nil {
		venueErr := result.Err.classify()
		if venueErr.Code == domain.VenueInternal {
			return Pool{}, apperror.ServiceUnavailable(string(domain.VenueICPSwap), venueErr)
		}
		c.logger.Debug(ctx, "no pool for pair",
			"pair", source.Symbol+"-"+target.Symbol, "reason", venueErr.Error())
		return Pool{}, apperror.New(apperror.CodeLiquidityUnavailable,
			apperror.WithVenue(string(domain.VenueICPSwap)), apperror.WithCause(venueErr))
	}
	if result.Ok == nil {
		return Pool{}, apperror.ServiceUnavailable(string(domain.VenueICPSwap),
			fmt.Errorf("icpswap: empty getPool reply"))
	}

	pool, err := poolFromData(*result.Ok)
	if err != nil {
		return Pool{}, apperror.ServiceUnavailable(string(domain.VenueICPSwap), err)
	}
	return pool, nil
}

func poolFromData(data poolData) (Pool, error) {
	canister, err := agent.PrincipalFromText(data.CanisterID)
	if err != nil {
		return Pool{}, fmt.Errorf("icpswap: bad pool canister: %w", err)
	}
	token0, err := agent.PrincipalFromText(data.Token0.Address)
	if err != nil {
		return Pool{}, fmt.Errorf("icpswap: bad pool token0: %w", err)
	}
	token1, err := agent.PrincipalFromText(data.Token1.Address)
	if err != nil {
		return Pool{}, fmt.Errorf("icpswap: bad pool token1: %w", err)
	}
	return Pool{Canister: canister, Token0: token0, Token1: token1, Fee: data.Fee}, nil
}

// Quote asks the pool how much target a swap would return.
func (c *Client) Quote(ctx context.Context, pool Pool, amountIn decimal.Decimal, zeroForOne bool) (decimal.Decimal, error) {
	args := swapArgs{
		AmountIn:         amountIn.String(),
		ZeroForOne:       zeroForOne,
		AmountOutMinimum: "0",
	}
	return c.natQuery(ctx, pool.Canister, "quote", args)
}

// Deposit moves transferred funds into the pool's internal accounting.
func (c *Client) Deposit(ctx context.Context, pool Pool, token tokens.Token, amount decimal.Decimal) (decimal.Decimal, error) {
	args := depositArgs{
		Token:  token.Ledger.Text(),
		Amount: amount.String(),
		Fee:    token.Fee,
	}
	return c.natCall(ctx, pool.Canister, "deposit", args)
}

// Swap executes the swap inside the pool.
func (c *Client) Swap(ctx context.Context, pool Pool, amountIn decimal.Decimal, zeroForOne bool, minimumOut decimal.Decimal) (decimal.Decimal, error) {
	args := swapArgs{
		AmountIn:         amountIn.String(),
		ZeroForOne:       zeroForOne,
		AmountOutMinimum: minimumOut.String(),
	}
	return c.natCall(ctx, pool.Canister, "swap", args)
}

// Withdraw releases swapped funds from the pool back to the caller.
func (c *Client) Withdraw(ctx context.Context, pool Pool, token tokens.Token, amount decimal.Decimal) (decimal.Decimal, error) {
	args := depositArgs{
		Token:  token.Ledger.Text(),
		Amount: amount.String(),
		Fee:    token.Fee,
	}
	return c.natCall(ctx, pool.Canister, "withdraw", args)
}

// UnusedBalance returns the caller's undeposited balances in the pool,
// the funds to reclaim after a failed swap.
func (c *Client) UnusedBalance(ctx context.Context, pool Pool, user agent.Principal) (UnusedBalances, error) {
	c.callsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("method", "getUserUnusedBalance")))

	var result balanceResult
	if err := c.agent.Query(ctx, pool.Canister, "getUserUnusedBalance", user.Text(), &result); err != nil {
		return UnusedBalances{}, err
	}
	if result.Err != nil {
		return UnusedBalances{}, result.Err.classify()
	}
	if result.Ok == nil {
		return UnusedBalances{}, fmt.Errorf("icpswap: empty getUserUnusedBalance reply")
	}

	balance0, err := decimal.NewFromString(result.Ok.Balance0)
	if err != nil {
		return UnusedBalances{}, fmt.Errorf("icpswap: bad balance0: %w", err)
	}
	balance1, err := decimal.NewFromString(result.Ok.Balance1)
	if err != nil {
		return UnusedBalances{}, fmt.Errorf("icpswap: bad balance1: %w", err)
	}
	return UnusedBalances{Balance0: balance0, Balance1: balance1}, nil
}

func (c *Client) natQuery(ctx context.Context, canister agent.Principal, method string, args any) (decimal.Decimal, error) {
	return c.nat(ctx, canister, method, args, c.agent.Query)
}

func (c *Client) natCall(ctx context.Context, canister agent.Principal, method string, args any) (decimal.Decimal, error) {
	return c.nat(ctx, canister, method, args, c.agent.Call)
}

type sendFunc func(ctx context.Context, canisterID agent.Principal, method string, args any, reply any) error

func (c *Client) nat(ctx context.Context, canister agent.Principal, method string, args any, send sendFunc) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "icpswap."+method)
	defer span.End()
	c.callsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))

	var result natResult
	if err := send(ctx, canister, method, args, &result); err != nil {
		return decimal.Zero, err
	}
	if result.Err != nil {
		return decimal.Zero, result.Err.classify()
	}
	if result.Ok == nil {
		return decimal.Zero, fmt.Errorf("icpswap: empty %s reply", method)
	}

	amount, err := decimal.NewFromString(*result.Ok)
	if err != nil {
		return decimal.Zero, fmt.Errorf("icpswap: bad %s amount %q: %w", method, *result.Ok, err)
	}
	return amount, nil
}
