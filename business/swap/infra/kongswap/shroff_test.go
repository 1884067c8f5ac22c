package kongswap

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/vaultic/shroff/business/swap/domain"
	tokensApp "github.com/vaultic/shroff/business/tokens/app"
	tokens "github.com/vaultic/shroff/business/tokens/domain"
	"github.com/vaultic/shroff/internal/agent"
	"github.com/vaultic/shroff/internal/apperror"
	"github.com/vaultic/shroff/internal/icrc"
	"github.com/vaultic/shroff/internal/logger"
)

type handler func(args any) (any, error)

// fakeAgent routes canister calls by method name and records the order in
// which methods were invoked.
type fakeAgent struct {
	handlers map[string]handler
	methods  []string
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{handlers: make(map[string]handler)}
}

func (a *fakeAgent) on(method string, h handler) *fakeAgent {
	a.handlers[method] = h
	return a
}

func (a *fakeAgent) reply(method string, value any) *fakeAgent {
	return a.on(method, func(any) (any, error) { return value, nil })
}

func (a *fakeAgent) send(_ context.Context, _ agent.Principal, method string, args, reply any) error {
	a.methods = append(a.methods, method)
	h, ok := a.handlers[method]
	if !ok {
		return fmt.Errorf("unexpected method %s", method)
	}
	out, err := h(args)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, reply)
}

func (a *fakeAgent) Query(ctx context.Context, canisterID agent.Principal, method string, args, reply any) error {
	return a.send(ctx, canisterID, method, args, reply)
}

func (a *fakeAgent) Call(ctx context.Context, canisterID agent.Principal, method string, args, reply any) error {
	return a.send(ctx, canisterID, method, args, reply)
}

func (a *fakeAgent) Identity() agent.Principal {
	return agent.AnonymousPrincipal
}

type staticRegistry struct {
	tokens map[string]tokens.Token
}

func (r *staticRegistry) Lookup(_ context.Context, ledger agent.Principal) (tokens.Token, error) {
	token, ok := r.tokens[ledger.Text()]
	if !ok {
		return tokens.Token{}, fmt.Errorf("unknown ledger %s", ledger.Text())
	}
	return token, nil
}

type unknownOracle struct{}

func (unknownOracle) USDPrice(context.Context, agent.Principal) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

var (
	testBackend = agent.MustPrincipal("2ipq2-uqaaa-aaaar-qailq-cai")
	testRates   = agent.MustPrincipal("xevnm-gaaaa-aaaar-qafnq-cai")
)

func testPair() tokens.Pair {
	source := tokens.Token{Ledger: tokens.ICP.Ledger, Symbol: "ICP", Decimals: 8, Fee: 10_000}
	target := tokens.Token{Ledger: tokens.CKBTC.Ledger, Symbol: "ckBTC", Decimals: 8, Fee: 10}
	pair, err := tokens.NewPair(source, target)
	if err != nil {
		panic(err)
	}
	return pair
}

func newTestShroff(t *testing.T, fake *fakeAgent) *Shroff {
	t.Helper()

	log := logger.NewNop()
	client, err := NewClient(fake, testBackend, log)
	require.NoError(t, err)

	pair := testPair()
	registry := &staticRegistry{tokens: map[string]tokens.Token{
		pair.Source.Ledger.Text(): pair.Source,
		pair.Target.Ledger.Text(): pair.Target,
	}}

	return &Shroff{
		client:       client,
		sourceLedger: icrc.NewLedger(fake, pair.Source.Ledger, log),
		tokenService: tokensApp.NewTokenService(registry, unknownOracle{}, log),
		pair:         pair,
		user:         agent.AnonymousPrincipal,
		rates:        testRates,
		slippage:     decimal.NewFromInt(2),
		widgetRate:   decimal.RequireFromString("0.00875"),
		logger:       log,
		tracer:       otel.Tracer(tracerName),
		state:        domain.StateIdle,
	}
}

func quoteReply() swapAmountsResult {
	return swapAmountsResult{Ok: &swapAmountsReply{
		PayAmount:     "99095262",
		ReceiveAmount: "95000000",
		Price:         "0.95",
		Slippage:      "0.5",
		Txs: []swapAmountsTx{
			{PoolSymbol: "ICP_ckUSDT", LPFee: "200000"},
			{PoolSymbol: "ckUSDT_ckBTC", LPFee: "85000"},
		},
	}}
}

func errString(s string) *string { return &s }

func TestDecodeVenueQuote(t *testing.T) {
	quote, err := decodeVenueQuote(*quoteReply().Ok)
	require.NoError(t, err)
	require.Equal(t, "95000000", quote.ReceiveAmount.String())
	require.Equal(t, "0.5", quote.Slippage.String())
	require.Equal(t, "285000", quote.LPFeeTotal.String())
	require.Equal(t, 2, quote.Hops)
}

func TestShroff_GetQuote(t *testing.T) {
	fake := newFakeAgent().reply("swap_amounts", quoteReply())
	shroff := newTestShroff(t, fake)

	tagged, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.NoError(t, err)
	require.Equal(t, domain.Generation(1), tagged.Generation)
	require.Equal(t, domain.StateQuoted, shroff.State())

	quote := tagged.Quote
	require.Equal(t, "0.9499999", quote.TargetAmountPrettified().String())
	require.Equal(t, "874738", quote.WidgetFee().Amount.String())
	require.Equal(t, "285000", quote.LiquidityProviderFee().Amount.String())

	// The venue already applied 0.5% to the raw quote; the guarantee backs
	// it out before applying the user's 2% tolerance.
	want := quote.TargetAmountPrettified().
		Div(decimal.RequireFromString("99.5")).Mul(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(98)).Div(decimal.NewFromInt(100))
	require.True(t, quote.GuaranteedAmount().Equal(want))

	venueQuote := shroff.VenueQuote()
	require.NotNil(t, venueQuote)
	require.Equal(t, 2, venueQuote.Hops)
}

func TestShroff_GetQuote_BackendRejects(t *testing.T) {
	fake := newFakeAgent().reply("swap_amounts",
		swapAmountsResult{Err: errString("Pool not found")})
	shroff := newTestShroff(t, fake)

	_, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.True(t, apperror.HasCode(err, apperror.CodeLiquidityUnavailable), "err = %v", err)
}

func TestShroff_Swap_AllowanceFunding(t *testing.T) {
	var approved struct {
		Amount    uint64  `json:"amount"`
		ExpiresAt *uint64 `json:"expires_at"`
	}
	var submitted swapCallArgs

	fake := newFakeAgent().
		reply("swap_amounts", quoteReply()).
		reply("icrc1_supported_standards", []icrc.Standard{
			{Name: "ICRC-1"}, {Name: icrc.StandardICRC2},
		}).
		on("icrc2_approve", func(args any) (any, error) {
			raw, _ := json.Marshal(args)
			require.NoError(t, json.Unmarshal(raw, &approved))
			return map[string]uint64{"Ok": 11}, nil
		}).
		on("swap", func(args any) (any, error) {
			submitted = args.(swapCallArgs)
			return swapResult{Ok: &swapReply{TxID: 1, ReceiveAmount: "95000000", Status: "Success"}}, nil
		})

	shroff := newTestShroff(t, fake)
	tagged, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.NoError(t, err)

	require.NoError(t, shroff.Swap(context.Background(), tagged.Generation))
	require.Equal(t, domain.StateCompleted, shroff.State())
	require.Equal(t, []string{"swap_amounts", "icrc1_supported_standards", "icrc2_approve", "swap"}, fake.methods)

	// Allowance covers the swap amount plus the fee the backend's pull
	// transfer will burn, and it expires.
	require.Equal(t, uint64(99_105_262), approved.Amount)
	require.NotNil(t, approved.ExpiresAt)

	require.Equal(t, "99095262", submitted.PayAmount)
	require.Equal(t, "95000000", submitted.ReceiveAmount)
	require.Equal(t, "2", submitted.MaxSlippage)
	require.Nil(t, submitted.PayTxID)
}

func TestShroff_Swap_TransferFunding(t *testing.T) {
	var transferred struct {
		Amount uint64 `json:"amount"`
	}
	var submitted swapCallArgs

	fake := newFakeAgent().
		reply("swap_amounts", quoteReply()).
		reply("icrc1_supported_standards", []icrc.Standard{{Name: "ICRC-1"}}).
		on("icrc1_transfer", func(args any) (any, error) {
			raw, _ := json.Marshal(args)
			require.NoError(t, json.Unmarshal(raw, &transferred))
			return map[string]uint64{"Ok": 42}, nil
		}).
		on("swap", func(args any) (any, error) {
			submitted = args.(swapCallArgs)
			return swapResult{Ok: &swapReply{TxID: 2, ReceiveAmount: "95000000", Status: "Success"}}, nil
		})

	shroff := newTestShroff(t, fake)
	tagged, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.NoError(t, err)

	require.NoError(t, shroff.Swap(context.Background(), tagged.Generation))
	require.Equal(t, uint64(99_095_262), transferred.Amount)
	require.NotNil(t, submitted.PayTxID)
	require.Equal(t, uint64(42), submitted.PayTxID.BlockIndex)
}

func TestShroff_Swap_RejectsConcurrentSwap(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fake := newFakeAgent().
		reply("swap_amounts", quoteReply()).
		reply("icrc1_supported_standards", []icrc.Standard{{Name: icrc.StandardICRC2}}).
		on("icrc2_approve", func(any) (any, error) {
			close(entered)
			<-release
			return map[string]uint64{"Ok": 11}, nil
		}).
		reply("swap", swapResult{Ok: &swapReply{TxID: 4, ReceiveAmount: "95000000", Status: "Success"}})

	shroff := newTestShroff(t, fake)
	tagged, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- shroff.Swap(context.Background(), tagged.Generation) }()

	// The session exposes the in-flight state while funding is pending,
	// and a second Swap bounces instead of queueing.
	<-entered
	require.Equal(t, domain.StateTransferring, shroff.State())

	err = shroff.Swap(context.Background(), tagged.Generation)
	require.True(t, apperror.HasCode(err, apperror.CodeSwapFailed), "err = %v", err)

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, domain.StateCompleted, shroff.State())
}

func TestShroff_Swap_BackendRejects(t *testing.T) {
	fake := newFakeAgent().
		reply("swap_amounts", quoteReply()).
		reply("icrc1_supported_standards", []icrc.Standard{{Name: icrc.StandardICRC2}}).
		reply("icrc2_approve", map[string]uint64{"Ok": 11}).
		reply("swap", swapResult{Err: errString("Insufficient pool balance")})

	shroff := newTestShroff(t, fake)
	tagged, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.NoError(t, err)

	err = shroff.Swap(context.Background(), tagged.Generation)
	require.True(t, apperror.HasCode(err, apperror.CodeContactSupport), "err = %v", err)
	require.Equal(t, domain.StateFailed, shroff.State())
}

func TestShroff_Swap_FundingFailure(t *testing.T) {
	fake := newFakeAgent().
		reply("swap_amounts", quoteReply()).
		reply("icrc1_supported_standards", []icrc.Standard{{Name: icrc.StandardICRC2}}).
		reply("icrc2_approve", map[string]any{
			"Err": map[string]any{"InsufficientFunds": map[string]uint64{"Balance": 5}},
		})

	shroff := newTestShroff(t, fake)
	tagged, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.NoError(t, err)

	err = shroff.Swap(context.Background(), tagged.Generation)
	require.True(t, apperror.HasCode(err, apperror.CodeDepositFailed), "err = %v", err)
	require.Equal(t, domain.StateFailed, shroff.State())
}

func TestClient_PoolExists(t *testing.T) {
	t.Run("found_in_reverse_order", func(t *testing.T) {
		fake := newFakeAgent().on("pools", func(args any) (any, error) {
			symbol := *args.(poolsArgs).Symbol
			if symbol == "ckBTC_ICP" {
				return poolsResult{Ok: &poolsReply{Pools: []poolReply{{Symbol: symbol}}}}, nil
			}
			return poolsResult{Err: errString("Pool not found")}, nil
		})
		client, err := NewClient(fake, testBackend, logger.NewNop())
		require.NoError(t, err)

		pair := testPair()
		exists, err := client.PoolExists(context.Background(), pair.Source, pair.Target)
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("missing", func(t *testing.T) {
		fake := newFakeAgent().reply("pools", poolsResult{Err: errString("Pool not found")})
		client, err := NewClient(fake, testBackend, logger.NewNop())
		require.NoError(t, err)

		pair := testPair()
		exists, err := client.PoolExists(context.Background(), pair.Source, pair.Target)
		require.NoError(t, err)
		require.False(t, exists)
	})
}

func TestShroff_PayoutWidgetFee(t *testing.T) {
	treasury := icrc.DefaultAccount(testRates)

	fake := newFakeAgent().
		reply("swap_amounts", quoteReply()).
		reply("icrc1_supported_standards", []icrc.Standard{{Name: icrc.StandardICRC2}}).
		reply("icrc2_approve", map[string]uint64{"Ok": 11}).
		reply("swap", swapResult{Ok: &swapReply{TxID: 3, ReceiveAmount: "95000000", Status: "Success"}})

	shroff := newTestShroff(t, fake)

	// Payout before completion is refused.
	_, err := shroff.PayoutWidgetFee(context.Background(), treasury)
	require.Error(t, err)

	tagged, err := shroff.GetQuote(context.Background(), decimal.NewFromInt(100_000_000))
	require.NoError(t, err)
	require.NoError(t, shroff.Swap(context.Background(), tagged.Generation))

	var paid struct {
		Amount uint64 `json:"amount"`
	}
	fake.on("icrc1_transfer", func(args any) (any, error) {
		raw, _ := json.Marshal(args)
		require.NoError(t, json.Unmarshal(raw, &paid))
		return map[string]uint64{"Ok": 99}, nil
	})

	block, err := shroff.PayoutWidgetFee(context.Background(), treasury)
	require.NoError(t, err)
	require.Equal(t, uint64(99), block)
	require.Equal(t, uint64(874_738), paid.Amount)
}
