package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField Code = "REQUIRED_FIELD"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeInvalidState  Code = "INVALID_STATE"
	CodeNotFound      Code = "NOT_FOUND"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap error codes. These form the taxonomy every venue adapter folds its
// raw failures into; callers match on code, never on message text.
const (
	// Venue has no route or insufficient depth for the pair/amount.
	// Non-fatal: the aggregator treats it as "venue not available".
	CodeLiquidityUnavailable Code = "LIQUIDITY_UNAVAILABLE"

	// Venue RPC unreachable or returned a malformed payload.
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"

	// Funding transfer or venue-side deposit failed. Funds may already
	// have left the user's wallet.
	CodeDepositFailed Code = "DEPOSIT_FAILED"

	// Venue-side swap execution failed for a non-slippage reason.
	CodeSwapFailed Code = "SWAP_FAILED"

	// Venue rejected the swap because the guaranteed minimum was not met.
	// Distinct from SWAP_FAILED because the recommended user action
	// differs: withdraw unswapped funds, do not retry blindly.
	CodeSlippageSwapExceeded Code = "SLIPPAGE_SWAP_EXCEEDED"

	// A re-quote drifted beyond the slippage tolerance before execution.
	CodeSlippageQuoteExceeded Code = "SLIPPAGE_QUOTE_EXCEEDED"

	// Final payout step failed; funds are stuck inside venue accounting.
	CodeWithdrawFailed Code = "WITHDRAW_FAILED"

	// Unexpected condition the adapter cannot classify, e.g. an
	// unauthenticated agent or a post-transfer confirmation failure.
	CodeContactSupport Code = "CONTACT_SUPPORT"
)

// Orchestration error codes
const (
	// Swap was invoked without a prior quote. Programmer error.
	CodeQuoteRequired Code = "QUOTE_REQUIRED"

	// Swap was invoked with a generation tag that is no longer current.
	CodeStaleQuote Code = "STALE_QUOTE"

	// Token pair could not be resolved against the token registry.
	CodeTokenNotFound Code = "TOKEN_NOT_FOUND"

	// User input does not cover the transfer fee legs.
	CodeInsufficientAmount Code = "INSUFFICIENT_AMOUNT"
)

// Transport error codes
const (
	CodeCanisterCallFailed Code = "CANISTER_CALL_FAILED"
	CodeCanisterRejected   Code = "CANISTER_REJECTED"
	CodeLedgerTransferFail Code = "LEDGER_TRANSFER_FAILED"
	CodeLedgerApproveFail  Code = "LEDGER_APPROVE_FAILED"
	CodeCircuitOpen        Code = "CIRCUIT_OPEN"
)
