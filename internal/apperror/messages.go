package apperror

// messages maps error codes to human-readable messages. The swap messages
// double as user guidance: each one states the action the user should take,
// because no step in the swap sequence is retried automatically.
var messages = map[Code]string{
	// General validation
	CodeRequiredField: "Required field is missing",
	CodeInvalidInput:  "Invalid input provided",
	CodeInvalidState:  "Invalid state for this operation",
	CodeNotFound:      "Resource not found",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Swap taxonomy
	CodeLiquidityUnavailable:  "No liquidity available for this pair",
	CodeServiceUnavailable:    "Swap service temporarily unavailable",
	CodeDepositFailed:         "Something went wrong with the swap service. Cancel your swap and try again.",
	CodeSwapFailed:            "Something went wrong with the swap service. Cancel your swap and try again.",
	CodeSlippageSwapExceeded:  "Swap exceeded slippage tolerance, please withdraw your unswapped tokens and try again.",
	CodeSlippageQuoteExceeded: "Swap exceeded slippage tolerance. Try again.",
	CodeWithdrawFailed:        "Something went wrong with the swap service. Complete your swap.",
	CodeContactSupport:        "Something went wrong with the swap service. Contact support.",

	// Orchestration
	CodeQuoteRequired:      "Request a quote first",
	CodeStaleQuote:         "Quote is no longer current, request a new quote",
	CodeTokenNotFound:      "Token is not listed in the registry",
	CodeInsufficientAmount: "Amount does not cover the transfer fees",

	// Transport
	CodeCanisterCallFailed: "Canister call failed",
	CodeCanisterRejected:   "Canister rejected the call",
	CodeLedgerTransferFail: "Ledger transfer failed",
	CodeLedgerApproveFail:  "Ledger approval failed",
	CodeCircuitOpen:        "Circuit breaker is open",
}
