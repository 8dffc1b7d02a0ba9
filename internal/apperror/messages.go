package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Venue errors
	CodeVenueInitFailed:    "Failed to initialize venue client",
	CodeVenueAPIError:      "Venue API error",
	CodeVenueAuthFailed:    "Venue authentication failed",
	CodeVenueRateLimited:   "Venue rate limit exceeded",
	CodeQuoteUnavailable:   "Quote unavailable for symbol",
	CodeBalanceFetchFailed: "Failed to fetch venue balances",
	CodeTransferFailed:     "Coin transfer failed",
	CodeTransferUnresolved: "Transfer outcome unknown, needs manual reconciliation",
	CodeWalletNotFound:     "Deposit wallet not configured",
	CodeRateLookupFailed:   "Exchange rate lookup failed",

	// Arbitrage errors
	CodeInsufficientBalance: "Insufficient balance for trade",
	CodeRotationFailed:      "Balance rotation failed",
	CodeCycleFailed:         "Arbitrage cycle failed",
	CodeInvalidTradeSize:    "Invalid trade size",
	CodeJournalWriteFailed:  "Failed to record transfer in journal",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
