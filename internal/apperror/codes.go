package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Venue error codes
const (
	CodeVenueInitFailed    Code = "VENUE_INIT_FAILED"
	CodeVenueAPIError      Code = "VENUE_API_ERROR"
	CodeVenueAuthFailed    Code = "VENUE_AUTH_FAILED"
	CodeVenueRateLimited   Code = "VENUE_RATE_LIMITED"
	CodeQuoteUnavailable   Code = "QUOTE_UNAVAILABLE"
	CodeBalanceFetchFailed Code = "BALANCE_FETCH_FAILED"
	CodeTransferFailed     Code = "TRANSFER_FAILED"
	CodeTransferUnresolved Code = "TRANSFER_UNRESOLVED"
	CodeWalletNotFound     Code = "WALLET_NOT_FOUND"
	CodeRateLookupFailed   Code = "RATE_LOOKUP_FAILED"
)

// Arbitrage error codes
const (
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeRotationFailed      Code = "ROTATION_FAILED"
	CodeCycleFailed         Code = "CYCLE_FAILED"
	CodeInvalidTradeSize    Code = "INVALID_TRADE_SIZE"
	CodeJournalWriteFailed  Code = "JOURNAL_WRITE_FAILED"
)

// Circuit breaker error codes
const (
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
