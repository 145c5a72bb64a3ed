package errors

// ErrorCode represents a standardized error code used throughout the console
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials ErrorCode = "AUTH_001"
	AuthMissingSession     ErrorCode = "AUTH_002"
	AuthSessionExpired     ErrorCode = "AUTH_003"
	AuthRejectedByServer   ErrorCode = "AUTH_004"
	AuthRegistrationFailed ErrorCode = "AUTH_005"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationInvalidFilter ErrorCode = "VALIDATION_002"
	ValidationMissingField  ErrorCode = "VALIDATION_003"
	ValidationInvalidAmount ErrorCode = "VALIDATION_004"
)

// Customer error codes (CUSTOMER_*)
const (
	CustomerNotFound    ErrorCode = "CUSTOMER_001"
	CustomerConflict    ErrorCode = "CUSTOMER_002"
	CustomerNoSelection ErrorCode = "CUSTOMER_003"
	CustomerInvalidID   ErrorCode = "CUSTOMER_004"
)

// Account error codes (ACCOUNT_*)
const (
	AccountNotFound          ErrorCode = "ACCOUNT_001"
	AccountInsufficientFunds ErrorCode = "ACCOUNT_002"
	AccountInvalidNumber     ErrorCode = "ACCOUNT_003"
	AccountInvalidType       ErrorCode = "ACCOUNT_004"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError     ErrorCode = "SYSTEM_001"
	SystemRemoteUnavailable ErrorCode = "SYSTEM_002"
	SystemRateLimitExceeded ErrorCode = "SYSTEM_003"
	SystemRequestRejected   ErrorCode = "SYSTEM_004"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Authentication errors
	AuthInvalidCredentials: "Invalid username or password",
	AuthMissingSession:     "No active session; sign in first",
	AuthSessionExpired:     "Session has expired; sign in again",
	AuthRejectedByServer:   "The server rejected the session token",
	AuthRegistrationFailed: "Administrator registration failed",

	// Validation errors
	ValidationGeneral:       "Validation failed",
	ValidationInvalidFilter: "At least one search filter must be provided",
	ValidationMissingField:  "Required field is missing",
	ValidationInvalidAmount: "Invalid transaction amount",

	// Customer errors
	CustomerNotFound:    "Customer not found",
	CustomerConflict:    "A customer with this email already exists",
	CustomerNoSelection: "No customer is currently selected",
	CustomerInvalidID:   "Invalid customer ID",

	// Account errors
	AccountNotFound:          "Account not found for customer",
	AccountInsufficientFunds: "Insufficient account balance for this transaction",
	AccountInvalidNumber:     "Invalid account number",
	AccountInvalidType:       "Invalid account type",

	// System errors
	SystemInternalError:     "An unexpected error occurred. Check the console log with the trace ID",
	SystemRemoteUnavailable: "Banking API is unreachable. Please try again later",
	SystemRateLimitExceeded: "Rate limit exceeded. Please try again later",
	SystemRequestRejected:   "The banking API rejected the request",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
