package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrInvalidParameter ErrCode = "INVALID_PARAMETER"
	ErrRange            ErrCode = "RANGE_ERROR"

	// ─── Session ───────────────────────────────────────────────────────
	ErrEmptySelection    ErrCode = "EMPTY_SELECTION"
	ErrAlreadyAnswered   ErrCode = "ALREADY_ANSWERED"
	ErrNoActiveSession   ErrCode = "NO_ACTIVE_SESSION"
	ErrSessionFinished   ErrCode = "SESSION_FINISHED"
	ErrSessionInProgress ErrCode = "SESSION_IN_PROGRESS"

	// ─── Bank ──────────────────────────────────────────────────────────
	ErrBankEmpty ErrCode = "BANK_EMPTY"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidParameter:
		return "Invalid path or query parameter."
	case ErrRange:
		return "A value is outside its allowed range."

	// ─── Session ───────────────────────────────────────────────────────
	case ErrEmptySelection:
		return "Select at least one option before submitting."
	case ErrAlreadyAnswered:
		return "This question has already been answered."
	case ErrNoActiveSession:
		return "There is no active practice session."
	case ErrSessionFinished:
		return "The practice session has finished."
	case ErrSessionInProgress:
		return "The practice session is still in progress."

	// ─── Bank ──────────────────────────────────────────────────────────
	case ErrBankEmpty:
		return "The question bank has no questions."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
