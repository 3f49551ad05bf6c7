package core

// Error codes for domain errors.
const (
	ErrCodeEmptyName         = "empty_name"
	ErrCodeNameTaken         = "name_taken"
	ErrCodeNotLoggedIn       = "not_logged_in"
	ErrCodeInvalidSignal     = "invalid_signal"
	ErrCodeSignalingDisabled = "signaling_disabled"
)

var (
	// ErrEmptyName rejects a login whose nick is empty after trimming.
	ErrEmptyName = coreError(ErrCodeEmptyName, "Nick can't be empty.")
	// ErrNameTaken rejects a login whose nick is already in the room.
	ErrNameTaken = coreError(ErrCodeNameTaken, "This nick is already in chat.")
	// ErrNotLoggedIn is returned for room events sent by an anonymous session.
	ErrNotLoggedIn = coreError(ErrCodeNotLoggedIn, "You need to be logged in to send message.")
	// ErrInvalidSignal marks a relay request without target or payload.
	ErrInvalidSignal = coreError(ErrCodeInvalidSignal, "invalid signal")
	// ErrSignalingDisabled marks a signaling event while the relay is switched off.
	ErrSignalingDisabled = coreError(ErrCodeSignalingDisabled, "signaling disabled")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
