package constants

// Client-facing API messages. Storage failures always answer with one of
// the Failed* texts; the cause stays in the server log.
const (
	MessageHealthy = "Barrot API is running"

	ErrMessageRequired      = "Message is required"
	ErrUserFieldsRequired   = "Username and email are required"
	ErrUserExists           = "Username or email already exists"
	ErrUserNotFound         = "User not found"
	ErrRecordingRequired    = "Filename and file path are required"
	ErrUserIDRequired       = "User ID is required"
	ErrInvalidUserID        = "userId must be a positive integer"
	ErrInvalidJSON          = "Request body must be valid JSON"
	ErrInternal             = "Internal server error"
	ErrNotFound             = "Not found"
	ErrFailedSaveMessage    = "Failed to save message"
	ErrFailedFetchHistory   = "Failed to fetch history"
	ErrFailedCreateUser     = "Failed to create user"
	ErrFailedFetchUser      = "Failed to fetch user"
	ErrFailedSaveRecording  = "Failed to save recording"
	ErrFailedFetchRecording = "Failed to fetch recordings"
	ErrFailedCreateSession  = "Failed to create session"
)

// Paging for the history endpoints.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)
