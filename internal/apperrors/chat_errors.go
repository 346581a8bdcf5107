package apperrors

var (
	// Validation failures, surfaced as-is and never retried.
	ErrNotAParticipant    = Forbidden("sender is not an active participant of the chat")
	ErrInvalidContent     = InvalidArg("message content is empty or too long")
	ErrInvalidReply       = InvalidArg("reply_to must reference a message in the same chat")
	ErrInvalidMessageType = InvalidArg("unknown message type")
	ErrInvalidTransition  = FailedPrecondition("receipt status cannot move backwards")
	ErrInvalidStatus      = InvalidArg("unknown receipt status")
	ErrInvalidChat        = InvalidArg("invalid chat")
	ErrInvalidUsername    = InvalidArg("username must be 3-50 characters")
	ErrInvalidPublicKey   = InvalidArg("public key is required")
	ErrSelfContact        = InvalidArg("cannot add yourself as a contact")
	ErrInvalidAlias       = InvalidArg("alias must be at most 100 characters")
	ErrInvalidMedia       = InvalidArg("media is empty, too large or of an unsupported type")

	ErrChatNotFound     = NotFound("chat not found")
	ErrMessageNotFound  = NotFound("message not found")
	ErrReceiptNotFound  = NotFound("receipt not found")
	ErrUserNotFound     = NotFound("user not found")
	ErrContactNotFound  = NotFound("contact not found")
	ErrNotMessageOwner  = Forbidden("only the sender can modify this message")
	ErrNotChatAdmin     = Forbidden("only a chat admin can do this")
	ErrUsernameTaken    = New(CodeAlreadyExists, "username is already taken")
	ErrMediaUnavailable = New(CodeUnavailable, "media storage is not configured")

	// Store failures.
	ErrStoreTimeout     = New(CodeDeadlineExceeded, "store call timed out")
	ErrStoreUnavailable = New(CodeUnavailable, "store unavailable")
	ErrStoreCorrupted   = Internal("store integrity violation")

	// ErrQueueOverflow is reported by an outbox that dropped its oldest
	// entries to make room. The enqueue itself succeeded.
	ErrQueueOverflow = New(CodeResourceExhausted, "outbox overflow, oldest entries dropped")
)
