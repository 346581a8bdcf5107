package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/noteduco342/relay-backend/internal/apperrors"
	"github.com/noteduco342/relay-backend/internal/models"
)

const (
	DefaultMaxMessageLength = 4000
	MinUsernameLength       = 3
	MaxUsernameLength       = 50
	MaxAliasLength          = 100
	MaxTitleLength          = 100
)

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(NormalizeUsername(username))
	if n < MinUsernameLength || n > MaxUsernameLength {
		return apperrors.ErrInvalidUsername
	}
	return nil
}

func ValidatePublicKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apperrors.ErrInvalidPublicKey
	}
	return nil
}

// ValidateContent enforces that content is non-empty after trimming and at most
// max runes long. The stored content is the caller's original string.
func ValidateContent(content string, max int) error {
	if max <= 0 {
		max = DefaultMaxMessageLength
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return apperrors.ErrInvalidContent
	}
	if utf8.RuneCountInString(trimmed) > max {
		return apperrors.ErrInvalidContent
	}
	return nil
}

func ValidateMessageType(t models.MessageType) error {
	if !t.Valid() {
		return apperrors.ErrInvalidMessageType
	}
	return nil
}

func ValidateReceiptStatus(s models.ReceiptStatus) error {
	if !s.Valid() {
		return apperrors.ErrInvalidStatus
	}
	return nil
}

func ValidateAlias(alias *string) error {
	if alias == nil {
		return nil
	}
	if utf8.RuneCountInString(*alias) > MaxAliasLength {
		return apperrors.ErrInvalidAlias
	}
	return nil
}

func NormalizeTitle(title string) string {
	return TrimAndLimit(title, MaxTitleLength)
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && utf8.RuneCountInString(s) > max {
		return string([]rune(s)[:max])
	}
	return s
}
