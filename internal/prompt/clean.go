package prompt

import (
	"errors"
	"strings"

	"github.com/nhle/notionmail/internal/command"
)

// ErrInvalidCommand is returned by ValidateCommand for input outside the
// command set. Its message is the user-facing rejection text.
var ErrInvalidCommand = errors.New(command.InvalidMessage)

// ErrRecipientRequired rejects a blank recipient.
var ErrRecipientRequired = errors.New(command.RecipientRequiredMessage)

// Clean trims surrounding whitespace and lowercases s. It is applied to
// command tokens, senders and recipients, never to message bodies.
func Clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsValidCommand reports whether s names a command once cleaned.
func IsValidCommand(s string) bool {
	_, ok := command.Parse(Clean(s))
	return ok
}

// ValidateCommand adapts IsValidCommand to the Validator shape.
func ValidateCommand(s string) error {
	if IsValidCommand(s) {
		return nil
	}
	return ErrInvalidCommand
}

// ValidateRecipient rejects answers that are empty once cleaned.
func ValidateRecipient(s string) error {
	if Clean(s) == "" {
		return ErrRecipientRequired
	}
	return nil
}
