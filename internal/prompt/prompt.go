// Package prompt defines the interactive input capability used by the mail
// client and the input normalization applied to identity-like answers.
package prompt

import (
	"context"
	"fmt"

	"github.com/nhle/notionmail/internal/command"
)

// Validator checks a raw answer. A non-nil error rejects the answer and its
// message is shown to the user, who is asked again.
type Validator func(string) error

// Prompter is the interactive capability the mail client needs: free-text
// input and single choice selection.
type Prompter interface {
	// Text asks for a line of text. validate may be nil.
	Text(ctx context.Context, title string, validate Validator) (string, error)

	// Select presents labels and returns the index of the chosen one.
	Select(ctx context.Context, title string, labels []string) (int, error)
}

// Command asks for a command until a valid one is entered and returns it
// cleaned.
func Command(ctx context.Context, p Prompter) (command.Command, error) {
	answer, err := p.Text(ctx, command.PromptCommand, ValidateCommand)
	if err != nil {
		return "", err
	}
	cmd, ok := command.Parse(Clean(answer))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCommand, answer)
	}
	return cmd, nil
}

// Sender asks for the sender of a message.
func Sender(ctx context.Context, p Prompter) (string, error) {
	return cleanText(ctx, p, command.PromptSender, nil)
}

// Recipient asks for the recipient of a message. Blank answers are rejected.
func Recipient(ctx context.Context, p Prompter) (string, error) {
	return cleanText(ctx, p, command.PromptRecipient, ValidateRecipient)
}

// Message asks for a message body. The answer is returned verbatim.
func Message(ctx context.Context, p Prompter) (string, error) {
	return p.Text(ctx, command.PromptMessage, nil)
}

func cleanText(ctx context.Context, p Prompter, title string, validate Validator) (string, error) {
	answer, err := p.Text(ctx, title, validate)
	if err != nil {
		return "", err
	}
	return Clean(answer), nil
}
