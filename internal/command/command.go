package command

import (
	"fmt"
	"strings"
)

// Command is one of the fixed top-level REPL commands.
type Command string

const (
	Send   Command = "send"
	Read   Command = "read"
	Help   Command = "help"
	Delete Command = "delete"
	Exit   Command = "exit"
)

// All lists every valid command in display order.
var All = []Command{Send, Read, Help, Delete, Exit}

// Prompt labels shown to the user.
const (
	indent = "    "

	PromptCommand   = "Enter command:"
	PromptSender    = indent + "Sender:"
	PromptRecipient = indent + "Recipient:"
	PromptMessage   = indent + "Message:"
	PromptRead      = "Browse messages:"
	PromptDelete    = "Select a message to delete:"
)

// InvalidMessage is the rejection shown when input is not a known command.
var InvalidMessage = fmt.Sprintf("Please enter a valid command %s", joinAll(","))

// RecipientRequiredMessage is the rejection shown for a blank recipient.
const RecipientRequiredMessage = "Please enter a recipient"

// Parse returns the command matching s exactly. Callers are expected to
// normalize input first.
func Parse(s string) (Command, bool) {
	for _, c := range All {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

func (c Command) String() string {
	return string(c)
}

func joinAll(sep string) string {
	names := make([]string, len(All))
	for i, c := range All {
		names[i] = string(c)
	}
	return strings.Join(names, sep)
}
