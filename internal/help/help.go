// Package help renders the static welcome and command summary.
package help

import (
	"strings"

	"github.com/nhle/notionmail/internal/command"
	"github.com/nhle/notionmail/internal/theme"
)

// Welcome is printed once when the session starts.
const Welcome = "Welcome to NotionMail!"

var descriptions = map[command.Command]string{
	command.Send:   "Send mail to a user.",
	command.Read:   "Check a user's mail.",
	command.Delete: "delete mail for a user.",
	command.Help:   "show this summary.",
	command.Exit:   "exit program.",
}

// order is the listing order of the summary.
var order = []command.Command{command.Send, command.Read, command.Delete, command.Help, command.Exit}

// Summary renders the command list.
func Summary() string {
	var b strings.Builder
	b.WriteString("Please select an option:")
	for _, c := range order {
		b.WriteString("\n- ")
		b.WriteString(theme.CommandStyle.Render(c.String()))
		b.WriteString(": ")
		b.WriteString(descriptions[c])
	}
	return b.String()
}

// Banner renders the welcome line followed by the summary.
func Banner() string {
	return theme.HeaderStyle.Render(Welcome) + "\n" + Summary()
}
