package theme

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue       = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorBrightBlue = lipgloss.AdaptiveColor{Dark: "#8EC5FF", Light: "#2C5282"}
	ColorGreen      = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorRed        = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray       = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite      = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

// HeaderStyle is used for the welcome banner.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// SuccessStyle marks a completed backend operation.
var SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

// ErrorStyle marks a failed operation or an empty result.
var ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

// CommandStyle highlights command names in the help text.
var CommandStyle = lipgloss.NewStyle().Foreground(ColorGreen)

// FieldStyle highlights a sender or date in a message label.
var FieldStyle = lipgloss.NewStyle().Foreground(ColorBlue)

// BodyStyle renders a message body in a message label.
var BodyStyle = lipgloss.NewStyle().Foreground(ColorBrightBlue)

// LoadMoreStyle and BackStyle render the browse control entries.
var (
	LoadMoreStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	BackStyle     = lipgloss.NewStyle().Foreground(ColorRed)
)

// HelpStyle is used for secondary hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// Printer writes user-facing lines.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Println writes a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Success writes a line in the success color.
func (p *Printer) Success(msg string) {
	fmt.Fprintln(p.w, SuccessStyle.Render(msg))
}

// Error writes a line in the error color.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, ErrorStyle.Render(msg))
}
