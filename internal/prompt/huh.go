package prompt

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// HuhPrompter implements Prompter with single-field huh forms, one form per
// question.
type HuhPrompter struct {
	keymap     *huh.KeyMap
	theme      *huh.Theme
	in         io.Reader
	out        io.Writer
	programOps []tea.ProgramOption
}

// HuhOption configures a HuhPrompter.
type HuhOption func(*HuhPrompter)

// WithKeyMap overrides the form key bindings.
func WithKeyMap(km *huh.KeyMap) HuhOption {
	return func(p *HuhPrompter) { p.keymap = km }
}

// WithIO sets the terminal the forms read from and render to.
func WithIO(in io.Reader, out io.Writer) HuhOption {
	return func(p *HuhPrompter) {
		p.in = in
		p.out = out
	}
}

// WithProgramOptions passes options to the underlying Bubble Tea program.
func WithProgramOptions(opts ...tea.ProgramOption) HuhOption {
	return func(p *HuhPrompter) { p.programOps = append(p.programOps, opts...) }
}

// NewHuhPrompter creates a Prompter backed by huh forms.
func NewHuhPrompter(opts ...HuhOption) *HuhPrompter {
	p := &HuhPrompter{
		keymap: huh.NewDefaultKeyMap(),
		theme:  huh.ThemeBase16(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Text shows an input field and returns the raw answer.
func (p *HuhPrompter) Text(
	ctx context.Context,
	title string,
	validate Validator,
) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}

	if err := p.run(ctx, huh.NewForm(huh.NewGroup(input))); err != nil {
		return "", err
	}
	return value, nil
}

// Select shows a single choice list and returns the chosen index.
func (p *HuhPrompter) Select(
	ctx context.Context,
	title string,
	labels []string,
) (int, error) {
	if len(labels) == 0 {
		return 0, fmt.Errorf("select %q: no options", title)
	}

	options := make([]huh.Option[int], len(labels))
	for i, label := range labels {
		options[i] = huh.NewOption(label, i)
	}

	var chosen int
	sel := huh.NewSelect[int]().
		Title(title).
		Options(options...).
		Value(&chosen)

	if err := p.run(ctx, huh.NewForm(huh.NewGroup(sel))); err != nil {
		return 0, err
	}
	return chosen, nil
}

// Password shows a masked input field. Used for credential entry.
func (p *HuhPrompter) Password(
	ctx context.Context,
	title string,
	validate Validator,
) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}

	if err := p.run(ctx, huh.NewForm(huh.NewGroup(input))); err != nil {
		return "", err
	}
	return value, nil
}

func (p *HuhPrompter) run(ctx context.Context, form *huh.Form) error {
	form = form.
		WithKeyMap(p.keymap).
		WithTheme(p.theme).
		WithShowHelp(false).
		WithProgramOptions(p.programOps...)
	if p.in != nil {
		form = form.WithInput(p.in)
	}
	if p.out != nil {
		form = form.WithOutput(p.out)
	}

	if err := form.RunWithContext(ctx); err != nil {
		return fmt.Errorf("running prompt: %w", err)
	}
	return nil
}
