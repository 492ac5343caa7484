package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/nhle/notionmail/internal/theme"
)

// LinePrompter implements Prompter over plain lines of text. It is used when
// input is not a terminal, e.g. piped scripts. All prompts share one reader,
// so buffered lines are never lost between questions. Once input is
// exhausted every call returns io.EOF.
type LinePrompter struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan line
}

type line struct {
	text string
	err  error
}

// NewLinePrompter creates a LinePrompter reading from in and writing prompts
// to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out}
}

// Text prints title and reads one line. Rejected answers print the
// validator's message and ask again.
func (p *LinePrompter) Text(ctx context.Context, title string, validate Validator) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s ", title)
		answer, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if validate != nil {
			if err := validate(answer); err != nil {
				fmt.Fprintln(p.out, theme.ErrorStyle.Render(err.Error()))
				continue
			}
		}
		return answer, nil
	}
}

// Select prints labels as a numbered list and reads the chosen number.
func (p *LinePrompter) Select(ctx context.Context, title string, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, fmt.Errorf("select %q: no options", title)
	}

	fmt.Fprintln(p.out, title)
	for i, label := range labels {
		fmt.Fprintf(p.out, "%3d) %s\n", i+1, strings.TrimRight(label, "\n"))
	}
	hint := fmt.Sprintf("Enter a number from 1 to %d", len(labels))
	fmt.Fprintln(p.out, theme.HelpStyle.Render(hint))

	for {
		fmt.Fprint(p.out, "> ")
		answer, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || n < 1 || n > len(labels) {
			fmt.Fprintln(p.out, theme.ErrorStyle.Render(hint))
			continue
		}
		return n - 1, nil
	}
}

// Password reads a token like Text. Piped input has no echo to mask.
func (p *LinePrompter) Password(ctx context.Context, title string, validate Validator) (string, error) {
	return p.Text(ctx, title, validate)
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	p.once.Do(p.start)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// start reads input on its own goroutine so a blocked read never holds up
// cancellation. The goroutine ends when input is exhausted.
func (p *LinePrompter) start() {
	p.lines = make(chan line)
	go func() {
		defer close(p.lines)
		r := bufio.NewReader(p.in)
		for {
			text, err := r.ReadString('\n')
			if text != "" {
				p.lines <- line{text: strings.TrimRight(text, "\r\n")}
			}
			if err != nil {
				if err != io.EOF {
					p.lines <- line{err: fmt.Errorf("reading input: %w", err)}
				}
				return
			}
		}
	}()
}
