// Package repl runs the interactive command loop.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/nhle/notionmail/internal/command"
	"github.com/nhle/notionmail/internal/help"
	"github.com/nhle/notionmail/internal/prompt"
	"github.com/nhle/notionmail/internal/theme"
)

// Dispatcher runs a single command and reports whether to stop.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd command.Command) (bool, error)
}

// Driver prompts for commands and dispatches them until exit.
type Driver struct {
	prompt     prompt.Prompter
	dispatcher Dispatcher
	out        *theme.Printer
	log        *zap.Logger
}

// New creates a Driver.
func New(p prompt.Prompter, d Dispatcher, out *theme.Printer, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		prompt:     p,
		dispatcher: d,
		out:        out,
		log:        logger,
	}
}

// Run prints the welcome banner and loops until the exit command. An
// aborted prompt (ctrl+c) or the end of input ends the loop without error;
// other prompt failures are returned.
func (d *Driver) Run(ctx context.Context) error {
	d.out.Println(help.Banner())

	for {
		cmd, err := prompt.Command(ctx, d.prompt)
		if err != nil {
			return d.stop(err)
		}

		exit, err := d.dispatcher.Dispatch(ctx, cmd)
		if err != nil {
			return d.stop(err)
		}
		if exit {
			d.log.Debug("exit requested")
			return nil
		}
	}
}

func (d *Driver) stop(err error) error {
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		d.log.Debug("session aborted", zap.Error(err))
		return nil
	}
	return fmt.Errorf("reading input: %w", err)
}
