// Package dispatch maps a validated command onto prompts, browsing and
// record store calls.
package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notionmail/internal/browse"
	"github.com/nhle/notionmail/internal/command"
	"github.com/nhle/notionmail/internal/help"
	"github.com/nhle/notionmail/internal/prompt"
	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/source"
	"github.com/nhle/notionmail/internal/theme"
)

// Messages printed to the user.
const (
	MsgSent           = "Message sent successfully"
	MsgSendFailed     = "Error sending message"
	MsgDeleted        = "Message deleted successfully"
	MsgDeleteFailed   = "Error deleting message"
	MsgUnknownCommand = "Unknown command. Please try again."
)

// Options tunes a Dispatcher.
type Options struct {
	Schema query.Schema

	// Timeout bounds each create or archive call.
	Timeout time.Duration
}

// Dispatcher runs one command at a time.
type Dispatcher struct {
	store   source.RecordStore
	prompt  prompt.Prompter
	browser *browse.Browser
	out     *theme.Printer
	log     *zap.Logger
	opts    Options
}

// New creates a Dispatcher.
func New(
	store source.RecordStore,
	p prompt.Prompter,
	browser *browse.Browser,
	out *theme.Printer,
	logger *zap.Logger,
	opts Options,
) *Dispatcher {
	if opts.Schema == nil {
		opts.Schema = query.MessageSchema
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:   store,
		prompt:  p,
		browser: browser,
		out:     out,
		log:     logger,
		opts:    opts,
	}
}

// Dispatch runs cmd and reports whether the session should end. Backend
// failures are printed and never returned; the error is only set when the
// prompt itself fails (input closed or aborted).
func (d *Dispatcher) Dispatch(ctx context.Context, cmd command.Command) (bool, error) {
	d.log.Debug("dispatching", zap.Stringer("command", cmd))

	switch cmd {
	case command.Exit:
		return true, nil
	case command.Send:
		_, err := d.Send(ctx)
		return false, err
	case command.Read:
		return false, d.Read(ctx)
	case command.Delete:
		_, err := d.Delete(ctx)
		return false, err
	case command.Help:
		d.out.Println(help.Summary())
		return false, nil
	default:
		d.out.Println(MsgUnknownCommand)
		return false, nil
	}
}

// Send asks for sender, recipient and body, then stores the message.
// It reports whether the message was stored.
func (d *Dispatcher) Send(ctx context.Context) (bool, error) {
	sender, err := prompt.Sender(ctx, d.prompt)
	if err != nil {
		return false, err
	}
	recipient, err := prompt.Recipient(ctx, d.prompt)
	if err != nil {
		return false, err
	}
	body, err := prompt.Message(ctx, d.prompt)
	if err != nil {
		return false, err
	}

	ok := d.SendMessage(ctx, sender, recipient, body)
	if ok {
		d.out.Success(MsgSent)
	} else {
		d.out.Error(MsgSendFailed)
	}
	return ok, nil
}

// SendMessage creates the message record. A blank recipient is never
// stored. Failures are logged and reported as false.
func (d *Dispatcher) SendMessage(ctx context.Context, sender, recipient, body string) bool {
	if err := prompt.ValidateRecipient(recipient); err != nil {
		d.log.Warn("create skipped", zap.Error(err))
		return false
	}

	props := query.BuildCreatePayload(d.opts.Schema, map[string]string{
		query.FieldSender:    sender,
		query.FieldRecipient: recipient,
		query.FieldMessage:   body,
	})

	callCtx, cancel := source.CallContext(ctx, d.opts.Timeout)
	defer cancel()

	rec, err := d.store.Create(callCtx, props)
	if err != nil {
		d.logFailure("create failed", err, zap.String("recipient", recipient))
		return false
	}
	d.log.Info("message sent", zap.String("id", rec.ID), zap.String("recipient", recipient))
	return true
}

// Read lets the user browse a recipient's messages. Picking one has no
// further effect.
func (d *Dispatcher) Read(ctx context.Context) error {
	recipient, err := prompt.Recipient(ctx, d.prompt)
	if err != nil {
		return err
	}
	_, err = d.browser.Browse(ctx, recipient, command.PromptRead)
	return err
}

// Delete lets the user pick one of a recipient's messages and archives it.
// It reports whether a message was archived; backing out is not a failure
// and prints nothing.
func (d *Dispatcher) Delete(ctx context.Context) (bool, error) {
	recipient, err := prompt.Recipient(ctx, d.prompt)
	if err != nil {
		return false, err
	}
	res, err := d.browser.Browse(ctx, recipient, command.PromptDelete)
	if err != nil {
		return false, err
	}
	if !res.Selected() {
		return false, nil
	}

	ok := d.DeleteMessage(ctx, res.ID)
	if ok {
		d.out.Success(MsgDeleted)
	} else {
		d.out.Error(MsgDeleteFailed)
	}
	return ok, nil
}

// DeleteMessage archives the record with id. Failures are logged and
// reported as false.
func (d *Dispatcher) DeleteMessage(ctx context.Context, id string) bool {
	callCtx, cancel := source.CallContext(ctx, d.opts.Timeout)
	defer cancel()

	if err := d.store.Archive(callCtx, id); err != nil {
		d.logFailure("archive failed", err, zap.String("id", id))
		return false
	}
	d.log.Info("message archived", zap.String("id", id))
	return true
}

func (d *Dispatcher) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.Bool("transport", source.IsTransportError(err)),
		zap.Int("status", source.StatusCode(err)),
		zap.Error(err),
	)
	d.log.Error(msg, fields...)
}

