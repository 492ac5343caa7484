package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/notionmail/internal/browse"
	"github.com/nhle/notionmail/internal/credential"
	"github.com/nhle/notionmail/internal/dispatch"
	"github.com/nhle/notionmail/internal/keys"
	"github.com/nhle/notionmail/internal/logging"
	"github.com/nhle/notionmail/internal/model"
	"github.com/nhle/notionmail/internal/prompt"
	"github.com/nhle/notionmail/internal/query"
	"github.com/nhle/notionmail/internal/repl"
	"github.com/nhle/notionmail/internal/source"
	"github.com/nhle/notionmail/internal/source/notion"
	"github.com/nhle/notionmail/internal/theme"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

type rootOptions struct {
	configPath string
	dotenvPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "notionmail",
		Short:   "Mail App CLI",
		Long:    "notionmail sends, reads and deletes messages stored in a Notion database.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, opts)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "config file")
	cmd.PersistentFlags().StringVar(&opts.dotenvPath, "env", model.DefaultDotEnvPath, "dotenv file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newLoginCmd(opts), newLogoutCmd())
	return cmd
}

func runSession(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := model.LoadConfig(opts.configPath, opts.dotenvPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := query.MessageSchema.Validate(); err != nil {
		return err
	}

	if cfg.Notion.APIKey == "" {
		key, err := credential.Get(credential.NotionAPIKey)
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			logger.Warn("reading keyring", zap.Error(err))
		}
		cfg.Notion.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	store := newStore(cfg.Notion)
	return newDriver(cfg.Notion, store, p, cmd.OutOrStdout(), logger).Run(ctx)
}

func newStore(cfg model.NotionConfig) *notion.Adapter {
	client := notion.NewClient(cfg.APIKey,
		notion.WithBaseURL(cfg.BaseURL),
		notion.WithVersion(cfg.Version),
		notion.WithTimeout(time.Duration(cfg.TimeoutSec)*time.Second),
		notion.WithMaxRetries(cfg.MaxRetries),
	)
	return notion.NewAdapter(client, cfg.DatabaseID)
}

// newDriver is the single construction point of the session components.
func newDriver(
	cfg model.NotionConfig,
	store source.RecordStore,
	p prompt.Prompter,
	w io.Writer,
	logger *zap.Logger,
) *repl.Driver {
	out := theme.NewPrinter(w)
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	browser := browse.New(store, p, out, logger.Named("browse"), browse.Options{
		Schema:   query.MessageSchema,
		PageSize: cfg.PageSize,
		Timeout:  timeout,
	})
	d := dispatch.New(store, p, browser, out, logger.Named("dispatch"), dispatch.Options{
		Schema:  query.MessageSchema,
		Timeout: timeout,
	})
	return repl.New(p, d, out, logger)
}

// sessionPrompter is what the commands need from a prompter: the session
// prompts plus masked token entry.
type sessionPrompter interface {
	prompt.Prompter
	Password(ctx context.Context, title string, validate prompt.Validator) (string, error)
}

// newPrompter uses huh forms on a terminal and plain lines otherwise.
func newPrompter(in io.Reader, out io.Writer) sessionPrompter {
	if !isTerminal(in) {
		return prompt.NewLinePrompter(in, out)
	}
	return prompt.NewHuhPrompter(
		prompt.WithKeyMap(keys.FormKeyMap()),
		prompt.WithIO(in, out),
		prompt.WithProgramOptions(tea.WithoutSignalHandler()),
	)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// contextOrBackground guards commands executed without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
