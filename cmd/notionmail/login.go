package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/notionmail/internal/credential"
	"github.com/nhle/notionmail/internal/model"
	"github.com/nhle/notionmail/internal/theme"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the Notion token in the system keyring and the database id in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return login(cmd, opts)
		},
	}
}

func login(cmd *cobra.Command, opts *rootOptions) error {
	ctx := contextOrBackground(cmd)
	out := theme.NewPrinter(cmd.OutOrStdout())

	cfg, err := model.LoadConfig(opts.configPath, "")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	token, err := p.Password(ctx, "Notion integration token:", validateToken)
	if err != nil {
		return err
	}

	title := "Notion database id:"
	if cfg.Notion.DatabaseID != "" {
		title = fmt.Sprintf("Notion database id (blank keeps %s):", cfg.Notion.DatabaseID)
	}
	dbID, err := p.Text(ctx, title, databaseIDValidator(cfg.Notion.DatabaseID))
	if err != nil {
		return err
	}
	if dbID = strings.TrimSpace(dbID); dbID != "" {
		cfg.Notion.DatabaseID = dbID
	}

	if err := credential.Set(credential.NotionAPIKey, strings.TrimSpace(token)); err != nil {
		return err
	}
	out.Success("Token saved")

	if err := model.SaveConfig(opts.configPath, cfg); err != nil {
		return err
	}
	out.Success("Config saved to " + opts.configPath)
	return nil
}

func databaseIDValidator(current string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" && current == "" {
			return errors.New("database id is required")
		}
		return nil
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored Notion integration token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Delete(credential.NotionAPIKey); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			theme.NewPrinter(cmd.OutOrStdout()).Success("Token removed")
			return nil
		},
	}
}

func validateToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("token is required")
	}
	return nil
}
