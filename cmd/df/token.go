package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/morgan8889/design-flow/internal/db"
	"github.com/morgan8889/design-flow/internal/models"
	"github.com/morgan8889/design-flow/internal/settings"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newTokenCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Store the GitHub API token",
		Long:  "Prompts for a GitHub personal access token and stores it in the settings table. The GITHUB_TOKEN environment variable takes precedence when set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	return cmd
}

func runToken(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, "GitHub token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	if err := settings.Set(gormDB, models.SettingGitHubToken, token); err != nil {
		return err
	}
	fmt.Fprintln(out, "Token stored")
	return nil
}
