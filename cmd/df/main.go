package main

import (
	"context"
	"fmt"
	"os"

	"github.com/morgan8889/design-flow/internal/config"
	"github.com/morgan8889/design-flow/internal/db"
	"github.com/morgan8889/design-flow/internal/github"
	"github.com/morgan8889/design-flow/internal/models"
	"github.com/morgan8889/design-flow/internal/notify"
	"github.com/morgan8889/design-flow/internal/settings"
	syncengine "github.com/morgan8889/design-flow/internal/sync"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "df",
		Short: "DesignFlow - project sync and attention tracking",
		Long:  "DesignFlow watches tracked repositories and their planning documents and surfaces what needs attention.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newProjectCmd())
	cmd.AddCommand(newAttentionCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newDBCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "df %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// openFromConfig loads the config file and opens the database.
func openFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := db.Connect(db.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// resolveToken returns the GitHub token, checking the config file and
// environment first and falling back to the settings store.
func resolveToken(cfg *config.Config, gormDB *gorm.DB) string {
	if token := cfg.Token(); token != "" {
		return token
	}
	token, err := settings.Get(gormDB, models.SettingGitHubToken)
	if err != nil {
		return ""
	}
	return token
}

// buildNotifier assembles the configured notification surfaces. Returns nil
// when none are configured.
func buildNotifier(cfg *config.Config) notify.Notifier {
	var adapters notify.Multi
	if cfg.Notify.DesktopCommand != "" {
		adapters = append(adapters, notify.Desktop{Command: cfg.Notify.DesktopCommand})
	}
	if cfg.Notify.SlackWebhook != "" {
		adapters = append(adapters, notify.Slack{WebhookURL: cfg.Notify.SlackWebhook})
	}
	if cfg.Notify.DiscordWebhook.ID != "" {
		adapters = append(adapters, notify.Discord{
			WebhookID:    cfg.Notify.DiscordWebhook.ID,
			WebhookToken: cfg.Notify.DiscordWebhook.Token,
		})
	}
	if len(adapters) == 0 {
		return nil
	}
	return adapters
}

// buildEngine wires the sync engine for the resolved token. Returns nil when
// no token is available, since every remote call would fail without one.
func buildEngine(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *syncengine.Engine {
	token := resolveToken(cfg, gormDB)
	if token == "" {
		return nil
	}

	host := github.NewAPIClient(ctx, token)
	return syncengine.New(gormDB, host, syncengine.Options{
		Notifier:        buildNotifier(cfg),
		NotifyThreshold: cfg.Notify.Threshold,
		StaleAfter:      cfg.Sync.StaleAfter.Std(),
	})
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
