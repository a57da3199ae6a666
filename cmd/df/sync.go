package main

import (
	"context"
	"fmt"

	"github.com/morgan8889/design-flow/internal/db"
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		discover   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass now",
		Long:  "Reconciles pull requests and planning documents for every tracked project, or for one project with --project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, configPath, projectID, discover)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	cmd.Flags().StringVar(&projectID, "project", "", "sync only this project ID")
	cmd.Flags().BoolVar(&discover, "discover", false, "also discover new repositories first")
	return cmd
}

func runSync(cmd *cobra.Command, configPath, projectID string, discover bool) error {
	cfg, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx := context.Background()
	engine := buildEngine(ctx, cfg, gormDB)
	if engine == nil {
		return fmt.Errorf("no GitHub token configured (set one with: df token)")
	}

	out := cmd.OutOrStdout()
	if discover {
		created, err := engine.DiscoverRepos(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Discovered %d new repositories\n", len(created))
		for _, p := range created {
			fmt.Fprintf(out, "  %s (%s)\n", p.Name, p.GitHubURL)
		}
	}

	if projectID != "" {
		if err := engine.SyncProject(ctx, projectID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Synced project %s\n", projectID)
		return nil
	}

	if err := engine.SyncAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Sync complete")
	return nil
}
