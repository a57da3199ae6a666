package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/morgan8889/design-flow/internal/db"
	"github.com/morgan8889/design-flow/internal/scheduler"
	"github.com/morgan8889/design-flow/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and background sync",
		Long:  "Runs the JSON API and, when a GitHub token is available, the periodic sync scheduler. Without a token the API still serves local data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	if port <= 0 {
		port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	out := cmd.OutOrStdout()
	engine := buildEngine(ctx, cfg, gormDB)
	if engine == nil {
		fmt.Fprintln(out, "No GitHub token configured; background sync disabled (set one with: df token)")
	} else {
		var sched *scheduler.Scheduler
		if cfg.Sync.Schedule != "" {
			sched, err = scheduler.NewCron(engine.SyncAll, cfg.Sync.Schedule)
			if err != nil {
				return fmt.Errorf("sync schedule: %w", err)
			}
			fmt.Fprintf(out, "Background sync running (schedule %q)\n", cfg.Sync.Schedule)
		} else {
			sched = scheduler.New(engine.SyncAll, cfg.Sync.Interval.Std())
			fmt.Fprintf(out, "Background sync running (every %s)\n", cfg.Sync.Interval.Std())
		}
		sched.Start()
		defer sched.Stop()
	}

	var syncer server.Syncer
	if engine != nil {
		syncer = engine
	}
	return server.Start(ctx, server.StartOpts{
		DB:     gormDB,
		Syncer: syncer,
		Port:   port,
		Out:    out,
	})
}
