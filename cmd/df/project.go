package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/morgan8889/design-flow/internal/db"
	"github.com/morgan8889/design-flow/internal/models"
	"github.com/morgan8889/design-flow/internal/project"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectAddCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectTrackCmd(true))
	cmd.AddCommand(newProjectTrackCmd(false))
	cmd.AddCommand(newProjectRemoveCmd())
	return cmd
}

func newProjectAddCmd() *cobra.Command {
	var (
		configPath string
		githubURL  string
		localPath  string
		tracked    bool
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Register a project",
		Long:  "Registers a project by GitHub URL or local path. Tracked projects are included in sync passes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectAdd(cmd, configPath, project.CreateOpts{
				Name:      args[0],
				GitHubURL: githubURL,
				LocalPath: localPath,
				Source:    sourceFor(githubURL),
				Tracked:   tracked,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	cmd.Flags().StringVar(&githubURL, "github-url", "", "GitHub repository URL")
	cmd.Flags().StringVar(&localPath, "local-path", "", "local repository path")
	cmd.Flags().BoolVar(&tracked, "track", true, "include in sync passes")
	return cmd
}

func sourceFor(githubURL string) string {
	if githubURL != "" {
		return models.SourceManual
	}
	return models.SourceLocal
}

func runProjectAdd(cmd *cobra.Command, configPath string, opts project.CreateOpts) error {
	_, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	p, err := project.Create(gormDB, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Added project %s (%s)\n", p.Name, p.ID)
	if p.IsTracked {
		fmt.Fprintln(out, "Tracking enabled")
	}
	return nil
}

func newProjectListCmd() *cobra.Command {
	var (
		configPath  string
		trackedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectList(cmd, configPath, trackedOnly)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	cmd.Flags().BoolVar(&trackedOnly, "tracked", false, "only tracked projects")
	return cmd
}

func runProjectList(cmd *cobra.Command, configPath string, trackedOnly bool) error {
	_, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}

	projects, err := project.List(gormDB, trackedOnly)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSOURCE\tTRACKED\tLAST SYNC")
	for _, p := range projects {
		lastSync := "never"
		if p.LastSyncedAt != nil {
			lastSync = p.LastSyncedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", p.ID, p.Name, p.Source, p.IsTracked, lastSync)
	}
	return w.Flush()
}

func newProjectTrackCmd(track bool) *cobra.Command {
	var configPath string

	use, short := "track ID", "Enable sync for a project"
	if !track {
		use, short = "untrack ID", "Disable sync for a project"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}

			p, err := project.Update(gormDB, args[0], project.UpdateOpts{IsTracked: &track})
			if err != nil {
				return err
			}
			state := "tracked"
			if !track {
				state = "untracked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s is now %s\n", p.Name, state)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	return cmd
}

func newProjectRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a project and all its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}

			if err := project.Delete(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	return cmd
}
