package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/morgan8889/design-flow/internal/attention"
	"github.com/spf13/cobra"
)

func newAttentionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attention",
		Short: "Attention queue commands",
	}

	cmd.AddCommand(newAttentionListCmd())
	cmd.AddCommand(newAttentionResolveCmd())
	return cmd
}

func newAttentionListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
		resolved   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attention items",
		Long:  "Lists active attention items, most urgent first. With --resolved, shows recently resolved items instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttentionList(cmd, configPath, projectID, resolved)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	cmd.Flags().StringVar(&projectID, "project", "", "filter by project ID")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "show resolved items")
	return cmd
}

func runAttentionList(cmd *cobra.Command, configPath, projectID string, resolved bool) error {
	_, gormDB, err := openFromConfig(configPath)
	if err != nil {
		return err
	}

	items, err := attention.Active(gormDB, projectID)
	if resolved {
		items, err = attention.Resolved(gormDB, 0)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRI\tTYPE\tTITLE")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", item.ID, item.Priority, item.Type, item.Title)
	}
	return w.Flush()
}

func newAttentionResolveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "resolve ID",
		Short: "Mark an attention item resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}

			item, err := attention.Get(gormDB, args[0])
			if err != nil {
				return err
			}
			if err := attention.Resolve(gormDB, item.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved: %s\n", item.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "designflow.yaml", "path to config file")
	return cmd
}
