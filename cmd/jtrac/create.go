package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kkolinko/jtrac/internal/model"
)

var createCmd = &cobra.Command{
	Use:     "create <workspace-prefix> <summary>",
	Short:   "Log a new item in a workspace",
	GroupID: "items",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, summary := args[0], args[1]
		detail, _ := cmd.Flags().GetString("detail")
		assignedTo, _ := cmd.Flags().GetInt64("assign")
		severity, _ := cmd.Flags().GetInt("severity")
		priority, _ := cmd.Flags().GetInt("priority")
		due, _ := cmd.Flags().GetString("due")

		ctx := context.Background()
		actor, err := trackerClient.GetUser(ctx, login)
		if err != nil {
			return fmt.Errorf("resolve user %q: %w", login, err)
		}

		item := &model.Item{
			Summary:    summary,
			Detail:     detail,
			LoggedBy:   actor.ID,
			AssignedTo: assignedTo,
		}
		if cmd.Flags().Changed("severity") {
			item.Severity = &severity
		}
		if cmd.Flags().Changed("priority") {
			item.Priority = &priority
		}
		if due != "" {
			t, err := time.Parse("2006-01-02", due)
			if err != nil {
				return fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", due)
			}
			item.CusTim01 = &t
		}

		created, err := trackerClient.CreateItem(ctx, prefix, item)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(created)
		} else {
			fmt.Printf("created %s\n", created.RefID().String())
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("detail", "d", "", "long description")
	createCmd.Flags().Int64("assign", 0, "user id to assign the item to")
	createCmd.Flags().Int("severity", 0, "severity option key")
	createCmd.Flags().Int("priority", 0, "priority option key")
	createCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
}
