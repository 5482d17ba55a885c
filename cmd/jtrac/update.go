package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kkolinko/jtrac/internal/client"
)

var updateCmd = &cobra.Command{
	Use:     "update <ref>",
	Short:   "Change an item's status, assignee, or text",
	GroupID: "items",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]
		ctx := context.Background()

		actor, err := trackerClient.GetUser(ctx, login)
		if err != nil {
			return fmt.Errorf("resolve user %q: %w", login, err)
		}

		req := &client.UpdateItemRequest{LoggedBy: actor.ID}
		if cmd.Flags().Changed("status") {
			status, _ := cmd.Flags().GetInt("status")
			req.Status = &status
		}
		if cmd.Flags().Changed("assign") {
			assign, _ := cmd.Flags().GetInt64("assign")
			req.AssignedTo = &assign
		}
		if cmd.Flags().Changed("summary") {
			summary, _ := cmd.Flags().GetString("summary")
			req.Summary = &summary
		}
		if cmd.Flags().Changed("detail") {
			detail, _ := cmd.Flags().GetString("detail")
			req.Detail = &detail
		}
		req.Comment, _ = cmd.Flags().GetString("comment")

		if req.Status == nil && req.AssignedTo == nil && req.Summary == nil &&
			req.Detail == nil && req.Comment == "" {
			return fmt.Errorf("nothing to change; pass --status, --assign, --summary, --detail, or --comment")
		}

		item, err := trackerClient.UpdateItem(ctx, ref, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(item)
		} else {
			fmt.Printf("updated %s (status %d)\n", item.RefID().String(), item.Status)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().Int("status", 0, "new status key")
	updateCmd.Flags().Int64("assign", 0, "user id to assign the item to (0 unassigns)")
	updateCmd.Flags().String("summary", "", "replace the summary")
	updateCmd.Flags().String("detail", "", "replace the detail text")
	updateCmd.Flags().StringP("comment", "m", "", "comment recorded with the change")
}
