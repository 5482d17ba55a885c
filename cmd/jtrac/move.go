package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:     "move <ref> <workspace-prefix>",
	Short:   "Move an item to another workspace",
	GroupID: "items",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, target := args[0], args[1]
		comment, _ := cmd.Flags().GetString("comment")
		ctx := context.Background()

		actor, err := trackerClient.GetUser(ctx, login)
		if err != nil {
			return fmt.Errorf("resolve user %q: %w", login, err)
		}

		item, err := trackerClient.MoveItem(ctx, ref, target, actor.ID, comment)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(item)
		} else {
			fmt.Printf("moved %s to %s\n", ref, item.RefID().String())
		}
		return nil
	},
}

func init() {
	moveCmd.Flags().StringP("comment", "m", "", "comment recorded with the move")
}
