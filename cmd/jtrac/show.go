package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <ref>",
	Short:   "Show an item and its history",
	GroupID: "items",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]
		ctx := context.Background()

		item, err := trackerClient.GetItem(ctx, ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Workspace schema for field and status labels; best-effort.
		ws, err := trackerClient.GetWorkspace(ctx, item.PrefixCode)
		if err != nil {
			ws = nil
		}

		history, err := trackerClient.GetHistory(ctx, ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(map[string]any{"item": item, "history": history})
			return nil
		}

		printItemTable(ws, item)
		if len(history) > 0 {
			fmt.Println()
			printHistoryTable(ws, history)
		}
		return nil
	},
}
