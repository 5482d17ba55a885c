package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kkolinko/jtrac/internal/model"
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Short:   "Manage workspaces",
	GroupID: "admin",
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <prefix> <name>",
	Short: "Create a workspace",
	Long: `Create a workspace. The acting user becomes a member.

Custom fields and statuses are given as a JSON schema fragment, e.g.:

  jtrac workspace create WEB "Website" --schema '{
    "fields": [{"key": "severity", "label": "Severity",
                "options": [{"key": 10, "label": "low"}, {"key": 20, "label": "high"}]}],
    "statuses": [{"key": 1, "label": "Open"}, {"key": 2, "label": "Fixed"}]
  }'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		schema, _ := cmd.Flags().GetString("schema")

		ws := &model.Workspace{
			PrefixCode:  args[0],
			Name:        args[1],
			Description: desc,
		}
		if schema != "" {
			var frag struct {
				Fields   []*model.Field `json:"fields"`
				Statuses []model.Option `json:"statuses"`
			}
			if err := json.Unmarshal([]byte(schema), &frag); err != nil {
				return fmt.Errorf("invalid schema: %v", err)
			}
			ws.Fields = frag.Fields
			ws.Statuses = frag.Statuses
		}

		created, err := trackerClient.CreateWorkspace(context.Background(), login, ws)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(created)
		} else {
			fmt.Printf("created workspace %s (id %d)\n", created.PrefixCode, created.ID)
		}
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaces, err := trackerClient.ListWorkspaces(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(workspaces)
		} else {
			printWorkspaceListTable(workspaces)
		}
		return nil
	},
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show <prefix>",
	Short: "Show a workspace and its field schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := trackerClient.GetWorkspace(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(ws)
			return nil
		}

		fmt.Printf("Prefix:      %s\n", ws.PrefixCode)
		fmt.Printf("Name:        %s\n", ws.Name)
		if ws.Description != "" {
			fmt.Printf("Description: %s\n", ws.Description)
		}
		if len(ws.Statuses) > 0 {
			fmt.Println("Statuses:")
			for _, o := range ws.Statuses {
				fmt.Printf("  %d  %s\n", o.Key, o.Label)
			}
		}
		if len(ws.Fields) > 0 {
			fmt.Println("Fields:")
			for _, f := range ws.Fields {
				fmt.Printf("  %s  %s\n", f.Key, f.Label)
				for _, o := range f.Options {
					fmt.Printf("    %d  %s\n", o.Key, o.Label)
				}
			}
		}
		return nil
	},
}

var workspaceGrantCmd = &cobra.Command{
	Use:   "grant <prefix> <login>",
	Short: "Grant a user access to a workspace",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := trackerClient.GrantAccess(context.Background(), args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("granted %s access to %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	workspaceCreateCmd.Flags().String("description", "", "free-form description")
	workspaceCreateCmd.Flags().String("schema", "", "JSON fragment with fields and statuses")

	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)
	workspaceCmd.AddCommand(workspaceGrantCmd)
}
