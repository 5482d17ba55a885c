package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kkolinko/jtrac/internal/model"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Short:   "Manage users",
	GroupID: "admin",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <login>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = args[0]
		}

		u, err := trackerClient.CreateUser(context.Background(), &model.User{
			Login: args[0],
			Name:  name,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(u)
		} else {
			fmt.Printf("created user %s (id %d)\n", u.Login, u.ID)
		}
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <login>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := trackerClient.GetUser(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(u)
		} else {
			fmt.Printf("ID:    %d\nLogin: %s\nName:  %s\n", u.ID, u.Login, u.Name)
		}
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("name", "", "display name (defaults to the login)")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userShowCmd)
}
