package main

import (
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/kkolinko/jtrac/internal/client"
	"github.com/kkolinko/jtrac/internal/ui"
)

var (
	serverURL  string
	authToken  string
	login      string
	jsonOutput bool

	trackerClient client.TrackerClient
)

func defaultLogin() string {
	if s := os.Getenv("JTRAC_LOGIN"); s != "" {
		return s
	}
	if l := activeRemoteLogin(); l != "" {
		return l
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func defaultServerURL() string {
	if s := os.Getenv("JTRAC_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if s := os.Getenv("JTRAC_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "jtrac <command>",
	Short: "CLI client for the jtrac issue tracker",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		trackerClient = client.NewHTTPClient(serverURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if trackerClient != nil {
			trackerClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", defaultServerURL(), "server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authenticated servers")
	rootCmd.PersistentFlags().StringVar(&login, "user", defaultLogin(), "login of the acting user")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "items", Title: "Items:"},
		&cobra.Group{ID: "admin", Title: "Administration:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	// Items
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(watchCmd)

	// Administration
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(exportCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
