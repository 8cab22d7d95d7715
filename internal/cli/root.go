// Package cli provides the command-line interface for the Projectica server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/projectica-ai/projectica/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	token     string

	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "projectica",
	Short: "AI project planning from the command line",
	Long: `Projectica turns project ideas into actionable plans using AI assistants.

Ask questions in a per-project conversation, run market research with cited
sources, automate open tasks, and share read-only plan views.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.New(serverURL, token)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default from PROJECTICA_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (default from PROJECTICA_TOKEN)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(marketCmd)
	rootCmd.AddCommand(automateCmd)
	rootCmd.AddCommand(shareCmd)
}
