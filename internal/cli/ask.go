package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askProject string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the planning assistant a question",
	Long: `Ask a question in a project's planning conversation. The conversation is
durable: follow-up questions see the full history.

Examples:
  projectica ask -p proj-1 "Plan the launch of my coffee subscription"
  projectica ask -p proj-1 "Break the first milestone into tasks"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProject, "project", "p", "", "project id (required)")
	askCmd.MarkFlagRequired("project")
}

func runAsk(cmd *cobra.Command, args []string) error {
	response, err := apiClient.Ask(cmd.Context(), askProject, args[0])
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	fmt.Println(response)
	return nil
}
