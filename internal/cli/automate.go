package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectica-ai/projectica/internal/models"
)

var automateCmd = &cobra.Command{
	Use:   "automate <project-id>",
	Short: "Run all open tasks of a project through the assistant",
	Long: `Pick up every open task of the project and work each one out with the
planning assistant. Results are stored on the tasks; failures are reported
per task.`,
	Args: cobra.ExactArgs(1),
	RunE: runAutomate,
}

func runAutomate(cmd *cobra.Command, args []string) error {
	results, err := apiClient.Automate(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("automate: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No open tasks.")
		return nil
	}

	done := 0
	for _, res := range results {
		switch res.Status {
		case models.TaskStatusDone:
			done++
			fmt.Printf("✓ %s\n", res.Title)
		default:
			fmt.Printf("✗ %s: %s\n", res.Title, res.Error)
		}
	}
	fmt.Printf("\n%d/%d tasks completed\n", done, len(results))
	return nil
}
