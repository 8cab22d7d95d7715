package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share and view read-only project plans",
}

var shareCreateCmd = &cobra.Command{
	Use:   "create <project-id>",
	Short: "Create a read-only share link for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := apiClient.CreateShare(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("create share: %w", err)
		}
		fmt.Printf("Access key: %s\n", key)
		return nil
	},
}

var shareViewCmd = &cobra.Command{
	Use:   "view <access-key>",
	Short: "View a shared project plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := apiClient.GetShare(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("view share: %w", err)
		}
		fmt.Printf("Project: %s\n\n", view.ProjectName)
		if len(view.Tasks) == 0 {
			fmt.Println("No tasks yet.")
			return nil
		}
		for _, task := range view.Tasks {
			fmt.Printf("[%s] %s\n", task.Status, task.Title)
		}
		return nil
	},
}

func init() {
	shareCmd.AddCommand(shareCreateCmd)
	shareCmd.AddCommand(shareViewCmd)
}
