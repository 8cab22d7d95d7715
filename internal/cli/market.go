package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectica-ai/projectica/internal/references"
)

var (
	competitorAspects []string
	trendType         string
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Market research commands",
}

var marketSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a market research query with cited sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := apiClient.MarketSearch(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("market search: %w", err)
		}
		printResult(result)
		return nil
	},
}

var marketCompetitorCmd = &cobra.Command{
	Use:   "competitor <company>",
	Short: "Analyze a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := apiClient.CompetitorAnalysis(cmd.Context(), args[0], competitorAspects)
		if err != nil {
			return fmt.Errorf("competitor analysis: %w", err)
		}
		printResult(result)
		return nil
	},
}

var marketTrendsCmd = &cobra.Command{
	Use:   "trends <industry>",
	Short: "Fetch search-interest trends for an industry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := apiClient.MarketTrends(cmd.Context(), args[0], trendType)
		if err != nil {
			return fmt.Errorf("market trends: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var marketAnalyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Run the tool-equipped market assistant",
	Long: `Run a full market analysis. The assistant decides which research tools to
call (market data search, competitor analysis, trend lookup) and combines
their output into one answer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		analysis, err := apiClient.Analyze(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		fmt.Println(analysis)
		return nil
	},
}

func printResult(result *references.Result) {
	fmt.Println(result.Text)
	if len(result.References) > 0 {
		fmt.Println("\nReferences:")
		for i, ref := range result.References {
			fmt.Printf("  [%d] %s\n      %s\n", i+1, ref.Title, ref.URL)
		}
	}
}

func init() {
	marketCompetitorCmd.Flags().StringSliceVarP(&competitorAspects, "aspects", "a", nil, "aspects to focus on (e.g. pricing,strategy)")
	marketTrendsCmd.Flags().StringVarP(&trendType, "type", "t", "current", "trend type: current, historical or forecast")

	marketCmd.AddCommand(marketSearchCmd)
	marketCmd.AddCommand(marketCompetitorCmd)
	marketCmd.AddCommand(marketTrendsCmd)
	marketCmd.AddCommand(marketAnalyzeCmd)
}
